package engine

import "encoding/json"

// Wire types for the engine's bidirectional streaming API. Only the
// fields this gateway uses are modeled; unknown fields are ignored on
// decode and omitted on encode.

// FunctionDecl declares one callable tool to the engine.
type FunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// clientSetup is the first frame on every session.
type clientSetup struct {
	Setup setupBody `json:"setup"`
}

type setupBody struct {
	Model                    string          `json:"model"`
	GenerationConfig         genConfig       `json:"generationConfig"`
	SystemInstruction        *content        `json:"systemInstruction,omitempty"`
	Tools                    []toolDecls     `json:"tools,omitempty"`
	InputAudioTranscription  json.RawMessage `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription json.RawMessage `json:"outputAudioTranscription,omitempty"`
}

type genConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       *speechConf  `json:"speechConfig,omitempty"`
}

type speechConf struct {
	VoiceConfig voiceConf `json:"voiceConfig"`
}

type voiceConf struct {
	PrebuiltVoiceConfig prebuiltVoice `json:"prebuiltVoiceConfig"`
}

type prebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type toolDecls struct {
	FunctionDeclarations []FunctionDecl `json:"functionDeclarations"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

// clientRealtimeInput carries one inbound audio chunk.
type clientRealtimeInput struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []inlineData `json:"mediaChunks"`
}

// clientToolResponse answers one or more tool calls.
type clientToolResponse struct {
	ToolResponse toolResponse `json:"toolResponse"`
}

type toolResponse struct {
	FunctionResponses []functionResponse `json:"functionResponses"`
}

type functionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// serverMessage is the union of frames the engine sends.
type serverMessage struct {
	SetupComplete *json.RawMessage `json:"setupComplete,omitempty"`
	ServerContent *serverContent   `json:"serverContent,omitempty"`
	ToolCall      *serverToolCall  `json:"toolCall,omitempty"`
	GoAway        *json.RawMessage `json:"goAway,omitempty"`
}

type serverContent struct {
	ModelTurn           *content        `json:"modelTurn,omitempty"`
	TurnComplete        bool            `json:"turnComplete,omitempty"`
	Interrupted         bool            `json:"interrupted,omitempty"`
	InputTranscription  *transcription  `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription  `json:"outputTranscription,omitempty"`
}

type transcription struct {
	Text string `json:"text"`
}

type serverToolCall struct {
	FunctionCalls []functionCall `json:"functionCalls"`
}

type functionCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}
