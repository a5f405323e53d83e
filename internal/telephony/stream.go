// Package telephony speaks the provider's side of a call: the Media
// Streams websocket framing and the REST API for SMS, outbound calls, and
// live-call redirects.
package telephony

import "encoding/json"

// Media Streams message envelope. The provider sends ordered control
// events over a persistent websocket opened per call: "connected", then
// "start", then "media" frames, then "stop".
type StreamMessage struct {
	Event     string        `json:"event"`
	StreamSID string        `json:"streamSid,omitempty"`
	Start     *StartFrame   `json:"start,omitempty"`
	Media     *MediaFrame   `json:"media,omitempty"`
	Stop      *StopFrame    `json:"stop,omitempty"`
	Mark      *MarkFrame    `json:"mark,omitempty"`
}

// StartFrame carries the call identity captured at stream start.
type StartFrame struct {
	StreamSID    string            `json:"streamSid"`
	AccountSID   string            `json:"accountSid"`
	CallSID      string            `json:"callSid"`
	Tracks       []string          `json:"tracks"`
	MediaFormat  MediaFormat       `json:"mediaFormat"`
	CustomParams map[string]string `json:"customParameters"`
}

// MediaFormat describes the audio encoding on the stream.
type MediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

// MediaFrame is one chunk of base64 μ-law audio.
type MediaFrame struct {
	Track     string `json:"track,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"`
}

// StopFrame ends the stream.
type StopFrame struct {
	AccountSID string `json:"accountSid"`
	CallSID    string `json:"callSid"`
}

// MarkFrame is a playback synchronization marker.
type MarkFrame struct {
	Name string `json:"name"`
}

// ParseStreamMessage decodes one websocket text frame. A malformed frame
// returns an error; the caller drops it and keeps reading.
func ParseStreamMessage(data []byte) (*StreamMessage, error) {
	var msg StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// OutboundMedia builds the frame that carries agent speech back to the
// provider. Payload is base64 μ-law.
func OutboundMedia(streamSID, payload string) map[string]any {
	return map[string]any{
		"event":     "media",
		"streamSid": streamSID,
		"media":     map[string]string{"payload": payload},
	}
}

// ClearFrame tells the provider to flush buffered outbound audio, used
// when the engine interrupts itself mid-utterance.
func ClearFrame(streamSID string) map[string]any {
	return map[string]any{
		"event":     "clear",
		"streamSid": streamSID,
	}
}

// Custom stream parameter keys passed through TwiML into the start frame.
const (
	ParamResume = "resume" // JSON resume context for callback-out calls
	ParamCaller = "caller" // customer number as seen by the webhook
	ParamDialed = "dialed" // company number the customer dialed
)
