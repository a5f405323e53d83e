// Package engine maintains duplex streaming sessions with the
// conversational engine: audio in both directions plus tool-call events,
// over a websocket per call.
package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
)

const (
	liveEndpoint       = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	connectTimeout     = 15 * time.Second
	inputAudioMime     = "audio/pcm;rate=16000"
	defaultEventBuffer = 256
)

// Speaker labels for transcript events.
const (
	SpeakerCustomer = "customer"
	SpeakerAgent    = "agent"
)

// Event is one occurrence on a live session, delivered via Session.Events.
type Event interface {
	eventType() string
}

// AudioEvent carries a chunk of agent speech, 24 kHz 16-bit linear PCM.
type AudioEvent struct {
	PCM []byte
}

func (AudioEvent) eventType() string { return "audio" }

// TranscriptEvent carries recognized speech. Final events hold the full
// text of one conversational turn; partial events carry fragments.
type TranscriptEvent struct {
	Speaker string
	Text    string
	Final   bool
}

func (TranscriptEvent) eventType() string { return "transcript" }

// ToolCallEvent carries a batch of function calls. Every call must be
// answered with exactly one SendToolResult before the engine continues
// that turn.
type ToolCallEvent struct {
	Calls []ToolCall
}

func (ToolCallEvent) eventType() string { return "tool_call" }

// ToolCall is one requested action.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// InterruptedEvent signals the engine cut off its own speech; buffered
// outbound audio should be flushed.
type InterruptedEvent struct{}

func (InterruptedEvent) eventType() string { return "interrupted" }

// ClosedEvent is the final event on the channel. Err is nil on a clean
// close.
type ClosedEvent struct {
	Err error
}

func (ClosedEvent) eventType() string { return "closed" }

// Dialer opens live sessions.
type Dialer struct {
	apiKey      string
	model       string
	voice       string
	eventBuffer int
	endpoint    string
	log         *logging.Logger
}

// DialerConfig configures session opening.
type DialerConfig struct {
	APIKey      string
	Model       string
	Voice       string
	EventBuffer int
	Endpoint    string // override for tests
}

// NewDialer creates a Dialer.
func NewDialer(cfg DialerConfig, log *logging.Logger) *Dialer {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = liveEndpoint
	}
	return &Dialer{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		voice:       cfg.Voice,
		eventBuffer: cfg.EventBuffer,
		endpoint:    cfg.Endpoint,
		log:         log.Sub("engine"),
	}
}

// Open dials the engine, sends the setup frame, and waits for setup
// acknowledgment. A failure here is fatal to the call.
func (d *Dialer) Open(ctx context.Context, prompt string, tools []FunctionDecl) (*Session, error) {
	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, d.endpoint+"?key="+url.QueryEscape(d.apiKey), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("engine dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("engine dial failed: %w", err)
	}

	setup := clientSetup{Setup: setupBody{
		Model: "models/" + d.model,
		GenerationConfig: genConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConf{
				VoiceConfig: voiceConf{PrebuiltVoiceConfig: prebuiltVoice{VoiceName: d.voice}},
			},
		},
		SystemInstruction:        &content{Parts: []part{{Text: prompt}}},
		InputAudioTranscription:  json.RawMessage(`{}`),
		OutputAudioTranscription: json.RawMessage(`{}`),
	}}
	if len(tools) > 0 {
		setup.Setup.Tools = []toolDecls{{FunctionDeclarations: tools}}
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sending setup: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(connectTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("reading setup ack: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	var ack serverMessage
	if err := json.Unmarshal(payload, &ack); err != nil || ack.SetupComplete == nil {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected first engine frame: %s", payload)
	}

	s := &Session{
		conn:   conn,
		events: make(chan Event, d.eventBuffer),
		done:   make(chan struct{}),
		log:    d.log,
	}
	go s.readLoop()
	return s, nil
}

// Session is one live duplex session.
type Session struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}
	log    *logging.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    bool
}

// Events yields session events. The channel is closed after a ClosedEvent
// when the session ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// SendAudio forwards one chunk of 16 kHz linear PCM to the engine.
// Fire-and-forget: no acknowledgment is expected.
func (s *Session) SendAudio(pcm []byte) error {
	frame := clientRealtimeInput{RealtimeInput: realtimeInput{
		MediaChunks: []inlineData{{
			MimeType: inputAudioMime,
			Data:     base64.StdEncoding.EncodeToString(pcm),
		}},
	}}
	return s.sendJSON(frame)
}

// SendToolResult answers one tool call. Error payloads count: the engine
// treats the channel as pending until something arrives for the id.
func (s *Session) SendToolResult(id, name string, payload map[string]any) error {
	frame := clientToolResponse{ToolResponse: toolResponse{
		FunctionResponses: []functionResponse{{ID: id, Name: name, Response: payload}},
	}}
	return s.sendJSON(frame)
}

func (s *Session) sendJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return fmt.Errorf("engine session is closed")
	}
	return s.conn.WriteJSON(v)
}

// Close tears the session down and waits for the read loop to finish, so
// callers know the engine side is released before discarding the call.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.closed = true
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

func (s *Session) readLoop() {
	defer close(s.done)
	defer close(s.events)

	var customerTurn, agentTurn []byte

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			}
			s.deliver(ClosedEvent{Err: err})
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn().Err(err).Msg("dropping malformed engine frame")
			continue
		}

		switch {
		case msg.ToolCall != nil:
			calls := make([]ToolCall, 0, len(msg.ToolCall.FunctionCalls))
			for _, fc := range msg.ToolCall.FunctionCalls {
				calls = append(calls, ToolCall{ID: fc.ID, Name: fc.Name, Args: fc.Args})
			}
			if len(calls) > 0 {
				// Tool calls must never be dropped; block until delivered.
				s.deliver(ToolCallEvent{Calls: calls})
			}

		case msg.ServerContent != nil:
			sc := msg.ServerContent
			if sc.Interrupted {
				s.deliver(InterruptedEvent{})
			}
			if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
				customerTurn = append(customerTurn, sc.InputTranscription.Text...)
				s.emit(TranscriptEvent{Speaker: SpeakerCustomer, Text: sc.InputTranscription.Text})
			}
			if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
				agentTurn = append(agentTurn, sc.OutputTranscription.Text...)
				s.emit(TranscriptEvent{Speaker: SpeakerAgent, Text: sc.OutputTranscription.Text})
			}
			if sc.ModelTurn != nil {
				for _, p := range sc.ModelTurn.Parts {
					if p.InlineData == nil {
						continue
					}
					pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
					if err != nil {
						s.log.Warn().Err(err).Msg("dropping undecodable audio chunk")
						continue
					}
					s.emit(AudioEvent{PCM: pcm})
				}
			}
			if sc.TurnComplete {
				// Flush accumulated transcription at the turn boundary.
				if len(customerTurn) > 0 {
					s.deliver(TranscriptEvent{Speaker: SpeakerCustomer, Text: string(customerTurn), Final: true})
					customerTurn = customerTurn[:0]
				}
				if len(agentTurn) > 0 {
					s.deliver(TranscriptEvent{Speaker: SpeakerAgent, Text: string(agentTurn), Final: true})
					agentTurn = agentTurn[:0]
				}
			}
		}
	}
}

// emit queues an event, dropping it if the consumer is behind. Used for
// audio and partial transcripts where staleness beats backpressure.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// deliver queues an event that must not be lost, blocking if needed.
func (s *Session) deliver(ev Event) {
	s.events <- ev
}
