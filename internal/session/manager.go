// Package session owns one telephony call from stream start to teardown:
// it relays audio between the provider socket and the engine session,
// dispatches tool calls, and hands dropped calls to recovery.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Landonswork/lando-backend-call-routing/internal/audio"
	"github.com/Landonswork/lando-backend-call-routing/internal/engine"
	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
	"github.com/Landonswork/lando-backend-call-routing/internal/records"
	"github.com/Landonswork/lando-backend-call-routing/internal/telephony"
	"github.com/Landonswork/lando-backend-call-routing/internal/tools"
)

// State is the session lifecycle phase.
type State int32

const (
	StateConnecting State = iota
	StateStreaming
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Conn is the telephony-side socket. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// EngineSession is the duplex engine session owned by one call.
// *engine.Session satisfies it.
type EngineSession interface {
	Events() <-chan engine.Event
	SendAudio(pcm []byte) error
	SendToolResult(id, name string, payload map[string]any) error
	Close() error
}

// CallInfo identifies one call, captured from the provider's start frame.
type CallInfo struct {
	StreamSID    string
	CallSID      string
	CallerNumber string
	DialedNumber string
	Resume       *records.Fields
}

// Recovery is the dropped-call recovery surface the manager needs.
// *recovery.Coordinator satisfies it.
type Recovery interface {
	CancelPending(number string) bool
	ResumeFields(ctx context.Context, number string) *records.Fields
	MarkComplete(ctx context.Context, number string)
	HandleDroppedCall(ctx context.Context, callerNumber, transcript string)
}

// Deps are the collaborators injected into a Manager. Dispatcher and
// engine session are created per call; nothing here is shared across
// sessions except Recovery, which locks internally.
type Deps struct {
	Dial          func(ctx context.Context, prompt string, decls []engine.FunctionDecl) (EngineSession, error)
	NewDispatcher func(info CallInfo) *tools.Dispatcher
	BuildPrompt   func(info CallInfo) string
	Recovery      Recovery
	Log           *logging.Logger
}

// Manager drives one call session. Create one per accepted socket and
// call Run on it; Run returns once the session is fully torn down.
type Manager struct {
	conn Conn
	deps Deps
	log  *logging.Logger

	state      atomic.Int32
	info       CallInfo
	transcript Transcript

	engine     EngineSession
	dispatcher *tools.Dispatcher

	toolWG sync.WaitGroup
	quit   chan struct{}

	workOrderCreated atomic.Bool
}

// New creates a Manager for one accepted telephony socket.
func New(conn Conn, deps Deps) *Manager {
	return &Manager{
		conn: conn,
		deps: deps,
		log:  deps.Log.Sub("session"),
		quit: make(chan struct{}),
	}
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
}

// Run owns the session until teardown completes. It returns when the
// socket closes, the provider sends stop, or the engine session fails.
func (m *Manager) Run(ctx context.Context) {
	defer m.teardown()

	frames := make(chan *telephony.StreamMessage, 64)
	readErr := make(chan error, 1)
	go m.readSocket(frames, readErr)

	var engineEvents <-chan engine.Event

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-readErr:
			if err != nil {
				m.log.Debug().Err(err).Msg("telephony socket closed")
			}
			return

		case msg := <-frames:
			switch msg.Event {
			case "start":
				events, ok := m.handleStart(ctx, msg.Start)
				if !ok {
					return
				}
				// A nil channel means the frame was dropped (duplicate or
				// malformed start); the existing relay keeps running.
				if events != nil {
					engineEvents = events
				}

			case "media":
				// Media is only meaningful mid-stream; frames in any
				// other state are discarded without error.
				if m.State() == StateStreaming && msg.Media != nil {
					m.relayInbound(msg.Media.Payload)
				}

			case "stop":
				m.log.Info().Msg("provider stop received")
				return
			}

		case ev, ok := <-engineEvents:
			if !ok {
				return
			}
			if done := m.handleEngineEvent(ctx, ev); done {
				return
			}
		}
	}
}

func (m *Manager) readSocket(frames chan<- *telephony.StreamMessage, readErr chan<- error) {
	for {
		_, data, err := m.conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		msg, err := telephony.ParseStreamMessage(data)
		if err != nil {
			// Malformed frame: drop it, keep the session alive.
			continue
		}
		select {
		case frames <- msg:
		case <-m.quit:
			return
		}
	}
}

// handleStart opens the engine session for a newly started stream. A
// failure here is fatal to the call.
func (m *Manager) handleStart(ctx context.Context, start *telephony.StartFrame) (<-chan engine.Event, bool) {
	if start == nil || m.State() != StateConnecting {
		return nil, true
	}

	m.info = CallInfo{
		StreamSID:    start.StreamSID,
		CallSID:      start.CallSID,
		CallerNumber: start.CustomParams[telephony.ParamCaller],
		DialedNumber: start.CustomParams[telephony.ParamDialed],
	}
	m.log = m.log.WithCall(m.info.CallSID)

	// A caller ringing back is the recovery signal: their pending
	// callback must be disarmed before anything else happens.
	if m.info.CallerNumber != "" {
		m.deps.Recovery.CancelPending(m.info.CallerNumber)
		m.info.Resume = m.deps.Recovery.ResumeFields(ctx, m.info.CallerNumber)
	}
	if resumeJSON := start.CustomParams[telephony.ParamResume]; resumeJSON != "" && m.info.Resume == nil {
		var fields records.Fields
		if err := json.Unmarshal([]byte(resumeJSON), &fields); err == nil {
			m.info.Resume = &fields
		}
	}

	m.dispatcher = m.deps.NewDispatcher(m.info)

	eng, err := m.deps.Dial(ctx, m.deps.BuildPrompt(m.info), m.dispatcher.Declarations())
	if err != nil {
		m.log.Error().Err(err).Msg("engine session open failed; terminating call")
		return nil, false
	}
	m.engine = eng
	m.setState(StateStreaming)
	m.log.Info().
		Str("streamSid", m.info.StreamSID).
		Str("caller", m.info.CallerNumber).
		Str("dialed", m.info.DialedNumber).
		Bool("resuming", m.info.Resume != nil).
		Msg("stream started")
	return eng.Events(), true
}

// relayInbound pushes one provider media frame to the engine:
// base64 μ-law 8 kHz in, 16 kHz linear PCM out.
func (m *Manager) relayInbound(payload string) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return
	}
	pcm := audio.Upsample2x(audio.DecodeMulaw(raw))
	if err := m.engine.SendAudio(audio.PCMToBytes(pcm)); err != nil {
		m.log.Debug().Err(err).Msg("engine audio send failed")
	}
}

// handleEngineEvent processes one engine event. It reports whether the
// session should terminate.
func (m *Manager) handleEngineEvent(ctx context.Context, ev engine.Event) bool {
	switch e := ev.(type) {
	case engine.AudioEvent:
		// 24 kHz linear PCM in, base64 μ-law 8 kHz out.
		pcm := audio.PCMFromBytes(e.PCM)
		if len(pcm) == 0 {
			return false
		}
		mulaw := audio.EncodeMulaw(audio.DecimateBy3(pcm))
		frame := telephony.OutboundMedia(m.info.StreamSID, base64.StdEncoding.EncodeToString(mulaw))
		if err := m.conn.WriteJSON(frame); err != nil {
			m.log.Debug().Err(err).Msg("outbound media write failed")
			return true
		}

	case engine.InterruptedEvent:
		_ = m.conn.WriteJSON(telephony.ClearFrame(m.info.StreamSID))

	case engine.TranscriptEvent:
		if e.Final {
			m.transcript.Append(e.Speaker, e.Text)
		}

	case engine.ToolCallEvent:
		m.dispatchToolCalls(ctx, e.Calls)

	case engine.ClosedEvent:
		if e.Err != nil {
			m.log.Error().Err(e.Err).Msg("engine session failed")
		}
		return true
	}
	return false
}

// dispatchToolCalls runs each call concurrently; audio keeps flowing in
// both directions while tools execute. Every call id gets exactly one
// result, failure included.
func (m *Manager) dispatchToolCalls(ctx context.Context, calls []engine.ToolCall) {
	for _, call := range calls {
		m.toolWG.Add(1)
		go func(call engine.ToolCall) {
			defer m.toolWG.Done()

			payload := m.dispatcher.Dispatch(ctx, call)

			if call.Name == "create_work_order" {
				if ok, _ := payload["success"].(bool); ok {
					m.workOrderCreated.Store(true)
					if m.info.CallerNumber != "" {
						m.deps.Recovery.MarkComplete(ctx, m.info.CallerNumber)
					}
				}
			}

			if err := m.engine.SendToolResult(call.ID, call.Name, payload); err != nil {
				m.log.Warn().Err(err).Str("tool", call.Name).Msg("tool result send failed")
			}
		}(call)
	}
}

// teardown closes the engine session synchronously before the session
// object is discarded, then evaluates recovery.
func (m *Manager) teardown() {
	m.setState(StateClosing)
	close(m.quit)

	if m.engine != nil {
		// Let in-flight tool results finish, then release the engine.
		m.toolWG.Wait()
		go func() {
			for range m.engine.Events() {
			}
		}()
		_ = m.engine.Close()
	}
	_ = m.conn.Close()

	if m.info.CallerNumber != "" && !m.workOrderCreated.Load() && !m.transcript.Empty() {
		// Recovery runs on its own context: the call is gone but the
		// summarization must still complete.
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		m.deps.Recovery.HandleDroppedCall(ctx, m.info.CallerNumber, m.transcript.Render())
	}

	m.setState(StateClosed)
	m.log.Info().Msg("session closed")
}
