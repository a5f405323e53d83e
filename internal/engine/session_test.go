package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
)

// fakeEngine is a scripted engine endpoint: it acknowledges setup and
// then plays back the given frames before waiting for client input.
type fakeEngine struct {
	t        *testing.T
	script   []string
	upgrader websocket.Upgrader

	gotSetup chan json.RawMessage
	gotFrame chan json.RawMessage
}

func newFakeEngine(t *testing.T, script ...string) *fakeEngine {
	return &fakeEngine{
		t:        t,
		script:   script,
		gotSetup: make(chan json.RawMessage, 1),
		gotFrame: make(chan json.RawMessage, 16),
	}
}

func (f *fakeEngine) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	require.NoError(f.t, err)
	defer conn.Close()

	_, setup, err := conn.ReadMessage()
	require.NoError(f.t, err)
	f.gotSetup <- setup

	require.NoError(f.t, conn.WriteMessage(websocket.TextMessage, []byte(`{"setupComplete": {}}`)))
	for _, frame := range f.script {
		require.NoError(f.t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		f.gotFrame <- data
	}
}

func dialFake(t *testing.T, f *fakeEngine) *Session {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)

	d := NewDialer(DialerConfig{
		APIKey:   "test-key",
		Model:    "test-model",
		Voice:    "Puck",
		Endpoint: "ws" + strings.TrimPrefix(srv.URL, "http"),
	}, logging.New(nil, "silent"))

	s, err := d.Open(context.Background(), "be helpful", []FunctionDecl{{Name: "send_sms"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		require.True(t, ok, "event channel closed early")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestOpen_SendsSetupWithPromptAndTools(t *testing.T) {
	f := newFakeEngine(t)
	dialFake(t, f)

	setup := <-f.gotSetup
	s := string(setup)
	assert.Contains(t, s, `"models/test-model"`)
	assert.Contains(t, s, "be helpful")
	assert.Contains(t, s, `"send_sms"`)
	assert.Contains(t, s, `"AUDIO"`)
}

func TestSession_DeliversAudioAndTranscripts(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4})
	f := newFakeEngine(t,
		`{"serverContent": {"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "`+audio+`"}}]}}}`,
		`{"serverContent": {"inputTranscription": {"text": "my sink "}}}`,
		`{"serverContent": {"inputTranscription": {"text": "is clogged"}}}`,
		`{"serverContent": {"turnComplete": true}}`,
	)
	s := dialFake(t, f)

	ev := nextEvent(t, s)
	ae, ok := ev.(AudioEvent)
	require.True(t, ok, "expected AudioEvent, got %T", ev)
	assert.Equal(t, []byte{1, 2, 3, 4}, ae.PCM)

	// Partial fragments arrive as they come in.
	te := nextEvent(t, s).(TranscriptEvent)
	assert.False(t, te.Final)
	assert.Equal(t, "my sink ", te.Text)
	te = nextEvent(t, s).(TranscriptEvent)
	assert.False(t, te.Final)

	// The turn boundary flushes the accumulated text as one final entry.
	te = nextEvent(t, s).(TranscriptEvent)
	assert.True(t, te.Final)
	assert.Equal(t, SpeakerCustomer, te.Speaker)
	assert.Equal(t, "my sink is clogged", te.Text)
}

func TestSession_DeliversToolCallsAndSendsResults(t *testing.T) {
	f := newFakeEngine(t,
		`{"toolCall": {"functionCalls": [{"id": "fc-1", "name": "send_sms", "args": {"to": "+15551234567"}}]}}`,
	)
	s := dialFake(t, f)

	ev := nextEvent(t, s)
	tc, ok := ev.(ToolCallEvent)
	require.True(t, ok, "expected ToolCallEvent, got %T", ev)
	require.Len(t, tc.Calls, 1)
	assert.Equal(t, "fc-1", tc.Calls[0].ID)
	assert.Equal(t, "+15551234567", tc.Calls[0].Args["to"])

	require.NoError(t, s.SendToolResult("fc-1", "send_sms", map[string]any{"success": true}))

	select {
	case frame := <-f.gotFrame:
		assert.Contains(t, string(frame), `"fc-1"`)
		assert.Contains(t, string(frame), `"toolResponse"`)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tool response frame")
	}
}

func TestSession_SendAudioEncodesBase64Chunk(t *testing.T) {
	f := newFakeEngine(t)
	s := dialFake(t, f)

	require.NoError(t, s.SendAudio([]byte{0x10, 0x20}))

	select {
	case frame := <-f.gotFrame:
		var msg struct {
			RealtimeInput struct {
				MediaChunks []struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"mediaChunks"`
			} `json:"realtimeInput"`
		}
		require.NoError(t, json.Unmarshal(frame, &msg))
		require.Len(t, msg.RealtimeInput.MediaChunks, 1)
		assert.Equal(t, "audio/pcm;rate=16000", msg.RealtimeInput.MediaChunks[0].MimeType)
		raw, err := base64.StdEncoding.DecodeString(msg.RealtimeInput.MediaChunks[0].Data)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x10, 0x20}, raw)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for audio frame")
	}
}

func TestSession_CloseEndsEventChannel(t *testing.T) {
	f := newFakeEngine(t)
	s := dialFake(t, f)

	require.NoError(t, s.Close())

	// Drain until the channel closes; the last event is a ClosedEvent.
	var last Event
	for ev := range s.Events() {
		last = ev
	}
	_, ok := last.(ClosedEvent)
	assert.True(t, ok, "expected final ClosedEvent, got %T", last)
}

func TestSession_SendAfterCloseFails(t *testing.T) {
	f := newFakeEngine(t)
	s := dialFake(t, f)

	require.NoError(t, s.Close())
	assert.Error(t, s.SendAudio([]byte{1, 2}))
}
