package telephony

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStreamMessage_Start(t *testing.T) {
	raw := `{
		"event": "start",
		"streamSid": "MZxxxx",
		"start": {
			"streamSid": "MZxxxx",
			"accountSid": "ACxxxx",
			"callSid": "CAxxxx",
			"tracks": ["inbound"],
			"mediaFormat": {"encoding": "audio/x-mulaw", "sampleRate": 8000, "channels": 1},
			"customParameters": {"caller": "+15551234567", "dialed": "+15557654321"}
		}
	}`
	msg, err := ParseStreamMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "start", msg.Event)
	require.NotNil(t, msg.Start)
	assert.Equal(t, "CAxxxx", msg.Start.CallSID)
	assert.Equal(t, 8000, msg.Start.MediaFormat.SampleRate)
	assert.Equal(t, "+15551234567", msg.Start.CustomParams[ParamCaller])
	assert.Equal(t, "+15557654321", msg.Start.CustomParams[ParamDialed])
}

func TestParseStreamMessage_Media(t *testing.T) {
	raw := `{"event":"media","streamSid":"MZxxxx","media":{"track":"inbound","chunk":"3","timestamp":"60","payload":"//9/gA=="}}`
	msg, err := ParseStreamMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "media", msg.Event)
	require.NotNil(t, msg.Media)
	assert.Equal(t, "//9/gA==", msg.Media.Payload)
}

func TestParseStreamMessage_Malformed(t *testing.T) {
	_, err := ParseStreamMessage([]byte(`{"event": `))
	assert.Error(t, err)
}

func TestOutboundMedia_Shape(t *testing.T) {
	frame := OutboundMedia("MZ1", "cGF5bG9hZA==")
	data, err := json.Marshal(frame)
	require.NoError(t, err)

	var decoded struct {
		Event     string `json:"event"`
		StreamSID string `json:"streamSid"`
		Media     struct {
			Payload string `json:"payload"`
		} `json:"media"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "media", decoded.Event)
	assert.Equal(t, "MZ1", decoded.StreamSID)
	assert.Equal(t, "cGF5bG9hZA==", decoded.Media.Payload)
}

func TestClearFrame_Shape(t *testing.T) {
	frame := ClearFrame("MZ1")
	assert.Equal(t, "clear", frame["event"])
	assert.Equal(t, "MZ1", frame["streamSid"])
}

// --- TwiML builders ---

func TestStreamTwiML_WithParameters(t *testing.T) {
	got := StreamTwiML("wss://calls.example.com/twilio/media", map[string]string{
		"caller": "+15551234567",
	})
	assert.Contains(t, got, `<Connect><Stream url="wss://calls.example.com/twilio/media">`)
	assert.Contains(t, got, `<Parameter name="caller" value="+15551234567"/>`)
	assert.Contains(t, got, `</Stream></Connect></Response>`)
}

func TestStreamTwiML_EscapesURL(t *testing.T) {
	got := StreamTwiML("wss://x.example.com/media?a=1&b=2", nil)
	assert.Contains(t, got, "a=1&amp;b=2")
}

func TestDialTwiML(t *testing.T) {
	got := DialTwiML("+15559998888")
	assert.Contains(t, got, "<Dial>+15559998888</Dial>")
}
