package telephony

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		AccountSID: "AC123",
		AuthToken:  "token",
		BaseURL:    srv.URL,
	})
	require.NoError(t, err)
	return c, srv
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientConfig{AuthToken: "t"})
	assert.Error(t, err)
	_, err = NewClient(ClientConfig{AccountSID: "AC123"})
	assert.Error(t, err)
}

func TestSendSMS(t *testing.T) {
	var gotPath string
	var gotForm url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sid": "SM999"}`))
	})

	sid, err := c.SendSMS(context.Background(), "+15551234567", "+15557654321", "your tracking code is WO-ABC12345")
	require.NoError(t, err)
	assert.Equal(t, "SM999", sid)
	assert.Equal(t, "/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "+15551234567", gotForm.Get("To"))
	assert.Equal(t, "+15557654321", gotForm.Get("From"))
}

func TestPlaceCall_SendsStreamTwiML(t *testing.T) {
	var gotTwiml string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTwiml = r.PostForm.Get("Twiml")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sid": "CA777"}`))
	})

	sid, err := c.PlaceCall(context.Background(), "+15551234567", "+15557654321",
		"wss://calls.example.com/twilio/media", map[string]string{"caller": "+15551234567"})
	require.NoError(t, err)
	assert.Equal(t, "CA777", sid)
	assert.Contains(t, gotTwiml, `<Stream url="wss://calls.example.com/twilio/media">`)
	assert.Contains(t, gotTwiml, `<Parameter name="caller"`)
}

func TestRedirectCall(t *testing.T) {
	var gotPath, gotTwiml string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotTwiml = r.PostForm.Get("Twiml")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sid": "CA777"}`))
	})

	err := c.RedirectCall(context.Background(), "CA777", "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, "/Accounts/AC123/Calls/CA777.json", gotPath)
	assert.Contains(t, gotTwiml, "<Dial>+15550001111</Dial>")
}

func TestClient_APIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": 21211, "message": "invalid 'To' phone number", "status": 400}`))
	})

	_, err := c.SendSMS(context.Background(), "bogus", "+15557654321", "hi")
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 21211, apiErr.Code)
	assert.Contains(t, apiErr.Error(), "invalid 'To' phone number")
}
