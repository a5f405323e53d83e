package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Landonswork/lando-backend-call-routing/internal/telephony"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	ActiveCalls int64  `json:"activeCalls"`
	UptimeSec   int64  `json:"uptimeSec"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:      "ok",
		Version:     s.version,
		ActiveCalls: s.activeCalls.Load(),
		UptimeSec:   int64(time.Since(s.startedAt).Seconds()),
	})
}

// handleVoiceWebhook answers the provider's inbound-call webhook with
// call-control markup that connects the call to the media stream. The
// caller and dialed numbers ride along as custom stream parameters so
// the start frame carries them.
func (s *Server) handleVoiceWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !s.verifyWebhook(r) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("voice webhook signature rejected")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	from := r.PostFormValue("From")
	to := r.PostFormValue("To")
	callSID := r.PostFormValue("CallSid")

	s.log.Info().
		Str("callSid", callSID).
		Str("from", from).
		Str("to", to).
		Msg("inbound call")

	twiml := telephony.StreamTwiML(MediaStreamURL(s.cfg.Gateway.PublicURL), map[string]string{
		telephony.ParamCaller: from,
		telephony.ParamDialed: to,
	})
	writeTwiML(w, twiml)
}

// handleSMSWebhook acknowledges inbound texts without replying. Texts
// are one-way outbound in this system; inbound ones only get logged.
func (s *Server) handleSMSWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !s.verifyWebhook(r) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("sms webhook signature rejected")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	s.log.Info().
		Str("from", r.PostFormValue("From")).
		Str("body", r.PostFormValue("Body")).
		Msg("inbound text")

	writeTwiML(w, `<?xml version="1.0" encoding="UTF-8"?><Response/>`)
}

func writeTwiML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}
