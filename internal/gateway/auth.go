package gateway

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"sort"
	"strings"
)

// verifyWebhook checks the provider's request signature against the
// account auth token. Verification is skipped when no token is
// configured, which only happens in tests.
func (s *Server) verifyWebhook(r *http.Request) bool {
	token := s.cfg.Twilio.AuthToken
	if token == "" {
		return true
	}
	sig := r.Header.Get("X-Twilio-Signature")
	if sig == "" {
		return false
	}
	url := strings.TrimSuffix(s.cfg.Gateway.PublicURL, "/") + r.URL.RequestURI()
	return VerifySignature(token, url, r.PostForm, sig)
}

// VerifySignature validates a webhook signature: HMAC-SHA1 over the full
// request URL followed by each POST parameter name and value in sorted
// key order, base64 encoded.
func VerifySignature(authToken, url string, params map[string][]string, signature string) bool {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		for _, v := range params[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
