package telephony

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// Client is a minimal REST client for the telephony provider, covering
// the three operations this system needs: send a text, place a call, and
// redirect a live call.
type Client struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
}

// ClientConfig configures the REST client.
type ClientConfig struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a provider REST client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("account SID is required")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("auth token is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// SendSMS sends a text message and returns the message SID.
func (c *Client) SendSMS(ctx context.Context, to, from, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	data := url.Values{}
	data.Set("To", to)
	data.Set("From", from)
	data.Set("Body", body)

	var msg struct {
		SID string `json:"sid"`
	}
	if err := c.post(ctx, endpoint, data, &msg); err != nil {
		return "", err
	}
	return msg.SID, nil
}

// PlaceCall starts an outbound call whose answered leg opens a media
// stream back to streamURL. params are passed through TwiML as custom
// stream parameters and surface in the start frame.
func (c *Client) PlaceCall(ctx context.Context, to, from, streamURL string, params map[string]string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.baseURL, c.accountSID)

	data := url.Values{}
	data.Set("To", to)
	data.Set("From", from)
	data.Set("Twiml", StreamTwiML(streamURL, params))

	var call struct {
		SID string `json:"sid"`
	}
	if err := c.post(ctx, endpoint, data, &call); err != nil {
		return "", err
	}
	return call.SID, nil
}

// RedirectCall updates a live call to dial a new destination, detaching
// it from the media stream.
func (c *Client) RedirectCall(ctx context.Context, callSID, to string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.baseURL, c.accountSID, callSID)

	data := url.Values{}
	data.Set("Twiml", DialTwiML(to))

	return c.post(ctx, endpoint, data, nil)
}

// APIError is an error response from the provider.
type APIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio error %d: %s", e.Code, e.Message)
}

func (c *Client) post(ctx context.Context, endpoint string, data url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err != nil {
			return fmt.Errorf("twilio error: %s", string(body))
		}
		return &apiErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// StreamTwiML builds the call-control markup that connects a call to the
// media stream endpoint, with optional custom parameters.
func StreamTwiML(streamURL string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response><Connect><Stream url="`)
	xml.EscapeText(&b, []byte(streamURL))
	b.WriteString(`">`)
	for name, value := range params {
		b.WriteString(`<Parameter name="`)
		xml.EscapeText(&b, []byte(name))
		b.WriteString(`" value="`)
		xml.EscapeText(&b, []byte(value))
		b.WriteString(`"/>`)
	}
	b.WriteString(`</Stream></Connect></Response>`)
	return b.String()
}

// DialTwiML builds the markup that transfers a live call to a number.
func DialTwiML(to string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response><Dial>`)
	xml.EscapeText(&b, []byte(to))
	b.WriteString(`</Dial></Response>`)
	return b.String()
}
