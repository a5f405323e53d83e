package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Landonswork/lando-backend-call-routing/internal/records"
)

// Summarizer extracts structured customer fields from a call transcript
// with a single non-streaming generateContent request.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (records.Fields, error)
}

// OneshotClient is a direct HTTP client for the engine's generateContent
// endpoint.
type OneshotClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOneshotClient creates a summarization client.
func NewOneshotClient(apiKey, model string) *OneshotClient {
	return &OneshotClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

const summaryPrompt = `Extract customer details from this phone call transcript.
Respond with a single JSON object using exactly these keys:
firstName, lastName, phone, email, address, city, state, zip, serviceType, description, preferredContact.
Use an empty string for anything not stated in the transcript. Do not guess or invent values.

Transcript:
`

// Summarize sends the transcript and parses the JSON reply. Fields absent
// from the transcript come back empty.
func (c *OneshotClient) Summarize(ctx context.Context, transcript string) (records.Fields, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": summaryPrompt + transcript}},
			},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"temperature":      0,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return records.Fields{}, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return records.Fields{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return records.Fields{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return records.Fields{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return records.Fields{}, fmt.Errorf("engine error (%d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return records.Fields{}, fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return records.Fields{}, fmt.Errorf("empty summarization response")
	}

	return ParseSummary(result.Candidates[0].Content.Parts[0].Text)
}

// ParseSummary decodes the model's JSON reply, tolerating markdown fences.
func ParseSummary(text string) (records.Fields, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var fields records.Fields
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &fields); err != nil {
		return records.Fields{}, fmt.Errorf("parsing summary JSON: %w", err)
	}
	return fields, nil
}
