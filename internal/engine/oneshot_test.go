package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummary_PlainJSON(t *testing.T) {
	fields, err := ParseSummary(`{"firstName": "Dana", "description": "leaking water heater"}`)
	require.NoError(t, err)
	assert.Equal(t, "Dana", fields.FirstName)
	assert.Equal(t, "leaking water heater", fields.Description)
	assert.Equal(t, "", fields.Email)
}

func TestParseSummary_MarkdownFenced(t *testing.T) {
	fields, err := ParseSummary("```json\n{\"lastName\": \"Reeves\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Reeves", fields.LastName)
}

func TestParseSummary_Invalid(t *testing.T) {
	_, err := ParseSummary("the customer seemed upset")
	assert.Error(t, err)
}

func oneshotResponse(text string) string {
	body := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func TestSummarize_SendsTranscriptAndParsesReply(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(oneshotResponse(`{"firstName": "Dana", "phone": "+15551234567"}`)))
	}))
	defer srv.Close()

	c := NewOneshotClient("key", "test-model")
	c.baseURL = srv.URL

	fields, err := c.Summarize(context.Background(), "customer: hi, this is Dana\n")
	require.NoError(t, err)
	assert.Equal(t, "Dana", fields.FirstName)
	assert.Equal(t, "+15551234567", fields.Phone)

	// The request carries the transcript and asks for strict JSON back.
	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	text := parts[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "this is Dana")
	genCfg := gotBody["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
}

func TestSummarize_EngineError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOneshotClient("key", "test-model")
	c.baseURL = srv.URL

	_, err := c.Summarize(context.Background(), "customer: hello\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSummarize_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	c := NewOneshotClient("key", "test-model")
	c.baseURL = srv.URL

	_, err := c.Summarize(context.Background(), "customer: hello\n")
	assert.Error(t, err)
}
