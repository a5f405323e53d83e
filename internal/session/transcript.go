package session

import (
	"strings"
	"sync"
)

// Transcript is the append-only conversation record for one call
// session, discarded with the session once recovery (if any) completes.
type Transcript struct {
	mu      sync.Mutex
	entries []TranscriptEntry
}

// TranscriptEntry is one turn of recognized speech.
type TranscriptEntry struct {
	Speaker string // "customer" | "agent"
	Text    string
}

// Append records one completed turn.
func (t *Transcript) Append(speaker, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TranscriptEntry{Speaker: speaker, Text: text})
}

// Empty reports whether anything was transcribed.
func (t *Transcript) Empty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries) == 0
}

// Render flattens the transcript into the "speaker: text" form the
// summarizer consumes.
func (t *Transcript) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	for _, e := range t.entries {
		b.WriteString(e.Speaker)
		b.WriteString(": ")
		b.WriteString(e.Text)
		b.WriteString("\n")
	}
	return b.String()
}
