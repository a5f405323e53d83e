// Package store persists partial customer records reconstructed from
// dropped calls, keyed by phone number. The interface is injected so call
// logic never touches a concrete backend.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/Landonswork/lando-backend-call-routing/internal/records"
)

// Status values for an incomplete record.
const (
	StatusIncomplete = "incomplete"
	StatusComplete   = "complete"
)

// Incomplete is a partial record awaiting completion or callback.
type Incomplete struct {
	CallerNumber string
	Fields       records.Fields
	Status       string
	UpdatedAt    time.Time
}

// IncompleteStore holds at most one partial record per phone number.
// Implementations must support concurrent access without corrupting
// entries for unrelated numbers.
type IncompleteStore interface {
	// Get returns the record for a number, or nil if none exists.
	Get(ctx context.Context, number string) (*Incomplete, error)
	// Put stores a record, overwriting any prior record for the number.
	Put(ctx context.Context, rec Incomplete) error
	// Delete removes the record for a number. Deleting a missing record
	// is not an error.
	Delete(ctx context.Context, number string) error
}

// MemoryIncompleteStore is a mutex-guarded map implementation, the
// default backend and the one tests use.
type MemoryIncompleteStore struct {
	mu   sync.RWMutex
	recs map[string]Incomplete
}

// NewMemoryIncompleteStore creates an empty in-memory store.
func NewMemoryIncompleteStore() *MemoryIncompleteStore {
	return &MemoryIncompleteStore{recs: make(map[string]Incomplete)}
}

// Get returns the record for a number, or nil.
func (m *MemoryIncompleteStore) Get(_ context.Context, number string) (*Incomplete, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.recs[number]; ok {
		return &rec, nil
	}
	return nil, nil
}

// Put stores a record, overwriting any prior one for the same number.
func (m *MemoryIncompleteStore) Put(_ context.Context, rec Incomplete) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	m.recs[rec.CallerNumber] = rec
	return nil
}

// Delete removes the record for a number.
func (m *MemoryIncompleteStore) Delete(_ context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, number)
	return nil
}
