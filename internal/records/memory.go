package records

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryService is an in-memory records service for tests and local runs
// without spreadsheet credentials.
type MemoryService struct {
	mu      sync.RWMutex
	byCode  map[string]*Record
	ordered []string

	// CreateErr, when set, makes Create fail. Used to exercise the
	// dispatcher's failure policy.
	CreateErr error
}

// NewMemoryService creates an empty in-memory records service.
func NewMemoryService() *MemoryService {
	return &MemoryService{byCode: make(map[string]*Record)}
}

// Create stores the record and returns a tracking code.
func (m *MemoryService) Create(_ context.Context, fields Fields) (CreateResult, error) {
	if m.CreateErr != nil {
		return CreateResult{}, m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	code := "WO-" + strings.ToUpper(uuid.NewString()[:8])
	m.byCode[code] = &Record{
		TrackingCode: code,
		Fields:       fields,
		Status:       "open",
		CreatedAt:    time.Now(),
	}
	m.ordered = append(m.ordered, code)
	return CreateResult{TrackingCode: code, UploadLink: "https://example.invalid/upload/" + code}, nil
}

// Lookup returns the first stored record matching the query.
func (m *MemoryService) Lookup(_ context.Context, q LookupQuery) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, code := range m.ordered {
		if matches(m.byCode[code], q) {
			rec := *m.byCode[code]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// Len reports how many records have been created.
func (m *MemoryService) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byCode)
}
