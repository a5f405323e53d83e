// Package records defines the job-record service boundary. Records live
// in an external spreadsheet; this package owns only the interface and a
// Sheets-backed implementation of it.
package records

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Lookup when no record matches the query.
var ErrNotFound = errors.New("record not found")

// Fields is the customer/service data captured for one work order.
// Empty strings mean the field is unknown, never guessed.
type Fields struct {
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	Zip              string `json:"zip,omitempty"`
	ServiceType      string `json:"serviceType,omitempty"`
	Description      string `json:"description,omitempty"`
	PreferredContact string `json:"preferredContact,omitempty"`
}

// Record is a stored work order.
type Record struct {
	TrackingCode string
	Fields       Fields
	Status       string // "open" | "incomplete" | "complete"
	CreatedAt    time.Time
}

// CreateResult is what a successful record creation hands back to the
// caller (and, through the tool result, to the customer).
type CreateResult struct {
	TrackingCode string
	UploadLink   string
}

// LookupQuery matches a record by any one of phone, email, or last name.
type LookupQuery struct {
	Phone    string
	Email    string
	LastName string
}

// Service is the records collaborator used identically by the voice and
// text channels.
type Service interface {
	Create(ctx context.Context, fields Fields) (CreateResult, error)
	Lookup(ctx context.Context, q LookupQuery) (*Record, error)
}
