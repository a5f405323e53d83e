package records

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryService_CreateAssignsTrackingCode(t *testing.T) {
	svc := NewMemoryService()

	res, err := svc.Create(context.Background(), Fields{
		FirstName:   "Dana",
		LastName:    "Reeves",
		Phone:       "+15551234567",
		Description: "water heater leaking",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.TrackingCode, "WO-"))
	assert.Len(t, res.TrackingCode, 11)
	assert.Contains(t, res.UploadLink, res.TrackingCode)
	assert.Equal(t, 1, svc.Len())
}

func TestMemoryService_LookupByPhone(t *testing.T) {
	svc := NewMemoryService()
	_, err := svc.Create(context.Background(), Fields{LastName: "Reeves", Phone: "+15551234567"})
	require.NoError(t, err)

	// Formatting differences don't matter; only digits are compared.
	rec, err := svc.Lookup(context.Background(), LookupQuery{Phone: "+1 (555) 123-4567"})
	require.NoError(t, err)
	assert.Equal(t, "Reeves", rec.Fields.LastName)
	assert.Equal(t, "open", rec.Status)
}

func TestMemoryService_LookupByLastNameCaseInsensitive(t *testing.T) {
	svc := NewMemoryService()
	_, err := svc.Create(context.Background(), Fields{LastName: "Reeves"})
	require.NoError(t, err)

	rec, err := svc.Lookup(context.Background(), LookupQuery{LastName: "reeves"})
	require.NoError(t, err)
	assert.Equal(t, "Reeves", rec.Fields.LastName)
}

func TestMemoryService_LookupNotFound(t *testing.T) {
	svc := NewMemoryService()
	_, err := svc.Lookup(context.Background(), LookupQuery{Phone: "+15550000000"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryService_LookupReturnsFirstMatch(t *testing.T) {
	svc := NewMemoryService()
	first, err := svc.Create(context.Background(), Fields{LastName: "Reeves", Description: "first job"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), Fields{LastName: "Reeves", Description: "second job"})
	require.NoError(t, err)

	rec, err := svc.Lookup(context.Background(), LookupQuery{LastName: "Reeves"})
	require.NoError(t, err)
	assert.Equal(t, first.TrackingCode, rec.TrackingCode)
}

func TestMemoryService_CreateErrInjection(t *testing.T) {
	svc := NewMemoryService()
	svc.CreateErr = assert.AnError
	_, err := svc.Create(context.Background(), Fields{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, svc.Len())
}
