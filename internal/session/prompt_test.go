package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Landonswork/lando-backend-call-routing/internal/records"
)

func TestBuildPrompt_MainLine(t *testing.T) {
	got := BuildPrompt(PromptSpec{Line: LineMain, Hours: HoursOpen})
	assert.Contains(t, got, "main line")
	assert.NotContains(t, got, "technician line")
	assert.NotContains(t, got, "called earlier")
}

func TestBuildPrompt_TechnicianLineDuringHours(t *testing.T) {
	got := BuildPrompt(PromptSpec{Line: LineTechnician, Hours: HoursOpen})
	assert.Contains(t, got, "technician line during business hours")
	assert.Contains(t, got, "route_to_technician")
}

func TestBuildPrompt_TechnicianLineAfterHours(t *testing.T) {
	// Tuesday evening on a technician line: no transfer, take details.
	got := BuildPrompt(PromptSpec{Line: LineTechnician, Hours: HoursClosed})
	assert.Contains(t, got, "after hours")
	assert.Contains(t, got, "Do not transfer")
	assert.NotContains(t, got, "route_to_technician")
}

func TestBuildPrompt_CustomPersonaReplacesDefault(t *testing.T) {
	got := BuildPrompt(PromptSpec{Persona: "You answer for Acme Plumbing.", Line: LineMain})
	assert.Contains(t, got, "Acme Plumbing")
	assert.NotContains(t, got, defaultPersona)
}

func TestBuildPrompt_ResumeListsKnownFieldsOnly(t *testing.T) {
	got := BuildPrompt(PromptSpec{
		Line:  LineMain,
		Hours: HoursOpen,
		Resume: &records.Fields{
			FirstName:   "Dana",
			Phone:       "+15551234567",
			Description: "leaking water heater",
		},
	})
	assert.Contains(t, got, "call dropped")
	assert.Contains(t, got, "confirm rather than re-ask")
	assert.Contains(t, got, "First name: Dana")
	assert.Contains(t, got, "Problem: leaking water heater")
	// Unknown fields are omitted entirely rather than listed as blank.
	assert.NotContains(t, got, "Email:")
	assert.NotContains(t, got, "City:")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	spec := PromptSpec{Line: LineTechnician, Hours: HoursClosed, Resume: &records.Fields{FirstName: "Dana"}}
	assert.Equal(t, BuildPrompt(spec), BuildPrompt(spec))
}
