package session

import (
	"fmt"
	"strings"

	"github.com/Landonswork/lando-backend-call-routing/internal/records"
)

// LineKind distinguishes which number the customer dialed.
type LineKind int

const (
	LineMain LineKind = iota
	LineTechnician
)

// HoursStatus is whether the call arrived inside the business-hours window.
type HoursStatus int

const (
	HoursOpen HoursStatus = iota
	HoursClosed
)

const defaultPersona = `You are the friendly phone agent for a local home services company.
Answer calls, gather the customer's contact details and a description of their problem,
and create a work order once you have what you need. Keep replies short and natural;
you are speaking out loud. Never invent details the customer did not give you.`

const (
	techDuringHours = "This call came in on a technician line during business hours. If the caller is asking about an existing job, offer to transfer them to the on-call technician with route_to_technician."
	techAfterHours  = "This call came in on a technician line after hours. Do not transfer the call; let the caller know a technician will follow up next business day, and take down their details instead."
)

// PromptSpec is everything that varies per call when assembling the
// system prompt.
type PromptSpec struct {
	Persona string // empty uses the built-in script
	Line    LineKind
	Hours   HoursStatus
	Resume  *records.Fields // fields already known from a prior dropped call
}

// BuildPrompt assembles the per-call system prompt: persona, a routing
// annotation, and a resume annotation when a prior incomplete record
// exists. Output is deterministic for a given spec so routing behavior
// can be tested at this boundary.
func BuildPrompt(spec PromptSpec) string {
	var b strings.Builder

	persona := spec.Persona
	if persona == "" {
		persona = defaultPersona
	}
	b.WriteString(persona)
	b.WriteString("\n\n")

	switch spec.Line {
	case LineTechnician:
		if spec.Hours == HoursOpen {
			b.WriteString(techDuringHours)
		} else {
			b.WriteString(techAfterHours)
		}
	default:
		b.WriteString("This call came in on the main line.")
	}
	b.WriteString("\n")

	if spec.Resume != nil {
		b.WriteString("\nThis customer called earlier and the call dropped before their work order was finished. You already know the following; confirm rather than re-ask:\n")
		writeKnown(&b, "First name", spec.Resume.FirstName)
		writeKnown(&b, "Last name", spec.Resume.LastName)
		writeKnown(&b, "Phone", spec.Resume.Phone)
		writeKnown(&b, "Email", spec.Resume.Email)
		writeKnown(&b, "Address", spec.Resume.Address)
		writeKnown(&b, "City", spec.Resume.City)
		writeKnown(&b, "State", spec.Resume.State)
		writeKnown(&b, "Service type", spec.Resume.ServiceType)
		writeKnown(&b, "Problem", spec.Resume.Description)
		b.WriteString("Pick up where the last call left off and finish creating the work order.\n")
	}

	return b.String()
}

func writeKnown(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, value)
	}
}
