package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/Landonswork/lando-backend-call-routing/internal/records"
)

// Messenger sends texts on the provider's messaging boundary.
type Messenger interface {
	SendSMS(ctx context.Context, to, from, body string) (string, error)
}

// Redirector moves a live call to another destination.
type Redirector interface {
	RedirectCall(ctx context.Context, callSID, to string) error
}

// CreateWorkOrder files a new job record. Creation is serialized with
// itself: the agent occasionally retries the call mid-flight and two
// interleaved creates would file duplicate orders.
type CreateWorkOrder struct {
	Records records.Service

	mu sync.Mutex
}

func (t *CreateWorkOrder) Name() string { return "create_work_order" }

func (t *CreateWorkOrder) Description() string {
	return "Create a work order for the customer once you have their contact details and a description of the problem. Returns a tracking code and a photo upload link to share with them."
}

func (t *CreateWorkOrder) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"firstName":        stringProp("Customer first name"),
		"lastName":         stringProp("Customer last name"),
		"phone":            stringProp("Customer phone number"),
		"email":            stringProp("Customer email address"),
		"address":          stringProp("Street address of the job site"),
		"city":             stringProp("City"),
		"state":            stringProp("Two-letter state code"),
		"zip":              stringProp("Zip code"),
		"serviceType":      stringProp("Type of service requested"),
		"description":      stringProp("Description of the problem"),
		"preferredContact": stringProp("Preferred contact method: call, text, or email"),
	}, "firstName", "lastName", "phone", "description")
}

func (t *CreateWorkOrder) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fields := records.Fields{
		FirstName:        stringArg(args, "firstName"),
		LastName:         stringArg(args, "lastName"),
		Phone:            stringArg(args, "phone"),
		Email:            stringArg(args, "email"),
		Address:          stringArg(args, "address"),
		City:             stringArg(args, "city"),
		State:            stringArg(args, "state"),
		Zip:              stringArg(args, "zip"),
		ServiceType:      stringArg(args, "serviceType"),
		Description:      stringArg(args, "description"),
		PreferredContact: stringArg(args, "preferredContact"),
	}

	result, err := t.Records.Create(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("creating work order: %w", err)
	}
	return map[string]any{
		"success":      true,
		"trackingCode": result.TrackingCode,
		"uploadLink":   result.UploadLink,
	}, nil
}

// SendSMS texts the customer, typically the upload link or tracking code.
type SendSMS struct {
	Messenger Messenger
	From      string
}

func (t *SendSMS) Name() string { return "send_sms" }

func (t *SendSMS) Description() string {
	return "Send a text message to a phone number. Use this to text the customer their tracking code or photo upload link."
}

func (t *SendSMS) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"to":   stringProp("Destination phone number"),
		"body": stringProp("Message text"),
	}, "to", "body")
}

func (t *SendSMS) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	to := stringArg(args, "to")
	body := stringArg(args, "body")
	if to == "" || body == "" {
		return nil, fmt.Errorf("both to and body are required")
	}

	sid, err := t.Messenger.SendSMS(ctx, to, t.From, body)
	if err != nil {
		return nil, fmt.Errorf("sending text: %w", err)
	}
	return map[string]any{"success": true, "messageSid": sid}, nil
}

// ZipForAddress resolves a zip code for a street address. Placeholder
// resolution: without a geocoding collaborator it echoes a deterministic
// sentinel the agent reads back for confirmation.
type ZipForAddress struct{}

func (ZipForAddress) Name() string { return "get_zipcode_for_address" }

func (ZipForAddress) Description() string {
	return "Look up the zip code for a street address when the customer doesn't know it."
}

func (ZipForAddress) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"street": stringProp("Street address"),
		"city":   stringProp("City"),
		"state":  stringProp("Two-letter state code"),
	}, "street", "city", "state")
}

func (ZipForAddress) Execute(_ context.Context, args map[string]any) (map[string]any, error) {
	if stringArg(args, "street") == "" || stringArg(args, "city") == "" {
		return nil, fmt.Errorf("street and city are required")
	}
	return map[string]any{
		"success": true,
		"zip":     "00000",
		"note":    "zip lookup unavailable; confirm the zip code with the customer",
	}, nil
}

// LookupWorkOrder finds an existing record by phone, email, or last name.
type LookupWorkOrder struct {
	Records records.Service
}

func (t *LookupWorkOrder) Name() string { return "lookup_work_order" }

func (t *LookupWorkOrder) Description() string {
	return "Look up an existing work order by the customer's phone number, email, or last name."
}

func (t *LookupWorkOrder) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"phone":    stringProp("Customer phone number"),
		"email":    stringProp("Customer email address"),
		"lastName": stringProp("Customer last name"),
	})
}

func (t *LookupWorkOrder) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	q := records.LookupQuery{
		Phone:    stringArg(args, "phone"),
		Email:    stringArg(args, "email"),
		LastName: stringArg(args, "lastName"),
	}
	if q.Phone == "" && q.Email == "" && q.LastName == "" {
		return nil, fmt.Errorf("provide a phone, email, or last name to search by")
	}

	rec, err := t.Records.Lookup(ctx, q)
	if err == records.ErrNotFound {
		return map[string]any{"success": true, "found": false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up work order: %w", err)
	}
	return map[string]any{
		"success":      true,
		"found":        true,
		"trackingCode": rec.TrackingCode,
		"status":       rec.Status,
		"firstName":    rec.Fields.FirstName,
		"lastName":     rec.Fields.LastName,
		"serviceType":  rec.Fields.ServiceType,
		"description":  rec.Fields.Description,
	}, nil
}

// RouteToTechnician redirects the live call to the on-call technician.
// Only valid inside an active call session: it needs the session's call
// SID, and fails cleanly when there isn't one.
type RouteToTechnician struct {
	Redirector  Redirector
	Destination string
	CallSID     string
}

func (t *RouteToTechnician) Name() string { return "route_to_technician" }

func (t *RouteToTechnician) Description() string {
	return "Transfer this call to the on-call technician. Only use during business hours for existing-job questions a technician must answer."
}

func (t *RouteToTechnician) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"reason": stringProp("Short reason for the transfer"),
	})
}

func (t *RouteToTechnician) Execute(ctx context.Context, _ map[string]any) (map[string]any, error) {
	if t.CallSID == "" {
		return nil, fmt.Errorf("no active call to transfer")
	}
	if t.Destination == "" {
		return nil, fmt.Errorf("no technician number configured")
	}
	if err := t.Redirector.RedirectCall(ctx, t.CallSID, t.Destination); err != nil {
		return nil, fmt.Errorf("transferring call: %w", err)
	}
	return map[string]any{"success": true, "transferredTo": t.Destination}, nil
}
