package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Landonswork/lando-backend-call-routing/internal/records"
	"github.com/Landonswork/lando-backend-call-routing/internal/telephony"
)

// CallPlacer is the provider operation the recovery caller needs.
// *telephony.Client satisfies it.
type CallPlacer interface {
	PlaceCall(ctx context.Context, to, from, streamURL string, params map[string]string) (string, error)
}

// RecoveryCaller places the outbound leg of a recovery callback. The
// answered call opens a media stream whose start frame carries the
// customer's number and resume context as custom parameters, so the
// session picks up where the dropped call left off.
type RecoveryCaller struct {
	placer    CallPlacer
	from      string
	streamURL string
}

// NewRecoveryCaller creates a RecoveryCaller dialing out from the main
// line to the media stream endpoint derived from publicURL.
func NewRecoveryCaller(placer CallPlacer, from, publicURL string) *RecoveryCaller {
	return &RecoveryCaller{
		placer:    placer,
		from:      from,
		streamURL: MediaStreamURL(publicURL),
	}
}

// PlaceCallback dials the customer back with their partial record as
// stream resume context.
func (c *RecoveryCaller) PlaceCallback(ctx context.Context, toNumber string, resume records.Fields) (string, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return "", fmt.Errorf("encoding resume context: %w", err)
	}
	params := map[string]string{
		telephony.ParamCaller: toNumber,
		telephony.ParamResume: string(resumeJSON),
	}
	return c.placer.PlaceCall(ctx, toNumber, c.from, c.streamURL, params)
}
