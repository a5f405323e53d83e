package recovery

import (
	"context"
	"time"

	"github.com/Landonswork/lando-backend-call-routing/internal/engine"
	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
	"github.com/Landonswork/lando-backend-call-routing/internal/records"
	"github.com/Landonswork/lando-backend-call-routing/internal/store"
)

// Caller places the outbound leg of a recovery callback.
type Caller interface {
	PlaceCallback(ctx context.Context, toNumber string, resume records.Fields) (callSID string, err error)
}

// Coordinator runs the dropped-call recovery path: summarize the
// transcript, persist a partial record, and arm a deferred callback.
type Coordinator struct {
	summarizer engine.Summarizer
	incomplete store.IncompleteStore
	callbacks  *CallbackRegistry
	caller     Caller
	log        *logging.Logger
}

// New creates a Coordinator.
func New(summarizer engine.Summarizer, incomplete store.IncompleteStore, callbacks *CallbackRegistry, caller Caller, log *logging.Logger) *Coordinator {
	return &Coordinator{
		summarizer: summarizer,
		incomplete: incomplete,
		callbacks:  callbacks,
		caller:     caller,
		log:        log.Sub("recovery"),
	}
}

// HandleDroppedCall runs when a session closes with conversation on the
// transcript but no completed work order. A failure anywhere on this
// path logs and stops: an unreliable partial record must not trigger an
// unsupervised outbound call.
func (c *Coordinator) HandleDroppedCall(ctx context.Context, callerNumber, transcript string) {
	log := c.log.WithCall(callerNumber)

	fields, err := c.summarizer.Summarize(ctx, transcript)
	if err != nil {
		log.Error().Err(err).Msg("transcript summarization failed; callback not armed")
		return
	}
	if fields.Phone == "" {
		fields.Phone = callerNumber
	}

	rec := store.Incomplete{
		CallerNumber: callerNumber,
		Fields:       fields,
		Status:       store.StatusIncomplete,
	}
	if err := c.incomplete.Put(ctx, rec); err != nil {
		log.Error().Err(err).Msg("persisting incomplete record failed; callback not armed")
		return
	}

	c.callbacks.Arm(callerNumber, func() { c.fireCallback(callerNumber) })
	log.Info().Msg("incomplete record saved, callback armed")
}

// CancelPending disarms a pending callback for a number. Inbound sessions
// call this first so a customer who calls back is never called twice.
func (c *Coordinator) CancelPending(number string) bool {
	cancelled := c.callbacks.Cancel(number)
	if cancelled {
		c.log.Info().Str("number", number).Msg("pending callback cancelled by inbound call")
	}
	return cancelled
}

// ResumeFields returns previously captured fields for a caller with an
// incomplete record, or nil.
func (c *Coordinator) ResumeFields(ctx context.Context, number string) *records.Fields {
	rec, err := c.incomplete.Get(ctx, number)
	if err != nil {
		c.log.Error().Err(err).Str("number", number).Msg("incomplete record fetch failed")
		return nil
	}
	if rec == nil || rec.Status != store.StatusIncomplete {
		return nil
	}
	fields := rec.Fields
	return &fields
}

// MarkComplete clears a caller's incomplete record once a work order has
// been filed.
func (c *Coordinator) MarkComplete(ctx context.Context, number string) {
	if err := c.incomplete.Delete(ctx, number); err != nil {
		c.log.Error().Err(err).Str("number", number).Msg("clearing incomplete record failed")
	}
}

// fireCallback runs when the deferred timer expires. The record is
// re-fetched: if the customer already finished unaided, nothing happens.
func (c *Coordinator) fireCallback(number string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := c.log.WithCall(number)

	rec, err := c.incomplete.Get(ctx, number)
	if err != nil {
		log.Error().Err(err).Msg("callback fired but record fetch failed")
		return
	}
	if rec == nil || rec.Status != store.StatusIncomplete {
		log.Info().Msg("callback fired but record is complete; skipping")
		return
	}

	callSID, err := c.caller.PlaceCallback(ctx, number, rec.Fields)
	if err != nil {
		log.Error().Err(err).Msg("placing recovery callback failed")
		return
	}
	log.Info().Str("outboundCallSid", callSID).Msg("recovery callback placed")
}
