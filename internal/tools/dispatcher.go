package tools

import (
	"context"
	"fmt"

	"github.com/Landonswork/lando-backend-call-routing/internal/engine"
	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
)

// Dispatcher executes tool calls on behalf of one call session. It never
// lets a collaborator failure escape: every call produces a result
// payload, success or not, so the engine can keep talking.
type Dispatcher struct {
	reg *Registry
	log *logging.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(reg *Registry, log *logging.Logger) *Dispatcher {
	return &Dispatcher{reg: reg, log: log.Sub("tools")}
}

// Declarations exposes the registry's engine declarations.
func (d *Dispatcher) Declarations() []engine.FunctionDecl {
	return d.reg.Declarations()
}

// Dispatch runs one tool call and returns its result payload. The
// dispatcher does not retry; the engine decides whether to try again.
func (d *Dispatcher) Dispatch(ctx context.Context, call engine.ToolCall) (payload map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("tool", call.Name).Any("panic", r).Msg("tool panicked")
			payload = errorPayload(fmt.Sprintf("internal error running %s", call.Name))
		}
	}()

	tool, ok := d.reg.Get(call.Name)
	if !ok {
		d.log.Warn().Str("tool", call.Name).Msg("unknown tool requested")
		return errorPayload(fmt.Sprintf("unknown tool %q", call.Name))
	}

	result, err := tool.Execute(ctx, call.Args)
	if err != nil {
		d.log.Warn().Err(err).Str("tool", call.Name).Str("id", call.ID).Msg("tool failed")
		return errorPayload(err.Error())
	}

	d.log.Debug().Str("tool", call.Name).Str("id", call.ID).Msg("tool completed")
	return result
}

func errorPayload(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
