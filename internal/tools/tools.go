// Package tools maps the engine's function calls onto business actions.
// The dispatcher is the error boundary: collaborator failures become
// result payloads, never faults that stall the conversation.
package tools

import (
	"context"

	"github.com/Landonswork/lando-backend-call-routing/internal/engine"
)

// Tool is one action the agent can invoke during a call.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the engine.
	Description() string

	// Parameters returns the JSON Schema of the tool's arguments.
	Parameters() map[string]any

	// Execute runs the tool. The returned map becomes the tool result
	// payload; errors are converted by the dispatcher.
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry holds available tools.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Declarations returns engine-ready declarations for all registered
// tools, in registration order.
func (r *Registry) Declarations() []engine.FunctionDecl {
	decls := make([]engine.FunctionDecl, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		decls = append(decls, engine.FunctionDecl{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return decls
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}
