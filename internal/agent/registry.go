package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is one executable capability exposed to the model. Execute
// receives the parsed argument object and returns a result envelope;
// tool-domain failures belong inside the envelope, and a returned error
// means the execution machinery itself broke.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, args map[string]any) (Envelope, error)
}

// Descriptor binds a tool to its dispatch policy. Dangerous tools stop
// at the approval gate; ActionLabel and DetailKey shape what the
// operator sees there.
type Descriptor struct {
	Tool Tool

	// Dangerous marks the tool as requiring approval before every call.
	Dangerous bool

	// ActionLabel is the human-readable action name shown in the
	// approval prompt.
	ActionLabel string

	// DetailKey names the argument whose value is shown as the approval
	// detail. Empty means the full argument object is shown.
	DetailKey string
}

// Registry is the immutable tool table. It is fully populated at
// construction and never changes afterward, so the schema list sent to
// the model is identical on every request of a session.
type Registry struct {
	order   []string
	entries map[string]Descriptor
}

// NewRegistry builds a registry from descriptors, preserving their
// order. Duplicate or empty tool names are construction errors.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{entries: make(map[string]Descriptor, len(descriptors))}
	for _, desc := range descriptors {
		if desc.Tool == nil {
			return nil, fmt.Errorf("registry: nil tool")
		}
		name := desc.Tool.Name()
		if name == "" {
			return nil, fmt.Errorf("registry: tool with empty name")
		}
		if _, exists := r.entries[name]; exists {
			return nil, fmt.Errorf("registry: duplicate tool name: %s", name)
		}
		r.entries[name] = desc
		r.order = append(r.order, name)
	}
	return r, nil
}

// Lookup returns the descriptor for a tool name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	desc, ok := r.entries[name]
	return desc, ok
}

// Schemas returns the provider-facing schema list in registration order.
func (r *Registry) Schemas() []ToolSchema {
	out := make([]ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		desc := r.entries[name]
		out = append(out, ToolSchema{
			Name:        name,
			Description: desc.Tool.Description(),
			Parameters:  desc.Tool.Schema(),
		})
	}
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
