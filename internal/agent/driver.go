package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrMaxTurns is returned by Run when the configured turn limit is reached
// before the model produces a final answer.
var ErrMaxTurns = errors.New("reached maximum turns without a final answer")

// Trace receives conversation progress as the driver works through a turn.
// All callbacks run on the driver's goroutine, in history order. A nil trace
// runs the driver headless.
type Trace interface {
	// AssistantText is called with the final text of a turn.
	AssistantText(text string)

	// ToolCallRequested is called before a tool call is dispatched.
	ToolCallRequested(call ToolCall)

	// ToolCallFinished is called with the envelope recorded for a call.
	ToolCallFinished(call ToolCall, env Envelope)
}

// DriverOptions configures a conversation driver. Sampling parameters are
// pass-through values handed to the provider uninterpreted.
type DriverOptions struct {
	Model       string
	Temperature float32
	TopP        float32

	// MaxTurns caps request/dispatch cycles per Run (0 = unlimited).
	MaxTurns int

	Trace  Trace
	Logger *slog.Logger
}

// Driver owns the request/interpret/dispatch/append cycle for one session.
// It is the sole writer of the session history and only ever appends.
type Driver struct {
	provider   Provider
	registry   *Registry
	dispatcher *Dispatcher
	session    *Session
	opts       DriverOptions
	finalText  string
}

// NewDriver binds a driver to a session. The registry's schema list is
// captured through the registry itself, so it is identical on every request.
func NewDriver(provider Provider, registry *Registry, dispatcher *Dispatcher, session *Session, opts DriverOptions) *Driver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Driver{
		provider:   provider,
		registry:   registry,
		dispatcher: dispatcher,
		session:    session,
		opts:       opts,
	}
}

// Session returns the session this driver appends to.
func (d *Driver) Session() *Session {
	return d.session
}

// FinalText returns the text surfaced by the most recent completed turn.
func (d *Driver) FinalText() string {
	return d.finalText
}

// Advance performs one cycle: it sends the full history plus the tool schema
// list to the model, appends the assistant message, and dispatches any tool
// calls sequentially in the order the model listed them, appending one tool
// message per call. It reports true when another model call is required.
//
// A model transport failure is returned without appending anything, so the
// caller may retry Advance with the same history.
func (d *Driver) Advance(ctx context.Context) (bool, error) {
	req := &ChatRequest{
		Model:       d.opts.Model,
		Messages:    d.session.Messages(),
		Tools:       d.registry.Schemas(),
		Temperature: d.opts.Temperature,
		TopP:        d.opts.TopP,
	}

	reply, err := d.provider.Complete(ctx, req)
	if err != nil {
		return false, fmt.Errorf("model call failed: %w", err)
	}

	d.session.Append(Message{
		Role:      RoleAssistant,
		Content:   reply.Content,
		ToolCalls: reply.ToolCalls,
	})

	if len(reply.ToolCalls) == 0 {
		d.finalText = reply.Content
		if d.opts.Trace != nil && reply.Content != "" {
			d.opts.Trace.AssistantText(reply.Content)
		}
		return false, nil
	}

	// Sequential on purpose: later calls may depend on earlier side effects,
	// and approval prompts must not interleave.
	for _, call := range reply.ToolCalls {
		if d.opts.Trace != nil {
			d.opts.Trace.ToolCallRequested(call)
		}
		env := d.dispatcher.Dispatch(ctx, call)
		d.session.Append(Message{
			Role:       RoleTool,
			Content:    env.Encode(),
			ToolCallID: call.ID,
			Name:       call.Name,
		})
		if d.opts.Trace != nil {
			d.opts.Trace.ToolCallFinished(call, env)
		}
	}
	return true, nil
}

// Run drives Advance until the model produces a final textual answer and
// returns that text. The turn ends inconclusively on a model transport
// error; the history is left at the retry point.
func (d *Driver) Run(ctx context.Context) (string, error) {
	for turn := 0; ; turn++ {
		if d.opts.MaxTurns > 0 && turn >= d.opts.MaxTurns {
			return "", ErrMaxTurns
		}
		more, err := d.Advance(ctx)
		if err != nil {
			return "", err
		}
		if !more {
			return d.finalText, nil
		}
	}
}
