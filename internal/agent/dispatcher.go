package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Dispatcher executes one model-issued tool call against the registry and
// produces a normalized envelope. Every call walks a strict state machine:
// parse, lookup, approve, execute, normalize. Each step is a terminal exit
// point on failure, so a dangerous side effect never occurs without
// syntactically valid arguments and explicit approval when required.
type Dispatcher struct {
	registry *Registry
	approver Approver
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil approver denies every dangerous
// call; a nil logger falls back to slog.Default.
func NewDispatcher(registry *Registry, approver Approver, logger *slog.Logger) *Dispatcher {
	if approver == nil {
		approver = DenyAll
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		approver: approver,
		logger:   logger,
	}
}

// Dispatch runs one tool call to completion. Failures before the executor
// runs (unparseable arguments, unknown tool, operator denial) and failures
// inside the executor are all returned as ordinary envelopes; the model sees
// them as tool-result data and no tool error is ever fatal to the session.
func (d *Dispatcher) Dispatch(ctx context.Context, call ToolCall) Envelope {
	args, err := parseArguments(call.Input)
	if err != nil {
		d.logger.Warn("tool arguments failed to parse",
			"tool", call.Name,
			"tool_call_id", call.ID,
			"error", err,
		)
		return ErrorEnvelope("invalid arguments provided to tool", ExitBadArguments)
	}

	desc, ok := d.registry.Lookup(call.Name)
	if !ok {
		d.logger.Warn("unsupported function called", "tool", call.Name, "tool_call_id", call.ID)
		return ErrorEnvelope(fmt.Sprintf("unsupported function: %s", call.Name), ExitUnknownTool)
	}

	if desc.Dangerous {
		if !d.approver.Approve(desc.ActionLabel, approvalDetail(desc, args)) {
			d.logger.Info("action denied by user", "tool", call.Name, "tool_call_id", call.ID)
			return ErrorEnvelope("action denied by user", ExitDenied)
		}
	}

	env, err := d.execute(ctx, desc.Tool, args)
	if err != nil {
		d.logger.Error("tool execution failed",
			"tool", call.Name,
			"tool_call_id", call.ID,
			"error", err,
		)
		return ErrorEnvelope(fmt.Sprintf("tool execution failed: %v", err), ExitToolPanic)
	}
	return env
}

// execute invokes the tool, converting a panic into an ordinary error so a
// misbehaving executor cannot take down the session.
func (d *Dispatcher) execute(ctx context.Context, tool Tool, args map[string]any) (env Envelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			env = nil
			err = fmt.Errorf("%v", r)
		}
	}()
	return tool.Execute(ctx, args)
}

// parseArguments decodes the raw argument payload into an object of named
// arguments. An empty payload is treated as an empty object, matching models
// that omit arguments entirely for parameterless tools.
func parseArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// approvalDetail extracts the human-readable detail string for the approval
// prompt: the descriptor's designated argument when present, otherwise the
// full argument object.
func approvalDetail(desc Descriptor, args map[string]any) string {
	if desc.DetailKey != "" {
		if v, ok := args[desc.DetailKey]; ok {
			if s, isString := v.(string); isString {
				return s
			}
			if data, err := json.Marshal(v); err == nil {
				return string(data)
			}
		}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "<detail unavailable>"
	}
	return string(data)
}
