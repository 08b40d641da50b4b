package agent

import (
	"context"
	"encoding/json"
	"testing"
)

// spyTool records whether it ran and returns a canned envelope.
type spyTool struct {
	name     string
	executed bool
	lastArgs map[string]any
	result   Envelope
	panicMsg string
}

func (t *spyTool) Name() string        { return t.name }
func (t *spyTool) Description() string { return "spy tool" }
func (t *spyTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *spyTool) Execute(ctx context.Context, args map[string]any) (Envelope, error) {
	t.executed = true
	t.lastArgs = args
	if t.panicMsg != "" {
		panic(t.panicMsg)
	}
	if t.result != nil {
		return t.result, nil
	}
	return Envelope{"ok": true}, nil
}

func mustRegistry(t *testing.T, descriptors ...Descriptor) *Registry {
	t.Helper()
	reg, err := NewRegistry(descriptors...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func exitCodeOf(t *testing.T, env Envelope) int {
	t.Helper()
	v, ok := env["exit_code"]
	if !ok {
		t.Fatalf("envelope has no exit_code: %v", env)
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	t.Fatalf("exit_code has unexpected type %T", v)
	return 0
}

func TestDispatchUnknownTool(t *testing.T) {
	spy := &spyTool{name: "known"}
	reg := mustRegistry(t, Descriptor{Tool: spy})
	d := NewDispatcher(reg, nil, nil)

	env := d.Dispatch(context.Background(), ToolCall{ID: "1", Name: "missing", Input: json.RawMessage(`{}`)})
	if got := exitCodeOf(t, env); got != int(ExitUnknownTool) {
		t.Fatalf("exit_code = %d, want %d", got, ExitUnknownTool)
	}
	if env["error"] != "unsupported function: missing" {
		t.Fatalf("unexpected error message: %v", env["error"])
	}
	if spy.executed {
		t.Fatal("tool must not run for an unknown name")
	}
}

func TestDispatchBadArguments(t *testing.T) {
	spy := &spyTool{name: "echo"}
	reg := mustRegistry(t, Descriptor{Tool: spy})
	d := NewDispatcher(reg, nil, nil)

	env := d.Dispatch(context.Background(), ToolCall{ID: "1", Name: "echo", Input: json.RawMessage(`{not json`)})
	if got := exitCodeOf(t, env); got != int(ExitBadArguments) {
		t.Fatalf("exit_code = %d, want %d", got, ExitBadArguments)
	}
	if spy.executed {
		t.Fatal("tool must not run with unparseable arguments")
	}
}

func TestDispatchDeniedBeforeExecution(t *testing.T) {
	spy := &spyTool{name: "rmrf"}
	reg := mustRegistry(t, Descriptor{
		Tool:        spy,
		Dangerous:   true,
		ActionLabel: "Destroy Everything",
		DetailKey:   "target",
	})

	var sawAction, sawDetail string
	deny := ApproverFunc(func(action, detail string) bool {
		sawAction, sawDetail = action, detail
		return false
	})
	d := NewDispatcher(reg, deny, nil)

	env := d.Dispatch(context.Background(), ToolCall{ID: "1", Name: "rmrf", Input: json.RawMessage(`{"target":"/"}`)})
	if got := exitCodeOf(t, env); got != int(ExitDenied) {
		t.Fatalf("exit_code = %d, want %d", got, ExitDenied)
	}
	if env["error"] != "action denied by user" {
		t.Fatalf("unexpected error message: %v", env["error"])
	}
	if spy.executed {
		t.Fatal("denied tool must never execute")
	}
	if sawAction != "Destroy Everything" || sawDetail != "/" {
		t.Fatalf("approval saw (%q, %q)", sawAction, sawDetail)
	}
}

func TestDispatchDefaultApproverDenies(t *testing.T) {
	spy := &spyTool{name: "danger"}
	reg := mustRegistry(t, Descriptor{Tool: spy, Dangerous: true, ActionLabel: "Danger"})
	d := NewDispatcher(reg, nil, nil)

	env := d.Dispatch(context.Background(), ToolCall{ID: "1", Name: "danger", Input: json.RawMessage(`{}`)})
	if got := exitCodeOf(t, env); got != int(ExitDenied) {
		t.Fatalf("exit_code = %d, want %d", got, ExitDenied)
	}
	if spy.executed {
		t.Fatal("fail-closed default must not execute")
	}
}

func TestDispatchSafeToolSkipsApproval(t *testing.T) {
	spy := &spyTool{name: "lookup", result: Envelope{"value": "42"}}
	reg := mustRegistry(t, Descriptor{Tool: spy})

	prompted := false
	approver := ApproverFunc(func(string, string) bool {
		prompted = true
		return false
	})
	d := NewDispatcher(reg, approver, nil)

	env := d.Dispatch(context.Background(), ToolCall{ID: "1", Name: "lookup", Input: json.RawMessage(`{"q":"x"}`)})
	if prompted {
		t.Fatal("safe tool must not hit the approval gate")
	}
	if !spy.executed {
		t.Fatal("safe tool should have run")
	}
	if env["value"] != "42" {
		t.Fatalf("envelope not passed through: %v", env)
	}
	if env.HasError() {
		t.Fatalf("unexpected error: %v", env)
	}
}

func TestDispatchEmptyArgumentsBecomeEmptyObject(t *testing.T) {
	spy := &spyTool{name: "noargs"}
	reg := mustRegistry(t, Descriptor{Tool: spy})
	d := NewDispatcher(reg, nil, nil)

	d.Dispatch(context.Background(), ToolCall{ID: "1", Name: "noargs"})
	if !spy.executed {
		t.Fatal("tool should run with empty arguments")
	}
	if spy.lastArgs == nil || len(spy.lastArgs) != 0 {
		t.Fatalf("args = %v, want empty map", spy.lastArgs)
	}
}

func TestDispatchPanicBecomesEnvelope(t *testing.T) {
	spy := &spyTool{name: "crash", panicMsg: "boom"}
	reg := mustRegistry(t, Descriptor{Tool: spy})
	d := NewDispatcher(reg, nil, nil)

	env := d.Dispatch(context.Background(), ToolCall{ID: "1", Name: "crash", Input: json.RawMessage(`{}`)})
	if got := exitCodeOf(t, env); got != int(ExitToolPanic) {
		t.Fatalf("exit_code = %d, want %d", got, ExitToolPanic)
	}
	if env["error"] != "tool execution failed: boom" {
		t.Fatalf("unexpected error message: %v", env["error"])
	}
}

func TestApprovalDetailFallsBackToFullArguments(t *testing.T) {
	desc := Descriptor{DetailKey: "missing"}
	detail := approvalDetail(desc, map[string]any{"a": "b"})
	if detail != `{"a":"b"}` {
		t.Fatalf("detail = %q", detail)
	}
}
