package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

type scriptedProvider struct {
	replies []*agent.AssistantReply
	errs    []error
	calls   int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req *agent.ChatRequest) (*agent.AssistantReply, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return &agent.AssistantReply{Content: "done"}, nil
}

// fakeConsole scripts user input lines and records all output.
type fakeConsole struct {
	lines   []string
	infos   []string
	errors  []string
	answers []string
}

func (c *fakeConsole) AssistantText(text string) { c.answers = append(c.answers, text) }

func (c *fakeConsole) ToolCallRequested(call agent.ToolCall)                      {}
func (c *fakeConsole) ToolCallFinished(call agent.ToolCall, env agent.Envelope)   {}
func (c *fakeConsole) Info(message string)                                        { c.infos = append(c.infos, message) }
func (c *fakeConsole) Warning(message string)                                     {}
func (c *fakeConsole) Error(message string)                                       { c.errors = append(c.errors, message) }

func (c *fakeConsole) ReadUserLine(prompt string) (string, error) {
	if len(c.lines) == 0 {
		return "", errors.New("EOF")
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return line, nil
}

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echo" }
func (echoTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}
func (echoTool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	return agent.Envelope{"ok": true}, nil
}

func newTestRunner(t *testing.T, provider agent.Provider, console Console) *Runner {
	t.Helper()
	reg, err := agent.NewRegistry(agent.Descriptor{Tool: echoTool{}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	dispatcher := agent.NewDispatcher(reg, nil, nil)
	return NewRunner(provider, reg, dispatcher, console, Options{
		Model:       "test-model",
		Temperature: 0.6,
		TopP:        0.9,
	})
}

func TestRunOnce(t *testing.T) {
	provider := &scriptedProvider{replies: []*agent.AssistantReply{
		{Content: "task complete"},
	}}
	console := &fakeConsole{}
	runner := newTestRunner(t, provider, console)

	if err := runner.RunOnce(context.Background(), "do the thing"); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(console.answers) != 1 || console.answers[0] != "task complete" {
		t.Fatalf("answers = %v", console.answers)
	}
	joined := strings.Join(console.infos, "\n")
	if !strings.Contains(joined, "Task finished.") {
		t.Fatalf("infos = %v", console.infos)
	}
}

func TestRunOnceReportsModelError(t *testing.T) {
	provider := &scriptedProvider{errs: []error{errors.New("rate limited")}}
	console := &fakeConsole{}
	runner := newTestRunner(t, provider, console)

	if err := runner.RunOnce(context.Background(), "do it"); err == nil {
		t.Fatal("expected error")
	}
	if len(console.errors) == 0 || !strings.Contains(console.errors[0], "rate limited") {
		t.Fatalf("errors = %v", console.errors)
	}
}

func TestInteractiveQuitsOnCommand(t *testing.T) {
	provider := &scriptedProvider{replies: []*agent.AssistantReply{
		{Content: "hello back"},
	}}
	console := &fakeConsole{lines: []string{"hello", "quit"}}
	runner := newTestRunner(t, provider, console)

	if err := runner.RunInteractive(context.Background()); err != nil {
		t.Fatalf("RunInteractive: %v", err)
	}
	if len(console.answers) != 1 || console.answers[0] != "hello back" {
		t.Fatalf("answers = %v", console.answers)
	}
}

func TestInteractiveSkipsBlankLines(t *testing.T) {
	provider := &scriptedProvider{}
	console := &fakeConsole{lines: []string{"", "   ", "exit"}}
	runner := newTestRunner(t, provider, console)

	if err := runner.RunInteractive(context.Background()); err != nil {
		t.Fatalf("RunInteractive: %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("blank input reached the model %d times", provider.calls)
	}
}

func TestInteractiveContinuesAfterModelError(t *testing.T) {
	provider := &scriptedProvider{
		errs:    []error{errors.New("transient failure"), nil},
		replies: []*agent.AssistantReply{nil, {Content: "recovered"}},
	}
	console := &fakeConsole{lines: []string{"first", "second", "quit"}}
	runner := newTestRunner(t, provider, console)

	if err := runner.RunInteractive(context.Background()); err != nil {
		t.Fatalf("RunInteractive: %v", err)
	}
	if len(console.errors) == 0 {
		t.Fatal("model error not reported")
	}
	if len(console.answers) != 1 || console.answers[0] != "recovered" {
		t.Fatalf("answers = %v", console.answers)
	}
}

func TestSystemPromptNamesTools(t *testing.T) {
	provider := &scriptedProvider{}
	runner := newTestRunner(t, provider, &fakeConsole{})

	prompt := runner.systemPrompt("ready for interactive user requests")
	if !strings.Contains(prompt, "echo") {
		t.Fatalf("tool names missing from system prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "Current date:") {
		t.Fatalf("date missing from system prompt: %q", prompt)
	}
}
