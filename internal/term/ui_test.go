package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

func newTestUI(input string) (*UI, *bytes.Buffer, *bytes.Buffer) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	return NewWithStreams(strings.NewReader(input), &out, &errOut), &out, &errOut
}

func TestApproveAccepts(t *testing.T) {
	ui, _, _ := newTestUI("y\n")
	if !ui.Approve("Execute Shell Command", "rm -rf /tmp/scratch") {
		t.Fatal("expected approval")
	}
}

func TestApproveDenies(t *testing.T) {
	for _, input := range []string{"n\n", "\n", "N\n"} {
		ui, _, _ := newTestUI(input)
		if ui.Approve("Execute Shell Command", "true") {
			t.Fatalf("input %q should deny", input)
		}
	}
}

func TestApproveRepromptsOnInvalidInput(t *testing.T) {
	ui, out, _ := newTestUI("maybe\ny\n")
	if !ui.Approve("Write to File", "/tmp/x") {
		t.Fatal("expected eventual approval")
	}
	if !strings.Contains(out.String(), "Invalid input") {
		t.Fatal("expected reprompt message")
	}
}

func TestApproveDeniesOnClosedInput(t *testing.T) {
	ui, _, errOut := newTestUI("")
	if ui.Approve("Execute Shell Command", "true") {
		t.Fatal("closed input must deny")
	}
	if !strings.Contains(errOut.String(), "Assuming 'No'") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestApproveShowsActionAndDetail(t *testing.T) {
	ui, out, errOut := newTestUI("n\n")
	ui.Approve("Fetch Web Page", "https://example.com")
	text := out.String()
	if !strings.Contains(text, "Action: Fetch Web Page") {
		t.Fatalf("missing action: %q", text)
	}
	if !strings.Contains(text, "Details: https://example.com") {
		t.Fatalf("missing detail: %q", text)
	}
	if !strings.Contains(errOut.String(), "can be dangerous") {
		t.Fatal("missing danger warning")
	}
}

func TestApprovePythonShowsCodeBlockAndSevereWarning(t *testing.T) {
	ui, out, errOut := newTestUI("n\n")
	ui.Approve("Execute Python Code", "print('hi')")
	if !strings.Contains(out.String(), "Code:\n-------\nprint('hi')\n-------") {
		t.Fatalf("missing code block: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "EXTREMELY DANGEROUS") {
		t.Fatalf("missing severe warning: %q", errOut.String())
	}
}

func TestAskReturnsAnswer(t *testing.T) {
	ui, out, _ := newTestUI("forty-two\n")
	answer, err := ui.Ask("what is the answer?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer != "forty-two" {
		t.Fatalf("answer = %q", answer)
	}
	if !strings.Contains(out.String(), "what is the answer?") {
		t.Fatal("question not shown")
	}
}

func TestReadUserLineEOF(t *testing.T) {
	ui, _, _ := newTestUI("")
	if _, err := ui.ReadUserLine("User: "); err == nil {
		t.Fatal("expected error on closed input")
	}
}

func TestToolCallRequestedRendersArguments(t *testing.T) {
	ui, out, _ := newTestUI("")
	ui.ToolCallRequested(agent.ToolCall{
		ID:    "call-1",
		Name:  "read_file",
		Input: []byte(`{"path":"notes.txt"}`),
	})
	text := out.String()
	if !strings.Contains(text, "read_file") || !strings.Contains(text, "notes.txt") {
		t.Fatalf("trace output = %q", text)
	}
}

func TestToolCallFinishedPrintsEnvelope(t *testing.T) {
	ui, out, _ := newTestUI("")
	ui.ToolCallFinished(
		agent.ToolCall{ID: "call-1234567890", Name: "read_file"},
		agent.Envelope{"content": "data", "error": nil},
	)
	text := out.String()
	if !strings.Contains(text, "Tool Result (read_file [call-123...])") {
		t.Fatalf("trace output = %q", text)
	}
	if !strings.Contains(text, `"content": "data"`) {
		t.Fatalf("envelope not pretty-printed: %q", text)
	}
}
