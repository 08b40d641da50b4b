// Package term renders the interactive console surface: assistant output,
// tool call traces, approval prompts, and user input. Colors are disabled
// automatically when stdout is not a terminal.
package term

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

var (
	warnColor      = color.New(color.FgYellow)
	severeColor    = color.New(color.FgRed, color.Bold)
	errorColor     = color.New(color.FgRed)
	assistantColor = color.New(color.FgCyan, color.Bold)
	toolColor      = color.New(color.FgMagenta)
	resultColor    = color.New(color.FgBlue)
	userColor      = color.New(color.FgGreen, color.Bold)
)

const dangerWarning = "Executing commands, writing/copying files, creating directories, or accessing the web can be dangerous."

// UI is the console front end. It implements agent.Trace for conversation
// output, agent.Approver for the approval gate, and agent.Prompter for
// tool-initiated questions. Denial is the answer whenever input cannot be
// read.
type UI struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

// New builds a UI on stdin/stdout/stderr. Color output is switched off
// when stdout is not a terminal.
func New() *UI {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	return NewWithStreams(os.Stdin, os.Stdout, os.Stderr)
}

// NewWithStreams builds a UI on explicit streams.
func NewWithStreams(in io.Reader, out, errOut io.Writer) *UI {
	return &UI{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
}

// AssistantText prints the assistant's final answer for a turn.
func (u *UI) AssistantText(text string) {
	fmt.Fprintf(u.out, "\n%s\n%s\n", assistantColor.Sprint("Assistant:"), text)
}

// ToolCallRequested prints the function name and pretty-printed arguments
// of a pending tool call.
func (u *UI) ToolCallRequested(call agent.ToolCall) {
	fmt.Fprintf(u.out, "\n%s\n  Function: %s\n", toolColor.Sprint("Tool Call Request:"), call.Name)

	var args map[string]any
	if err := json.Unmarshal(call.Input, &args); err != nil {
		fmt.Fprintf(u.out, "  Arguments (raw): %s\n", string(call.Input))
		return
	}
	// Indent embedded code so multi-line scripts stay readable.
	if code, ok := args["code"].(string); ok && call.Name == "execute_python_code" {
		args["code"] = "\n      " + strings.ReplaceAll(code, "\n", "\n      ")
	}
	pretty, err := json.MarshalIndent(args, "  ", "  ")
	if err != nil {
		fmt.Fprintf(u.out, "  Arguments (raw): %s\n", string(call.Input))
		return
	}
	fmt.Fprintf(u.out, "  Arguments: %s\n", pretty)
}

// ToolCallFinished prints the recorded result envelope, pretty-printed
// when it is valid JSON.
func (u *UI) ToolCallFinished(call agent.ToolCall, env agent.Envelope) {
	id := call.ID
	if len(id) > 8 {
		id = id[:8]
	}
	fmt.Fprintf(u.out, "\n%s\n", resultColor.Sprintf("Tool Result (%s [%s...]):", call.Name, id))

	encoded := env.Encode()
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(encoded), "", "  "); err != nil {
		fmt.Fprintln(u.out, encoded)
		return
	}
	fmt.Fprintln(u.out, buf.String())
}

// Approve shows the pending action and asks for explicit consent. Only a
// "y" answer approves; "n" or an empty line denies, anything else asks
// again, and a closed or interrupted input stream denies.
func (u *UI) Approve(action, detail string) bool {
	fmt.Fprintln(u.out, "\n-------------------------------------")
	u.Warning("The assistant wants to perform the following action:")
	fmt.Fprintf(u.out, "  Action: %s\n", action)
	if action == "Execute Python Code" {
		fmt.Fprintf(u.out, "  Code:\n-------\n%s\n-------\n", detail)
	} else {
		fmt.Fprintf(u.out, "  Details: %s\n", detail)
	}
	fmt.Fprintf(u.out, "OS: %s\n", OSInfo())
	if action == "Execute Python Code" {
		u.SevereWarning(dangerWarning + "\nExecuting Python code is EXTREMELY DANGEROUS and runs with script permissions.")
	} else {
		u.Warning(dangerWarning)
	}
	fmt.Fprintln(u.out, "-------------------------------------")

	for {
		fmt.Fprint(u.out, "Allow this action? (y/N): ")
		line, err := u.in.ReadString('\n')
		if err != nil && line == "" {
			u.Error("Interrupted/Input closed. Assuming 'No'.")
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return true
		case "n", "":
			return false
		}
		fmt.Fprintln(u.out, "Invalid input. Please enter 'y' or 'n'.")
	}
}

// Ask relays a question from the assistant to the user and returns the
// answer line.
func (u *UI) Ask(question string) (string, error) {
	fmt.Fprintf(u.out, "\n%s %s\n", assistantColor.Sprint("Assistant asks:"), question)
	return u.ReadUserLine("Your answer: ")
}

// ReadUserLine prints a prompt and reads one line of input. io.EOF is
// returned when the input stream is closed.
func (u *UI) ReadUserLine(prompt string) (string, error) {
	fmt.Fprint(u.out, userColor.Sprint(prompt))
	line, err := u.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Info prints a plain line to stdout.
func (u *UI) Info(message string) {
	fmt.Fprintln(u.out, message)
}

// Warning prints a warning line to stderr.
func (u *UI) Warning(message string) {
	fmt.Fprintln(u.errOut, warnColor.Sprintf("Warning: %s", message))
}

// SevereWarning prints a highlighted warning line to stderr.
func (u *UI) SevereWarning(message string) {
	fmt.Fprintln(u.errOut, severeColor.Sprintf("Warning: %s", message))
}

// Error prints an error line to stderr.
func (u *UI) Error(message string) {
	fmt.Fprintln(u.errOut, errorColor.Sprintf("Error: %s", message))
}

// OSInfo describes the running platform for prompts and the system
// preamble.
func OSInfo() string {
	return fmt.Sprintf("%s (%s)", runtime.GOOS, runtime.GOARCH)
}
