// Package python implements the Python snippet execution tool. Code runs
// in a separate interpreter process with a hard timeout.
package python

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// Config controls execution limits for the Python tool.
type Config struct {
	// Interpreter names the Python binary. Default: first of python3,
	// python found on PATH.
	Interpreter string

	// DefaultTimeout applies when a call omits timeout_seconds.
	DefaultTimeout time.Duration
}

// Tool executes Python code snippets via the interpreter's -c flag.
type Tool struct {
	interpreter    string
	defaultTimeout time.Duration
}

// New creates a Python tool with the given limits.
func New(cfg Config) *Tool {
	interpreter := cfg.Interpreter
	if interpreter == "" {
		interpreter = findInterpreter()
	}
	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Tool{
		interpreter:    interpreter,
		defaultTimeout: timeout,
	}
}

func findInterpreter() string {
	for _, name := range []string{"python3", "python"} {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return "python3"
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return "execute_python_code"
}

// Description returns the tool description.
func (t *Tool) Description() string {
	return "Executes a given snippet of Python code in a separate process and returns its stdout and stderr. " +
		"WARNING: This is highly dangerous and executes with the script's permissions. Requires careful user approval."
}

// Schema returns the JSON schema for the tool parameters.
func (t *Tool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"code": map[string]interface{}{
				"type":        "string",
				"description": "The Python code snippet to execute.",
			},
			"timeout_seconds": map[string]interface{}{
				"type":        "integer",
				"description": "Optional timeout in seconds for the execution.",
				"default":     int(t.defaultTimeout / time.Second),
			},
		},
		"required": []string{"code"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Execute runs the snippet and reports its stdout and stderr. An error
// raised inside the snippet shows up in stderr with a zero-valued
// "error" field; the "error" field is reserved for failures of the
// execution itself.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		Code           string `json:"code"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return pythonResult("", "", fmt.Sprintf("Failed to execute Python code: %v", err), 0), nil
	}
	if input.Code == "" {
		return pythonResult("", "", "No code provided to execute.", 0), nil
	}

	timeout := t.defaultTimeout
	if input.TimeoutSeconds > 0 {
		timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.interpreter, "-c", input.Code)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	serr := strings.TrimSpace(stderr.String())

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		return pythonResult(out, serr, fmt.Sprintf("Python code execution timed out after %d seconds.", int(timeout/time.Second)), -1), nil
	case err == nil:
		return pythonResult(out, serr, "", 0), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if serr == "" {
			serr = fmt.Sprintf("Python process exited with code %d", exitErr.ExitCode())
		}
		return pythonResult(out, serr, "", exitErr.ExitCode()), nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return pythonResult(out, serr, fmt.Sprintf("Python executable not found: %s", t.interpreter), -2), nil
	}
	if serr == "" {
		serr = err.Error()
	}
	return pythonResult(out, serr, fmt.Sprintf("Failed to execute Python code: %v", err), -3), nil
}

func pythonResult(stdout, stderr, errMsg string, exitCode int) agent.Envelope {
	env := agent.Envelope{
		"stdout": stdout,
		"stderr": stderr,
		"error":  nil,
	}
	if errMsg != "" {
		env["error"] = errMsg
		if exitCode != 0 {
			env["exit_code"] = exitCode
		}
	}
	return env
}
