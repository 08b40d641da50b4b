// Package shell implements the shell command tool. Commands run through
// the platform shell with a hard timeout and capped output buffers.
package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// Negative codes reported alongside the "error" field. Real process exit
// codes are always >= 0, so these cannot collide.
const (
	codeTimeout    = -1
	codeNotFound   = -2
	codeExecFailed = -3
)

// Config controls execution limits for the shell tool.
type Config struct {
	// DefaultTimeout applies when a call omits timeout_seconds.
	DefaultTimeout time.Duration

	// MaxOutputBytes caps captured stdout and stderr, each.
	MaxOutputBytes int
}

// Tool executes shell command strings.
type Tool struct {
	defaultTimeout time.Duration
	maxOutput      int
}

// New creates a shell tool with the given limits.
func New(cfg Config) *Tool {
	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxOutput := cfg.MaxOutputBytes
	if maxOutput <= 0 {
		maxOutput = 64000
	}
	return &Tool{
		defaultTimeout: timeout,
		maxOutput:      maxOutput,
	}
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return "execute_shell_command"
}

// Description returns the tool description.
func (t *Tool) Description() string {
	return "Execute a shell command and return its stdout, stderr, and exit code. Use OS-specific commands (cmd.exe on Windows, sh/bash on Linux/macOS). Requires user approval."
}

// Schema returns the JSON schema for the tool parameters.
func (t *Tool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"command": map[string]interface{}{
				"type":        "string",
				"description": "The shell command string to execute.",
			},
			"working_directory": map[string]interface{}{
				"type":        "string",
				"description": "Optional directory path to execute the command in.",
			},
			"timeout_seconds": map[string]interface{}{
				"type":        "integer",
				"description": "Optional timeout in seconds.",
				"default":     int(t.defaultTimeout / time.Second),
			},
		},
		"required": []string{"command"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Execute runs the command and reports stdout, stderr, and exit code.
// A non-zero exit from the command is a normal result, not a failure.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		Command          string `json:"command"`
		WorkingDirectory string `json:"working_directory"`
		TimeoutSeconds   int    `json:"timeout_seconds"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return shellResult("", "", codeExecFailed, fmt.Sprintf("Execution failed: %v", err)), nil
	}
	if input.Command == "" {
		return shellResult("", "", codeExecFailed, "Execution failed: command is required"), nil
	}

	cwd := input.WorkingDirectory
	if cwd == "" {
		cwd, _ = os.Getwd()
	}
	if info, err := os.Stat(cwd); err != nil || !info.IsDir() {
		return shellResult("", "", codeNotFound, fmt.Sprintf("Working directory not found: %s", cwd)), nil
	}

	timeout := t.defaultTimeout
	if input.TimeoutSeconds > 0 {
		timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(runCtx, input.Command)
	cmd.Dir = cwd

	stdout := newLimitedBuffer(t.maxOutput)
	stderr := newLimitedBuffer(t.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	serr := strings.TrimSpace(stderr.String())

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		return shellResult(out, serr, codeTimeout, fmt.Sprintf("Timeout (%ds)", int(timeout/time.Second))), nil
	case err == nil:
		return shellResult(out, serr, 0, ""), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return shellResult(out, serr, exitErr.ExitCode(), ""), nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return shellResult(out, serr, codeNotFound, fmt.Sprintf("Command/Executable not found: %s", firstWord(input.Command))), nil
	}
	if serr == "" {
		serr = err.Error()
	}
	return shellResult(out, serr, codeExecFailed, fmt.Sprintf("Execution failed: %v", err)), nil
}

func shellResult(stdout, stderr string, exitCode int, errMsg string) agent.Envelope {
	env := agent.Envelope{
		"stdout":    stdout,
		"stderr":    stderr,
		"exit_code": exitCode,
		"error":     nil,
	}
	if errMsg != "" {
		env["error"] = errMsg
	}
	return env
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "/bin/sh", "-c", command)
}

func firstWord(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command
	}
	return fields[0]
}

// limitedBuffer captures process output up to a byte cap and silently
// discards the rest.
type limitedBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newLimitedBuffer(max int) *limitedBuffer {
	return &limitedBuffer{max: max}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.buf) >= b.max {
		return len(p), nil
	}
	remaining := b.max - len(b.buf)
	if b.max > 0 && len(p) > remaining {
		b.buf = append(b.buf, p[:remaining]...)
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
