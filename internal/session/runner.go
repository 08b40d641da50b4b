// Package session runs complete agent sessions: a single-shot task or an
// interactive read-eval loop on the console.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// Console is the surface a runner talks to the user through. It extends
// the conversation trace with input and status output.
type Console interface {
	agent.Trace

	// ReadUserLine prints a prompt and reads one input line. io.EOF
	// signals a closed input stream.
	ReadUserLine(prompt string) (string, error)

	// Info prints a plain status line.
	Info(message string)

	// Warning prints a warning line.
	Warning(message string)

	// Error prints an error line.
	Error(message string)
}

// Options carries the sampling settings shared by both run modes.
type Options struct {
	Model       string
	Temperature float32
	TopP        float32
	MaxTurns    int
	Logger      *slog.Logger
}

// Runner wires a provider, registry, and dispatcher to a console and
// executes sessions.
type Runner struct {
	provider   agent.Provider
	registry   *agent.Registry
	dispatcher *agent.Dispatcher
	console    Console
	opts       Options
}

// NewRunner builds a runner. The console receives all conversation
// output including tool call traces.
func NewRunner(provider agent.Provider, registry *agent.Registry, dispatcher *agent.Dispatcher, console Console, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		provider:   provider,
		registry:   registry,
		dispatcher: dispatcher,
		console:    console,
		opts:       opts,
	}
}

// RunOnce executes a single prompt to completion and returns.
func (r *Runner) RunOnce(ctx context.Context, prompt string) error {
	r.printBanner("Running single prompt")

	sess := agent.NewSession(r.systemPrompt("executing a single task given by the user"))
	sess.Append(agent.Message{Role: agent.RoleUser, Content: prompt})

	driver := r.newDriver(sess)
	if _, err := driver.Run(ctx); err != nil {
		r.console.Error(err.Error())
		return err
	}
	r.console.Info("\nTask finished.")
	return nil
}

// RunInteractive reads user turns until "quit", "exit", or end of input.
// A failed model call is reported and the loop continues with the
// history intact, so the user can simply try again.
func (r *Runner) RunInteractive(ctx context.Context) error {
	r.printBanner("Starting interactive session")
	r.console.Info("Type 'quit' or 'exit' to end.")

	sess := agent.NewSession(r.systemPrompt("ready for interactive user requests"))
	driver := r.newDriver(sess)

	for {
		line, err := r.console.ReadUserLine("\nUser:\n")
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.console.Info("\nExiting...")
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		switch strings.ToLower(input) {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		sess.Append(agent.Message{Role: agent.RoleUser, Content: input})
		if _, err := driver.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.console.Error(err.Error())
		}
	}
}

func (r *Runner) newDriver(sess *agent.Session) *agent.Driver {
	return agent.NewDriver(r.provider, r.registry, r.dispatcher, sess, agent.DriverOptions{
		Model:       r.opts.Model,
		Temperature: r.opts.Temperature,
		TopP:        r.opts.TopP,
		MaxTurns:    r.opts.MaxTurns,
		Trace:       r.console,
		Logger:      r.opts.Logger,
	})
}

func (r *Runner) printBanner(mode string) {
	r.console.Info(fmt.Sprintf("%s (Model: %s, Temp: %g, Top-P: %g, OS: %s)",
		mode, r.opts.Model, r.opts.Temperature, r.opts.TopP, osInfo()))
	r.console.Warning("Review dangerous actions (execute_shell_command, execute_python_code, file ops, web fetch) VERY carefully.")
	if runtime.GOOS == "windows" {
		r.console.Warning("On Windows, ensure shell commands use cmd.exe syntax (e.g., 'dir').")
	}
}

// systemPrompt builds the system preamble: platform, available tools,
// approval rules, and the current date.
func (r *Runner) systemPrompt(task string) string {
	return fmt.Sprintf(
		"You are a helpful coding assistant running in a CLI environment on %s, %s. "+
			"Available tools: %s. "+
			"Be precise and careful. Ensure shell commands match the OS. Requires user approval for dangerous actions "+
			"(especially execute_shell_command and execute_python_code). Current date: %s.",
		osInfo(), task,
		strings.Join(r.registry.Names(), ", "),
		time.Now().Format("2006-01-02 15:04:05"),
	)
}

func osInfo() string {
	return fmt.Sprintf("%s (%s)", runtime.GOOS, runtime.GOARCH)
}
