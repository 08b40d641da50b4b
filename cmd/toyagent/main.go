// Package main provides the CLI entry point for the toyagent tool-using
// chat agent.
//
// With a prompt argument the agent runs a single task to completion;
// without one it starts an interactive session:
//
//	toyagent "summarize the files in this directory"
//	toyagent
//
// # Environment Variables
//
//   - OPENAI_API_KEY: API key for the OpenAI-compatible provider
//   - OPENAI_BASE_URL: alternate endpoint for OpenAI-compatible servers
//   - ANTHROPIC_API_KEY: API key when --provider anthropic is selected
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := buildRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// rootFlags holds the command-line overrides. Precedence is flags over
// environment over config file.
type rootFlags struct {
	configPath  string
	provider    string
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	topP        float32
	maxTurns    int
	debug       bool
}

func buildRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "toyagent [prompt]",
		Short: "CLI agent that calls chat models and runs local tools",
		Long: `toyagent converses with an LLM chat API and executes tools on its
behalf: shell commands, file operations, web fetches, Python snippets,
and questions relayed back to you. Dangerous actions require your
explicit approval before they run.

With a prompt argument the agent performs that single task and exits.
Without one it starts an interactive session.`,
		Example: `  # Single task
  toyagent "list the largest files under /var/log"

  # Interactive session against a local OpenAI-compatible server
  toyagent -b http://localhost:8000/v1 -k dummy

  # Use Anthropic instead of OpenAI
  toyagent --provider anthropic`,
		Version:      version + " (commit: " + commit + ", built: " + date + ")",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := ""
			if len(args) > 0 {
				prompt = args[0]
			}
			return run(cmd, flags, prompt)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "Chat provider: openai or anthropic")
	cmd.Flags().StringVarP(&flags.apiKey, "api-key", "k", "", "API key (or use $OPENAI_API_KEY / $ANTHROPIC_API_KEY)")
	cmd.Flags().StringVarP(&flags.baseURL, "base-url", "b", "", "API base URL (or use $OPENAI_BASE_URL)")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model name")
	cmd.Flags().Float32VarP(&flags.temperature, "temperature", "t", 0, "Sampling temperature (e.g., 0.6)")
	cmd.Flags().Float32VarP(&flags.topP, "top-p", "p", 0, "Nucleus sampling top_p (e.g., 0.9)")
	cmd.Flags().IntVar(&flags.maxTurns, "max-turns", 0, "Maximum model calls per task (0 = unlimited)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	return cmd
}
