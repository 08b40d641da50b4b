package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Black-Lioness/toyagent/internal/agent"
	"github.com/Black-Lioness/toyagent/internal/agent/providers"
	"github.com/Black-Lioness/toyagent/internal/config"
	"github.com/Black-Lioness/toyagent/internal/session"
	"github.com/Black-Lioness/toyagent/internal/term"
	"github.com/Black-Lioness/toyagent/internal/tools/files"
	"github.com/Black-Lioness/toyagent/internal/tools/prompt"
	"github.com/Black-Lioness/toyagent/internal/tools/python"
	"github.com/Black-Lioness/toyagent/internal/tools/shell"
	"github.com/Black-Lioness/toyagent/internal/tools/web"
)

// run assembles the agent from config and flags, then executes the
// requested mode.
func run(cmd *cobra.Command, flags rootFlags, promptArg string) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger := buildLogger(cfg, flags.debug)
	slog.SetDefault(logger)

	if cfg.APIKey == "" {
		envName := "OPENAI_API_KEY"
		if cfg.Provider == "anthropic" {
			envName = "ANTHROPIC_API_KEY"
		}
		return fmt.Errorf("API key required via --api-key or $%s", envName)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	ui := term.New()
	registry, err := buildRegistry(cfg, ui)
	if err != nil {
		return err
	}
	dispatcher := agent.NewDispatcher(registry, ui, logger)

	runner := session.NewRunner(provider, registry, dispatcher, ui, session.Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTurns:    cfg.MaxTurns,
		Logger:      logger,
	})

	if promptArg != "" {
		return runner.RunOnce(cmd.Context(), promptArg)
	}
	return runner.RunInteractive(cmd.Context())
}

// loadConfig resolves the effective configuration: YAML file, then
// environment, then flags.
func loadConfig(cmd *cobra.Command, flags rootFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if flags.provider != "" {
		cfg.Provider = flags.provider
		// Re-read credentials for the newly selected provider.
		cfg.ApplyEnv()
	}
	if flags.apiKey != "" {
		cfg.APIKey = flags.apiKey
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Temperature = flags.temperature
	}
	if cmd.Flags().Changed("top-p") {
		cfg.TopP = flags.topP
	}
	if cmd.Flags().Changed("max-turns") {
		cfg.MaxTurns = flags.maxTurns
	}

	switch cfg.Provider {
	case "openai", "anthropic":
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func buildProvider(cfg *config.Config) (agent.Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		})
	default:
		return providers.NewOpenAIProvider(providers.OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		})
	}
}

// buildRegistry constructs the fixed tool set. The danger flags and
// approval labels here decide which calls stop at the approval gate and
// what the user sees when they do.
func buildRegistry(cfg *config.Config, ui *term.UI) (*agent.Registry, error) {
	return agent.NewRegistry(
		agent.Descriptor{
			Tool:        python.New(python.Config{DefaultTimeout: cfg.Tools.PythonTimeout}),
			Dangerous:   true,
			ActionLabel: "Execute Python Code",
			DetailKey:   "code",
		},
		agent.Descriptor{
			Tool: shell.New(shell.Config{
				DefaultTimeout: cfg.Tools.ShellTimeout,
				MaxOutputBytes: cfg.Tools.MaxOutputBytes,
			}),
			Dangerous:   true,
			ActionLabel: "Execute Shell Command",
			DetailKey:   "command",
		},
		agent.Descriptor{Tool: files.NewReadTool()},
		agent.Descriptor{
			Tool:        files.NewWriteTool(),
			Dangerous:   true,
			ActionLabel: "Write to File",
			DetailKey:   "path",
		},
		agent.Descriptor{
			Tool:        files.NewCopyTool(),
			Dangerous:   true,
			ActionLabel: "Copy File",
			DetailKey:   "destination_path",
		},
		agent.Descriptor{Tool: files.NewListTool()},
		agent.Descriptor{
			Tool:        files.NewMkdirTool(),
			Dangerous:   true,
			ActionLabel: "Create Directory",
			DetailKey:   "path",
		},
		agent.Descriptor{
			Tool: web.NewFetchTool(web.FetchConfig{
				DefaultTimeout: cfg.Tools.FetchTimeout,
				MaxBodyBytes:   cfg.Tools.MaxOutputBytes,
			}),
			Dangerous:   true,
			ActionLabel: "Fetch Web Page",
			DetailKey:   "url",
		},
		agent.Descriptor{Tool: prompt.NewAskTool(ui)},
	)
}
