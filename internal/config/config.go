// Package config loads the agent configuration from an optional YAML file
// and the environment. Environment variables win over file values, and
// flags (applied by the caller) win over both.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for the agent.
type Config struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	TopP        float32       `yaml:"top_p"`
	MaxTurns    int           `yaml:"max_turns"`
	Tools       ToolsConfig   `yaml:"tools"`
	Logging     LoggingConfig `yaml:"logging"`
}

// ToolsConfig carries per-tool execution limits.
type ToolsConfig struct {
	ShellTimeout   time.Duration `yaml:"shell_timeout"`
	PythonTimeout  time.Duration `yaml:"python_timeout"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	MaxOutputBytes int           `yaml:"max_output_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with all defaults and environment
// overrides applied, for running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg
}

// Load reads and parses the configuration file, then applies defaults and
// environment overrides. ${VAR} references inside the file are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.6
	}
	if cfg.TopP == 0 {
		cfg.TopP = 0.9
	}
	if cfg.Tools.ShellTimeout == 0 {
		cfg.Tools.ShellTimeout = 60 * time.Second
	}
	if cfg.Tools.PythonTimeout == 0 {
		cfg.Tools.PythonTimeout = 30 * time.Second
	}
	if cfg.Tools.FetchTimeout == 0 {
		cfg.Tools.FetchTimeout = 10 * time.Second
	}
	if cfg.Tools.MaxOutputBytes == 0 {
		cfg.Tools.MaxOutputBytes = 64000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// ApplyEnv re-runs the environment overlay. Callers that change the
// provider after loading (a command-line flag, typically) use this to
// pick up the matching credentials.
func (c *Config) ApplyEnv() {
	applyEnv(c)
}

// applyEnv overlays credentials and endpoint settings from the
// environment. The Anthropic key only applies when that provider is
// selected, so a shell with both keys exported behaves predictably.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Provider == "openai" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" && cfg.Provider == "openai" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Provider == "anthropic" {
		cfg.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" && cfg.Provider == "anthropic" {
		cfg.BaseURL = v
	}
}
