// Package config loads adw configuration from adw.toml with defaults and
// environment-variable overrides. A missing config file is not an error:
// the original workflow runs entirely on defaults plus a handful of env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the adw configuration file.
const ConfigFileName = "adw.toml"

// NewDefaults returns a Config populated with all default values. The
// defaults mirror the conventional layout: state under agents/, hook logs
// under logs/, e2e artifacts under frontend/test-results/.
func NewDefaults() *Config {
	return &Config{
		Agent: AgentConfig{
			Command:     "claude",
			StrongModel: "opus",
			FastModel:   "sonnet",
		},
		Trigger: TriggerConfig{
			Port:                8001,
			PollIntervalSeconds: 20,
		},
		Paths: PathsConfig{
			AgentsDir:     "agents",
			LogsDir:       "logs",
			E2EDir:        "frontend",
			E2EResultsDir: "frontend/test-results",
		},
		Limits: LimitsConfig{
			TestAttempts:      4,
			ReviewAttempts:    3,
			E2ETimeoutSeconds: 300,
		},
	}
}

// FindConfigFile walks up from the given directory to find adw.toml.
// Returns the absolute path to the config file, or an empty string if not
// found. Stops at the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("config: resolving path: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadFromFile parses the TOML file at path over the given base config.
func LoadFromFile(path string, base *Config) (*Config, error) {
	if _, err := toml.DecodeFile(path, base); err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}
	return base, nil
}

// LoadWithFile resolves the effective configuration from an explicit file
// path: defaults, then the file, then environment overrides.
func LoadWithFile(path string) (*Config, error) {
	cfg := NewDefaults()
	if _, err := LoadFromFile(path, cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// Load resolves the effective configuration: defaults, then adw.toml found
// from startDir upward (if any), then environment overrides.
func Load(startDir string) (*Config, error) {
	cfg := NewDefaults()

	path, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if _, err := LoadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv layers environment variables over the file-derived config.
// CLAUDE_CODE_PATH, GITHUB_PAT, and PORT are the contract with the original
// deployment scripts and always win.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CLAUDE_CODE_PATH"); v != "" {
		cfg.Agent.Command = v
	}
	if v := os.Getenv("GITHUB_PAT"); v != "" {
		cfg.GitHub.PAT = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Trigger.Port = port
		}
	}
}
