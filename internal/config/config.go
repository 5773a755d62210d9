package config

// Config is the top-level configuration structure mapping to adw.toml.
type Config struct {
	Agent   AgentConfig   `toml:"agent"`
	GitHub  GitHubConfig  `toml:"github"`
	Trigger TriggerConfig `toml:"trigger"`
	Paths   PathsConfig   `toml:"paths"`
	Limits  LimitsConfig  `toml:"limits"`
}

// AgentConfig maps to the [agent] section in adw.toml.
type AgentConfig struct {
	// Command is the coding-agent CLI executable. Defaults to "claude" and
	// may be overridden by the CLAUDE_CODE_PATH environment variable.
	Command string `toml:"command"`

	// StrongModel is used for heavy cognitive work (implement, review, plans).
	StrongModel string `toml:"strong_model"`

	// FastModel is used for routine work (classify, commit, branch names).
	FastModel string `toml:"fast_model"`
}

// GitHubConfig maps to the [github] section in adw.toml.
type GitHubConfig struct {
	// PAT is a personal access token forwarded to gh as GH_TOKEN. When empty
	// the GITHUB_PAT environment variable is consulted; when that is also
	// empty, gh falls back to its own stored authentication.
	PAT string `toml:"pat"`
}

// TriggerConfig maps to the [trigger] section in adw.toml.
type TriggerConfig struct {
	// Port is the webhook receiver listen port. Overridden by PORT.
	Port int `toml:"port"`

	// PollIntervalSeconds is the poller cycle interval.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// PathsConfig maps to the [paths] section in adw.toml. All paths are
// relative to the project root unless absolute.
type PathsConfig struct {
	// AgentsDir holds per-workflow state, prompts, and raw agent output.
	AgentsDir string `toml:"agents_dir"`

	// LogsDir holds per-session guardrail hook logs.
	LogsDir string `toml:"logs_dir"`

	// E2EDir is the frontend directory the browser-automation tool runs in.
	E2EDir string `toml:"e2e_dir"`

	// E2EResultsDir is scanned for screenshots after an e2e run.
	E2EResultsDir string `toml:"e2e_results_dir"`
}

// LimitsConfig maps to the [limits] section in adw.toml.
type LimitsConfig struct {
	// TestAttempts bounds the test → resolve → retest loop.
	TestAttempts int `toml:"test_attempts"`

	// ReviewAttempts bounds the review → fix → re-review loop.
	ReviewAttempts int `toml:"review_attempts"`

	// E2ETimeoutSeconds bounds the browser-automation subprocess.
	E2ETimeoutSeconds int `toml:"e2e_timeout_seconds"`
}
