// Package config loads the workspace configuration from
// .steward/config.yaml. A missing file yields defaults; a malformed one
// is an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/steward/internal/readiness"
)

// StateDir is the workspace state directory holding the plan, the
// validation report, the role catalog, and the audit history.
const StateDir = ".steward"

// Config holds the governor's workspace settings.
type Config struct {
	// RolesFile is the role catalog path.
	RolesFile string `yaml:"roles_file"`

	// DomainsFile is the domain tag table path.
	DomainsFile string `yaml:"domains_file"`

	// ReportFile is where validation runs persist their outcome.
	ReportFile string `yaml:"report_file"`

	// HistoryDB is the sqlite audit history path.
	HistoryDB string `yaml:"history_db"`

	// FreshnessWindow is how old a passing validation report may be
	// before the commit gate downgrades Allow to Warn.
	FreshnessWindow time.Duration `yaml:"freshness_window"`

	// CheckCommands are the shell commands "steward check" runs to
	// produce the validation report.
	CheckCommands []string `yaml:"check_commands"`

	// LogLevel sets console verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Tools and Files configure the readiness battery.
	Tools []readiness.ToolCheck `yaml:"tools"`
	Files []readiness.FileCheck `yaml:"files"`
}

// DefaultConfig returns the configuration a freshly initialized
// workspace gets.
func DefaultConfig() *Config {
	return &Config{
		RolesFile:       filepath.Join(StateDir, "roles.yaml"),
		DomainsFile:     filepath.Join(StateDir, "domains.yaml"),
		ReportFile:      filepath.Join(StateDir, "validation.yaml"),
		HistoryDB:       filepath.Join(StateDir, "history.db"),
		FreshnessWindow: time.Hour,
		CheckCommands:   nil,
		LogLevel:        "info",
		Tools: []readiness.ToolCheck{
			{Name: "git", Critical: true},
		},
		Files: []readiness.FileCheck{
			{Name: "role catalog", Path: filepath.Join(StateDir, "roles.yaml"), Critical: true},
			{Name: "domain table", Path: filepath.Join(StateDir, "domains.yaml"), Critical: true},
		},
	}
}

// Load reads configuration from the given path. A missing file returns
// defaults without error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations come in as strings ("45m"), so decode through an
	// intermediate shape and merge non-zero values over the defaults.
	type yamlConfig struct {
		RolesFile       string                `yaml:"roles_file"`
		DomainsFile     string                `yaml:"domains_file"`
		ReportFile      string                `yaml:"report_file"`
		HistoryDB       string                `yaml:"history_db"`
		FreshnessWindow string                `yaml:"freshness_window"`
		CheckCommands   []string              `yaml:"check_commands"`
		LogLevel        string                `yaml:"log_level"`
		Tools           []readiness.ToolCheck `yaml:"tools"`
		Files           []readiness.FileCheck `yaml:"files"`
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yc.RolesFile != "" {
		cfg.RolesFile = yc.RolesFile
	}
	if yc.DomainsFile != "" {
		cfg.DomainsFile = yc.DomainsFile
	}
	if yc.ReportFile != "" {
		cfg.ReportFile = yc.ReportFile
	}
	if yc.HistoryDB != "" {
		cfg.HistoryDB = yc.HistoryDB
	}
	if yc.FreshnessWindow != "" {
		window, err := time.ParseDuration(yc.FreshnessWindow)
		if err != nil {
			return nil, fmt.Errorf("invalid freshness_window %q: %w", yc.FreshnessWindow, err)
		}
		cfg.FreshnessWindow = window
	}
	if yc.CheckCommands != nil {
		cfg.CheckCommands = yc.CheckCommands
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	if yc.Tools != nil {
		cfg.Tools = yc.Tools
	}
	if yc.Files != nil {
		cfg.Files = yc.Files
	}

	return cfg, nil
}

// LoadFromDir loads .steward/config.yaml relative to the given workspace
// directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, StateDir, "config.yaml"))
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.RolesFile == "" {
		return fmt.Errorf("roles_file cannot be empty")
	}
	if c.DomainsFile == "" {
		return fmt.Errorf("domains_file cannot be empty")
	}
	if c.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness_window must be > 0, got %v", c.FreshnessWindow)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	return nil
}
