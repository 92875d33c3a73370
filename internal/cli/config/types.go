// Package config provides configuration management for the runq CLI.
//
// Configuration is layered with koanf: built-in defaults, an optional
// runq.yaml file, RUNQ_-prefixed environment variables, and finally any
// explicitly set command-line flags.
package config

import "time"

// Default configuration values.
const (
	DefaultDBPath         = "runq.db"
	DefaultEndpoint       = "https://tio.run"
	DefaultTimeoutSeconds = 30
)

// Config holds all CLI configuration options.
type Config struct {
	// DBPath is the SQLite database file, or ":memory:".
	DBPath string `koanf:"db_path"`
	// Endpoint is the base URL of the remote execution service.
	Endpoint string `koanf:"endpoint"`
	// TimeoutSeconds bounds each remote HTTP call.
	TimeoutSeconds int `koanf:"timeout_seconds"`
	// HistoryFile is the readline history path (empty disables it).
	HistoryFile string `koanf:"history_file"`
	// Loop keeps the session open after each command.
	Loop bool `koanf:"loop"`
	// Verbose raises logging to debug level.
	Verbose bool `koanf:"verbose"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
