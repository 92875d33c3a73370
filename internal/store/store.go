// Package store provides the persistent catalog store for runq using SQLite.
// It holds the supported-language catalog, user-defined aliases, jargon
// templates, and execution history.
package store

import "time"

// JargonEntry is a stored wrapper template keyed by a language or alias name.
// Guard is a substring whose presence in submitted code means the wrapper is
// not needed; an empty guard means the template always applies.
type JargonEntry struct {
	Key      string
	Template string
	Guard    string
}

// Run records one remote execution.
type Run struct {
	ID         string
	Language   string
	ExitStatus int
	DurationMS int64
	CreatedAt  time.Time
}

// Store is the persistence interface for the catalog, aliases, jargon, and
// execution history.
type Store interface {
	// Languages holds the persisted catalog: canonical names reported by
	// the execution service plus alias names.
	ListLanguages() ([]string, error)
	InsertLanguages(names []string) error
	CountLanguages() (int, error)

	ListAliases() (map[string]string, error)
	CreateAlias(name, target string) error
	// DeleteAliasCascade removes the alias row, its languages-table entry,
	// and any jargon keyed by the alias name in a single transaction.
	DeleteAliasCascade(name string) error

	GetJargon(key string) (*JargonEntry, error)
	SetJargon(entry *JargonEntry) error
	DeleteJargon(key string) error
	ListJargonKeys() ([]string, error)

	RecordRun(run *Run) error
	ListRuns(limit int) ([]*Run, error)

	// SeedDefaults installs default aliases and jargon templates on first
	// run. Inserts are idempotent; existing rows are left untouched.
	SeedDefaults(aliases map[string]string, jargon []JargonEntry) error

	Close() error
}
