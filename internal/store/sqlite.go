package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store instance.
// A nil logger is replaced with a discard logger.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	} else {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- Language operations ---

// ListLanguages returns all persisted catalog names in sorted order.
func (s *SQLiteStore) ListLanguages() ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT name FROM languages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan language: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// InsertLanguages bulk-inserts catalog names in a single transaction.
// Existing entries are left untouched, so re-running is a no-op.
func (s *SQLiteStore) InsertLanguages(names []string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO languages (name) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, name := range names {
		if _, err := stmt.Exec(name); err != nil {
			return fmt.Errorf("failed to insert language %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("inserted languages", slog.Int("count", len(names)))
	return nil
}

// CountLanguages returns the number of persisted catalog names, aliases
// included.
func (s *SQLiteStore) CountLanguages() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM languages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count languages: %w", err)
	}
	return count, nil
}

// --- Alias operations ---

// ListAliases returns the alias table as a name -> target map.
func (s *SQLiteStore) ListAliases() (map[string]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT name, target FROM aliases`)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	aliases := make(map[string]string)
	for rows.Next() {
		var name, target string
		if err := rows.Scan(&name, &target); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases[name] = target
	}

	return aliases, rows.Err()
}

// CreateAlias inserts an alias and registers its name in the languages
// table so the alias is a valid catalog member for lookup purposes.
// Both writes happen in one transaction.
func (s *SQLiteStore) CreateAlias(name, target string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO aliases (name, target) VALUES (?, ?)`, name, target); err != nil {
		return fmt.Errorf("failed to insert alias: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO languages (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("failed to register alias in catalog: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("created alias", slog.String("name", name), slog.String("target", target))
	return nil
}

// DeleteAliasCascade deletes an alias, its catalog entry, and any jargon
// keyed by the alias name. All rows disappear together or not at all.
func (s *SQLiteStore) DeleteAliasCascade(name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`DELETE FROM aliases WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("alias not found: %s", name)
	}

	if _, err := tx.Exec(`DELETE FROM languages WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to remove alias from catalog: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM jargon WHERE key = ?`, name); err != nil {
		return fmt.Errorf("failed to delete alias jargon: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("deleted alias", slog.String("name", name))
	return nil
}

// --- Jargon operations ---

// GetJargon retrieves a jargon template by its literal key.
// Returns nil without error when the key has no template.
func (s *SQLiteStore) GetJargon(key string) (*JargonEntry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	entry := &JargonEntry{Key: key}
	err := s.db.QueryRow(
		`SELECT template, guard FROM jargon WHERE key = ?`, key,
	).Scan(&entry.Template, &entry.Guard)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get jargon: %w", err)
	}

	return entry, nil
}

// SetJargon inserts or replaces the jargon template for a key.
func (s *SQLiteStore) SetJargon(entry *JargonEntry) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO jargon (key, template, guard) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET template = excluded.template, guard = excluded.guard`,
		entry.Key, entry.Template, entry.Guard,
	)
	if err != nil {
		return fmt.Errorf("failed to set jargon: %w", err)
	}

	s.logger.Debug("set jargon", slog.String("key", entry.Key))
	return nil
}

// DeleteJargon removes the jargon template for a key.
func (s *SQLiteStore) DeleteJargon(key string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec(`DELETE FROM jargon WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete jargon: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("no jargon for key: %s", key)
	}

	return nil
}

// ListJargonKeys returns all keys that have a jargon template.
func (s *SQLiteStore) ListJargonKeys() ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT key FROM jargon ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jargon keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan jargon key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// --- Run history operations ---

// RecordRun stores one execution record.
func (s *SQLiteStore) RecordRun(run *Run) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, language, exit_status, duration_ms, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Language, run.ExitStatus, run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// ListRuns returns the most recent execution records, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, language, exit_status, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.Language, &run.ExitStatus, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// --- Seeding ---

// SeedDefaults installs default aliases and jargon templates.
// Every insert is INSERT OR IGNORE, so user-modified rows survive.
func (s *SQLiteStore) SeedDefaults(aliases map[string]string, jargon []JargonEntry) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for name, target := range aliases {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO aliases (name, target) VALUES (?, ?)`, name, target); err != nil {
			return fmt.Errorf("failed to seed alias %q: %w", name, err)
		}
	}
	for _, entry := range jargon {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO jargon (key, template, guard) VALUES (?, ?, ?)`,
			entry.Key, entry.Template, entry.Guard,
		); err != nil {
			return fmt.Errorf("failed to seed jargon %q: %w", entry.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("seeded defaults",
		slog.Int("aliases", len(aliases)), slog.Int("jargon", len(jargon)))
	return nil
}

// Ensure SQLiteStore implements the Store interface.
var _ Store = (*SQLiteStore)(nil)
