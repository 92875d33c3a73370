// Package jargon stores and applies per-language wrapper templates.
// A template surrounds user-submitted code with boilerplate (imports, a
// main function) so short snippets run as complete programs.
package jargon

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/runq/internal/store"
)

// Marker is the designated insertion point for user code. It must appear
// exactly once in every template.
const Marker = "INSERT_HERE"

// Engine looks up and applies jargon templates.
type Engine struct {
	store  store.Store
	logger *slog.Logger
}

// NewEngine creates a jargon engine over the given store.
// A nil logger is replaced with a discard logger.
func NewEngine(s store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{store: s, logger: logger}
}

// Wrap splices code into the template stored under key, preserving the
// template's boilerplate verbatim. The key is matched literally: a
// canonical language and its aliases hold independent templates. Code is
// returned unchanged when the key has no template, or when the template's
// guard substring already appears in the code. Pure string composition;
// the code itself is never validated.
func (e *Engine) Wrap(code, key string) (string, error) {
	entry, err := e.store.GetJargon(key)
	if err != nil {
		return "", fmt.Errorf("failed to look up jargon: %w", err)
	}
	if entry == nil {
		return code, nil
	}
	if entry.Guard != "" && strings.Contains(code, entry.Guard) {
		return code, nil
	}

	e.logger.Debug("wrapping code", slog.String("key", key))
	return strings.Replace(entry.Template, Marker, code, 1), nil
}

// Show returns the template and guard stored under key, with ok=false
// when the key has no template.
func (e *Engine) Show(key string) (template, guard string, ok bool, err error) {
	entry, err := e.store.GetJargon(key)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to look up jargon: %w", err)
	}
	if entry == nil {
		return "", "", false, nil
	}
	return entry.Template, entry.Guard, true, nil
}

// Set stores a template under key, replacing any existing one.
// The insertion marker must appear exactly once.
func (e *Engine) Set(key, template, guard string) error {
	if n := strings.Count(template, Marker); n != 1 {
		return fmt.Errorf("template must contain the %s marker exactly once, found %d", Marker, n)
	}
	return e.store.SetJargon(&store.JargonEntry{Key: key, Template: template, Guard: guard})
}

// Delete removes the template stored under key.
func (e *Engine) Delete(key string) error {
	return e.store.DeleteJargon(key)
}

// Has reports whether key has a stored template.
func (e *Engine) Has(key string) (bool, error) {
	entry, err := e.store.GetJargon(key)
	if err != nil {
		return false, fmt.Errorf("failed to look up jargon: %w", err)
	}
	return entry != nil, nil
}
