// Package catalog maintains the supported-language catalog and the alias
// registry. The catalog is the union of canonical language names reported
// by the execution service and user-defined alias names; it is loaded once
// at session start and threaded explicitly through every command.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/leapstack-labs/runq/internal/store"
)

// maxSuggestDistance bounds how far a typo suggestion may stray.
const maxSuggestDistance = 2

// LanguageLister fetches the execution service's live language list.
type LanguageLister interface {
	ListLanguages(ctx context.Context) ([]string, error)
}

// Catalog is the in-memory snapshot of the persisted catalog: the set of
// all valid selection targets plus the alias map. It is derived strictly
// from the store; every mutation writes through to the store before the
// snapshot is updated.
type Catalog struct {
	store   store.Store
	remote  LanguageLister
	logger  *slog.Logger
	names   map[string]struct{}
	aliases map[string]string
}

// Config holds catalog configuration.
type Config struct {
	Store  store.Store
	Remote LanguageLister
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates an unloaded catalog. Call Load before use.
func New(cfg Config) *Catalog {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{
		store:   cfg.Store,
		remote:  cfg.Remote,
		logger:  logger,
		names:   make(map[string]struct{}),
		aliases: make(map[string]string),
	}
}

// Load populates the snapshot from the store. On first run, when the
// persisted language set is empty, it fetches the live list from the
// execution service, unions it with all known alias names, and persists
// the result; the catalog is never left empty.
func (c *Catalog) Load(ctx context.Context) error {
	aliases, err := c.store.ListAliases()
	if err != nil {
		return fmt.Errorf("failed to load aliases: %w", err)
	}
	c.aliases = aliases

	names, err := c.store.ListLanguages()
	if err != nil {
		return fmt.Errorf("failed to load languages: %w", err)
	}

	if len(names) == 0 {
		c.logger.Debug("catalog empty, building from execution service")
		names, err = c.rebuild(ctx)
		if err != nil {
			return err
		}
	}

	c.names = make(map[string]struct{}, len(names))
	for _, name := range names {
		c.names[name] = struct{}{}
	}

	c.logger.Debug("catalog loaded",
		slog.Int("names", len(c.names)), slog.Int("aliases", len(c.aliases)))
	return nil
}

// rebuild fetches the live language list, unions alias names, and persists
// the result in one idempotent bulk insert.
func (c *Catalog) rebuild(ctx context.Context) ([]string, error) {
	live, err := c.remote.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live language list: %w", err)
	}

	names := make([]string, 0, len(live)+len(c.aliases))
	names = append(names, live...)
	for alias := range c.aliases {
		names = append(names, alias)
	}

	if err := c.store.InsertLanguages(names); err != nil {
		return nil, fmt.Errorf("failed to persist catalog: %w", err)
	}

	return names, nil
}

// RefreshIfStale reconciles the catalog with the execution service.
// Staleness is a mismatch between the persisted canonical-language count
// (all names minus aliases) and the live list's length. Equal counts mean
// no store write. Called opportunistically before every execution.
func (c *Catalog) RefreshIfStale(ctx context.Context) error {
	persisted, err := c.store.CountLanguages()
	if err != nil {
		return fmt.Errorf("failed to count persisted languages: %w", err)
	}
	canonical := persisted - len(c.aliases)

	live, err := c.remote.ListLanguages(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch live language list: %w", err)
	}

	if canonical == len(live) {
		return nil
	}

	c.logger.Debug("catalog stale, refreshing",
		slog.Int("persisted", canonical), slog.Int("live", len(live)))

	names := make([]string, 0, len(live)+len(c.aliases))
	names = append(names, live...)
	for alias := range c.aliases {
		names = append(names, alias)
	}
	if err := c.store.InsertLanguages(names); err != nil {
		return fmt.Errorf("failed to persist refreshed catalog: %w", err)
	}

	for _, name := range names {
		c.names[name] = struct{}{}
	}
	return nil
}

// Has reports whether a name is a valid selection target.
func (c *Catalog) Has(name string) bool {
	_, ok := c.names[name]
	return ok
}

// Names returns every catalog name in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.names))
	for name := range c.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Match returns the catalog names starting with prefix, sorted.
// An empty prefix matches everything.
func (c *Catalog) Match(prefix string) []string {
	var names []string
	for name := range c.names {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CanonicalCount returns the number of canonical (non-alias) languages.
func (c *Catalog) CanonicalCount() int {
	return len(c.names) - len(c.aliases)
}

// IsAlias reports whether a name is a user-defined alias.
func (c *Catalog) IsAlias(name string) bool {
	_, ok := c.aliases[name]
	return ok
}

// Dealias resolves a name to its canonical language. Canonical names come
// back unchanged; aliases map to their target. For any name already
// confirmed to be in the catalog this never fails, because every alias
// target was validated at creation time.
func (c *Catalog) Dealias(name string) string {
	if target, ok := c.aliases[name]; ok {
		return target
	}
	return name
}

// DescribeAlias returns the alias's target, or ok=false when the name is
// not an alias. Introspection only, not an error path.
func (c *Catalog) DescribeAlias(name string) (string, bool) {
	target, ok := c.aliases[name]
	return target, ok
}

// CreateAlias registers a new alias for a language. The name must be new
// to the catalog and the target must be a current member; a target that
// is itself an alias is resolved to its canonical language first.
func (c *Catalog) CreateAlias(name, target string) error {
	if c.IsAlias(name) {
		return fmt.Errorf("`%s` is already an alias", name)
	}
	if c.Has(name) {
		return fmt.Errorf("`%s` is already a language", name)
	}
	if !c.Has(target) {
		return &InvalidLanguageError{Token: target, Suggestion: c.Suggest(target)}
	}
	target = c.Dealias(target)

	if err := c.store.CreateAlias(name, target); err != nil {
		return fmt.Errorf("failed to create alias: %w", err)
	}

	c.aliases[name] = target
	c.names[name] = struct{}{}
	return nil
}

// DeleteAlias removes an alias and cascades deletion of any jargon keyed
// by the alias name. Deleting a canonical language or an unknown name
// fails with NotAnAliasError.
func (c *Catalog) DeleteAlias(name string) error {
	if !c.IsAlias(name) {
		return &NotAnAliasError{Name: name}
	}

	if err := c.store.DeleteAliasCascade(name); err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}

	delete(c.aliases, name)
	delete(c.names, name)
	return nil
}

// Aliases returns a copy of the alias map.
func (c *Catalog) Aliases() map[string]string {
	aliases := make(map[string]string, len(c.aliases))
	for name, target := range c.aliases {
		aliases[name] = target
	}
	return aliases
}

// Suggest returns the closest catalog name to token within a small edit
// distance, or "" when nothing is close enough.
func (c *Catalog) Suggest(token string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for name := range c.names {
		dist := levenshtein.ComputeDistance(token, name)
		if dist < bestDist || (dist == bestDist && name < best && best != "") {
			best = name
			bestDist = dist
		}
	}
	if bestDist > maxSuggestDistance {
		return ""
	}
	return best
}
