// Package runner orchestrates one code execution: it splits fenced input
// into code and stdin, applies jargon wrapping, resolves aliases, refreshes
// the catalog when stale, and calls the execution service.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/runq/internal/catalog"
	"github.com/leapstack-labs/runq/internal/jargon"
	"github.com/leapstack-labs/runq/internal/remote"
	"github.com/leapstack-labs/runq/internal/store"
)

// fence is the delimiter separating code from program stdin in raw input.
const fence = "```"

// Executor submits code to the execution service.
type Executor interface {
	Execute(ctx context.Context, req remote.ExecRequest) (*remote.ExecResult, error)
}

// Prepared is a fully resolved execution request: the canonical language,
// the jargon-wrapped code, and the program's stdin.
type Prepared struct {
	Language string
	Code     string
	Stdin    string
}

// Runner executes prepared requests against the execution service.
type Runner struct {
	catalog *catalog.Catalog
	jargon  *jargon.Engine
	remote  Executor
	store   store.Store
	logger  *slog.Logger
}

// Config holds runner configuration.
type Config struct {
	Catalog *catalog.Catalog
	Jargon  *jargon.Engine
	Remote  Executor
	// Store records execution history (optional).
	Store store.Store
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a runner.
func New(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		catalog: cfg.Catalog,
		jargon:  cfg.Jargon,
		remote:  cfg.Remote,
		store:   cfg.Store,
		logger:  logger,
	}
}

// SplitFence separates raw input into code and program stdin. Input that
// starts with a triple-backtick fence has the fence (and one newline
// immediately after it) stripped; everything after the closing fence is
// stdin. Without an opening fence the whole input is code and stdin is
// empty. A missing closing fence is not an error: the remainder is all
// code.
func SplitFence(input string) (code, stdin string) {
	if !strings.HasPrefix(input, fence) {
		return input, ""
	}
	code = input[len(fence):]
	if strings.HasPrefix(code, "\n") {
		code = code[1:]
	}
	if idx := strings.Index(code, fence); idx >= 0 {
		stdin = strings.TrimPrefix(code[idx+len(fence):], "\n")
		code = code[:idx]
	}
	code = strings.TrimSuffix(code, "\n")
	return code, stdin
}

// Prepare resolves the user's chosen token and raw input into an
// executable request. Jargon wrapping uses the originally chosen token
// (alias or canonical) as key; alias resolution happens after wrapping.
func (r *Runner) Prepare(chosen, raw string) (*Prepared, error) {
	code, stdin := SplitFence(raw)

	wrapped, err := r.jargon.Wrap(code, chosen)
	if err != nil {
		return nil, err
	}

	return &Prepared{
		Language: r.catalog.Dealias(chosen),
		Code:     wrapped,
		Stdin:    stdin,
	}, nil
}

// Execute refreshes the catalog if stale, then submits the prepared
// request. The service's stdout and exit status come back unchanged; a
// transport or service error is fatal for this command only. Successful
// executions are recorded in the run history.
func (r *Runner) Execute(ctx context.Context, p *Prepared) (*remote.ExecResult, error) {
	if err := r.catalog.RefreshIfStale(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh catalog: %w", err)
	}

	start := time.Now()
	result, err := r.remote.Execute(ctx, remote.ExecRequest{
		Language: p.Language,
		Code:     p.Code,
		Stdin:    p.Stdin,
	})
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		run := &store.Run{
			ID:         uuid.New().String(),
			Language:   p.Language,
			ExitStatus: result.ExitStatus,
			DurationMS: time.Since(start).Milliseconds(),
		}
		if err := r.store.RecordRun(run); err != nil {
			// History is best-effort; the user already has their output.
			r.logger.Warn("failed to record run", slog.Any("error", err))
		}
	}

	return result, nil
}
