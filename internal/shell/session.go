// Package shell implements the interactive runq session: a readline loop
// that classifies each input line into a command and routes it to the
// catalog, the jargon engine, or the execution runner.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/leapstack-labs/runq/internal/catalog"
	"github.com/leapstack-labs/runq/internal/jargon"
	"github.com/leapstack-labs/runq/internal/runner"
	"github.com/leapstack-labs/runq/internal/store"
)

const defaultHistoryLimit = 10

// Options holds session dependencies and configuration.
type Options struct {
	Catalog *catalog.Catalog
	Jargon  *jargon.Engine
	Runner  *runner.Runner
	Store   store.Store
	// HistoryFile is the readline history path (optional).
	HistoryFile string
	// Stdout is the session's output writer (defaults to os.Stdout).
	Stdout io.Writer
	// Source supplies multi-line code (defaults to readline capture).
	Source CodeSource
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Session is one interactive shell session. It processes one command at a
// time to completion; the only suspension points are catalog I/O, the
// remote execution call, and reading input.
type Session struct {
	catalog *catalog.Catalog
	jargon  *jargon.Engine
	runner  *runner.Runner
	store   store.Store
	rl      *readline.Instance
	source  CodeSource
	out     io.Writer
	styles  *Styles
	logger  *slog.Logger

	// readLine prompts for one line of input. Backed by readline;
	// replaced in tests.
	readLine func(prompt string) (string, error)
}

// New creates a session and initializes its readline instance.
func New(opts Options) (*Session, error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	styles := NewStyles()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          styles.Prompt.Render("runq> "),
		HistoryFile:     opts.HistoryFile,
		AutoComplete:    newCompleter(opts.Catalog),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize shell: %w", err)
	}

	s := &Session{
		catalog: opts.Catalog,
		jargon:  opts.Jargon,
		runner:  opts.Runner,
		store:   opts.Store,
		rl:      rl,
		source:  opts.Source,
		out:     out,
		styles:  styles,
		logger:  logger,
	}
	if s.source == nil {
		s.source = &readlineSource{rl: rl}
	}
	s.readLine = func(prompt string) (string, error) {
		saved := rl.Config.Prompt
		rl.SetPrompt(prompt)
		defer rl.SetPrompt(saved)
		return rl.Readline()
	}
	return s, nil
}

// Close releases the readline instance.
func (s *Session) Close() error {
	return s.rl.Close()
}

// RunOnce reads one line and dispatches it. It returns done=true when the
// session should end: the user asked to exit, or input was interrupted.
// The returned error is non-fatal to a looping session.
func (s *Session) RunOnce(ctx context.Context) (done bool, err error) {
	line, err := s.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to read input: %w", err)
	}

	cmd := ParseCommand(line)
	if cmd.Kind == KindExit {
		return true, nil
	}
	return false, s.dispatch(ctx, cmd)
}

// RunLoop repeats RunOnce until the session ends. Command errors are
// printed and the loop continues.
func (s *Session) RunLoop(ctx context.Context) error {
	for {
		done, err := s.RunOnce(ctx)
		if err != nil {
			fmt.Fprintln(s.out, s.styles.Error.Render(err.Error()))
		}
		if done {
			return nil
		}
	}
}

// dispatch routes a parsed command. Every branch validates its argument
// against the catalog snapshot; only the execution fallback returns an
// error for an unknown token.
func (s *Session) dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case KindNone:
		return nil
	case KindHelp:
		fmt.Fprintln(s.out, helpText)
		return nil
	case KindList:
		prefix := ""
		if len(cmd.Args) == 1 {
			prefix = cmd.Args[0]
		}
		renderList(s.out, s.styles, s.catalog.Match(prefix), s.catalog.Aliases(), prefix, s.catalog.CanonicalCount())
		return nil
	case KindHistory:
		return s.showHistory(cmd.Args)
	case KindShowJargon:
		return s.showJargon(cmd.Args[0])
	case KindCreateJargon:
		return s.createJargon(cmd.Args[0])
	case KindDeleteJargon:
		return s.deleteJargon(cmd.Args[0])
	case KindShowAlias:
		s.showAlias(cmd.Args[0])
		return nil
	case KindCreateAlias:
		s.createAlias(cmd.Args[0], cmd.Args[1])
		return nil
	case KindDeleteAlias:
		s.deleteAlias(cmd.Args[0])
		return nil
	case KindUsage:
		fmt.Fprintf(s.out, "usage: %s\n", cmd.Args[0])
		return nil
	case KindRun:
		return s.run(ctx, cmd.Args[0])
	default:
		return nil
	}
}

func (s *Session) showHistory(args []string) error {
	limit := defaultHistoryLimit
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintf(s.out, "not a count: `%s`\n", args[0])
			return nil
		}
		limit = n
	}

	runs, err := s.store.ListRuns(limit)
	if err != nil {
		return err
	}
	renderHistory(s.out, runs)
	return nil
}

func (s *Session) showJargon(name string) error {
	if !s.catalog.Has(name) {
		s.printUnknown(name)
		return nil
	}

	template, guard, ok, err := s.jargon.Show(name)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(s.out, "no jargon wrapping has been set for the `%s` language\n", name)
		return nil
	}

	fmt.Fprintf(s.out, "%s\n%s\n", s.styles.Prompt.Render("jargon:"), template)
	if guard != "" {
		fmt.Fprintf(s.out, "%s %s\n", s.styles.Prompt.Render("jargon guard:"), guard)
	}
	return nil
}

func (s *Session) createJargon(name string) error {
	if !s.catalog.Has(name) {
		s.printUnknown(name)
		return nil
	}

	has, err := s.jargon.Has(name)
	if err != nil {
		return err
	}
	if has {
		if !s.confirm(fmt.Sprintf("`%s` already has jargon. Overwrite? (y/n) ", name)) {
			fmt.Fprintln(s.out, "cancelled")
			return nil
		}
	}

	fmt.Fprintf(s.out, "jargon with a single %s marker %s\n",
		jargon.Marker, s.styles.Muted.Render("(ctrl+d to submit)"))
	template, err := s.source.GetCode()
	if err != nil {
		return err
	}
	guard, err := s.readLine("guard substring (optional): ")
	if err != nil {
		return err
	}

	if err := s.jargon.Set(name, template, strings.TrimSpace(guard)); err != nil {
		fmt.Fprintln(s.out, s.styles.Error.Render(err.Error()))
		return nil
	}
	fmt.Fprintf(s.out, "created jargon for the `%s` language\n", name)
	return nil
}

func (s *Session) deleteJargon(name string) error {
	if !s.catalog.Has(name) {
		s.printUnknown(name)
		return nil
	}

	has, err := s.jargon.Has(name)
	if err != nil {
		return err
	}
	if !has {
		fmt.Fprintf(s.out, "`%s` has no jargon\n", name)
		return nil
	}

	if err := s.jargon.Delete(name); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "jargon for the `%s` language deleted\n", name)
	return nil
}

func (s *Session) showAlias(name string) {
	if target, ok := s.catalog.DescribeAlias(name); ok {
		fmt.Fprintf(s.out, "`%s` is an alias of `%s`\n", name, target)
		return
	}
	fmt.Fprintf(s.out, "`%s` is not an alias\n", name)
}

func (s *Session) createAlias(name, target string) {
	if err := s.catalog.CreateAlias(name, target); err != nil {
		fmt.Fprintln(s.out, s.styles.Error.Render(err.Error()))
		return
	}
	fmt.Fprintf(s.out, "created `%s` as an alias to `%s`\n", name, s.catalog.Dealias(name))
}

func (s *Session) deleteAlias(name string) {
	if err := s.catalog.DeleteAlias(name); err != nil {
		fmt.Fprintln(s.out, s.styles.Error.Render(err.Error()))
		return
	}
	fmt.Fprintf(s.out, "deleted alias `%s`\n", name)
}

// run is the fallback branch: a bare token triggers an execution.
// Unknown tokens signal InvalidLanguageError.
func (s *Session) run(ctx context.Context, token string) error {
	if !s.catalog.Has(token) {
		return &catalog.InvalidLanguageError{Token: token, Suggestion: s.catalog.Suggest(token)}
	}

	fmt.Fprintf(s.out, "%s %s\n", s.styles.Prompt.Render("code:"),
		s.styles.Muted.Render("(ctrl+d to submit)"))
	raw, err := s.source.GetCode()
	if err != nil {
		return err
	}

	prepared, err := s.runner.Prepare(token, raw)
	if err != nil {
		return err
	}

	result, err := s.runner.Execute(ctx, prepared)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s\n%s", s.styles.Prompt.Render(fmt.Sprintf("`%s` output:", prepared.Language)), result.Stdout)
	if !strings.HasSuffix(result.Stdout, "\n") {
		fmt.Fprintln(s.out)
	}
	fmt.Fprintf(s.out, "%s %d\n", s.styles.Prompt.Render("exit status:"), result.ExitStatus)
	return nil
}

func (s *Session) printUnknown(name string) {
	e := &catalog.InvalidLanguageError{Token: name, Suggestion: s.catalog.Suggest(name)}
	fmt.Fprintln(s.out, s.styles.Error.Render(e.Error()))
}

// confirm asks a yes/no question on the session's readline instance.
func (s *Session) confirm(prompt string) bool {
	answer, err := s.readLine(prompt)
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// newCompleter builds tab completion over the shell commands and every
// catalog name.
func newCompleter(c *catalog.Catalog) *readline.PrefixCompleter {
	nameItems := func() []readline.PrefixCompleterInterface {
		var items []readline.PrefixCompleterInterface
		for _, name := range c.Names() {
			items = append(items, readline.PcItem(name))
		}
		return items
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("list"),
		readline.PcItem("history"),
		readline.PcItem("jargon", nameItems()...),
		readline.PcItem("alias", nameItems()...),
		readline.PcItem("create",
			readline.PcItem("alias"),
			readline.PcItem("jargon", nameItems()...),
		),
		readline.PcItem("delete",
			readline.PcItem("alias", nameItems()...),
			readline.PcItem("jargon", nameItems()...),
		),
	}
	items = append(items, nameItems()...)

	return readline.NewPrefixCompleter(items...)
}
