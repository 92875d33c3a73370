package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runq/internal/catalog"
	"github.com/leapstack-labs/runq/internal/jargon"
	"github.com/leapstack-labs/runq/internal/remote"
	"github.com/leapstack-labs/runq/internal/runner"
	"github.com/leapstack-labs/runq/internal/store"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{line: "", want: Command{Kind: KindNone}},
		{line: "   ", want: Command{Kind: KindNone}},
		{line: "help", want: Command{Kind: KindHelp}},
		{line: "exit", want: Command{Kind: KindExit}},
		{line: "list", want: Command{Kind: KindList}},
		{line: "list py", want: Command{Kind: KindList, Args: []string{"py"}}},
		{line: "history", want: Command{Kind: KindHistory, Args: []string{}}},
		{line: "history 5", want: Command{Kind: KindHistory, Args: []string{"5"}}},
		{line: "jargon go", want: Command{Kind: KindShowJargon, Args: []string{"go"}}},
		{line: "jargon", want: Command{Kind: KindUsage, Args: []string{"jargon <language>"}}},
		{line: "alias py", want: Command{Kind: KindShowAlias, Args: []string{"py"}}},
		{line: "create jargon go", want: Command{Kind: KindCreateJargon, Args: []string{"go"}}},
		{line: "create alias py python3", want: Command{Kind: KindCreateAlias, Args: []string{"py", "python3"}}},
		{line: "create alias py", want: Command{Kind: KindUsage, Args: []string{"create alias <new alias> <language>"}}},
		{line: "delete jargon go", want: Command{Kind: KindDeleteJargon, Args: []string{"go"}}},
		{line: "delete alias py", want: Command{Kind: KindDeleteAlias, Args: []string{"py"}}},
		{line: "delete alias", want: Command{Kind: KindUsage, Args: []string{"delete alias <alias>"}}},
		{line: "python3", want: Command{Kind: KindRun, Args: []string{"python3"}}},
		{line: "PYTHON3", want: Command{Kind: KindRun, Args: []string{"python3"}}},
		{line: "some nonsense here", want: Command{Kind: KindRun, Args: []string{"some nonsense here"}}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ParseCommand(tt.line)
			assert.Equal(t, tt.want.Kind, got.Kind)
			if len(tt.want.Args) > 0 {
				assert.Equal(t, tt.want.Args, got.Args)
			}
		})
	}
}

// stubSource returns canned code.
type stubSource struct {
	code string
}

func (s *stubSource) GetCode() (string, error) { return s.code, nil }

// fakeService backs both the catalog and the runner in session tests.
type fakeService struct {
	languages []string
	result    *remote.ExecResult
	lastReq   remote.ExecRequest
}

func (f *fakeService) ListLanguages(_ context.Context) ([]string, error) {
	return f.languages, nil
}

func (f *fakeService) Execute(_ context.Context, req remote.ExecRequest) (*remote.ExecResult, error) {
	f.lastReq = req
	return f.result, nil
}

func plainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{Prompt: plain, Accent: plain, Muted: plain, Error: plain}
}

func setupSession(t *testing.T, svc *fakeService, source CodeSource) (*Session, *bytes.Buffer) {
	t.Helper()
	s := store.NewSQLiteStore(nil)
	require.NoError(t, s.Open(":memory:"))
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())

	cat := catalog.New(catalog.Config{Store: s, Remote: svc})
	require.NoError(t, cat.Load(context.Background()))

	eng := jargon.NewEngine(s, nil)
	run := runner.New(runner.Config{Catalog: cat, Jargon: eng, Remote: svc, Store: s})

	var out bytes.Buffer
	sess := &Session{
		catalog:  cat,
		jargon:   eng,
		runner:   run,
		store:    s,
		source:   source,
		out:      &out,
		styles:   plainStyles(),
		readLine: func(string) (string, error) { return "", nil },
	}
	return sess, &out
}

func TestSession_ListCommand(t *testing.T) {
	svc := &fakeService{languages: []string{"python3", "python2", "go"}}
	sess, out := setupSession(t, svc, nil)
	require.NoError(t, sess.catalog.CreateAlias("py", "python3"))

	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("list")))
	// Count in the header excludes aliases.
	assert.Contains(t, out.String(), "languages (3):")
	assert.Contains(t, out.String(), "py")

	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("list python")))
	assert.Contains(t, out.String(), "languages that start with `python` (2):")
	assert.NotContains(t, out.String(), "go")
}

func TestSession_AliasCommands(t *testing.T) {
	svc := &fakeService{languages: []string{"python3"}}
	sess, out := setupSession(t, svc, nil)

	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("create alias py python3")))
	assert.Contains(t, out.String(), "created `py` as an alias to `python3`")

	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("alias py")))
	assert.Contains(t, out.String(), "`py` is an alias of `python3`")

	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("alias python3")))
	assert.Contains(t, out.String(), "`python3` is not an alias")

	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("delete alias py")))
	assert.Contains(t, out.String(), "deleted alias `py`")

	// A second delete surfaces NotAnAliasError as a message, not a
	// session error.
	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("delete alias py")))
	assert.Contains(t, out.String(), "`py` is not an alias")
}

func TestSession_RunCommand(t *testing.T) {
	svc := &fakeService{
		languages: []string{"python3"},
		result:    &remote.ExecResult{Stdout: "42", ExitStatus: 0},
	}
	source := &stubSource{code: "print(42)"}
	sess, out := setupSession(t, svc, source)

	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("python3")))
	assert.Contains(t, out.String(), "`python3` output:")
	assert.Contains(t, out.String(), "42")
	assert.Contains(t, out.String(), "exit status: 0")
	assert.Equal(t, "print(42)", svc.lastReq.Code)
}

func TestSession_RunUnknownTokenRaises(t *testing.T) {
	svc := &fakeService{languages: []string{"python3"}}
	sess, _ := setupSession(t, svc, &stubSource{})

	err := sess.dispatch(context.Background(), ParseCommand("pithon3"))
	require.Error(t, err)

	var invalid *catalog.InvalidLanguageError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "pithon3", invalid.Token)
	assert.Equal(t, "python3", invalid.Suggestion)
}

func TestSession_JargonCommands(t *testing.T) {
	svc := &fakeService{languages: []string{"go"}}
	sess, out := setupSession(t, svc, nil)

	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("jargon go")))
	assert.Contains(t, out.String(), "no jargon wrapping has been set")

	require.NoError(t, sess.jargon.Set("go", "func main() {\n\tINSERT_HERE\n}", "func main("))

	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("jargon go")))
	assert.Contains(t, out.String(), "func main() {")
	assert.Contains(t, out.String(), "jargon guard: func main(")

	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("delete jargon go")))
	assert.Contains(t, out.String(), "jargon for the `go` language deleted")

	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("delete jargon go")))
	assert.Contains(t, out.String(), "`go` has no jargon")

	// Unknown names get a message, not an error.
	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("jargon cobol-9000")))
	assert.Contains(t, out.String(), "invalid language")
}

func TestSession_CreateJargon(t *testing.T) {
	svc := &fakeService{languages: []string{"go"}}
	source := &stubSource{code: "func main() {\n\tINSERT_HERE\n}"}
	sess, out := setupSession(t, svc, source)
	sess.readLine = func(string) (string, error) { return "func main(", nil }

	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("create jargon go")))
	assert.Contains(t, out.String(), "created jargon for the `go` language")

	template, guard, ok, err := sess.jargon.Show("go")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, template, "INSERT_HERE")
	assert.Equal(t, "func main(", guard)
}

func TestSession_HistoryCommand(t *testing.T) {
	svc := &fakeService{
		languages: []string{"go"},
		result:    &remote.ExecResult{Stdout: "", ExitStatus: 1},
	}
	sess, out := setupSession(t, svc, &stubSource{code: "panic(1)"})

	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("history")))
	assert.Contains(t, out.String(), "no executions recorded yet")

	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("go")))

	out.Reset()
	require.NoError(t, sess.dispatch(context.Background(), ParseCommand("history")))
	assert.Contains(t, out.String(), "go")
	assert.Contains(t, out.String(), "1")
}
