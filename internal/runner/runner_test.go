package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runq/internal/catalog"
	"github.com/leapstack-labs/runq/internal/jargon"
	"github.com/leapstack-labs/runq/internal/remote"
	"github.com/leapstack-labs/runq/internal/store"
	"github.com/leapstack-labs/runq/internal/testutil"
)

func TestSplitFence(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCode  string
		wantStdin string
	}{
		{
			name:      "no fence markers",
			input:     "print(1)\nprint(2)",
			wantCode:  "print(1)\nprint(2)",
			wantStdin: "",
		},
		{
			name:      "fenced code with stdin",
			input:     "```\nprint(1)\n```\n5\n",
			wantCode:  "print(1)",
			wantStdin: "5\n",
		},
		{
			name:      "fenced code without stdin",
			input:     "```\nprint(1)\n```",
			wantCode:  "print(1)",
			wantStdin: "",
		},
		{
			name:      "missing closing fence",
			input:     "```\nprint(1)\nprint(2)",
			wantCode:  "print(1)\nprint(2)",
			wantStdin: "",
		},
		{
			name:      "opening fence without newline",
			input:     "```print(1)```",
			wantCode:  "print(1)",
			wantStdin: "",
		},
		{
			name:      "empty input",
			input:     "",
			wantCode:  "",
			wantStdin: "",
		},
		{
			name:      "fence only",
			input:     "```",
			wantCode:  "",
			wantStdin: "",
		},
		{
			name:      "multi-line stdin preserved",
			input:     "```\nread x\n```\nfirst\nsecond\n",
			wantCode:  "read x",
			wantStdin: "first\nsecond\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdin := SplitFence(tt.input)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStdin, stdin)
		})
	}
}

// fakeService implements both the catalog's LanguageLister and the
// runner's Executor.
type fakeService struct {
	languages []string
	result    *remote.ExecResult
	execErr   error
	lastReq   remote.ExecRequest
}

func (f *fakeService) ListLanguages(_ context.Context) ([]string, error) {
	return f.languages, nil
}

func (f *fakeService) Execute(_ context.Context, req remote.ExecRequest) (*remote.ExecResult, error) {
	f.lastReq = req
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.result, nil
}

func setupRunner(t *testing.T, svc *fakeService) (*Runner, *store.SQLiteStore) {
	t.Helper()
	s := store.NewSQLiteStore(nil)
	require.NoError(t, s.Open(":memory:"))
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())

	cat := catalog.New(catalog.Config{Store: s, Remote: svc})
	require.NoError(t, cat.Load(context.Background()))

	logger := testutil.NewTestLogger(t)
	r := New(Config{
		Catalog: cat,
		Jargon:  jargon.NewEngine(s, logger),
		Remote:  svc,
		Store:   s,
		Logger:  logger,
	})
	return r, s
}

func TestRunner_PrepareWrapsWithChosenToken(t *testing.T) {
	svc := &fakeService{languages: []string{"python3", "go"}}
	r, s := setupRunner(t, svc)

	require.NoError(t, s.CreateAlias("py", "python3"))
	require.NoError(t, r.catalog.Load(context.Background()))
	// The alias holds the template; the canonical language has none.
	require.NoError(t, r.jargon.Set("py", "if True:\n    INSERT_HERE", ""))

	p, err := r.Prepare("py", "print(1)")
	require.NoError(t, err)
	assert.Equal(t, "python3", p.Language, "chosen token resolves to canonical language")
	assert.Equal(t, "if True:\n    print(1)", p.Code, "wrapping keys off the chosen token")
	assert.Empty(t, p.Stdin)

	// The canonical name does not inherit the alias's template.
	p, err = r.Prepare("python3", "print(1)")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", p.Code)
}

func TestRunner_PrepareSplitsFencedInput(t *testing.T) {
	svc := &fakeService{languages: []string{"python3"}}
	r, _ := setupRunner(t, svc)

	p, err := r.Prepare("python3", "```\nprint(input())\n```\n5\n")
	require.NoError(t, err)
	assert.Equal(t, "print(input())", p.Code)
	assert.Equal(t, "5\n", p.Stdin)
}

func TestRunner_ExecuteReturnsResultUnchanged(t *testing.T) {
	svc := &fakeService{
		languages: []string{"python3"},
		result:    &remote.ExecResult{Stdout: "5\n", ExitStatus: 0},
	}
	r, s := setupRunner(t, svc)

	result, err := r.Execute(context.Background(), &Prepared{
		Language: "python3",
		Code:     "print(input())",
		Stdin:    "5\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "5\n", result.Stdout)
	assert.Equal(t, 0, result.ExitStatus)
	assert.Equal(t, "python3", svc.lastReq.Language)
	assert.Equal(t, "5\n", svc.lastReq.Stdin)

	// A history row is recorded for the successful execution.
	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "python3", runs[0].Language)
	assert.NotEmpty(t, runs[0].ID)
}

func TestRunner_ExecuteRefreshesStaleCatalog(t *testing.T) {
	svc := &fakeService{
		languages: []string{"python3"},
		result:    &remote.ExecResult{Stdout: "", ExitStatus: 0},
	}
	r, s := setupRunner(t, svc)

	// The service gains a language before the next execution.
	svc.languages = []string{"python3", "zig"}

	_, err := r.Execute(context.Background(), &Prepared{Language: "python3", Code: "1"})
	require.NoError(t, err)

	count, err := s.CountLanguages()
	require.NoError(t, err)
	assert.Equal(t, 2, count, "refresh must complete before the execution call")
	assert.True(t, r.catalog.Has("zig"))
}

func TestRunner_ExecuteErrorPropagatesWithoutHistory(t *testing.T) {
	svc := &fakeService{
		languages: []string{"python3"},
		execErr:   errors.New("service unavailable"),
	}
	r, s := setupRunner(t, svc)

	_, err := r.Execute(context.Background(), &Prepared{Language: "python3", Code: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service unavailable")

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
