package shell

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// CodeSource supplies the multi-line code for an execution. The session
// never depends on a specific capture mechanism; tests substitute a stub.
type CodeSource interface {
	GetCode() (string, error)
}

// readlineSource collects lines from a readline instance until the user
// submits with Ctrl+D. The collected lines are joined with newlines.
type readlineSource struct {
	rl *readline.Instance
}

func (r *readlineSource) GetCode() (string, error) {
	saved := r.rl.Config.Prompt
	r.rl.SetPrompt("  > ")
	defer r.rl.SetPrompt(saved)

	var lines []string
	for {
		line, err := r.rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, readline.ErrInterrupt) {
			return "", err
		}
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
