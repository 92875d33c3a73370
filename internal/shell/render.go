package shell

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/runq/internal/store"
)

const helpText = `help
    Displays this message.
exit
    Closes this app.
list
    Shows all supported languages.
list <prefix>
    Shows all supported languages that start with a chosen prefix.
history [n]
    Shows the most recent executions.
jargon <language>
    Shows the code that wraps around your code in a chosen language.
create jargon <language>
    Sets the jargon for a language.
delete jargon <language>
    Deletes the jargon for a language.
alias <alias>
    Shows the language an alias is an alias of.
create alias <new alias> <language>
    Creates a new alias for a chosen language.
delete alias <alias>
    Deletes an alias and any jargon it has.
<language>
    Any other catalog name asks you for code to run.`

// renderList prints the catalog names matching prefix as a table, marking
// aliases with their target. The header count matches the filtered set;
// without a prefix the count is canonical languages only.
func renderList(w io.Writer, styles *Styles, names []string, aliases map[string]string, prefix string, canonicalCount int) {
	if prefix != "" {
		fmt.Fprintf(w, "languages that start with `%s` (%d):\n", prefix, len(names))
	} else {
		fmt.Fprintf(w, "languages (%d):\n", canonicalCount)
	}

	if len(names) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"name", "alias of"})

	aliasIncluded := false
	for _, name := range names {
		if target, ok := aliases[name]; ok {
			aliasIncluded = true
			t.AppendRow(table.Row{styles.Accent.Render(name), target})
		} else {
			t.AppendRow(table.Row{name, ""})
		}
	}
	t.Render()

	if aliasIncluded {
		fmt.Fprintln(w, styles.Muted.Render("(aliases are highlighted)"))
	}
}

// renderHistory prints recent execution records, newest first.
func renderHistory(w io.Writer, runs []*store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no executions recorded yet")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"when", "language", "exit", "ms"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Language,
			run.ExitStatus,
			run.DurationMS,
		})
	}
	t.Render()
}
