package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/namefang/pkg/match"
)

// renderSuggestions prints one row per suggestion.
func renderSuggestions(w io.Writer, suggestions []*match.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, "No rename suggestions.")

		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Identifier", "Suggested", "Confidence", "Status"})

	for _, s := range suggestions {
		status := "applied"
		if s.FailureReason != "" {
			status = s.FailureReason
		}

		tbl.AppendRow(table.Row{
			s.OriginalName,
			s.SuggestedName,
			fmt.Sprintf("%.2f", s.Confidence),
			status,
		})
	}

	tbl.Render()
}

// renderDiff prints a line diff between the original and improved
// fragment. Removed lines are red, added lines green.
func renderDiff(w io.Writer, original, improved string, noColor bool) {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	if noColor {
		red.DisableColor()
		green.DisableColor()
	}

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToChars(original, improved)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines)

	for _, diff := range diffs {
		for line := range strings.Lines(diff.Text) {
			switch diff.Type {
			case diffmatchpatch.DiffDelete:
				red.Fprintf(w, "- %s", ensureNewline(line))
			case diffmatchpatch.DiffInsert:
				green.Fprintf(w, "+ %s", ensureNewline(line))
			case diffmatchpatch.DiffEqual:
				fmt.Fprintf(w, "  %s", ensureNewline(line))
			}
		}
	}
}

func ensureNewline(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}

	return line + "\n"
}
