// Package render turns diagnostics into caret-annotated source snippets:
//
//	example.marn:3:5: error: unclosed string literal
//	  2 | : greet
//	  3 |     "hello
//	    |     ^
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marn-lang/marn/internal/config"
	"github.com/marn-lang/marn/pkg/compiler/diag"
)

// Renderer formats diagnostics against their source text.
type Renderer struct {
	context int
	max     int

	errStyle   lipgloss.Style
	numStyle   lipgloss.Style
	caretStyle lipgloss.Style
}

// New builds a renderer from the loaded config. color decides whether the
// lipgloss styles actually emit ANSI sequences.
func New(cfg config.Config, color bool) *Renderer {
	r := &Renderer{context: cfg.Context, max: cfg.MaxDiagnostics}
	if color {
		r.errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		r.numStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		r.caretStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	} else {
		r.errStyle = lipgloss.NewStyle()
		r.numStyle = lipgloss.NewStyle()
		r.caretStyle = lipgloss.NewStyle()
	}
	return r
}

// Render writes every diagnostic as a snippet, honoring the configured cap.
func (r *Renderer) Render(w io.Writer, filename, src string, diags []diag.Diagnostic) {
	for i, d := range diags {
		if r.max > 0 && i == r.max {
			fmt.Fprintf(w, "... and %d more\n", len(diags)-i)
			return
		}
		r.renderOne(w, filename, src, d)
	}
}

func (r *Renderer) renderOne(w io.Writer, filename, src string, d diag.Diagnostic) {
	fmt.Fprintf(w, "%s:%s %s\n", filename, d.Loc, r.errStyle.Render("error:")+" "+message(d))

	lines := strings.Split(src, "\n")
	row := d.Loc.Row
	if row < 0 || row >= len(lines) {
		return
	}
	lo := row - r.context
	if lo < 0 {
		lo = 0
	}
	hi := row + r.context
	if hi >= len(lines) {
		hi = len(lines) - 1
	}
	width := len(fmt.Sprint(hi + 1))
	for ln := lo; ln <= hi; ln++ {
		num := fmt.Sprintf("%*d", width, ln+1)
		fmt.Fprintf(w, "  %s | %s\n", r.numStyle.Render(num), lines[ln])
		if ln == row {
			col := d.Loc.Column
			if runes := len([]rune(lines[ln])); col > runes {
				col = runes
			}
			pad := strings.Repeat(" ", width)
			fmt.Fprintf(w, "  %s | %s%s\n", pad, strings.Repeat(" ", col), r.caretStyle.Render("^"))
		}
	}
}

// message renders the diagnostic text without its leading location, which
// the snippet header already carries.
func message(d diag.Diagnostic) string {
	switch {
	case d.Kind == diag.Redefinition:
		return fmt.Sprintf("%s: %q (first defined at %s)", d.Kind, d.Detail, d.Prev)
	case d.Detail != "":
		return fmt.Sprintf("%s: %q", d.Kind, d.Detail)
	default:
		return d.Kind.String()
	}
}
