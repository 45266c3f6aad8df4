package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/marn-lang/marn/internal/render"
	"github.com/marn-lang/marn/pkg/compiler/diag"
	"github.com/marn-lang/marn/pkg/compiler/parser"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Parse files and report diagnostics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := render.New(cfg, colorEnabled())
		okStyle := lipgloss.NewStyle()
		badStyle := lipgloss.NewStyle()
		if colorEnabled() {
			okStyle = okStyle.Foreground(lipgloss.Color("10"))
			badStyle = badStyle.Foreground(lipgloss.Color("9")).Bold(true)
		}

		failed := 0
		for _, path := range args {
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			var diags diag.Bag
			prog := parser.ParseSource(bytes.NewReader(src), &diags)
			logger.Debug("parsed",
				"file", path,
				"definitions", len(prog.Sequential),
				"diagnostics", diags.Len())

			r.Render(os.Stdout, path, string(src), diags.Diagnostics())
			summary := fmt.Sprintf("%d words, %d types, %d constructors, %d aliases",
				len(prog.Words), len(prog.Types), len(prog.Constructors), len(prog.Aliases))
			if diags.Empty() {
				fmt.Printf("%s: %s (%s)\n", path, okStyle.Render("ok"), summary)
			} else {
				fmt.Printf("%s: %s (%s)\n", path,
					badStyle.Render(fmt.Sprintf("%d problem(s)", diags.Len())), summary)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) had problems", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
