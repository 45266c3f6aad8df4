package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/marn-lang/marn/internal/render"
	"github.com/marn-lang/marn/pkg/compiler/ast"
	"github.com/marn-lang/marn/pkg/compiler/diag"
	"github.com/marn-lang/marn/pkg/compiler/parser"
)

const (
	promptMain = "marn> "
	replName   = "<repl>"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Parse lines interactively",
	Long:  "Each line is lexed and parsed on its own; definitions and diagnostics are echoed back. Type :quit or Ctrl+D to exit.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)

		history := env.Str("MARN_HISTORY", filepath.Join(env.HomeDir(), ".marn_history"))
		if f, err := os.Open(history); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(history); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()

		r := render.New(cfg, colorEnabled())
		for {
			line, err := ln.Prompt(promptMain)
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return nil
			case err != nil:
				return err
			}
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			ln.AppendHistory(line)
			if trimmed == ":quit" {
				return nil
			}

			var diags diag.Bag
			prog := parser.ParseSource(strings.NewReader(line), &diags)
			r.Render(os.Stdout, replName, line, diags.Diagnostics())
			for _, node := range prog.Sequential {
				fmt.Println(describe(node))
			}
		}
	},
}

func describe(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Word:
		return fmt.Sprintf("word %s (%d expressions)", n.Name, len(n.Body))
	case *ast.Type:
		return fmt.Sprintf("type %s (%d constructors)", n.Name, len(n.Constructors))
	case *ast.Alias:
		return fmt.Sprintf("alias %s -> %d type(s)", n.Name, len(n.Body))
	case *ast.Comment:
		return fmt.Sprintf("comment %q", n.Text)
	default:
		return fmt.Sprintf("%T at %s", node, node.Pos())
	}
}

func init() {
	rootCmd.AddCommand(replCmd)
}
