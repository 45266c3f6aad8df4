package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marn-lang/marn/pkg/compiler/diag"
	"github.com/marn-lang/marn/pkg/compiler/lexer"
)

var noComments bool

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Dump the token stream of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		var diags diag.Bag
		var src lexer.Source = lexer.New(f, &diags)
		if noComments {
			src = lexer.Excluding(src, lexer.KindComment)
		}
		for {
			tok := src.Next()
			fmt.Printf("%s\t%s\n", tok.Loc, tok)
			if tok.Kind == lexer.KindEOT {
				break
			}
		}
		for _, d := range diags.Diagnostics() {
			fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], d)
		}
		if !diags.Empty() {
			return fmt.Errorf("%d problem(s)", diags.Len())
		}
		return nil
	},
}

func init() {
	tokensCmd.Flags().BoolVar(&noComments, "no-comments", false, "filter comment tokens from the dump")
	rootCmd.AddCommand(tokensCmd)
}
