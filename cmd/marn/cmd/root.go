package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/marn-lang/marn/internal/config"
	"github.com/marn-lang/marn/internal/logging"
)

var (
	cfgFile string
	verbose bool
	logFile string

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
)

var rootCmd = &cobra.Command{
	Use:   "marn",
	Short: "Marn compiler front end",
	Long: `marn lexes and parses Marn source files into an abstract syntax
tree, reporting every problem it finds instead of stopping at the first.

Commands:
  check    parse files and report diagnostics
  tokens   dump the token stream of a file
  repl     parse lines interactively`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg = config.Default()
		if cfgFile != "" {
			if cfg, err = config.Load(cfgFile); err != nil {
				return err
			}
		}
		logger, closeLog, err = logging.New(verbose, logFile)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			closeLog()
		}
	},
}

// Execute runs the command tree, printing the failure the way the shell
// expects it.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "marn: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file for diagnostic rendering")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append JSON logs to this file")
}

// colorEnabled resolves the configured color mode against stdout.
func colorEnabled() bool {
	switch cfg.Color {
	case "always":
		return true
	case "never":
		return false
	}
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
