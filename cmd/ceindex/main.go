// Command ceindex builds and queries a code-aware retrieval index over a
// repository, wiring package build's structural IR pipeline to package
// retrieval's query-time fusion, the way the pack's go-coder CLI wires its
// coder package behind a thin cobra/viper shell.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// logger is the process-wide slog.Logger, configured once here. It is a
// package-level variable of this command only, read through logDebug; the
// core packages (build, retrieval, index, incremental) take no logger and
// log nothing. The teacher has no structured logger of its own; this mirrors the rest of
// the pack's dominant choice of log/slog where no third-party logger was
// already wired (see DESIGN.md).
var logger *slog.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "ceindex",
		Short: "Code-aware context engine for LLM-assisted development",
		Long:  "ceindex builds a structural index of a repository and answers natural-language queries with ranked, token-budgeted source context.",
	}

	var verbose bool
	rootCmd.PersistentFlags().String("index-dsn", "ceindex.db", "SQLite DSN for the lexical/vector index stores")
	rootCmd.PersistentFlags().Int("budget-tokens", 8000, "Token budget for packed context")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug-level logging")

	viper.BindPFlag("index_dsn", rootCmd.PersistentFlags().Lookup("index-dsn"))
	viper.BindPFlag("context.budget_tokens", rootCmd.PersistentFlags().Lookup("budget-tokens"))

	viper.SetEnvPrefix("CEINDEX")
	viper.AutomaticEnv()

	viper.SetConfigName(".ceindex")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // optional; missing config file is not an error

	level := slog.LevelInfo
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logDebug is a nil-safe wrapper so packages that build a snapshot outside
// of the cobra lifecycle (e.g. future test harnesses) don't need to thread
// a logger down through every call site; it's a no-op until main wires one.
func logDebug(msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Debug(msg, args...)
}

const version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ceindex version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ceindex %s\n", version)
		},
	}
}
