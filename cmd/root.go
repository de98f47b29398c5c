package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/cord19-explorer/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics logger; user-facing progress goes to stdout.
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cord19",
	Short: "CORD-19 metadata explorer: clean, summarize and browse paper metadata",
	Long: `cord19 loads the CORD-19 metadata export, cleans it (publication year,
abstract word counts, missing journals), prints frequency summaries, writes the
cleaned file and a chart, and serves an interactive dashboard over the result.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadConfig() },
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cord19/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c
	logger = newLogger(cfg.LogFormat, debug)
	slog.SetDefault(logger)
	logger.Debug("config loaded", "config", cfgFile, "input", cfg.InputPath, "cleaned", cfg.CleanedPath)
	return nil
}

func newLogger(format string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
