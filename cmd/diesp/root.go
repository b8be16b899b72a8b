package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbaptista/diesp/internal/api"
	"github.com/pbaptista/diesp/internal/catalog"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/version"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "diesp",
	Short: "Field extraction for court expense-authorization dispatches",
	Long: `diesp extracts structured fields from judicial despacho documents,
working from the layout analysis (words, boxes, bookmarks) produced by
an upstream PDF analyzer.

The pipeline includes:
  - Candidate window detection from bookmarks or page heuristics
  - Template scoring against configured anchor phrases
  - Band/region segmentation and per-field regex extraction
  - Catalog reconciliation (honorarium table, expert roster, hash db)`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.diesp/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "table", "output format: table, yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(catalogsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadRuntime loads configuration and catalogs for a command run.
func loadRuntime() (*config.Config, *catalog.Catalogs, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := cm.Get()
	cats, err := catalog.Load(cfg.Catalogs.HashDB, cfg.Catalogs.Honorarium, cfg.Catalogs.Roster)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalogs: %w", err)
	}
	return cfg, cats, nil
}
