package main

import (
	"github.com/spf13/cobra"

	"github.com/pbaptista/diesp/internal/api"
)

var catalogsCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "Show the loaded reference catalogs",
	Long: `Catalogs prints a summary of the configured reference catalogs: the
known-report hash database, the honorarium rate table and the expert
roster. Useful for checking that catalog files resolve and parse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cats, err := loadRuntime()
		if err != nil {
			return err
		}
		summary := struct {
			HashDBPath     string `json:"hashdb_path" yaml:"hashdb_path"`
			HashDBEntries  int    `json:"hashdb_entries" yaml:"hashdb_entries"`
			HonorariumPath string `json:"honorarium_path" yaml:"honorarium_path"`
			HonorariumRows int    `json:"honorarium_rows" yaml:"honorarium_rows"`
			RosterPath     string `json:"roster_path" yaml:"roster_path"`
			RosterExperts  int    `json:"roster_experts" yaml:"roster_experts"`
		}{
			HashDBPath:     cfg.Catalogs.HashDB,
			HashDBEntries:  len(cats.HashDB),
			HonorariumPath: cfg.Catalogs.Honorarium,
			HonorariumRows: len(cats.Honorarium),
			RosterPath:     cfg.Catalogs.Roster,
			RosterExperts:  cats.Roster.Len(),
		}
		return api.Output(summary)
	},
}
