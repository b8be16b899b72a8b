package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaptista/diesp/internal/export"
	"github.com/pbaptista/diesp/internal/extractor"
	"github.com/pbaptista/diesp/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <results.db>",
	Short: "Export persisted results to an XLSX report",
	Long: `Export reads every extraction stored in the database and writes an
XLSX workbook with a per-field sheet, a per-document sheet and a
fill-rate summary.

Examples:
  diesp export results.db
  diesp export results.db --out relatorio.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		db, err := store.Open(args[0], logger)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.List(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no extractions stored in %s", args[0])
		}

		docs := make([]*extractor.Document, 0, len(records))
		for _, rec := range records {
			docs = append(docs, rec.Document)
		}
		return export.WriteXLSX(exportOut, docs, logger)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "relatorio.xlsx", "output workbook path")
}
