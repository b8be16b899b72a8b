package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pbaptista/diesp/internal/api"
	"github.com/pbaptista/diesp/internal/extractor"
	"github.com/pbaptista/diesp/internal/ingest"
	"github.com/pbaptista/diesp/internal/jobs"
	"github.com/pbaptista/diesp/internal/store"
)

var (
	extractPDF string
	extractDB  string
)

var extractCmd = &cobra.Command{
	Use:   "extract <analysis.json> [analysis.json...]",
	Short: "Extract despacho fields from analyzer JSON files",
	Long: `Extract runs the full pipeline over one or more analyzer JSON files:
window detection, region building, field extraction and catalog
reconciliation. Results go to stdout in the configured output format.

Examples:
  diesp extract caso-123.json
  diesp extract -o json caso-*.json
  diesp extract --db results.db analyses/*.json
  diesp extract --pdf caso-123.pdf caso-123.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cfg, cats, err := loadRuntime()
		if err != nil {
			return err
		}
		if extractPDF != "" && len(args) != 1 {
			return fmt.Errorf("--pdf cross-check needs exactly one analysis file")
		}

		var db *store.Store
		if extractDB != "" {
			db, err = store.Open(extractDB, logger)
			if err != nil {
				return err
			}
			defer db.Close()
		}

		pipeline := extractor.New(cfg, cats, logger)
		docs, err := runAll(ctx, cfg.Workers, args, func(ctx context.Context, source string) (*extractor.Document, error) {
			a, err := ingest.Load(source)
			if err != nil {
				return nil, err
			}
			if extractPDF != "" {
				if err := ingest.VerifyPageCount(ctx, extractPDF, a); err != nil {
					return nil, err
				}
			}
			return pipeline.Run(ctx, a)
		}, logger)
		if err != nil {
			return err
		}

		for _, doc := range docs {
			if db != nil {
				if err := db.Save(ctx, doc); err != nil {
					return err
				}
			}
			if err := api.Output(doc); err != nil {
				return err
			}
		}
		return nil
	},
}

// runAll fans the sources out over a worker pool and collects every
// document, failing on the first source that errors.
func runAll(ctx context.Context, workers int, sources []string, run func(context.Context, string) (*extractor.Document, error), logger *slog.Logger) ([]*extractor.Document, error) {
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := jobs.NewPool(jobs.PoolConfig{
		Name:        "extract",
		WorkerCount: workers,
		QueueSize:   len(sources),
		Handler: func(ctx context.Context, task jobs.Task) (any, error) {
			return run(ctx, task.Source)
		},
	})
	go pool.Start(poolCtx)

	for _, src := range sources {
		if err := pool.Submit(jobs.NewTask(src)); err != nil {
			return nil, err
		}
	}

	docs := make([]*extractor.Document, 0, len(sources))
	var firstErr error
	for range sources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case out := <-pool.Results():
			if out.Err != nil {
				logger.Error("extraction failed", "source", out.Task.Source, "error", out.Err)
				if firstErr == nil {
					firstErr = out.Err
				}
				continue
			}
			docs = append(docs, out.Value.(*extractor.Document))
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Source < docs[j].Source })
	return docs, nil
}

func init() {
	extractCmd.Flags().StringVar(&extractPDF, "pdf", "", "source PDF to cross-check page counts against")
	extractCmd.Flags().StringVar(&extractDB, "db", "", "SQLite database to persist results to")
}
