package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/pbaptista/diesp/internal/extractor"
	"github.com/pbaptista/diesp/internal/ingest"
	"github.com/pbaptista/diesp/internal/jobs"
	"github.com/pbaptista/diesp/internal/store"
)

var watchDB string

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and extract analyses as they arrive",
	Long: `Watch monitors a directory for analyzer JSON files and runs the
extraction pipeline on each new or rewritten file. Results are
persisted to the database. Runs until interrupted.

Example:
  diesp watch ./analyses --db results.db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cfg, cats, err := loadRuntime()
		if err != nil {
			return err
		}
		db, err := store.Open(watchDB, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		pipeline := extractor.New(cfg, cats, logger)
		pool := jobs.NewPool(jobs.PoolConfig{
			Name:        "watch",
			WorkerCount: cfg.Workers,
			Logger:      logger,
			Handler: func(ctx context.Context, task jobs.Task) (any, error) {
				a, err := ingest.Load(task.Source)
				if err != nil {
					return nil, err
				}
				doc, err := pipeline.Run(ctx, a)
				if err != nil {
					return nil, err
				}
				return doc, db.Save(ctx, doc)
			},
		})
		go pool.Start(ctx)

		// Drain outcomes so workers never block; failures are logged
		// and the watch keeps running.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case out := <-pool.Results():
					if out.Err != nil {
						logger.Error("extraction failed", "source", out.Task.Source, "error", out.Err)
					}
				}
			}
		}()

		err = ingest.Watch(ctx, args[0], func(path string) {
			if err := pool.Submit(jobs.NewTask(path)); err != nil {
				logger.Warn("dropping analysis", "path", path, "error", err)
			}
		}, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchDB, "db", "results.db", "SQLite database to persist results to")
}
