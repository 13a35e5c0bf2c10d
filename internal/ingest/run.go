package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"csvingest/internal/config"
	"csvingest/internal/datasource/file"
	"csvingest/internal/storage"
)

// RunOptions carries the process-level collaborators of Run.
type RunOptions struct {
	// Out receives the loader's progress lines; os.Stdout when nil.
	Out io.Writer

	Logger zerolog.Logger
}

// Run loads every regular file in cfg.InputDir, in file name order, each into
// the table named after it. One repository, opened through newRepo, serves
// the whole run.
//
// The first failing file stops the run: its error is returned together with
// the results of every file attempted so far, the failed one last.
func Run(ctx context.Context, cfg config.Config, newRepo storage.Factory, opts RunOptions) ([]Result, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	entries, err := file.List(cfg.InputDir)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		opts.Logger.Warn().Str("dir", cfg.InputDir).Msg("no input files")
		return nil, nil
	}

	opts.Logger.Info().
		Str("storage", cfg.Storage).
		Str("dsn", cfg.Redacted()).
		Int("files", len(entries)).
		Msg("connecting")
	repo, err := newRepo(ctx, storage.Config{Kind: cfg.Storage, DSN: cfg.DSN()})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage, err)
	}
	defer repo.Close()

	l := NewLoader(repo, LoaderOptions{
		BatchSize: cfg.BatchSize,
		Out:       opts.Out,
		Location:  loc,
		Logger:    opts.Logger,
	})

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		res, err := l.Ingest(ctx, Job{
			Source:          file.NewLocal(e.Path),
			Name:            e.Name,
			Table:           e.Table,
			DatetimeColumns: cfg.DatetimeColumns,
		})
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
