// Command ingest loads the CSV files of ingestion_files into database tables.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"csvingest/internal/config"
	"csvingest/internal/ingest"
	"csvingest/internal/metrics"
	"csvingest/internal/metrics/datadog"
	"csvingest/internal/metrics/prompush"
	"csvingest/internal/storage"

	// register all backends with the storage factory.
	_ "csvingest/internal/storage/all"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	if err := newRootCmd(run).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run wires logging and metrics, then loads the input directory.
func run(cmd *cobra.Command, cfg config.Config) error {
	logger := newLogger(cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flush, err := setupMetrics(cfg.Metrics, logger)
	if err != nil {
		return err
	}
	defer flush()

	start := time.Now()
	results, err := ingest.Run(ctx, cfg, storage.New, ingest.RunOptions{
		Out:    cmd.OutOrStdout(),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	var rows int64
	for _, r := range results {
		rows += r.Rows
	}
	logger.Info().
		Int("files", len(results)).
		Int64("rows", rows).
		Dur("elapsed", time.Since(start).Truncate(time.Millisecond)).
		Msg("run completed")
	return nil
}

// newLogger logs to stderr so stdout carries only the progress lines.
func newLogger(verbose bool) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = logger.Level(level)

	// Libraries logging through the standard logger end up in the same stream.
	log.SetFlags(0)
	log.SetOutput(logger)
	return logger
}

// setupMetrics installs the configured backend and returns the function that
// flushes it at exit.
func setupMetrics(m config.Metrics, logger zerolog.Logger) (func(), error) {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.StatsdAddr,
			Namespace:  m.Job + ".",
			GlobalTags: []string{"service:" + m.Job},
		})
	default:
		logger.Debug().Str("backend", m.Backend).Msg("metrics disabled")
		return func() {}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	logger.Debug().Str("backend", m.Backend).Str("job", m.Job).Msg("metrics enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn().Err(err).Msg("metrics flush failed")
		}
	}, nil
}
