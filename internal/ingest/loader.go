// Package ingest loads CSV files into database tables chunk by chunk.
//
// A Loader runs one Job (one file into one table). Run walks the input
// directory and feeds every file to a single Loader in order, stopping at the
// first failure.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"

	"csvingest/internal/datasource"
	"csvingest/internal/ddl"
	"csvingest/internal/metrics"
	"csvingest/internal/parser/csv"
	"csvingest/internal/schema"
	"csvingest/internal/storage"
	"csvingest/internal/transformer/builtin"
)

// State is where a job is in its lifecycle.
//
//	FirstChunk -> Streaming -> Done
//	FirstChunk -> DoneEmpty
type State int

const (
	StateFirstChunk State = iota
	StateStreaming
	StateDone
	StateDoneEmpty
)

func (s State) String() string {
	switch s {
	case StateFirstChunk:
		return "FIRST_CHUNK"
	case StateStreaming:
		return "STREAMING"
	case StateDone:
		return "DONE"
	case StateDoneEmpty:
		return "DONE_EMPTY"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Job is one file to load.
type Job struct {
	Source datasource.Source

	// Name is the input file name, used in messages.
	Name string

	// Table is the destination table, replaced by the first chunk.
	Table string

	// DatetimeColumns are parsed to timestamps in every chunk.
	DatetimeColumns []string
}

// Result summarizes a finished (or failed) job.
type Result struct {
	File    string
	Table   string
	State   State
	Chunks  int
	Rows    int64
	Elapsed time.Duration
}

// Messages printed to the loader's output, one per line.
const (
	msgFinished = "Finished ingesting data"
	msgNoData   = "No more data available"
	msgChunkFmt = "Inserted chunk in %.3f seconds\n"
)

// LoaderOptions configures a Loader. Zero values select the defaults.
type LoaderOptions struct {
	// BatchSize is the number of data rows per chunk.
	BatchSize int

	// Out receives the per-chunk timing lines and end-of-file messages.
	// Defaults to os.Stdout.
	Out io.Writer

	// Location is applied to datetime values without an offset; nil is UTC.
	Location *time.Location

	Logger zerolog.Logger
}

// Loader writes CSV jobs to a Repository. It is not safe for concurrent use.
type Loader struct {
	repo      storage.Repository
	batchSize int
	out       io.Writer
	norm      builtin.DatetimeNormalizer
	log       zerolog.Logger

	now func() time.Time
}

// NewLoader returns a Loader writing through repo.
func NewLoader(repo storage.Repository, opts LoaderOptions) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = csv.DefaultBatchSize
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Loader{
		repo:      repo,
		batchSize: opts.BatchSize,
		out:       opts.Out,
		norm:      builtin.DatetimeNormalizer{Location: opts.Location},
		log:       opts.Logger,
		now:       time.Now,
	}
}

// Ingest loads job into its table.
//
// The first chunk fixes the table: the table is dropped, recreated from the
// chunk's inferred columns and the chunk is written. Later chunks are typed
// with the same columns and appended, each followed by a timing line. A file
// without data rows ends in StateDoneEmpty and leaves the database untouched.
//
// Every error other than end of input is returned wrapped with the file name;
// rows from chunks already written stay in the table.
func (l *Loader) Ingest(ctx context.Context, job Job) (Result, error) {
	start := l.now()
	res := Result{File: job.Name, Table: job.Table, State: StateFirstChunk}
	log := l.log.With().Str("file", job.Name).Str("table", job.Table).Logger()

	fail := func(err error) (Result, error) {
		res.Elapsed = l.now().Sub(start)
		metrics.RecordFile(job.Table, metrics.StatusFailed)
		log.Error().Err(err).Str("state", res.State.String()).Int64("rows", res.Rows).Msg("ingest failed")
		return res, fmt.Errorf("ingest %s: %w", job.Name, err)
	}

	rc, err := job.Source.Open(ctx)
	if err != nil {
		return fail(err)
	}
	cr := csv.NewChunkReader(rc, csv.Options{BatchSize: l.batchSize})
	defer cr.Close()

	// FIRST_CHUNK
	t0 := l.now()
	b, err := cr.Next(ctx)
	if errors.Is(err, csv.ErrEmptyInput) {
		res.State = StateDoneEmpty
		res.Elapsed = l.now().Sub(start)
		fmt.Fprintln(l.out, msgNoData)
		metrics.RecordFile(job.Table, metrics.StatusEmpty)
		log.Info().Msg("no data rows; table left untouched")
		return res, nil
	}
	if err != nil {
		return fail(err)
	}

	cols, err := l.firstChunk(ctx, job, b)
	if err != nil {
		return fail(err)
	}
	l.chunkWritten(log, &res, int64(b.Len()), l.now().Sub(t0))
	res.State = StateStreaming

	// STREAMING
	for {
		t0 := l.now()
		b, err := cr.Next(ctx)
		if errors.Is(err, csv.ErrExhausted) {
			break
		}
		if err != nil {
			return fail(err)
		}
		if err := l.normalize(job, b); err != nil {
			return fail(err)
		}
		if err := schema.Apply(b, cols); err != nil {
			return fail(err)
		}
		if err := l.write(ctx, job.Table, b, cols); err != nil {
			return fail(err)
		}
		d := l.now().Sub(t0)
		fmt.Fprintf(l.out, msgChunkFmt, d.Seconds())
		l.chunkWritten(log, &res, int64(b.Len()), d)
	}

	res.State = StateDone
	res.Elapsed = l.now().Sub(start)
	fmt.Fprintln(l.out, msgFinished)
	metrics.RecordFile(job.Table, metrics.StatusDone)
	log.Info().
		Int("chunks", res.Chunks).
		Int64("rows", res.Rows).
		Dur("elapsed", res.Elapsed.Truncate(time.Millisecond)).
		Msg("finished")
	return res, nil
}

// firstChunk replaces the destination table using b's schema and writes b.
// It returns the columns later chunks are typed with.
func (l *Loader) firstChunk(ctx context.Context, job Job, b *schema.Batch) ([]schema.Column, error) {
	if b.ColumnIndex(schema.IndexColumn) >= 0 {
		return nil, fmt.Errorf("header column %q clashes with the row index column", schema.IndexColumn)
	}
	if err := l.normalize(job, b); err != nil {
		return nil, err
	}

	cols := schema.Infer(b)
	// A datetime column that is empty in the first chunk is still a timestamp.
	for _, name := range job.DatetimeColumns {
		if ix := b.ColumnIndex(name); ix >= 0 {
			cols[ix].Kind = schema.KindTimestamp
		}
	}

	def := ddl.FromColumns(job.Table, cols)
	if err := l.repo.ReplaceTable(ctx, def); err != nil {
		return nil, err
	}
	l.log.Debug().Str("table", job.Table).Interface("columns", kinds(cols)).Msg("table replaced")

	if err := schema.Apply(b, cols); err != nil {
		return nil, err
	}
	if err := l.write(ctx, job.Table, b, cols); err != nil {
		return nil, err
	}
	return cols, nil
}

func (l *Loader) normalize(job Job, b *schema.Batch) error {
	return l.norm.Normalize(b, job.DatetimeColumns)
}

// write copies b, prefixed with the row index, into table.
func (l *Loader) write(ctx context.Context, table string, b *schema.Batch, cols []schema.Column) error {
	names := make([]string, 0, len(cols)+1)
	names = append(names, schema.IndexColumn)
	for _, c := range cols {
		names = append(names, c.Name)
	}
	n, err := l.repo.CopyFrom(ctx, table, names, b.WithIndex())
	if err != nil {
		return err
	}
	if n != int64(b.Len()) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", table, n, b.Len())
	}
	return nil
}

func (l *Loader) chunkWritten(log zerolog.Logger, res *Result, n int64, d time.Duration) {
	res.Chunks++
	res.Rows += n
	metrics.RecordChunk(res.Table, n, d)

	rps := float64(0)
	if d > 0 {
		rps = float64(n) / d.Seconds()
	}
	log.Info().
		Int("batch", res.Chunks).
		Float64("rps", math.Round(rps)).
		Int64("inserted", n).
		Int64("total_inserted", res.Rows).
		Dur("elapsed", d.Truncate(time.Millisecond)).
		Msg("chunk written")
}

func kinds(cols []schema.Column) map[string]string {
	out := make(map[string]string, len(cols))
	for _, c := range cols {
		out[c.Name] = c.Kind.String()
	}
	return out
}
