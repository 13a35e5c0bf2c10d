// Package csv reads CSV files as a lazy, forward-only sequence of row batches.
//
// The reader never holds more than one batch in memory. A file is consumed
// exactly once; there is no rewind.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"csvingest/internal/schema"
)

// DefaultBatchSize is the number of data rows per batch.
const DefaultBatchSize = 100_000

var (
	// ErrExhausted is returned by Next once every batch has been read.
	ErrExhausted = errors.New("csv: no more batches")

	// ErrEmptyInput is returned by the first Next when the file has no data
	// rows at all (zero bytes, or a header with nothing after it).
	ErrEmptyInput = errors.New("csv: no data in input")
)

// Options configures a ChunkReader. Zero values select the defaults.
type Options struct {
	// BatchSize is the maximum number of data rows per batch.
	BatchSize int
}

// ChunkReader turns a CSV stream with a header row into schema.Batch values.
// It is not safe for concurrent use.
type ChunkReader struct {
	src       io.ReadCloser
	cr        *csv.Reader
	batchSize int

	header []string
	offset int64 // data rows handed out so far
	err    error // sticky terminal error
}

// NewChunkReader wraps src. The byte stream is decoded through a BOM sniffer
// so UTF-8 files with a BOM, and UTF-16 files with one, read like plain UTF-8.
func NewChunkReader(src io.ReadCloser, opt Options) *ChunkReader {
	if opt.BatchSize <= 0 {
		opt.BatchSize = DefaultBatchSize
	}

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	cr := csv.NewReader(transform.NewReader(src, dec))
	cr.ReuseRecord = true
	// 0: every record must have as many fields as the header.
	cr.FieldsPerRecord = 0

	return &ChunkReader{src: src, cr: cr, batchSize: opt.BatchSize}
}

// Next returns the next batch of at most BatchSize rows.
//
// Terminal results are sticky: ErrEmptyInput when the file yielded no data
// row at all, ErrExhausted after the last batch. Any other error (malformed
// record, I/O failure, canceled context) is returned as-is and also sticks.
func (r *ChunkReader) Next(ctx context.Context) (*schema.Batch, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.header == nil {
		if err := r.readHeader(); err != nil {
			r.err = err
			return nil, err
		}
	}

	rows := make([][]any, 0, r.batchSize)
	for len(rows) < r.batchSize {
		if len(rows)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				r.err = err
				return nil, err
			}
		}
		rec, err := r.cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.err = fmt.Errorf("csv read: %w", err)
			return nil, r.err
		}
		row := make([]any, len(rec))
		for i, v := range rec {
			if !isMissing(v) {
				row[i] = v
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		if r.offset == 0 {
			r.err = ErrEmptyInput
		} else {
			r.err = ErrExhausted
		}
		return nil, r.err
	}

	b := &schema.Batch{Header: r.header, Rows: rows, Offset: r.offset}
	r.offset += int64(len(rows))
	return b, nil
}

// Close closes the underlying source.
func (r *ChunkReader) Close() error { return r.src.Close() }

func (r *ChunkReader) readHeader() error {
	rec, err := r.cr.Read()
	if errors.Is(err, io.EOF) {
		return ErrEmptyInput
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	r.header = normalizeHeader(rec)
	return nil
}

// normalizeHeader copies the header record and makes every name usable as a
// column: blank names become "Unnamed: <pos>" and repeated names get a ".N"
// suffix in order of appearance (a, a.1, a.2).
func normalizeHeader(rec []string) []string {
	out := make([]string, len(rec))
	used := make(map[string]struct{}, len(rec))
	dups := make(map[string]int)
	for i, h := range rec {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for {
			if _, taken := used[name]; !taken {
				break
			}
			dups[h]++
			name = h + "." + strconv.Itoa(dups[h])
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

// missingValues are the field values read as null, matching the default
// missing-value markers of common CSV tooling. Matching is exact and
// case-sensitive: "NULL" and "null" are null, "Null" is a string.
var missingValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

func isMissing(v string) bool {
	_, ok := missingValues[v]
	return ok
}
