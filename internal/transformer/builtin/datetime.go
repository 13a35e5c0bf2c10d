// Package builtin holds the column transforms applied to row batches between
// reading and loading.
package builtin

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"csvingest/internal/schema"
)

// ParseError reports a value in a datetime column that could not be parsed.
type ParseError struct {
	Column string
	Row    int64 // 0-based data row within the file
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot parse %q as datetime: %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DatetimeNormalizer converts the values of named columns to time.Time.
//
// The format is inferred per value (ISO dates, RFC 3339, US-style
// month/day/year, textual months, unix timestamps and so on). Values without
// a zone are read as UTC unless Location is set; results are stored in UTC.
type DatetimeNormalizer struct {
	Location *time.Location
}

// Normalize parses every non-nil value of each listed column in place.
// "NaT" becomes nil. An empty list leaves b untouched. A listed column that
// is not in the header, or any value that does not parse, fails the whole
// call.
func (n DatetimeNormalizer) Normalize(b *schema.Batch, columns []string) error {
	if len(columns) == 0 || b == nil {
		return nil
	}
	for _, col := range columns {
		ix := b.ColumnIndex(col)
		if ix < 0 {
			return fmt.Errorf("datetime column %q not found in header %v", col, b.Header)
		}
		for r, row := range b.Rows {
			v := row[ix]
			switch tv := v.(type) {
			case nil, time.Time:
				continue
			case string:
				if strings.TrimSpace(tv) == "NaT" {
					row[ix] = nil
					continue
				}
				t, err := n.parse(tv)
				if err != nil {
					return &ParseError{Column: col, Row: b.Offset + int64(r), Value: tv, Err: err}
				}
				row[ix] = t.UTC()
			default:
				return &ParseError{Column: col, Row: b.Offset + int64(r), Value: fmt.Sprint(v), Err: fmt.Errorf("unsupported type %T", v)}
			}
		}
	}
	return nil
}

func (n DatetimeNormalizer) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if n.Location != nil {
		return dateparse.ParseIn(s, n.Location)
	}
	return dateparse.ParseAny(s)
}
