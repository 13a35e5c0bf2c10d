package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TypeError reports a cell that cannot be represented in its column's kind.
// Later batches are typed with the kinds inferred from the first batch, so a
// TypeError usually means the file changes shape after the first chunk.
type TypeError struct {
	Column string
	Row    int64 // 0-based data row within the file
	Value  any
	Kind   Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("column %q row %d: value %v is not a valid %s", e.Column, e.Row, e.Value, e.Kind)
}

// Infer guesses a kind for every header column of b.
//
// Heuristic: all non-nil values must satisfy the narrower kind, tried in the
// order timestamp, bigint, double, boolean; anything else (including a column
// that is entirely nil) is text. Timestamps are only inferred for cells that
// already hold time.Time, i.e. columns the normalizer converted.
func Infer(b *Batch) []Column {
	cols := make([]Column, len(b.Header))
	for i, name := range b.Header {
		cols[i] = Column{Name: name, Kind: inferColumn(b.Rows, i)}
	}
	return cols
}

func inferColumn(rows [][]any, ix int) Kind {
	seen := 0
	allTime, allInt, allFloat, allBool := true, true, true, true
	for _, row := range rows {
		if ix >= len(row) || row[ix] == nil {
			continue
		}
		seen++
		switch v := row[ix].(type) {
		case time.Time:
			allInt, allFloat, allBool = false, false, false
		case string:
			allTime = false
			if allInt && !isInt(v) {
				allInt = false
			}
			if allFloat && !isFloat(v) {
				allFloat = false
			}
			if allBool && !isBool(v) {
				allBool = false
			}
		default:
			allTime, allInt, allFloat, allBool = false, false, false, false
		}
		if !allTime && !allInt && !allFloat && !allBool {
			return KindText
		}
	}
	switch {
	case seen == 0:
		return KindText
	case allTime:
		return KindTimestamp
	case allInt:
		return KindBigInt
	case allFloat:
		return KindDouble
	case allBool:
		return KindBoolean
	default:
		return KindText
	}
}

// Apply converts the string cells of b in place to the kinds in cols, which
// must be aligned with b.Header.
func Apply(b *Batch, cols []Column) error {
	if len(cols) != len(b.Header) {
		return fmt.Errorf("schema: batch has %d columns, table has %d", len(b.Header), len(cols))
	}
	for r, row := range b.Rows {
		for i, c := range cols {
			if i >= len(row) || row[i] == nil {
				continue
			}
			v, ok := convert(row[i], c.Kind)
			if !ok {
				return &TypeError{Column: c.Name, Row: b.Offset + int64(r), Value: row[i], Kind: c.Kind}
			}
			row[i] = v
		}
	}
	return nil
}

func convert(v any, k Kind) (any, bool) {
	switch k {
	case KindTimestamp:
		t, ok := v.(time.Time)
		return t, ok
	case KindText:
		s, ok := v.(string)
		return s, ok
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	switch k {
	case KindBigInt:
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	case KindDouble:
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	case KindBoolean:
		switch strings.ToLower(s) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// isFloat accepts decimal or scientific notation, and ints that fit int64.
// A bare integer too wide for int64 is not a float: storing it as float64
// would round it, so such a column stays text.
func isFloat(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	return !isDigits(s) || isInt(s)
}

// isDigits reports whether s is an optionally signed run of decimal digits.
func isDigits(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false":
		return true
	default:
		return false
	}
}
