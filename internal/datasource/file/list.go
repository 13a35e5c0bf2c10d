// Package file implements a local filesystem-backed data source.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one input file discovered in a directory.
type Entry struct {
	// Name is the base file name, e.g. "yellow_tripdata.2021.csv".
	Name string
	// Path is Name joined with the listed directory.
	Path string
	// Table is the destination table derived from Name.
	Table string
}

// List returns the regular files directly inside dir, sorted by file name.
// Subdirectories, symlinks to directories and other non-regular entries are
// skipped.
func List(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	out := make([]Entry, 0, len(des))
	for _, de := range des {
		info, err := os.Stat(filepath.Join(dir, de.Name()))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, Entry{
			Name:  de.Name(),
			Path:  filepath.Join(dir, de.Name()),
			Table: TableName(de.Name()),
		})
	}
	return out, nil
}

// TableName strips the final extension from a file name:
//
//	"rides.csv"      -> "rides"
//	"rides.2021.csv" -> "rides.2021"
//	"rides"          -> "rides"
//	".env"           -> ".env"
//
// A leading dot is not treated as an extension separator, so a dotfile keeps
// its whole name instead of mapping to an empty table name.
func TableName(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return base
	}
	return base[:i]
}
