package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"csvingest/internal/datasource"
)

// Local opens one CSV file from the local disk.
type Local struct{ path string }

var _ datasource.Source = (*Local)(nil)

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open returns the file for reading. A context that is already done short
// circuits without touching the filesystem. Errors keep os.ErrNotExist and
// friends in the chain.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
