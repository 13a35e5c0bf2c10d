// Package datasource defines where raw CSV bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh stream of input bytes.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
