// Package storage contains the storage-agnostic contract used by the loader
// and a small factory that backends register themselves with.
//
// Backends (postgres, sqlite, mssql) live in subpackages and call Register
// from init(). Callers obtain a Repository via New without importing a
// backend directly; importing storage/all enables every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"csvingest/internal/ddl"
)

// Repository is the minimal surface the loader needs from a database.
type Repository interface {
	// ReplaceTable drops def.Name if it exists and creates it (with its
	// indexes) from def.
	ReplaceTable(ctx context.Context, def ddl.TableDef) error

	// CopyFrom bulk-inserts rows aligned to columns into table and returns
	// the number of rows the backend reports as written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Close releases the connection(s).
	Close()
}

// Config selects and configures a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "postgres".
	Kind string

	// DSN is the backend-specific connection string.
	DSN string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds lists the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for kind %q (have %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}
