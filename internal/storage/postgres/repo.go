// Package postgres implements a Postgres repository using pgx v5. Tables are
// replaced inside one transaction and rows are loaded with COPY.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"csvingest/internal/ddl"
	"csvingest/internal/schema"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool, e.g. postgres://u:p@h:5432/db

	// MaxConns caps the pool. The loader is sequential, so a small pool is
	// enough; 0 keeps the pgxpool default.
	MaxConns int32
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// Dialect renders DDL with double-quoted identifiers and Postgres types.
var Dialect = ddl.Dialect{
	QuoteIdent: ddl.QuoteDouble,
	TypeOf:     MapType,
}

// MapType maps a logical kind to its Postgres type.
//
//	bigint    -> BIGINT
//	double    -> DOUBLE PRECISION
//	boolean   -> BOOLEAN
//	timestamp -> TIMESTAMP WITHOUT TIME ZONE
//	text      -> TEXT
func MapType(k schema.Kind) string {
	switch k {
	case schema.KindBigInt:
		return "BIGINT"
	case schema.KindDouble:
		return "DOUBLE PRECISION"
	case schema.KindBoolean:
		return "BOOLEAN"
	case schema.KindTimestamp:
		return "TIMESTAMP WITHOUT TIME ZONE"
	default:
		return "TEXT"
	}
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{pool: pool}, pool.Close, nil
}

// ReplaceTable drops and recreates def (plus its indexes) in one transaction,
// so a failed CREATE leaves any previous table in place.
func (r *Repository) ReplaceTable(ctx context.Context, def ddl.TableDef) error {
	stmts, err := ddl.ReplaceTableSQL(Dialect, def)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, s := range stmts {
			if _, err := tx.Exec(ctx, s); err != nil {
				return fmt.Errorf("replace table %s: %w", def.Name, pgErr(err))
			}
		}
		return nil
	})
}

// CopyFrom streams rows into table with the COPY protocol.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, pgErr(err))
	}
	return n, nil
}

// pgErr surfaces the server's DETAIL and SQLSTATE when present, keeping the
// original error in the chain.
func pgErr(err error) error {
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Detail != "" {
		return fmt.Errorf("%w (detail: %s, sqlstate %s)", err, pe.Detail, pe.SQLState())
	}
	return err
}
