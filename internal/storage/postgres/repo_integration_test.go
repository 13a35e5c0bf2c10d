package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"csvingest/internal/ddl"
	"csvingest/internal/schema"
)

// testDSN returns TEST_PG_DSN when set. Otherwise, with
// INGEST_TESTCONTAINERS=1, it starts a throwaway Postgres container.
func testDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_PG_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("INGEST_TESTCONTAINERS") != "1" {
		t.Skip("set TEST_PG_DSN or INGEST_TESTCONTAINERS=1 to run Postgres integration tests")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.WithDatabase("ingest"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestRepository_ReplaceAndCopy(t *testing.T) {
	dsn := testDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn, MaxConns: 2})
	require.NoError(t, err)
	defer closeFn()

	def := ddl.FromColumns("it_rides", []schema.Column{
		{Name: "id", Kind: schema.KindBigInt},
		{Name: "event_time", Kind: schema.KindTimestamp},
		{Name: "note", Kind: schema.KindText},
	})
	ts := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := [][]any{
		{int64(0), int64(1), ts, "a"},
		{int64(1), int64(2), ts.Add(time.Hour), nil},
	}

	// Two passes: the second replace must drop the first pass's rows.
	for pass := 0; pass < 2; pass++ {
		require.NoError(t, repo.ReplaceTable(ctx, def))
		n, err := repo.CopyFrom(ctx, def.Name, def.ColumnNames(), rows)
		require.NoError(t, err)
		require.Equal(t, int64(2), n)
	}

	var count int64
	require.NoError(t, repo.pool.QueryRow(ctx, `SELECT count(*) FROM "it_rides"`).Scan(&count))
	require.Equal(t, int64(2), count)

	var got time.Time
	require.NoError(t, repo.pool.QueryRow(ctx, `SELECT event_time FROM "it_rides" WHERE "index" = 1`).Scan(&got))
	require.True(t, got.Equal(ts.Add(time.Hour)), "event_time = %v", got)

	_, err = repo.pool.Exec(ctx, `DROP TABLE "it_rides"`)
	require.NoError(t, err)
}
