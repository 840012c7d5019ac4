package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/walkersim/internal/db"
)

// StartPostgres запускает PostgreSQL 16 testcontainer и возвращает DSN.
// Caller terminates the container with testcontainers.TerminateContainer.
func StartPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, "", err
	}
	return container, dsn, nil
}

// SetupTestDB создаёт PostgreSQL testcontainer, применяет миграции и возвращает pool.
// Skipped in -short mode. Cleanup runs when the test ends.
func SetupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping database test in short mode")
	}
	ctx := context.Background()

	container, dsn, err := StartPostgres(ctx)
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		tb.Fatalf("connecting to test db: %v", err)
	}
	tb.Cleanup(func() { pool.Close() })

	if err := db.MigratePool(ctx, pool); err != nil {
		tb.Fatalf("running migrations: %v", err)
	}

	return pool
}
