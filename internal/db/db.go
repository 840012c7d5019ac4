package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Snapshots are written by one goroutine at a time; a small pool is enough.
const (
	maxConns    = 4
	pingTimeout = 5 * time.Second
)

// DB holds the pgx pool shared by the repositories.
type DB struct {
	pool *pgxpool.Pool
}

// New opens a pool for dsn and checks the server answers.
func New(ctx context.Context, dsn string) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	poolCfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s: %w", poolCfg.ConnConfig.Host, err)
	}
	return &DB{pool: pool}, nil
}

// Snapshots returns a snapshot store backed by this database.
func (d *DB) Snapshots() *SnapshotStore { return NewSnapshotStore(d.pool) }

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }

// Close releases all connections.
func (d *DB) Close() { d.pool.Close() }
