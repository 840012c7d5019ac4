package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/walkersim/internal/spawn"
)

// SpawnerRepository stores spawner cooldowns and walker ids.
type SpawnerRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnerRepository creates a new spawner repository.
func NewSpawnerRepository(pool *pgxpool.Pool) *SpawnerRepository {
	return &SpawnerRepository{pool: pool}
}

// SaveAllTx replaces every stored spawner within an existing transaction.
func (r *SpawnerRepository) SaveAllTx(ctx context.Context, tx pgx.Tx, recs []spawn.Record) error {
	if _, err := tx.Exec(ctx, `DELETE FROM spawners`); err != nil {
		return fmt.Errorf("deleting spawners: %w", err)
	}

	if len(recs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range recs {
		ids := make([]pgtype.UUID, 0, len(rec.Walkers))
		for _, id := range rec.Walkers {
			ids = append(ids, pgUUID(id))
		}
		batch.Queue(
			`INSERT INTO spawners (name, cooldown, walker_ids) VALUES ($1, $2, $3)`,
			rec.Name, rec.Cooldown, ids,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, rec := range recs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("inserting spawner %q: %w", rec.Name, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("closing spawner batch: %w", err)
	}
	return nil
}

// LoadAll loads every stored spawner ordered by name.
func (r *SpawnerRepository) LoadAll(ctx context.Context) ([]spawn.Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, cooldown, walker_ids FROM spawners ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("loading spawners: %w", err)
	}
	defer rows.Close()

	var recs []spawn.Record
	for rows.Next() {
		var (
			rec spawn.Record
			ids []pgtype.UUID
		)
		if err := rows.Scan(&rec.Name, &rec.Cooldown, &ids); err != nil {
			return nil, fmt.Errorf("scanning spawner row: %w", err)
		}
		for _, id := range ids {
			rec.Walkers = append(rec.Walkers, uuid.UUID(id.Bytes))
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawner rows: %w", err)
	}
	return recs, nil
}
