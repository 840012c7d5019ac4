package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/walkersim/internal/walker"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// WalkerRepository stores walker records.
// The full record lives in the state column; id, home, mode and cell are
// denormalized for queries.
type WalkerRepository struct {
	pool *pgxpool.Pool
}

// NewWalkerRepository creates a new walker repository.
func NewWalkerRepository(pool *pgxpool.Pool) *WalkerRepository {
	return &WalkerRepository{pool: pool}
}

// SaveAll replaces every stored walker with recs.
// The slice order is kept and returned by LoadAll.
func (r *WalkerRepository) SaveAll(ctx context.Context, recs []walker.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "walkers", len(recs), "error", err)
		}
	}()

	if err := r.SaveAllTx(ctx, tx, recs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SaveAllTx replaces every stored walker within an existing transaction.
func (r *WalkerRepository) SaveAllTx(ctx context.Context, tx pgx.Tx, recs []walker.Record) error {
	if _, err := tx.Exec(ctx, `DELETE FROM walkers`); err != nil {
		return fmt.Errorf("deleting walkers: %w", err)
	}

	if len(recs) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(recs))
	for i := range recs {
		row, err := walkerRow(&recs[i])
		if err != nil {
			return err
		}
		rows = append(rows, append(row, int32(i)))
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"walkers"},
		[]string{"id", "home_id", "mode", "cell_x", "cell_y", "state", "tick_order"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting %d walkers: %w", len(recs), err)
	}
	return nil
}

// Save upserts a single walker. New walkers are ordered after the stored ones.
func (r *WalkerRepository) Save(ctx context.Context, rec walker.Record) error {
	row, err := walkerRow(&rec)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO walkers (id, home_id, mode, cell_x, cell_y, state, tick_order, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MAX(tick_order) + 1, 0) FROM walkers), NOW())
		ON CONFLICT (id) DO UPDATE SET
			home_id = EXCLUDED.home_id,
			mode = EXCLUDED.mode,
			cell_x = EXCLUDED.cell_x,
			cell_y = EXCLUDED.cell_y,
			state = EXCLUDED.state,
			saved_at = EXCLUDED.saved_at
	`, row...)
	if err != nil {
		return fmt.Errorf("saving walker %s: %w", rec.ID, err)
	}
	return nil
}

// LoadAll loads every stored walker in saved order.
func (r *WalkerRepository) LoadAll(ctx context.Context) ([]walker.Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, state FROM walkers ORDER BY tick_order, id`)
	if err != nil {
		return nil, fmt.Errorf("loading walkers: %w", err)
	}
	defer rows.Close()

	recs := make([]walker.Record, 0, 64)
	for rows.Next() {
		var (
			id    pgtype.UUID
			state []byte
		)
		if err := rows.Scan(&id, &state); err != nil {
			return nil, fmt.Errorf("scanning walker row: %w", err)
		}

		var rec walker.Record
		if err := json.Unmarshal(state, &rec); err != nil {
			// one corrupt row must not block the rest of the world
			slog.Warn("skipping corrupt walker state", "walkerID", uuid.UUID(id.Bytes), "error", err)
			continue
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating walker rows: %w", err)
	}
	return recs, nil
}

// Load loads walker by id. Returns ErrNotFound if missing.
func (r *WalkerRepository) Load(ctx context.Context, id uuid.UUID) (walker.Record, error) {
	var state []byte
	err := r.pool.QueryRow(ctx, `SELECT state FROM walkers WHERE id = $1`, pgUUID(id)).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return walker.Record{}, fmt.Errorf("walker %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return walker.Record{}, fmt.Errorf("loading walker %s: %w", id, err)
	}

	var rec walker.Record
	if err := json.Unmarshal(state, &rec); err != nil {
		return walker.Record{}, fmt.Errorf("decoding walker %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes walker by id.
func (r *WalkerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM walkers WHERE id = $1`, pgUUID(id)); err != nil {
		return fmt.Errorf("deleting walker %s: %w", id, err)
	}
	return nil
}

// CountByHome returns number of stored walkers bound to home.
func (r *WalkerRepository) CountByHome(ctx context.Context, home uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM walkers WHERE home_id = $1`, pgUUID(home)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting walkers of home %s: %w", home, err)
	}
	return n, nil
}

func walkerRow(rec *walker.Record) ([]any, error) {
	state, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding walker %s: %w", rec.ID, err)
	}
	return []any{
		pgUUID(rec.ID),
		pgUUID(rec.HomeID),
		rec.Mode().String(),
		rec.Cell.X,
		rec.Cell.Y,
		state,
	}, nil
}

// pgUUID maps uuid.Nil to NULL.
func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}
