package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/walkersim/internal/snapshot"
	"github.com/udisondev/walkersim/internal/spawn"
	"github.com/udisondev/walkersim/internal/walker"
)

// Snapshot captures the world between two ticks.
func (w *World) Snapshot() (snapshot.Snapshot, error) {
	var (
		snap snapshot.Snapshot
		err  error
	)
	w.ticks.Do(func() {
		snap, err = w.snapshotLocked()
	})
	return snap, err
}

func (w *World) snapshotLocked() (snapshot.Snapshot, error) {
	state, err := w.pcg.MarshalBinary()
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("marshaling rand state: %w", err)
	}

	snap := snapshot.Snapshot{
		Header:   snapshot.Header{Tick: w.ticks.Tick()},
		Seed:     w.cfg.Seed,
		Rand:     state,
		Spawners: w.spawners.Records(),
	}

	// tick order decides who draws from the shared rand source first,
	// so walkers are stored and re-registered in that order
	walkers := w.ticks.Walkers()
	snap.Walkers = make([]walker.Record, 0, len(walkers))
	for _, wk := range walkers {
		rec, err := wk.Record()
		if err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("recording walker %s: %w", wk.ID(), err)
		}
		snap.Walkers = append(snap.Walkers, rec)
	}
	return snap, nil
}

// Save writes a snapshot to every store.
func (w *World) Save(ctx context.Context) error {
	if len(w.stores) == 0 {
		return nil
	}

	snap, err := w.Snapshot()
	if err != nil {
		return err
	}

	var errs []error
	for _, st := range w.stores {
		if err := st.Save(ctx, snap); err != nil {
			errs = append(errs, fmt.Errorf("saving to %T: %w", st, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	slog.Info("world saved", "tick", snap.Header.Tick, "walkers", len(snap.Walkers))
	return nil
}

// Load returns the snapshot of the first store that has one.
// Returns snapshot.ErrNotFound when no store holds a snapshot.
func (w *World) Load(ctx context.Context) (snapshot.Snapshot, error) {
	for _, st := range w.stores {
		snap, err := st.Load(ctx)
		if errors.Is(err, snapshot.ErrNotFound) {
			continue
		}
		if err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("loading from %T: %w", st, err)
		}
		return snap, nil
	}
	return snapshot.Snapshot{}, snapshot.ErrNotFound
}

// Restore brings walkers back from snap and continues whatever they were
// doing. Walkers of unknown spawners are dropped. Must run before Start.
func (w *World) Restore(snap snapshot.Snapshot) error {
	var restoreErr error
	w.ticks.Do(func() {
		restoreErr = w.restoreLocked(snap)
	})
	return restoreErr
}

func (w *World) restoreLocked(snap snapshot.Snapshot) error {
	if len(snap.Rand) > 0 {
		if err := w.pcg.UnmarshalBinary(snap.Rand); err != nil {
			return fmt.Errorf("restoring rand state: %w", err)
		}
	}

	owners := make(map[uuid.UUID]*spawn.Spawner)
	for _, rec := range snap.Spawners {
		s, ok := w.spawners.Get(rec.Name)
		if !ok {
			slog.Warn("snapshot references unknown spawner", "spawner", rec.Name, "walkers", len(rec.Walkers))
			continue
		}
		s.Restore(rec)
		for _, id := range rec.Walkers {
			owners[id] = s
		}
	}

	restored := 0
	for _, rec := range snap.Walkers {
		s, ok := owners[rec.ID]
		if !ok {
			slog.Warn("dropping walker without spawner", "walkerID", rec.ID, "mode", rec.Mode())
			continue
		}

		wk := w.pool.Get()
		wk.Restore(rec)
		if err := s.Integrate(wk); err != nil {
			slog.Warn("dropping restored walker", "walkerID", rec.ID, "spawner", s.Name(), "error", err)
			w.pool.Put(wk)
			continue
		}
		if err := wk.Resume(); err != nil {
			slog.Warn("restored walker cannot continue", "walkerID", rec.ID, "error", err)
			wk.Finish()
			continue
		}
		restored++
	}

	w.ticks.SetTick(snap.Header.Tick)

	slog.Info("world restored",
		"tick", snap.Header.Tick,
		"walkers", restored,
		"dropped", len(snap.Walkers)-restored)
	return nil
}

// Autosave saves the world every interval until ctx is canceled.
// Failed saves are logged and retried on the next interval.
func (w *World) Autosave(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || len(w.stores) == 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Save(ctx); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		}
	}
}

func sortWalkers(ws []*walker.Walker) {
	slices.SortFunc(ws, func(a, b *walker.Walker) int {
		ida, idb := a.ID(), b.ID()
		return slices.Compare(ida[:], idb[:])
	})
}
