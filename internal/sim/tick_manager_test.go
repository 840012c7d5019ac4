package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/udisondev/walkersim/internal/testutil"
	"github.com/udisondev/walkersim/internal/walker"
)

func newTestWalker(t *testing.T) *walker.Walker {
	t.Helper()
	env := testutil.Env(t, testutil.FlatGrid(t, 4, 4), 1)
	return walker.New(env, 1)
}

func TestTickManager_RegisterUnregister(t *testing.T) {
	mgr := NewTickManager(0)
	if mgr.Rate() != DefaultTickRate {
		t.Errorf("Rate() = %v, want %v", mgr.Rate(), DefaultTickRate)
	}

	w := newTestWalker(t)
	mgr.Register(w)
	mgr.Register(w) // duplicate is ignored

	if mgr.Count() != 1 {
		t.Errorf("Count() after Register() = %d, want 1", mgr.Count())
	}
	if got, ok := mgr.Walker(w.ID()); !ok || got != w {
		t.Errorf("Walker(%s) = %v, %v; want registered walker", w.ID(), got, ok)
	}

	mgr.Unregister(w.ID())
	mgr.Unregister(w.ID())

	if mgr.Count() != 0 {
		t.Errorf("Count() after Unregister() = %d, want 0", mgr.Count())
	}
	if _, ok := mgr.Walker(w.ID()); ok {
		t.Error("Walker() after Unregister() should report false")
	}
}

func TestTickManager_TickAll(t *testing.T) {
	mgr := NewTickManager(100 * time.Millisecond)

	w := newTestWalker(t)
	done := false
	w.Wait(1, func() { done = true })
	mgr.Register(w)

	mgr.TickAll(0.5)
	if done {
		t.Fatal("wait finished after 0.5s of 1s")
	}
	mgr.TickAll(0.5)
	if !done {
		t.Fatal("wait not finished after 1s")
	}
	if mgr.Tick() != 2 {
		t.Errorf("Tick() = %d, want 2", mgr.Tick())
	}

	mgr.SetTick(40)
	mgr.TickAll(0.1)
	if mgr.Tick() != 41 {
		t.Errorf("Tick() after SetTick(40) and one tick = %d, want 41", mgr.Tick())
	}
}

func TestTickManager_PhasesRunFirst(t *testing.T) {
	mgr := NewTickManager(0)

	var order []string
	mgr.AddPhase(func(float64) { order = append(order, "first") })
	mgr.AddPhase(func(dt float64) {
		if dt != 0.25 {
			t.Errorf("phase dt = %v, want 0.25", dt)
		}
		order = append(order, "second")
	})

	w := newTestWalker(t)
	w.Wait(0.1, func() { order = append(order, "walker") })
	mgr.Register(w)

	mgr.TickAll(0.25)

	want := []string{"first", "second", "walker"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestTickManager_RegisterDuringTick(t *testing.T) {
	mgr := NewTickManager(0)

	late := newTestWalker(t)
	lateDone := false
	late.Wait(0.5, func() { lateDone = true })

	early := newTestWalker(t)
	early.Wait(0.5, func() { mgr.Register(late) })
	mgr.Register(early)

	mgr.TickAll(0.5)
	if mgr.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", mgr.Count())
	}
	if lateDone {
		t.Fatal("walker registered during a tick advanced in the same tick")
	}

	mgr.TickAll(0.5)
	if !lateDone {
		t.Error("walker registered during previous tick did not advance")
	}
}

func TestTickManager_UnregisterDuringTick(t *testing.T) {
	mgr := NewTickManager(0)

	second := newTestWalker(t)
	secondDone := false
	second.Wait(0.5, func() { secondDone = true })

	first := newTestWalker(t)
	first.Wait(0.5, func() { mgr.Unregister(second.ID()) })

	mgr.Register(first)
	mgr.Register(second)

	mgr.TickAll(0.5)
	if secondDone {
		t.Error("walker unregistered earlier in the tick still advanced")
	}
	if mgr.Count() != 1 {
		t.Errorf("Count() = %d, want 1", mgr.Count())
	}
}

func TestTickManager_ReusedWalkerWaitsForNextTick(t *testing.T) {
	mgr := NewTickManager(0)

	reused := newTestWalker(t)
	reusedDone := 0
	reused.Wait(0.5, func() { reusedDone++ })

	first := newTestWalker(t)
	first.Wait(0.5, func() {
		// the same object comes back under a new id, like a pooled walker
		mgr.Unregister(reused.ID())
		reused.Reset()
		reused.Wait(0.5, func() { reusedDone++ })
		mgr.Register(reused)
	})

	mgr.Register(first)
	mgr.Register(reused)

	mgr.TickAll(0.5)
	if reusedDone != 0 {
		t.Fatalf("reused walker advanced %d times in the tick it was re-registered", reusedDone)
	}

	mgr.TickAll(0.5)
	if reusedDone != 1 {
		t.Errorf("reused walker finished %d times, want 1", reusedDone)
	}
}

func TestTickManager_Walkers(t *testing.T) {
	mgr := NewTickManager(0)

	a, b, c := newTestWalker(t), newTestWalker(t), newTestWalker(t)
	mgr.Register(a)
	mgr.Register(b)
	mgr.Register(c)
	mgr.Unregister(b.ID())

	got := mgr.Walkers()
	if len(got) != 2 || got[0] != a || got[1] != c {
		t.Errorf("Walkers() did not keep registration order")
	}
}

func TestTickManager_Start(t *testing.T) {
	mgr := NewTickManager(5 * time.Millisecond)

	ctx, cancel := testutil.ContextWithCancel(t)

	done := make(chan error, 1)
	go func() {
		done <- mgr.Start(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for mgr.Tick() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if mgr.Tick() == 0 {
		t.Fatal("no tick within 2s")
	}

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not stop after context cancel")
	}
}

func TestTickManager_Stop(t *testing.T) {
	mgr := NewTickManager(time.Hour)

	done := make(chan error, 1)
	go func() {
		done <- mgr.Start(context.Background())
	}()

	mgr.Stop()
	mgr.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() after Stop() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not stop after Stop()")
	}
}

func TestTickManager_DoWaitsForTick(t *testing.T) {
	mgr := NewTickManager(0)

	entered := make(chan struct{})
	release := make(chan struct{})
	mgr.AddPhase(func(float64) {
		close(entered)
		<-release
	})

	go mgr.TickAll(0.1)
	<-entered

	ran := make(chan struct{})
	go mgr.Do(func() { close(ran) })

	select {
	case <-ran:
		t.Fatal("Do ran while a tick was in progress")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not run after the tick completed")
	}
}
