package testutil

import (
	"context"
	"testing"
	"time"
)

// Context returns a context canceled when the test ends or after timeout.
func Context(tb testing.TB, timeout time.Duration) context.Context {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	tb.Cleanup(cancel)

	return ctx
}

// ContextWithCancel создаёт context с cancel и автоматически отменяет его при завершении теста.
func ContextWithCancel(tb testing.TB) (context.Context, context.CancelFunc) {
	tb.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)

	return ctx, cancel
}
