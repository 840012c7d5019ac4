package testutil

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/walkersim/internal/action"
	"github.com/udisondev/walkersim/internal/geo"
	"github.com/udisondev/walkersim/internal/walker"
	"github.com/udisondev/walkersim/internal/world"
)

// FlatGrid creates an open w×h grid with unit cells.
func FlatGrid(tb testing.TB, w, h int32) *geo.Grid {
	tb.Helper()

	g, err := geo.NewGrid(w, h, 1)
	require.NoError(tb, err)
	return g
}

// Env собирает walker.Env поверх g с детерминированным rand и встроенными действиями.
func Env(tb testing.TB, g *geo.Grid, seed uint64) *walker.Env {
	tb.Helper()

	env := &walker.Env{
		Space:     g.Space(),
		Paths:     g,
		Neighbors: g,
		Homes:     world.NewRegistry(),
		Actions:   walker.NewActionRegistry(),
		Rand:      rand.New(rand.NewPCG(seed, seed)),
	}
	action.Register(env.Actions)
	return env
}
