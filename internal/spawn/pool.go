package spawn

import (
	"sync"

	"github.com/udisondev/walkersim/internal/walker"
)

// FreeListPool reuses finished walkers.
// Returned walkers are reset so no mode state leaks into the next life.
type FreeListPool struct {
	env   *walker.Env
	speed float64
	limit int

	mu   sync.Mutex
	free []*walker.Walker

	created int
	reused  int
}

// NewFreeListPool creates a pool keeping at most limit idle walkers.
// Fresh walkers are created for env with the given speed.
func NewFreeListPool(env *walker.Env, speed float64, limit int) *FreeListPool {
	return &FreeListPool{env: env, speed: speed, limit: limit}
}

// Get implements Pool.
func (p *FreeListPool) Get() *walker.Walker {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		w := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.reused++
		return w
	}
	p.created++
	return walker.New(p.env, p.speed)
}

// Put implements Pool.
func (p *FreeListPool) Put(w *walker.Walker) {
	w.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) < p.limit {
		p.free = append(p.free, w)
	}
}

// Idle returns number of walkers waiting for reuse.
func (p *FreeListPool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Stats returns how many walkers were created and how many were reused.
func (p *FreeListPool) Stats() (created, reused int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created, p.reused
}
