package gate

import (
	"container/list"
	"context"
	"sync"
)

// Stats is a point-in-time view of the gate.
type Stats struct {
	Limit   int
	Active  int
	Waiting int
}

// Option configures a Gate.
type Option func(*Gate)

// WithObserver registers a callback that receives the gate stats after every
// admission, release or resize. The callback runs while the gate is locked
// and must not call back into the gate.
func WithObserver(fn func(Stats)) Option {
	return func(g *Gate) {
		g.observer = fn
	}
}

// Gate admits at most Limit callers at once and queues the rest in arrival
// order. It is safe for concurrent use by multiple goroutines.
type Gate struct {
	mu       sync.Mutex
	limit    int
	active   int
	waiters  list.List // of chan struct{}
	observer func(Stats)
}

// New creates a gate with the given limit. Limits below 1 are clamped to 1.
func New(limit int, opts ...Option) *Gate {
	g := &Gate{limit: max(limit, 1)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire takes a slot, waiting behind earlier callers when the gate is full.
// If ctx is done before the caller is admitted, Acquire leaves the queue and
// returns ctx.Err().
func (g *Gate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	if g.active < g.limit && g.waiters.Len() == 0 {
		g.active++
		g.notify()
		g.mu.Unlock()
		return nil
	}

	ready := make(chan struct{})
	elem := g.waiters.PushBack(ready)
	g.notify()
	g.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		select {
		case <-ready:
			// Admitted while we were being cancelled; hand the slot on.
			g.releaseLocked()
		default:
			g.waiters.Remove(elem)
			g.notify()
		}
		g.mu.Unlock()
		return ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free and nobody is queued.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active < g.limit && g.waiters.Len() == 0 {
		g.active++
		g.notify()
		return true
	}
	return false
}

// Release returns a slot and admits queued callers while capacity allows.
// Calling Release without a held slot is a no-op.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.releaseLocked()
}

func (g *Gate) releaseLocked() {
	if g.active == 0 {
		return
	}
	g.active--
	g.admitLocked()
	g.notify()
}

// admitLocked wakes waiters from the head of the queue until the gate is full.
func (g *Gate) admitLocked() {
	for g.active < g.limit {
		front := g.waiters.Front()
		if front == nil {
			return
		}
		g.waiters.Remove(front)
		g.active++
		close(front.Value.(chan struct{}))
	}
}

// SetLimit changes the limit for future admissions. Callers already holding
// a slot keep it; a smaller limit only stops new admissions until enough
// slots have been released. Limits below 1 are clamped to 1.
func (g *Gate) SetLimit(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.limit = max(n, 1)
	g.admitLocked()
	g.notify()
}

// Do runs fn while holding a slot. The slot is released on every exit path,
// including a panic in fn.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

// Limit returns the current limit.
func (g *Gate) Limit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limit
}

// Active returns the number of slots in use.
func (g *Gate) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Waiting returns the number of queued callers.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiters.Len()
}

// Stats returns limit, active and waiting counts read under one lock.
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statsLocked()
}

func (g *Gate) statsLocked() Stats {
	return Stats{Limit: g.limit, Active: g.active, Waiting: g.waiters.Len()}
}

func (g *Gate) notify() {
	if g.observer != nil {
		g.observer(g.statsLocked())
	}
}
