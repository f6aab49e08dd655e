// Package util provides small reusable helpers.
package util

import (
	"sync"
	"time"
)

// Gate limits how often an action may run, allowing it at most once per
// interval. It is non-blocking and thread-safe: callers ask Allow and skip
// the action when it returns false. Force marks the action as taken
// regardless of the interval, which is useful for terminal updates that must
// always go out.
//
// Example usage:
//
//	gate := NewGate(1500 * time.Millisecond)
//
//	for page := range pages {
//	    process(page)
//	    if gate.Allow() {
//	        publishProgress() // at most once per 1.5s
//	    }
//	}
//	gate.Force()
//	publishProgress() // final state, always published
type Gate struct {
	interval time.Duration
	mu       sync.Mutex
	last     time.Time
	now      func() time.Time
}

// NewGate creates a gate with the given minimum interval between allowances.
// The first call to Allow always succeeds.
func NewGate(interval time.Duration) *Gate {
	return &Gate{
		interval: interval,
		now:      time.Now,
	}
}

// Allow reports whether enough time has passed since the last allowed action,
// and if so records the action as taken.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now

	return true
}

// Force records the action as taken now, resetting the interval window.
func (g *Gate) Force() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last = g.now()
}
