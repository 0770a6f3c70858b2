package scanner

import (
	"sync"
	"time"
)

// cooldownGate suppresses repeat alerts per instrument. An instrument is
// cooling from the moment a signal is dispatched until the interval elapses,
// at which point it is idle again with no explicit transition.
type cooldownGate struct {
	mu        sync.Mutex
	interval  time.Duration
	lastAlert map[string]time.Time
}

func newCooldownGate(interval time.Duration) *cooldownGate {
	return &cooldownGate{
		interval:  interval,
		lastAlert: make(map[string]time.Time),
	}
}

// Cooling reports whether the instrument is still inside its cooldown
// window at the given time.
func (g *cooldownGate) Cooling(pair string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastAlert[pair]
	if !ok {
		return false
	}
	return now.Sub(last) < g.interval
}

// MarkDispatched records a dispatch, starting the instrument's cooldown.
func (g *cooldownGate) MarkDispatched(pair string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastAlert[pair] = now
}
