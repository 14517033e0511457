package rawg

import (
	"sync"
	"time"
)

// Breaker stops calling the provider after consecutive outages. While open,
// calls fail fast. Once the cooldown expires the breaker is half-open: exactly
// one trial call is admitted, and its outcome closes or reopens the circuit.
type Breaker struct {
	mu sync.RWMutex

	threshold int
	cooldown  time.Duration
	now       func() time.Time

	failures  int
	openUntil time.Time
	isOpen    bool
	trial     bool
}

// NewBreaker creates a breaker that opens after threshold consecutive failures.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Allow returns true if the circuit is closed, or if it is the single trial
// call admitted after the cooldown. Callers must report the outcome with
// RecordSuccess or RecordFailure.
func (b *Breaker) Allow() bool {
	b.mu.RLock()
	if !b.isOpen {
		b.mu.RUnlock()
		return true
	}
	ready := !b.trial && b.now().After(b.openUntil)
	b.mu.RUnlock()
	if !ready {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isOpen {
		return true
	}
	if b.trial || !b.now().After(b.openUntil) {
		return false
	}
	b.trial = true
	return true
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.isOpen = false
	b.trial = false
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.trial || b.failures >= b.threshold {
		// a failed trial restarts the cooldown
		b.isOpen = true
		b.trial = false
		b.openUntil = b.now().Add(b.cooldown)
	}
}

func (b *Breaker) IsOpen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isOpen
}
