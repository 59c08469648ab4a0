package ratelimit

import (
	"sync"
	"time"
)

// DefaultCleanupPeriod is how often idle per-key limiters are swept.
const DefaultCleanupPeriod = 5 * time.Minute

// PerKeyLimiter keeps one token bucket per key (user id) and forgets
// buckets that have refilled completely.
type PerKeyLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter

	burst         float64
	refillRate    float64
	cleanupPeriod time.Duration

	onDrop func(key string)
	stopCh chan struct{}
	once   sync.Once
}

// NewPerKey creates a per-key limiter and starts its cleanup loop.
// Call Stop when done.
func NewPerKey(burst, refillRate float64, cleanupPeriod time.Duration) *PerKeyLimiter {
	if cleanupPeriod <= 0 {
		cleanupPeriod = DefaultCleanupPeriod
	}
	pl := &PerKeyLimiter{
		limiters:      make(map[string]*Limiter),
		burst:         burst,
		refillRate:    refillRate,
		cleanupPeriod: cleanupPeriod,
		stopCh:        make(chan struct{}),
	}
	go pl.cleanupLoop()
	return pl
}

// OnDrop registers a callback invoked with the key whenever a request
// is rejected. Set before first use.
func (pl *PerKeyLimiter) OnDrop(fn func(key string)) {
	pl.onDrop = fn
}

// Allow reports whether a request for key may proceed. An empty key
// is never limited.
func (pl *PerKeyLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	if pl.get(key).Allow() {
		return true
	}
	if pl.onDrop != nil {
		pl.onDrop(key)
	}
	return false
}

func (pl *PerKeyLimiter) get(key string) *Limiter {
	pl.mu.RLock()
	limiter, ok := pl.limiters[key]
	pl.mu.RUnlock()
	if ok {
		return limiter
	}

	pl.mu.Lock()
	defer pl.mu.Unlock()
	if limiter, ok = pl.limiters[key]; ok {
		return limiter
	}
	limiter = New(pl.burst, pl.refillRate)
	pl.limiters[key] = limiter
	return limiter
}

// Count returns the number of tracked keys.
func (pl *PerKeyLimiter) Count() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return len(pl.limiters)
}

// Stop terminates the cleanup loop. Idempotent.
func (pl *PerKeyLimiter) Stop() {
	pl.once.Do(func() { close(pl.stopCh) })
}

func (pl *PerKeyLimiter) cleanupLoop() {
	ticker := time.NewTicker(pl.cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-pl.stopCh:
			return
		case <-ticker.C:
			pl.cleanup()
		}
	}
}

// cleanup drops limiters whose buckets refilled to capacity.
func (pl *PerKeyLimiter) cleanup() {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	for key, limiter := range pl.limiters {
		if limiter.IsFull() {
			delete(pl.limiters, key)
		}
	}
}
