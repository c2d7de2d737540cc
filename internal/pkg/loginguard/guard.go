// Package loginguard implements the per-source-IP login throttle: a sliding
// failure counter with a cooldown window, consulted before credential checks.
package loginguard

import (
	"sync"
	"time"
)

// Defaults applied by New when given non-positive values.
const (
	DefaultMaxAttempts = 5
	DefaultBlockWindow = 5 * time.Minute
)

type attempt struct {
	failures    int
	lastFailure time.Time
}

// Guard tracks failed login attempts per source IP. State is process-local;
// a restart resets all counters, which is the accepted behavior for a
// single-instance deployment.
type Guard struct {
	mu          sync.Mutex
	attempts    map[string]*attempt
	maxAttempts int
	blockWindow time.Duration
	now         func() time.Time
}

// New creates a Guard. maxAttempts and blockWindow fall back to the defaults
// when non-positive.
func New(maxAttempts int, blockWindow time.Duration) *Guard {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if blockWindow <= 0 {
		blockWindow = DefaultBlockWindow
	}
	return &Guard{
		attempts:    make(map[string]*attempt),
		maxAttempts: maxAttempts,
		blockWindow: blockWindow,
		now:         time.Now,
	}
}

// Decision is the outcome of an entry check.
type Decision struct {
	Allowed bool
	// RetryAfter is the remaining cooldown rounded up to whole minutes.
	// Zero when Allowed.
	RetryAfter time.Duration
}

// Allow runs the entry check for ip. Expiry is evaluated lazily here: once
// the block window has elapsed past the last failure the record is dropped
// and the IP is clear again, even without an intervening success.
func (g *Guard) Allow(ip string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.attempts[ip]
	if !ok {
		return Decision{Allowed: true}
	}

	now := g.now()
	expiresAt := rec.lastFailure.Add(g.blockWindow)
	if now.After(expiresAt) {
		delete(g.attempts, ip)
		return Decision{Allowed: true}
	}

	if rec.failures >= g.maxAttempts {
		remaining := expiresAt.Sub(now)
		return Decision{Allowed: false, RetryAfter: roundUpToMinute(remaining)}
	}

	return Decision{Allowed: true}
}

// RecordFailure increments the failure count for ip, refreshing the window,
// and returns maxAttempts minus the new count. The result goes negative once
// past the threshold; callers clamp it for display.
func (g *Guard) RecordFailure(ip string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.attempts[ip]
	if !ok {
		rec = &attempt{}
		g.attempts[ip] = rec
	}
	rec.failures++
	rec.lastFailure = g.now()
	return g.maxAttempts - rec.failures
}

// Reset clears all state for ip, unconditionally. Called after a successful
// login.
func (g *Guard) Reset(ip string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, ip)
}

func roundUpToMinute(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	minutes := d / time.Minute
	if d%time.Minute != 0 {
		minutes++
	}
	return minutes * time.Minute
}
