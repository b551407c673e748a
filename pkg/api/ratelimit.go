package api

import (
	"sync"
	"time"
)

// RateLimiter paces outbound API calls. Wait blocks until the next call is
// allowed; CanProceed reports whether a call would go through without
// blocking.
type RateLimiter interface {
	Wait()
	CanProceed() bool
}

// SimpleRateLimiter enforces a minimum delay between consecutive calls. The
// feed client uses it so repeated polls never hit the endpoint faster than
// once per interval.
type SimpleRateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	minDelay time.Duration
}

// NewSimpleRateLimiter creates a limiter with the given minimum delay
// between calls.
func NewSimpleRateLimiter(minDelay time.Duration) *SimpleRateLimiter {
	return &SimpleRateLimiter{
		minDelay: minDelay,
	}
}

// Wait sleeps out the remainder of the delay since the previous call.
func (rl *SimpleRateLimiter) Wait() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elapsed := time.Since(rl.lastCall); elapsed < rl.minDelay {
		time.Sleep(rl.minDelay - elapsed)
	}
	rl.lastCall = time.Now()
}

// CanProceed reports whether the delay since the previous call has elapsed.
func (rl *SimpleRateLimiter) CanProceed() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return time.Since(rl.lastCall) >= rl.minDelay
}

// TokenBucketRateLimiter allows short bursts up to a bounded bucket, refilled
// one token per interval. The publisher uses it so a catch-up backlog drains
// the bucket instead of firing submissions back to back.
type TokenBucketRateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewTokenBucketRateLimiter creates a token bucket limiter that starts full.
func NewTokenBucketRateLimiter(maxTokens int, refillRate time.Duration) *TokenBucketRateLimiter {
	return &TokenBucketRateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available, then consumes it.
func (rl *TokenBucketRateLimiter) Wait() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	for rl.tokens <= 0 {
		rl.mu.Unlock()
		time.Sleep(rl.refillRate)
		rl.mu.Lock()
		rl.refill()
	}

	rl.tokens--
}

// CanProceed reports whether a token is available right now.
func (rl *TokenBucketRateLimiter) CanProceed() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	return rl.tokens > 0
}

// refill credits tokens for the time elapsed since the last refill. Callers
// must hold mu.
func (rl *TokenBucketRateLimiter) refill() {
	now := time.Now()
	credit := int(now.Sub(rl.lastRefill) / rl.refillRate)
	if credit <= 0 {
		return
	}

	rl.tokens += credit
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

// NoOpRateLimiter never blocks. Tests use it to keep submissions instant.
type NoOpRateLimiter struct{}

// NewNoOpRateLimiter creates a limiter that performs no limiting.
func NewNoOpRateLimiter() *NoOpRateLimiter {
	return &NoOpRateLimiter{}
}

// Wait does nothing.
func (rl *NoOpRateLimiter) Wait() {}

// CanProceed always returns true.
func (rl *NoOpRateLimiter) CanProceed() bool {
	return true
}
