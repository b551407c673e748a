package api

import (
	"testing"
	"time"
)

func TestSimpleRateLimiter_EnforcesMinDelay(t *testing.T) {
	rl := NewSimpleRateLimiter(50 * time.Millisecond)

	start := time.Now()
	rl.Wait()
	rl.Wait()
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Errorf("second Wait returned after %v, want at least 50ms", elapsed)
	}
}

func TestSimpleRateLimiter_CanProceed(t *testing.T) {
	rl := NewSimpleRateLimiter(30 * time.Millisecond)

	if !rl.CanProceed() {
		t.Error("fresh limiter should allow the first call")
	}

	rl.Wait()
	if rl.CanProceed() {
		t.Error("call immediately after Wait should be blocked")
	}

	time.Sleep(40 * time.Millisecond)
	if !rl.CanProceed() {
		t.Error("call after the delay elapsed should be allowed")
	}
}

func TestTokenBucketRateLimiter_BurstThenBlocks(t *testing.T) {
	rl := NewTokenBucketRateLimiter(3, 40*time.Millisecond)

	// A full bucket absorbs the burst without waiting.
	start := time.Now()
	for i := 0; i < 3; i++ {
		rl.Wait()
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("burst of 3 took %v, want near-instant", elapsed)
	}

	if rl.CanProceed() {
		t.Error("drained bucket should block the next call")
	}

	// The fourth call waits for a refill.
	start = time.Now()
	rl.Wait()
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("call on drained bucket returned after %v, want a refill wait", elapsed)
	}
}

func TestTokenBucketRateLimiter_RefillCapped(t *testing.T) {
	rl := NewTokenBucketRateLimiter(2, 10*time.Millisecond)

	rl.Wait()
	rl.Wait()

	// Sleep long enough to earn many tokens; the bucket must cap at max.
	time.Sleep(60 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if !rl.CanProceed() {
			t.Fatalf("expected token %d to be available after refill", i+1)
		}
		rl.Wait()
	}
	if rl.CanProceed() {
		t.Error("bucket refilled beyond its maximum")
	}
}

func TestNoOpRateLimiter(t *testing.T) {
	rl := NewNoOpRateLimiter()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if !rl.CanProceed() {
			t.Fatal("no-op limiter should never block")
		}
		rl.Wait()
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("100 no-op waits took %v", elapsed)
	}
}
