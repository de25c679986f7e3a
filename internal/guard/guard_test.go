package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "test-key")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	rl.Check(ctx, "test-key")
	rl.Check(ctx, "test-key")
	result := rl.Check(ctx, "test-key")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	r1 := rl.Check(ctx, "key-a")
	r2 := rl.Check(ctx, "key-b")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	ctx := context.Background()

	assert.True(t, rl.Check(ctx, "k").Allowed)
	assert.False(t, rl.Check(ctx, "k").Allowed)

	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.Check(ctx, "k").Allowed)
}

func TestCircuitBreaker_ClosedByDefault(t *testing.T) {
	cb := NewCircuitBreaker(3, 5*time.Second)
	ctx := context.Background()

	result := cb.Check(ctx, "result-feed")
	assert.True(t, result.Allowed)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "result-feed")
	for i := 0; i < 3; i++ {
		cb.RecordFailure("result-feed")
	}

	result := cb.Check(ctx, "result-feed")
	assert.False(t, result.Allowed)
	assert.Equal(t, "circuit_breaker", result.Guard)
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(2, 10*time.Millisecond)
	ctx := context.Background()

	cb.Check(ctx, "result-feed")
	cb.RecordFailure("result-feed")
	cb.RecordFailure("result-feed")
	assert.False(t, cb.Check(ctx, "result-feed").Allowed)

	time.Sleep(15 * time.Millisecond)

	// One probe allowed, a second blocked until the probe reports back.
	assert.True(t, cb.Check(ctx, "result-feed").Allowed)
	cb.RecordSuccess("result-feed")
	assert.True(t, cb.Check(ctx, "result-feed").Allowed)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Second)
	ctx := context.Background()

	cb.Check(ctx, "result-feed")
	cb.RecordFailure("result-feed")
	cb.RecordSuccess("result-feed")
	cb.RecordFailure("result-feed")

	assert.True(t, cb.Check(ctx, "result-feed").Allowed)
}

func TestIdempotencyGuard_AllowsFirstUse(t *testing.T) {
	ig := NewIdempotencyGuard()
	ctx := context.Background()

	result := ig.Check(ctx, "key-1")
	assert.True(t, result.Allowed)
}

func TestIdempotencyGuard_BlocksDuplicate(t *testing.T) {
	ig := NewIdempotencyGuard()
	ctx := context.Background()

	ig.Check(ctx, "key-1")
	result := ig.Check(ctx, "key-1")

	assert.False(t, result.Allowed)
	assert.Equal(t, "idempotency", result.Guard)
}

func TestIdempotencyGuard_EmptyKeyAlwaysAllowed(t *testing.T) {
	ig := NewIdempotencyGuard()
	ctx := context.Background()

	assert.True(t, ig.Check(ctx, "").Allowed)
	assert.True(t, ig.Check(ctx, "").Allowed)
}

func TestIdempotencyGuard_RemoveAllowsRetry(t *testing.T) {
	ig := NewIdempotencyGuard()
	ctx := context.Background()

	ig.Check(ctx, "key-1")
	ig.Remove("key-1")

	assert.True(t, ig.Check(ctx, "key-1").Allowed)
}
