package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a tokens-per-minute budget for AI providers. The
// window resets a minute after the first consumption inside it.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	consumed    int
	windowStart time.Time
}

// NewTokenLimiter creates a TokenLimiter with the given per-minute budget.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{maxPerMin: maxPerMinute}
}

// GetRemaining returns the number of tokens left in the current window.
func (t *TokenLimiter) GetRemaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfExpired()
	return t.maxPerMin - t.consumed
}

// Wait blocks until the given number of tokens fits in the budget, then
// consumes them. Requests larger than the whole budget are admitted alone.
func (t *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		t.mu.Lock()
		t.resetIfExpired()
		if t.consumed == 0 || t.consumed+tokens <= t.maxPerMin {
			t.consumed += tokens
			t.mu.Unlock()
			return nil
		}
		wait := time.Until(t.windowStart.Add(time.Minute))
		t.mu.Unlock()

		if wait < time.Second {
			wait = time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (t *TokenLimiter) resetIfExpired() {
	now := time.Now()
	if t.windowStart.IsZero() || now.Sub(t.windowStart) >= time.Minute {
		t.windowStart = now
		t.consumed = 0
	}
}
