package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces outbound requests evenly across a per-minute budget.
type Limiter struct {
	limiter *rate.Limiter
}

// NewPerMinute creates a limiter allowing maxPerMinute requests per minute.
// Non-positive values fall back to 60.
func NewPerMinute(maxPerMinute int) *Limiter {
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}
	interval := time.Minute / time.Duration(maxPerMinute)
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request is allowed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
