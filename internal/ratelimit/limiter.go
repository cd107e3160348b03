// SPDX-License-Identifier: MIT

// Package ratelimit paces outgoing Web API calls.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ManuGH/spotifykit/internal/metrics"
)

// Config holds rate limiting configuration
type Config struct {
	Rate  rate.Limit // requests per second
	Burst int        // max burst size
}

// DefaultConfig returns sensible defaults for a single user token.
func DefaultConfig() Config {
	return Config{
		Rate:  10,
		Burst: 20,
	}
}

// Limiter paces requests and honours server-imposed pauses.
type Limiter struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
	now         func() time.Time
}

// New creates a new limiter with the given config.
func New(config Config) *Limiter {
	if config.Rate <= 0 {
		config.Rate = rate.Inf
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(config.Rate, config.Burst),
		now:     time.Now,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	start := l.now()
	defer func() {
		if waited := l.now().Sub(start); waited > 0 {
			metrics.ObserveRateLimitWait(waited)
		}
	}()

	if pause := l.pauseRemaining(); pause > 0 {
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Backoff pauses every caller until retryAfter has elapsed. A shorter pause
// never shortens one that is already in effect.
func (l *Limiter) Backoff(retryAfter time.Duration) {
	if retryAfter <= 0 {
		return
	}
	until := l.now().Add(retryAfter)

	l.mu.Lock()
	defer l.mu.Unlock()
	if until.After(l.pausedUntil) {
		l.pausedUntil = until
	}
}

func (l *Limiter) pauseRemaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pausedUntil.Sub(l.now())
}
