// SPDX-License-Identifier: MIT

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLimiter_BurstPassesImmediately(t *testing.T) {
	l := New(Config{Rate: 1, Burst: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(ctx))
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := New(Config{Rate: rate.Every(time.Hour), Burst: 1})
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestLimiter_BackoffPausesCallers(t *testing.T) {
	l := New(Config{Rate: rate.Inf, Burst: 1})
	l.Backoff(80 * time.Millisecond)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestLimiter_BackoffNeverShortens(t *testing.T) {
	now := time.Unix(1000, 0)
	l := New(DefaultConfig())
	l.now = func() time.Time { return now }

	l.Backoff(10 * time.Second)
	l.Backoff(2 * time.Second)
	assert.Equal(t, 10*time.Second, l.pauseRemaining())

	l.Backoff(0)
	assert.Equal(t, 10*time.Second, l.pauseRemaining())
}

func TestLimiter_BackoffCancelled(t *testing.T) {
	l := New(Config{Rate: rate.Inf, Burst: 1})
	l.Backoff(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestNew_ZeroConfigIsUnlimited(t *testing.T) {
	l := New(Config{})
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}
