// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

var errBoom = errors.New("boom")

func fail() error { return errBoom }
func ok() error   { return nil }

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-trip", 3, 10*time.Second, WithClock(clock))

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errBoom)
		assert.Equal(t, StateClosed, cb.State())
	}
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test-reset", 2, time.Second)

	_ = cb.Execute(fail)
	require.NoError(t, cb.Execute(ok))
	_ = cb.Execute(fail)
	assert.Equal(t, StateClosed, cb.State(), "failures are consecutive, success resets the count")
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-probe", 1, 10*time.Second, WithClock(clock))

	_ = cb.Execute(fail)
	require.Equal(t, StateOpen, cb.State())

	clock.now = clock.now.Add(11 * time.Second)
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-reopen", 1, 10*time.Second, WithClock(clock))

	_ = cb.Execute(fail)
	clock.now = clock.now.Add(11 * time.Second)
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenSingleProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-single", 1, 10*time.Second, WithClock(clock))

	_ = cb.Execute(fail)
	clock.now = clock.now.Add(11 * time.Second)

	err := cb.Execute(func() error {
		// A second caller arriving while the probe is in flight is rejected.
		assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_FailurePredicate(t *testing.T) {
	errClient := errors.New("client error")
	cb := NewCircuitBreaker("test-predicate", 1, time.Second,
		WithFailurePredicate(func(err error) bool { return !errors.Is(err, errClient) }))

	assert.ErrorIs(t, cb.Execute(func() error { return errClient }), errClient)
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(fail)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_NeutralPredicate(t *testing.T) {
	errAbandoned := errors.New("abandoned")
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-neutral", 1, 10*time.Second, WithClock(clock),
		WithNeutralPredicate(func(err error) bool { return errors.Is(err, errAbandoned) }))

	for range 3 {
		assert.ErrorIs(t, cb.Execute(func() error { return errAbandoned }), errAbandoned)
	}
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(fail)
	require.Equal(t, StateOpen, cb.State())
	clock.now = clock.now.Add(11 * time.Second)

	// An abandoned probe neither closes nor reopens the breaker.
	assert.ErrorIs(t, cb.Execute(func() error { return errAbandoned }), errAbandoned)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}
