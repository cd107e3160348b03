// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("v1/albums", "GET", "200"))
	ObserveRequest("v1/albums", "GET", 200, 120*time.Millisecond)
	after := testutil.ToFloat64(requestsTotal.WithLabelValues("v1/albums", "GET", "200"))
	assert.Equal(t, before+1, after)
}

func TestCounters(t *testing.T) {
	tests := []struct {
		name string
		inc  func()
		read func() float64
	}{
		{
			name: "retry",
			inc:  func() { IncRetry("rate_limited") },
			read: func() float64 { return testutil.ToFloat64(retriesTotal.WithLabelValues("rate_limited")) },
		},
		{
			name: "cache",
			inc:  func() { IncCacheEvent("hit") },
			read: func() float64 { return testutil.ToFloat64(cacheEvents.WithLabelValues("hit")) },
		},
		{
			name: "token refresh",
			inc:  func() { IncTokenRefresh("success") },
			read: func() float64 { return testutil.ToFloat64(tokenRefresh.WithLabelValues("success")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.read()
			tt.inc()
			assert.Equal(t, before+1, tt.read())
		})
	}
}

func TestObserveBreakerState_OneHot(t *testing.T) {
	ObserveBreakerState("webapi-test", "open")
	assert.Equal(t, 1.0, testutil.ToFloat64(breakerState.WithLabelValues("webapi-test", "open")))
	assert.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues("webapi-test", "closed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues("webapi-test", "half-open")))

	ObserveBreakerState("webapi-test", "closed")
	assert.Equal(t, 1.0, testutil.ToFloat64(breakerState.WithLabelValues("webapi-test", "closed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues("webapi-test", "open")))
}

func TestBreakerCounters(t *testing.T) {
	trips := breakerTrips.WithLabelValues("webapi-test", "threshold_exceeded")
	before := testutil.ToFloat64(trips)
	IncBreakerTrip("webapi-test", "threshold_exceeded")
	assert.Equal(t, before+1, testutil.ToFloat64(trips))

	abandoned := breakerAbandoned.WithLabelValues("webapi-test")
	before = testutil.ToFloat64(abandoned)
	IncBreakerAbandoned("webapi-test")
	assert.Equal(t, before+1, testutil.ToFloat64(abandoned))
}
