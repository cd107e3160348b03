// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors shared by the client packages.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotifykit_requests_total",
		Help: "Web API request attempts by endpoint, method and status (0 = transport failure)",
	}, []string{"endpoint", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spotifykit_request_duration_seconds",
		Help:    "Web API request latency per attempt",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint", "method"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotifykit_retries_total",
		Help: "Request retries by reason (rate_limited, upstream)",
	}, []string{"reason"})

	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotifykit_cache_events_total",
		Help: "Response cache outcomes (hit, miss, revalidated, store)",
	}, []string{"result"})

	tokenRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotifykit_token_refresh_total",
		Help: "OAuth token refresh attempts by result (success, failure, persisted, skipped)",
	}, []string{"result"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spotifykit_circuit_breaker_state",
		Help: "Web API circuit breaker state, one-hot over closed, half-open and open",
	}, []string{"breaker", "state"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotifykit_circuit_breaker_trips_total",
		Help: "Transitions to open by reason (threshold_exceeded, half_open_failure)",
	}, []string{"breaker", "reason"})

	breakerAbandoned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotifykit_circuit_breaker_abandoned_total",
		Help: "Calls through the breaker that the caller cancelled or let time out; they do not count as failures",
	}, []string{"breaker"})

	rateLimitWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spotifykit_ratelimit_wait_seconds",
		Help:    "Time spent waiting on the client-side rate limiter",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})
)

// ObserveRequest records the outcome of one Web API request attempt.
func ObserveRequest(endpoint, method string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
}

// IncRetry counts a retried request.
func IncRetry(reason string) {
	retriesTotal.WithLabelValues(reason).Inc()
}

// IncCacheEvent counts a response cache outcome.
func IncCacheEvent(result string) {
	cacheEvents.WithLabelValues(result).Inc()
}

// IncTokenRefresh counts a token refresh outcome.
func IncTokenRefresh(result string) {
	tokenRefresh.WithLabelValues(result).Inc()
}

// ObserveRateLimitWait records how long a caller was held by the limiter.
func ObserveRateLimitWait(d time.Duration) {
	rateLimitWait.Observe(d.Seconds())
}

var breakerStates = []string{"closed", "half-open", "open"}

// ObserveBreakerState sets the one-hot state gauge of a breaker.
func ObserveBreakerState(breaker, state string) {
	for _, st := range breakerStates {
		v := 0.0
		if st == state {
			v = 1
		}
		breakerState.WithLabelValues(breaker, st).Set(v)
	}
}

// IncBreakerTrip counts a transition to open.
func IncBreakerTrip(breaker, reason string) {
	breakerTrips.WithLabelValues(breaker, reason).Inc()
}

// IncBreakerAbandoned counts a call that ended with the caller's context.
func IncBreakerAbandoned(breaker string) {
	breakerAbandoned.WithLabelValues(breaker).Inc()
}
