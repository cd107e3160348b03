// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/spotifykit/auth"
	"github.com/ManuGH/spotifykit/internal/metrics"
)

func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// responseError returns the error carried by a response, if any. Error
// bodies win over the status so that a 2xx with an error object still fails.
func responseError(status Status, header http.Header, body []byte) error {
	if len(body) > 0 {
		if e, ok := decodeAPIError(body); ok {
			if e.Status == http.StatusTooManyRequests {
				return withRetryHeader(e, header)
			}
			return e
		}
		if e, ok := auth.DecodeError(body); ok {
			return e
		}
	}
	if status.IsSuccess() || status == http.StatusNotModified {
		return nil
	}
	return apiError(status, header, body)
}

// apiError builds an *Error for a failed status, using the body's message
// when it carries one.
func apiError(status Status, header http.Header, body []byte) error {
	if e, ok := decodeAPIError(body); ok {
		if e.Status == http.StatusTooManyRequests {
			return withRetryHeader(e, header)
		}
		return e
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 512 {
		msg = http.StatusText(int(status))
	}
	e := &Error{Status: int(status), Message: msg}
	if status == http.StatusTooManyRequests {
		return withRetryHeader(e, header)
	}
	return e
}

// withRetryHeader notes the pause the server asked for. Without a usable
// Retry-After header the message is left alone.
func withRetryHeader(e *Error, header http.Header) *Error {
	if d, ok := retryAfterHeader(header); ok {
		return e.withRetryAfter(d)
	}
	return e
}

func retryAfterHeader(header http.Header) (time.Duration, bool) {
	secs, err := strconv.Atoi(strings.TrimSpace(header.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// parseRetryAfter reads delay-seconds. A missing or malformed header falls
// back to one second so that a retry never hammers the API.
func parseRetryAfter(v string) time.Duration {
	if d, ok := retryAfterHeader(http.Header{"Retry-After": {v}}); ok {
		return d
	}
	return defaultRetryAfter
}

// transportError classifies a failure to get any response at all.
func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("spotify: %s: %w", op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{Operation: op, Sentinel: ErrTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RequestError{Operation: op, Sentinel: ErrTimeout, Err: err}
	}
	return &RequestError{Operation: op, Sentinel: ErrUnavailable, Err: err}
}

func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "network"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUpstream):
		return "http_5xx"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return "http_4xx"
	}
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return "auth"
	}
	return "error"
}

func observeRequest(endpoint, method string, status int, elapsed time.Duration) {
	metrics.ObserveRequest(endpoint, method, status, elapsed)
}

func incRetry(reason string)      { metrics.IncRetry(reason) }
func incCacheEvent(result string) { metrics.IncCacheEvent(result) }
