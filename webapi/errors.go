// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/spotifykit/internal/resilience"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound       = errors.New("spotify: resource not found")
	ErrForbidden      = errors.New("spotify: access forbidden")
	ErrRateLimited    = errors.New("spotify: rate limited")
	ErrUpstream       = errors.New("spotify: upstream error (5xx)")
	ErrBadResponse    = errors.New("spotify: invalid response format or malformed data")
	ErrTimeout        = errors.New("spotify: request timed out")
	ErrUnavailable    = errors.New("spotify: host unreachable or transport failure")
	ErrCircuitOpen    = resilience.ErrCircuitOpen
	ErrNoMorePages    = errors.New("spotify: no more pages")
	ErrEmptyIDs       = errors.New("spotify: at least one id is required")
	ErrTooManySeeds   = errors.New("spotify: at most 5 seeds are allowed")
	ErrMarketRequired = errors.New("spotify: a market is required")
	ErrImageTooLarge  = errors.New("spotify: image exceeds 256 KB")
	ErrNotJPEG        = errors.New("spotify: image is not a JPEG")

	ErrUnsupportedHost = errors.New("spotify: url is not a Web API or accounts service url")
)

// Error is an error object returned by the Web API.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`

	// RetryAfter is set for rate limited responses that carried a Retry-After
	// header; zero otherwise.
	RetryAfter time.Duration `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("Received a %d (%s) error: %s", e.Status, Status(e.Status), e.Message)
}

// Unwrap maps the status to one of the sentinel errors.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrUpstream
	}
	return nil
}

// decodeAPIError recognises {"error": {"status": N, "message": "..."}}.
func decodeAPIError(body []byte) (*Error, bool) {
	var env struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil || env.Error.Status == 0 {
		return nil, false
	}
	return env.Error, true
}

// withRetryAfter notes the server-imposed pause in the message.
func (e *Error) withRetryAfter(d time.Duration) *Error {
	if d <= 0 {
		return e
	}
	e.RetryAfter = d
	e.Message += fmt.Sprintf("\nYou may retry in %d seconds.", int(d.Seconds()))
	return e
}

// RequestError is a rich error type that wraps the sentinel errors with context.
type RequestError struct {
	Sentinel  error
	Operation string
	Status    int
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("spotify: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// imageSizeError formats the encoded size the way the API documents its limit.
func imageSizeError(encoded int) error {
	kb := float64(encoded) / 1000
	if kb >= 1000 {
		return fmt.Errorf("%w: encoded size is %.1f MB", ErrImageTooLarge, kb/1000)
	}
	return fmt.Errorf("%w: encoded size is %.1f KB", ErrImageTooLarge, kb)
}
