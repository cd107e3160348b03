// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/spotifykit/auth"
)

func TestError_Message(t *testing.T) {
	e := &Error{Status: 404, Message: "non existing id"}
	assert.Equal(t, "Received a 404 (Not Found) error: non existing id", e.Error())
}

func TestError_Unwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{404, ErrNotFound},
		{401, ErrForbidden},
		{403, ErrForbidden},
		{429, ErrRateLimited},
		{500, ErrUpstream},
		{503, ErrUpstream},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, &Error{Status: tt.status}, tt.want, "status %d", tt.status)
	}
	assert.Nil(t, (&Error{Status: 400}).Unwrap())
}

func TestRequestError(t *testing.T) {
	inner := errors.New("connection reset")
	err := &RequestError{Operation: "v1/albums", Sentinel: ErrUnavailable, Status: 0, Err: inner}

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "spotify: v1/albums: spotify: host unreachable or transport failure: connection reset", err.Error())

	withStatus := &RequestError{Operation: "v1/me", Sentinel: ErrBadResponse, Status: 200}
	assert.Contains(t, withStatus.Error(), "(HTTP 200)")
}

func TestResponseError(t *testing.T) {
	t.Run("api error in a 2xx body", func(t *testing.T) {
		err := responseError(200, http.Header{}, []byte(`{"error":{"status":400,"message":"invalid id"}}`))
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.Status)
		assert.Equal(t, "invalid id", apiErr.Message)
	})

	t.Run("accounts error", func(t *testing.T) {
		err := responseError(400, http.Header{}, []byte(`{"error":"invalid_client","error_description":"Invalid client"}`))
		var authErr *auth.Error
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "invalid_client", authErr.Code)
	})

	t.Run("status only", func(t *testing.T) {
		err := responseError(404, http.Header{}, nil)
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Not Found", apiErr.Message)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("success", func(t *testing.T) {
		assert.NoError(t, responseError(200, http.Header{}, []byte(`{"id":"x"}`)))
		assert.NoError(t, responseError(204, http.Header{}, nil))
	})

	t.Run("rate limit notes retry after", func(t *testing.T) {
		h := http.Header{}
		h.Set("Retry-After", "3")
		err := apiError(429, h, nil)
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 3*time.Second, apiErr.RetryAfter)
		assert.Equal(t, "Too Many Requests\nYou may retry in 3 seconds.", apiErr.Message)
	})

	t.Run("rate limit without retry after", func(t *testing.T) {
		for _, v := range []string{"", "soon"} {
			h := http.Header{}
			if v != "" {
				h.Set("Retry-After", v)
			}
			err := responseError(429, h, []byte(`{"error":{"status":429,"message":"API rate limit exceeded"}}`))
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Zero(t, apiErr.RetryAfter)
			assert.Equal(t, "API rate limit exceeded", apiErr.Message)
			assert.NotContains(t, apiErr.Error(), "You may retry")
			assert.ErrorIs(t, err, ErrRateLimited)
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Equal(t, time.Second, parseRetryAfter(""))
	assert.Equal(t, time.Second, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, time.Second, parseRetryAfter("0"))
}

func TestTransportError(t *testing.T) {
	assert.ErrorIs(t, transportError("op", context.DeadlineExceeded), ErrTimeout)
	assert.ErrorIs(t, transportError("op", errors.New("refused")), ErrUnavailable)

	err := transportError("op", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestImageSizeError(t *testing.T) {
	assert.EqualError(t, imageSizeError(300_000), "spotify: image exceeds 256 KB: encoded size is 300.0 KB")
	assert.EqualError(t, imageSizeError(1_500_000), "spotify: image exceeds 256 KB: encoded size is 1.5 MB")
	assert.ErrorIs(t, imageSizeError(300_000), ErrImageTooLarge)
}

func TestErrorClass(t *testing.T) {
	assert.Equal(t, "timeout", errorClass(&RequestError{Sentinel: ErrTimeout}))
	assert.Equal(t, "rate_limited", errorClass(&Error{Status: 429}))
	assert.Equal(t, "http_5xx", errorClass(&Error{Status: 502}))
	assert.Equal(t, "http_4xx", errorClass(&Error{Status: 400}))
	assert.Equal(t, "auth", errorClass(&auth.Error{Code: "invalid_grant"}))
	assert.Equal(t, "circuit_open", errorClass(&RequestError{Sentinel: ErrCircuitOpen}))
}
