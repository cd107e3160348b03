// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"

	"github.com/ManuGH/spotifykit/auth"
	"github.com/ManuGH/spotifykit/internal/cache"
)

func TestClient_CurrentUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(w, http.StatusOK, `{"id":"alice","display_name":"Alice","country":"SE","product":"premium"}`)
	}))

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name())
	assert.Equal(t, ProductPremium, u.Product)
}

func TestClient_ErrorBodyWithSuccessStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"error":{"status":401,"message":"The access token expired"}}`)
	}))

	_, err := c.CurrentUser(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Received a 401 (Unauthorized) error: The access token expired", apiErr.Error())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClient_AccountsErrorBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_client","error_description":"Invalid client"}`)
	}))

	_, err := c.CurrentUser(context.Background())
	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid client", authErr.Description)
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":{"status":404,"message":"non existing id"}}`)
	}))

	_, err := NewCatalog(c, language.Und).Album(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_RetriesRateLimited(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, `{"error":{"status":429,"message":"API rate limit exceeded"}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"alice"}`)
	}))

	start := time.Now()
	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", u.ID)
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond, "the retry waits for Retry-After")
}

func TestClient_RateLimitedGivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "2")
		writeJSON(w, http.StatusTooManyRequests, `{"error":{"status":429,"message":"API rate limit exceeded"}}`)
	}), WithRetries(0))

	_, err := c.CurrentUser(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 2*time.Second, apiErr.RetryAfter)
	assert.True(t, strings.HasSuffix(apiErr.Message, "\nYou may retry in 2 seconds."))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesUpstreamErrorsOnGet(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"alice"}`)
	}))
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	_, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}, slept)
}

func TestClient_DoesNotRetryWrites(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := c.SaveTracks(context.Background(), []string{"t1"})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}), WithRetries(0), WithCircuitBreaker(1, time.Hour))

	_, err := c.CurrentUser(context.Background())
	require.ErrorIs(t, err, ErrUpstream)

	_, err = c.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_CallerDeadlineDoesNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"me"}`)
	}), WithRetries(0), WithCircuitBreaker(1, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.CurrentUser(ctx)
	require.ErrorIs(t, err, ErrTimeout)
	var aborted abortedError
	assert.False(t, errors.As(err, &aborted))

	me, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "me", me.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), WithCircuitBreaker(1, time.Hour))

	for range 3 {
		_, err := c.CurrentUser(context.Background())
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRetries(0))
	_, err := c.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_TokenSourceFailure(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), WithTokenSource(failingSource{}))
	_, err := c.CurrentUser(context.Background())
	assert.ErrorContains(t, err, "obtain access token")
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("revoked") }

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":`)
	}))
	_, err := c.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestClient_ETagRevalidation(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		writeJSON(w, http.StatusOK, `{"genres":["acoustic","rock"]}`)
	}), WithCache(cache.NewMemoryCache(0), time.Minute))

	req, err := NewEndpointRequest(MethodGet, pathGenreSeeds, nil)
	require.NoError(t, err)

	first, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, Status(http.StatusOK), second.Status)
	assert.JSONEq(t, string(first.Body), string(second.Body))
	assert.Equal(t, int32(2), calls.Load())

	genres, err := NewCatalog(c, language.Und).AvailableGenreSeeds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acoustic", "rock"}, genres)
}

func TestClient_CacheKeyPerUser(t *testing.T) {
	c := NewClient(WithCache(cache.NewMemoryCache(0), time.Minute))

	me, err := NewEndpointRequest(MethodGet, pathMe, nil)
	require.NoError(t, err)
	keyA, _ := c.lookup(me, me.URL(), "token-a")
	keyB, _ := c.lookup(me, me.URL(), "token-b")
	assert.NotEqual(t, keyA, keyB)
	assert.True(t, strings.HasSuffix(keyA, "|https://api.spotify.com/v1/me"))

	album, err := NewEndpointRequest(MethodGet, pathAlbums+"/x", nil)
	require.NoError(t, err)
	keyC, _ := c.lookup(album, album.URL(), "token-a")
	keyD, _ := c.lookup(album, album.URL(), "token-b")
	assert.Equal(t, keyC, keyD)

	for _, key := range []string{keyMarket, keyCountry} {
		fromToken, err := NewEndpointRequest(MethodGet, pathAlbums+"/x", map[string]any{key: MarketFromToken})
		require.NoError(t, err)
		keyE, _ := c.lookup(fromToken, fromToken.URL(), "token-a")
		keyF, _ := c.lookup(fromToken, fromToken.URL(), "token-b")
		assert.NotEqual(t, keyE, keyF, key)
		assert.True(t, strings.HasSuffix(keyE, "|https://api.spotify.com/v1/albums/x?"+key+"=from_token"), keyE)
	}

	put, err := NewEndpointRequest(MethodPut, pathSavedTracks, nil)
	require.NoError(t, err)
	key, entry := c.lookup(put, put.URL(), "token-a")
	assert.Empty(t, key)
	assert.Nil(t, entry)
}

func TestClient_CorruptCacheEntry(t *testing.T) {
	mem := cache.NewMemoryCache(0)
	c := NewClient(WithCache(mem, time.Minute))

	req, err := NewEndpointRequest(MethodGet, pathAlbums+"/x", nil)
	require.NoError(t, err)
	mem.Set(req.URL().String(), []byte("garbage"), time.Minute)

	key, entry := c.lookup(req, req.URL(), "")
	assert.NotEmpty(t, key)
	assert.Nil(t, entry)
	_, ok := mem.Get(key)
	assert.False(t, ok, "corrupt entries are dropped")
}

func TestClient_Market(t *testing.T) {
	assert.Equal(t, "SE", NewClient(WithMarket(language.MustParse("sv-SE"))).Market())
	assert.Equal(t, MarketFromToken, NewClient(WithMarketFromToken()).Market())
	assert.Empty(t, NewClient().Market())
}
