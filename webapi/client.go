// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package webapi is a client for the Spotify Web API: request building,
// response and error decoding, paging, and the catalog, library, follow,
// playlist, personalization and search endpoints.
package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	xglog "github.com/ManuGH/spotifykit/internal/log"
	"github.com/ManuGH/spotifykit/internal/platform/httpx"
	"github.com/ManuGH/spotifykit/internal/ratelimit"
	"github.com/ManuGH/spotifykit/internal/resilience"
	"github.com/ManuGH/spotifykit/internal/telemetry"
)

const (
	defaultRetries      = 3
	defaultCacheTTL     = 10 * time.Minute
	maxResponseBytes    = 16 << 20
	upstreamRetryBase   = 200 * time.Millisecond
	defaultRetryAfter   = time.Second
	breakerName         = "spotify_webapi"
	tracerName          = "github.com/ManuGH/spotifykit/webapi"
	meEndpointPrefix    = "/v1/me"
	tokenFingerprintLen = 8
)

// Cache stores response bodies keyed by request URL. The implementations
// in internal/cache satisfy it.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

// Response is a completed Web API call.
type Response struct {
	Status    Status
	Header    http.Header
	Body      []byte
	FromCache bool
}

// Client sends requests to the Web API.
type Client struct {
	http     *http.Client
	tokens   oauth2.TokenSource
	baseURL  *url.URL
	logger   zerolog.Logger
	cache    Cache
	cacheTTL time.Duration
	limiter  *ratelimit.Limiter
	breaker  *resilience.CircuitBreaker
	retries  int
	market   string
	tracer   trace.Tracer

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource authorizes every request with tokens from ts.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithBaseURL sends requests for both Spotify hosts to base instead, keeping
// the path and query. Used with test servers.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if u, err := url.Parse(strings.TrimRight(base, "/")); err == nil {
			c.baseURL = u
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithCache enables ETag revalidation backed by cache. Entries live for ttl;
// ttl <= 0 uses the default of ten minutes.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithRateLimit paces requests to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		c.limiter = ratelimit.New(ratelimit.Config{Rate: rate.Limit(r), Burst: burst})
	}
}

// WithCircuitBreaker opens after threshold consecutive upstream failures
// and probes again after reset.
func WithCircuitBreaker(threshold int, reset time.Duration) Option {
	return func(c *Client) {
		c.breaker = newBreaker(threshold, reset)
	}
}

// WithRetries bounds the retries after a rate limit or a 5xx on GET.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithMarket sets the default storefront from tag's region.
func WithMarket(tag language.Tag) Option {
	return func(c *Client) { c.market = Country(tag) }
}

// WithMarketFromToken uses the country of the authorized user as market.
func WithMarketFromToken() Option {
	return func(c *Client) { c.market = MarketFromToken }
}

// NewClient creates a Web API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		logger:   xglog.WithComponent("webapi"),
		cacheTTL: defaultCacheTTL,
		retries:  defaultRetries,
		tracer:   telemetry.Tracer(tracerName),
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpx.NewTracedClient(0)
	}
	if c.limiter == nil {
		c.limiter = ratelimit.New(ratelimit.DefaultConfig())
	}
	if c.breaker == nil {
		c.breaker = newBreaker(0, 0)
	}
	return c
}

func newBreaker(threshold int, reset time.Duration) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(breakerName, threshold, reset,
		resilience.WithFailurePredicate(func(err error) bool {
			return errors.Is(err, ErrUpstream) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
		}),
		resilience.WithNeutralPredicate(func(err error) bool {
			var aborted abortedError
			return errors.As(err, &aborted)
		}),
	)
}

// abortedError marks a call that ended because the caller's context was
// done rather than because of the API.
type abortedError struct{ err error }

func (e abortedError) Error() string { return e.err.Error() }
func (e abortedError) Unwrap() error { return e.err }

// Market is the default market sent by market-aware calls.
func (c *Client) Market() string { return c.market }

// Do sends req, retrying rate limited calls and, for GET, upstream
// failures. Error bodies are returned as *Error or *auth.Error, even with a
// 2xx status.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	endpoint := req.Endpoint()
	ctx, span := c.tracer.Start(ctx, "spotify."+strings.ToLower(string(req.Method))+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.RequestAttributes(endpoint, c.market)...),
	)
	defer span.End()

	var resp *Response
	err := c.breaker.Execute(func() error {
		var err error
		resp, err = c.send(ctx, req)
		if err != nil && ctx.Err() != nil {
			return abortedError{err}
		}
		return err
	})
	var aborted abortedError
	if errors.As(err, &aborted) {
		err = aborted.err
	}
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			err = &RequestError{Operation: endpoint, Sentinel: ErrCircuitOpen}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(telemetry.ErrorAttributes(err, errorClass(err))...)
		return nil, err
	}

	span.SetAttributes(telemetry.HTTPAttributes(string(req.Method), req.URL().Path, int(resp.Status))...)
	return resp, nil
}

func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	endpoint := req.Endpoint()
	ctx, _ = xglog.EnsureRequestID(ctx)
	logger := xglog.WithContext(ctx, c.logger).With().
		Str(xglog.FieldMethod, string(req.Method)).
		Str(xglog.FieldEndpoint, endpoint).
		Logger()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(endpoint, err)
		}

		token, err := c.accessToken()
		if err != nil {
			return nil, err
		}

		target := c.rebase(req.URL())
		cacheKey, cached := c.lookup(req, target, token)

		httpReq, err := req.httpRequest(ctx, target, token)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			httpReq.Header.Set("If-None-Match", cached.ETag)
		}

		start := time.Now()
		httpResp, err := c.http.Do(httpReq)
		if err != nil {
			observeRequest(endpoint, string(req.Method), 0, time.Since(start))
			err = transportError(endpoint, err)
			if req.Method == MethodGet && attempt < c.retries && retryable(err) {
				logger.Debug().Err(err).Int(xglog.FieldAttempt, attempt+1).Msg("transport failure, retrying")
				if err := c.retryUpstream(ctx, attempt, "transport"); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		body, err := readBody(httpResp)
		status := Status(httpResp.StatusCode)
		elapsed := time.Since(start)
		observeRequest(endpoint, string(req.Method), int(status), elapsed)
		if err != nil {
			return nil, &RequestError{Operation: endpoint, Sentinel: ErrBadResponse, Status: int(status), Err: err}
		}

		ev := logger.Debug().
			Int(xglog.FieldStatus, int(status)).
			Int64(xglog.FieldDurationMS, elapsed.Milliseconds())

		if status == http.StatusNotModified && cached != nil {
			ev.Str(xglog.FieldCache, "revalidated").Msg("spotify request")
			incCacheEvent("revalidated")
			return &Response{Status: http.StatusOK, Header: httpResp.Header, Body: cached.Body, FromCache: true}, nil
		}

		if status == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(httpResp.Header.Get("Retry-After"))
			c.limiter.Backoff(retryAfter)
			if attempt < c.retries {
				ev.Float64(xglog.FieldRetryAfter, retryAfter.Seconds()).Int(xglog.FieldAttempt, attempt+1).Msg("rate limited, retrying")
				incRetry("rate_limited")
				continue
			}
			ev.Msg("rate limited, giving up")
			return nil, apiError(status, httpResp.Header, body)
		}

		if status >= 500 && req.Method == MethodGet && attempt < c.retries {
			ev.Int(xglog.FieldAttempt, attempt+1).Msg("upstream error, retrying")
			if err := c.retryUpstream(ctx, attempt, "upstream"); err != nil {
				return nil, err
			}
			continue
		}
		ev.Msg("spotify request")

		if err := responseError(status, httpResp.Header, body); err != nil {
			return nil, err
		}

		if cacheKey != "" {
			if etag := httpResp.Header.Get("ETag"); etag != "" {
				c.store(cacheKey, etag, body)
			}
		}
		return &Response{Status: status, Header: httpResp.Header, Body: body}, nil
	}
}

func (c *Client) retryUpstream(ctx context.Context, attempt int, reason string) error {
	incRetry(reason)
	if err := c.sleep(ctx, upstreamRetryBase<<attempt); err != nil {
		return transportError("retry", err)
	}
	return nil
}

func (c *Client) accessToken() (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("obtain access token: %w", err)
	}
	return tok.AccessToken, nil
}

// rebase points u at the configured base URL, if any.
func (c *Client) rebase(u *url.URL) *url.URL {
	if c.baseURL == nil {
		return u
	}
	out := *u
	out.Scheme = c.baseURL.Scheme
	out.Host = c.baseURL.Host
	out.Path = c.baseURL.Path + u.Path
	return &out
}

// DoJSON sends req and decodes the response body into out. An empty body
// leaves out untouched.
func (c *Client) DoJSON(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &RequestError{Operation: req.Endpoint(), Sentinel: ErrBadResponse, Status: int(resp.Status), Err: err}
	}
	return nil
}

// DoNoContent sends req and discards the response body.
func (c *Client) DoNoContent(ctx context.Context, req *Request) error {
	_, err := c.Do(ctx, req)
	return err
}

// get is the common GET of an endpoint relative to BaseURL.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]any, out any) error {
	req, err := NewEndpointRequest(MethodGet, endpoint, params)
	if err != nil {
		return err
	}
	return c.DoJSON(ctx, req, out)
}

// call sends a request with an optional JSON body.
func (c *Client) call(ctx context.Context, method Method, endpoint string, params map[string]any, body, out any) error {
	req, err := NewEndpointRequest(method, endpoint, params)
	if err != nil {
		return err
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		req.SetBody(data, ContentTypeJSON)
	}
	return c.DoJSON(ctx, req, out)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
