// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	xglog "github.com/ManuGH/spotifykit/internal/log"
	"github.com/ManuGH/spotifykit/internal/metrics"
)

// skipSaveWindow: a renewed token with an unchanged refresh token that
// expires within this window is not written back to the store.
const skipSaveWindow = 3 * time.Hour

// persistingSource renews the session when it expires and writes renewed
// sessions to a store.
type persistingSource struct {
	ctx    context.Context
	auth   *Authenticator
	store  TokenStore
	logger zerolog.Logger

	mu      sync.Mutex
	current *Session
	group   singleflight.Group
}

// TokenSource returns a token source that starts with s, renews it through
// the refresh token and saves renewed sessions to store (which may be nil).
// Concurrent callers share a single refresh.
func (a *Authenticator) TokenSource(ctx context.Context, s *Session, store TokenStore) oauth2.TokenSource {
	return &persistingSource{
		ctx:     ctx,
		auth:    a,
		store:   store,
		logger:  a.logger,
		current: s.clone(),
	}
}

// Token implements oauth2.TokenSource.
func (p *persistingSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	cur := p.current
	p.mu.Unlock()
	if cur.Valid() {
		return cur.Token(), nil
	}

	v, err, _ := p.group.Do("refresh", func() (any, error) {
		// a caller that lost the race sees the renewed session
		p.mu.Lock()
		latest := p.current
		p.mu.Unlock()
		if latest.Valid() {
			return latest, nil
		}
		return p.refresh(latest)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session).Token(), nil
}

// Session returns the latest session.
func (p *persistingSource) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.clone()
}

func (p *persistingSource) refresh(prev *Session) (*Session, error) {
	next, err := p.auth.Refresh(p.ctx, prev)
	if err != nil {
		metrics.IncTokenRefresh("failure")
		p.logger.Warn().Err(err).Msg("token refresh failed")
		return nil, err
	}
	metrics.IncTokenRefresh("success")

	p.mu.Lock()
	p.current = next
	p.mu.Unlock()

	if p.store == nil {
		return next, nil
	}
	if !shouldSave(prev, next) {
		metrics.IncTokenRefresh("skipped")
		return next, nil
	}
	if err := p.store.Save(p.ctx, next); err != nil {
		p.logger.Error().Err(err).Msg("store renewed token")
		return next, nil
	}
	metrics.IncTokenRefresh("persisted")
	p.logger.Info().
		Time(xglog.FieldExpiry, next.Expiry).
		Str(xglog.FieldUser, next.CanonicalUsername).
		Msg("wrote renewed token")
	return next, nil
}

// shouldSave skips tokens that keep the same refresh token and expire soon.
func shouldSave(prev, next *Session) bool {
	if prev != nil && next.RefreshToken == prev.RefreshToken {
		if !next.Expiry.IsZero() && next.Expiry.Add(-skipSaveWindow).Before(timeNow()) {
			return false
		}
	}
	return true
}

// SessionOf returns the latest session of a token source created by
// TokenSource, and false for any other source.
func SessionOf(ts oauth2.TokenSource) (*Session, bool) {
	p, ok := ts.(*persistingSource)
	if !ok {
		return nil, false
	}
	return p.Session(), true
}

// HTTPClient returns a client that authorizes requests with tokens from ts.
func (a *Authenticator) HTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(a.withClient(ctx), ts)
}
