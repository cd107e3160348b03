// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	xglog "github.com/ManuGH/spotifykit/internal/log"
)

const (
	callbackRequestLimit = 20
	callbackWindow       = time.Minute
	callbackReadTimeout  = 10 * time.Second
)

type callbackResult struct {
	session *Session
	err     error
}

// CallbackServer receives the authorization redirect on the loopback
// address of the redirect URL and completes the code exchange once.
type CallbackServer struct {
	auth   *Authenticator
	state  string
	opts   []oauth2.AuthCodeOption
	addr   string
	path   string
	logger zerolog.Logger

	handled atomic.Bool
	result  chan callbackResult

	srv *http.Server
	ln  net.Listener
}

// NewCallbackServer prepares a server for the authenticator's redirect URL.
// opts are passed to Exchange, e.g. oauth2.VerifierOption for PKCE.
func (a *Authenticator) NewCallbackServer(state string, opts ...oauth2.AuthCodeOption) (*CallbackServer, error) {
	u, err := url.Parse(a.config.RedirectURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("redirect url %q is not absolute", a.config.RedirectURL)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return &CallbackServer{
		auth:   a,
		state:  state,
		opts:   opts,
		addr:   u.Host,
		path:   path,
		logger: a.logger.With().Str(xglog.FieldComponent, "auth.callback").Logger(),
		result: make(chan callbackResult, 1),
	}, nil
}

// Handler serves the redirect path. Requests are rate limited per client IP.
func (s *CallbackServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(callbackRequestLimit, callbackWindow))
	r.Get(s.path, s.handleCallback)
	return r
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	// Spotify echoes the state on denied redirects too.
	if q.Get("state") != s.state {
		s.logger.Warn().Str(xglog.FieldPath, r.URL.Path).Msg("callback with unexpected state")
		http.Error(w, ErrStateMismatch.Error(), http.StatusBadRequest)
		return
	}
	if !s.handled.CompareAndSwap(false, true) {
		http.Error(w, ErrCallbackHandled.Error(), http.StatusConflict)
		return
	}

	sess, err := s.auth.Exchange(r.Context(), s.state, r.URL, s.opts...)
	s.result <- callbackResult{session: sess, err: err}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrMissingCode) {
			status = http.StatusBadRequest
		}
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, "Login failed: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(w, "Login successful. You can close this window.")
}

// Start listens on the redirect URL's host and serves in the background.
func (s *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: callbackReadTimeout,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("callback server stopped")
		}
	}()
	s.logger.Debug().Str(xglog.FieldBaseURL, "http://"+ln.Addr().String()+s.path).Msg("waiting for authorization redirect")
	return nil
}

// Addr is the address the server listens on, once started.
func (s *CallbackServer) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Wait blocks until the redirect has been handled or ctx is done.
func (s *CallbackServer) Wait(ctx context.Context) (*Session, error) {
	select {
	case res := <-s.result:
		return res.session, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Serve starts the server, waits for the redirect and shuts down again.
func (s *CallbackServer) Serve(ctx context.Context) (*Session, error) {
	if err := s.Start(); err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), callbackReadTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("callback server shutdown")
		}
	}()
	return s.Wait(ctx)
}

// Shutdown stops a started server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
