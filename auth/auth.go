// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package auth authorizes access to the Spotify Web API through the accounts
// service: the authorization code flow (with optional PKCE), the implicit
// grant redirect, client credentials, token renewal and token storage.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	xglog "github.com/ManuGH/spotifykit/internal/log"
	"github.com/ManuGH/spotifykit/internal/platform/httpx"
)

// Scopes understood by the Web API.
const (
	ScopeImageUpload               = spotifyauth.ScopeImageUpload
	ScopePlaylistReadPrivate       = spotifyauth.ScopePlaylistReadPrivate
	ScopePlaylistModifyPublic      = spotifyauth.ScopePlaylistModifyPublic
	ScopePlaylistModifyPrivate     = spotifyauth.ScopePlaylistModifyPrivate
	ScopePlaylistReadCollaborative = spotifyauth.ScopePlaylistReadCollaborative
	ScopeUserFollowModify          = spotifyauth.ScopeUserFollowModify
	ScopeUserFollowRead            = spotifyauth.ScopeUserFollowRead
	ScopeUserLibraryModify         = spotifyauth.ScopeUserLibraryModify
	ScopeUserLibraryRead           = spotifyauth.ScopeUserLibraryRead
	ScopeUserReadPrivate           = spotifyauth.ScopeUserReadPrivate
	ScopeUserReadEmail             = spotifyauth.ScopeUserReadEmail
	ScopeUserReadCurrentlyPlaying  = spotifyauth.ScopeUserReadCurrentlyPlaying
	ScopeUserReadPlaybackState     = spotifyauth.ScopeUserReadPlaybackState
	ScopeUserModifyPlaybackState   = spotifyauth.ScopeUserModifyPlaybackState
	ScopeUserReadRecentlyPlayed    = spotifyauth.ScopeUserReadRecentlyPlayed
	ScopeUserTopRead               = spotifyauth.ScopeUserTopRead
	ScopeStreaming                 = spotifyauth.ScopeStreaming
)

// DefaultScopes are requested when no scopes are configured.
var DefaultScopes = []string{
	ScopeUserReadPrivate,
	ScopeUserReadEmail,
	ScopeUserLibraryRead,
	ScopeUserFollowRead,
	ScopeUserTopRead,
	ScopePlaylistReadPrivate,
	ScopeUserReadPlaybackState,
	ScopeUserModifyPlaybackState,
	ScopeUserReadCurrentlyPlaying,
	ScopeUserReadRecentlyPlayed,
}

// showDialog forces the user to approve the app, even if they have already done so.
var showDialog = oauth2.SetAuthURLParam("show_dialog", "true")

// Authenticator runs the OAuth flows of the accounts service.
type Authenticator struct {
	config     oauth2.Config
	showDialog bool
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

func WithClientID(id string) Option { return func(a *Authenticator) { a.config.ClientID = id } }

func WithClientSecret(secret string) Option {
	return func(a *Authenticator) { a.config.ClientSecret = secret }
}

func WithRedirectURL(u string) Option { return func(a *Authenticator) { a.config.RedirectURL = u } }

func WithScopes(scopes ...string) Option {
	return func(a *Authenticator) { a.config.Scopes = scopes }
}

// WithEndpoint replaces the accounts service URLs, e.g. with a test server.
func WithEndpoint(authURL, tokenURL string) Option {
	return func(a *Authenticator) {
		a.config.Endpoint.AuthURL = authURL
		a.config.Endpoint.TokenURL = tokenURL
	}
}

// WithShowDialog makes the accounts service ask for approval every time.
func WithShowDialog(show bool) Option { return func(a *Authenticator) { a.showDialog = show } }

func WithLogger(l zerolog.Logger) Option { return func(a *Authenticator) { a.logger = l } }

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(hc *http.Client) Option { return func(a *Authenticator) { a.httpClient = hc } }

// NewAuthenticator creates an Authenticator for the Spotify accounts service.
func NewAuthenticator(opts ...Option) *Authenticator {
	a := &Authenticator{
		config: oauth2.Config{
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotifyauth.AuthURL,
				TokenURL:  spotifyauth.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			Scopes: DefaultScopes,
		},
		logger: xglog.WithComponent("auth"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.httpClient == nil {
		a.httpClient = httpx.NewTracedClient(15 * time.Second)
	}
	return a
}

// Config returns a copy of the OAuth configuration.
func (a *Authenticator) Config() oauth2.Config {
	return a.config
}

// withClient makes oauth2 use the configured HTTP client.
func (a *Authenticator) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// NewState returns a random value for the state parameter.
func NewState() string {
	return uuid.NewString()
}

// PKCE returns a code verifier and the matching challenge option. Pass the
// option to AuthURL and oauth2.VerifierOption(verifier) to Exchange.
func PKCE() (verifier string, challenge oauth2.AuthCodeOption) {
	verifier = oauth2.GenerateVerifier()
	return verifier, oauth2.S256ChallengeOption(verifier)
}

// AuthURL is the authorization page the user must visit.
func (a *Authenticator) AuthURL(state string, opts ...oauth2.AuthCodeOption) string {
	if a.showDialog {
		opts = append(opts, showDialog)
	}
	return a.config.AuthCodeURL(state, opts...)
}

// Exchange validates the redirect the accounts service sent to callback and
// converts its authorization code into a session.
func (a *Authenticator) Exchange(ctx context.Context, state string, callback *url.URL, opts ...oauth2.AuthCodeOption) (*Session, error) {
	values := callback.Query()
	if e := values.Get("error"); e != "" {
		return nil, fmt.Errorf("%w - %s", ErrAuthFailed, e)
	}
	code := values.Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}
	if values.Get("state") != state {
		return nil, ErrStateMismatch
	}

	tok, err := a.config.Exchange(a.withClient(ctx), code, opts...)
	if err != nil {
		return nil, tokenError("exchange code", err)
	}
	s := NewSession(tok)
	a.logger.Info().Time(xglog.FieldExpiry, s.Expiry).Msg("authorization code exchanged")
	return s, nil
}

// Refresh renews the access token of s. The refresh token is kept when the
// service does not issue a new one.
func (a *Authenticator) Refresh(ctx context.Context, s *Session) (*Session, error) {
	if s == nil || s.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	expired := s.Token()
	expired.AccessToken = ""
	expired.Expiry = time.Unix(1, 0)

	tok, err := a.config.TokenSource(a.withClient(ctx), expired).Token()
	if err != nil {
		return nil, tokenError("refresh token", err)
	}

	next := NewSession(tok)
	if next.RefreshToken == "" {
		next.RefreshToken = s.RefreshToken
	}
	if len(next.Scopes) == 0 {
		next.Scopes = append([]string(nil), s.Scopes...)
	}
	next.CanonicalUsername = s.CanonicalUsername
	return next, nil
}

// ClientCredentials authorizes the application itself. The session has no
// user and no refresh token.
func (a *Authenticator) ClientCredentials(ctx context.Context) (*Session, error) {
	cc := clientcredentials.Config{
		ClientID:     a.config.ClientID,
		ClientSecret: a.config.ClientSecret,
		TokenURL:     a.config.Endpoint.TokenURL,
		AuthStyle:    a.config.Endpoint.AuthStyle,
	}
	tok, err := cc.Token(a.withClient(ctx))
	if err != nil {
		return nil, tokenError("client credentials", err)
	}
	return NewSession(tok), nil
}

// tokenError surfaces the accounts error body when the token endpoint
// answered with one.
func tokenError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if e, ok := DecodeError(re.Body); ok {
			return fmt.Errorf("%s: %w", op, e)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
