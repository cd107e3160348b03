// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// expiryDelta matches the early expiry oauth2 applies to its tokens.
const expiryDelta = 10 * time.Second

var timeNow = time.Now

// Session is an authorized user (or app) session.
type Session struct {
	AccessToken       string    `json:"access_token"`
	TokenType         string    `json:"token_type"`
	RefreshToken      string    `json:"refresh_token,omitempty"`
	Expiry            time.Time `json:"expiry,omitempty"`
	CanonicalUsername string    `json:"canonical_username,omitempty"`
	Scopes            []string  `json:"scopes,omitempty"`
}

// NewSession converts an oauth2 token. Granted scopes are read from the
// token response's "scope" field.
func NewSession(tok *oauth2.Token) *Session {
	if tok == nil {
		return nil
	}
	s := &Session{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		s.Scopes = strings.Fields(scope)
	}
	return s
}

// Token converts the session into an oauth2 token.
func (s *Session) Token() *oauth2.Token {
	tokenType := s.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    tokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
	}
}

// Valid reports whether the access token can still be used.
func (s *Session) Valid() bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	return s.Expiry.IsZero() || s.Expiry.Sub(timeNow()) > expiryDelta
}

// ExpiresIn is the time left before the access token expires. It is zero
// for tokens without expiry and negative once expired.
func (s *Session) ExpiresIn() time.Duration {
	if s.Expiry.IsZero() {
		return 0
	}
	return s.Expiry.Sub(timeNow())
}

// HasScope reports whether scope was granted.
func (s *Session) HasScope(scope string) bool {
	for _, granted := range s.Scopes {
		if granted == scope {
			return true
		}
	}
	return false
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Scopes = append([]string(nil), s.Scopes...)
	return &c
}
