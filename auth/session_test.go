// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func TestNewSession_ReadsScopes(t *testing.T) {
	expiry := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := (&oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       expiry,
	}).WithExtra(map[string]any{"scope": "user-read-private streaming"})

	s := NewSession(tok)
	require.NotNil(t, s)
	assert.Equal(t, "access", s.AccessToken)
	assert.Equal(t, "refresh", s.RefreshToken)
	assert.Equal(t, expiry, s.Expiry)
	assert.Equal(t, []string{"user-read-private", "streaming"}, s.Scopes)
	assert.True(t, s.HasScope(ScopeStreaming))
	assert.False(t, s.HasScope(ScopeUserTopRead))

	back := s.Token()
	assert.Equal(t, "access", back.AccessToken)
	assert.Equal(t, "Bearer", back.TokenType)
	assert.Equal(t, expiry, back.Expiry)
}

func TestSession_Valid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	tests := []struct {
		name string
		s    *Session
		want bool
	}{
		{"nil", nil, false},
		{"empty token", &Session{}, false},
		{"no expiry", &Session{AccessToken: "a"}, true},
		{"far expiry", &Session{AccessToken: "a", Expiry: now.Add(time.Hour)}, true},
		{"inside delta", &Session{AccessToken: "a", Expiry: now.Add(5 * time.Second)}, false},
		{"expired", &Session{AccessToken: "a", Expiry: now.Add(-time.Minute)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.Valid())
		})
	}
}

func TestSession_ExpiresIn(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	assert.Equal(t, time.Duration(0), (&Session{}).ExpiresIn())
	assert.Equal(t, 30*time.Minute, (&Session{Expiry: now.Add(30 * time.Minute)}).ExpiresIn())
}

func TestDecodeError(t *testing.T) {
	e, ok := DecodeError([]byte(`{"error":"invalid_grant","error_description":"Invalid authorization code"}`))
	require.True(t, ok)
	assert.Equal(t, `Received a "invalid_grant" error: Invalid authorization code`, e.Error())

	_, ok = DecodeError([]byte(`{"error":{"status":404,"message":"not found"}}`))
	assert.False(t, ok, "web api error objects are not accounts errors")

	_, ok = DecodeError([]byte(`not json`))
	assert.False(t, ok)
}

func TestParseImplicitFragment(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	s, state, err := ParseImplicitFragment("#access_token=abc&token_type=Bearer&expires_in=120&state=xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", state)
	assert.Equal(t, "abc", s.AccessToken)
	assert.Equal(t, now.Add(2*time.Minute), s.Expiry)

	s, _, err = ParseImplicitFragment("access_token=abc")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), s.Expiry, "expires_in defaults to one hour")
	assert.Equal(t, "Bearer", s.TokenType)

	_, _, err = ParseImplicitFragment("token_type=Bearer&state=xyz")
	assert.ErrorIs(t, err, ErrMissingAccess)

	_, state, err = ParseImplicitFragment("error=access_denied&state=xyz")
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, "xyz", state)

	_, _, err = ParseImplicitFragment("access_token=abc&expires_in=soon")
	assert.Error(t, err)
}
