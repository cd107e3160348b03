// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// defaultImplicitExpiry applies when the redirect omits expires_in.
const defaultImplicitExpiry = 3600 * time.Second

// ParseImplicitFragment reads the session from the fragment of an implicit
// grant redirect, e.g.
// "access_token=...&token_type=Bearer&expires_in=3600&state=...". The
// returned state must be compared with the one that was sent.
func ParseImplicitFragment(fragment string) (*Session, string, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
	if err != nil {
		return nil, "", fmt.Errorf("parse redirect fragment: %w", err)
	}
	if e := values.Get("error"); e != "" {
		return nil, values.Get("state"), fmt.Errorf("%w - %s", ErrAuthFailed, e)
	}

	access := values.Get("access_token")
	if access == "" {
		return nil, values.Get("state"), ErrMissingAccess
	}

	expiresIn := defaultImplicitExpiry
	if v := values.Get("expires_in"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			return nil, values.Get("state"), fmt.Errorf("parse expires_in %q: invalid duration", v)
		}
		expiresIn = time.Duration(secs) * time.Second
	}

	tokenType := values.Get("token_type")
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &Session{
		AccessToken: access,
		TokenType:   tokenType,
		Expiry:      timeNow().Add(expiresIn),
	}, values.Get("state"), nil
}
