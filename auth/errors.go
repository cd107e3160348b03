// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrAuthFailed      = errors.New("spotify: auth failed")
	ErrMissingCode     = errors.New("spotify: didn't get access code")
	ErrStateMismatch   = errors.New("spotify: redirect state parameter doesn't match")
	ErrNoToken         = errors.New("spotify: no stored token")
	ErrNoRefreshToken  = errors.New("spotify: session has no refresh token")
	ErrMissingAccess   = errors.New("spotify: redirect carries no access token")
	ErrCallbackHandled = errors.New("spotify: callback already handled")
)

// Error is an error body of the accounts service, as described in
// RFC 6749 section 5.2.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("Received a %q error: %s", e.Code, e.Description)
}

// DecodeError recognises an accounts error body. Web API error objects,
// whose "error" is an object, are not matched.
func DecodeError(body []byte) (*Error, bool) {
	var e Error
	if err := json.Unmarshal(body, &e); err != nil || e.Code == "" {
		return nil, false
	}
	return &e, true
}
