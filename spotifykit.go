// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package spotifykit is the entry point of the Spotify toolkit. It carries the
// release version and re-exports the authentication and playback packages so
// that most programs only need this import:
//
//	a := spotifykit.NewAuthenticator(spotifykit.WithClientID(id), spotifykit.WithRedirectURL(cb))
//	client := spotifykit.NewClient(spotifykit.WithTokenSource(a.TokenSource(ctx, session, store)))
//	player := spotifykit.NewPlayer(client)
//
// The request layer in package webapi covers the rest of the Web API.
package spotifykit

import (
	"fmt"

	"github.com/ManuGH/spotifykit/auth"
	"github.com/ManuGH/spotifykit/internal/version"
	"github.com/ManuGH/spotifykit/playback"
	"github.com/ManuGH/spotifykit/webapi"
)

// Release of this module.
const (
	VersionNumber float64 = 1.0
	VersionString         = "1.0.0"
)

// Version returns the build version with commit and build date, e.g.
// "v1.0.0 (commit abc1234, built 2025-06-01)".
func Version() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date)
}

// Authentication.
type (
	Authenticator  = auth.Authenticator
	AuthOption     = auth.Option
	Session        = auth.Session
	TokenStore     = auth.TokenStore
	MemoryStore    = auth.MemoryStore
	FileStore      = auth.FileStore
	SQLiteStore    = auth.SQLiteStore
	CallbackServer = auth.CallbackServer
	AccountsError  = auth.Error
)

var (
	NewAuthenticator      = auth.NewAuthenticator
	WithClientID          = auth.WithClientID
	WithClientSecret      = auth.WithClientSecret
	WithRedirectURL       = auth.WithRedirectURL
	WithScopes            = auth.WithScopes
	WithShowDialog        = auth.WithShowDialog
	NewSession            = auth.NewSession
	NewState              = auth.NewState
	PKCE                  = auth.PKCE
	ParseImplicitFragment = auth.ParseImplicitFragment
	NewMemoryStore        = auth.NewMemoryStore
	NewFileStore          = auth.NewFileStore
	NewSQLiteStore        = auth.NewSQLiteStore
	SessionOf             = auth.SessionOf
	DefaultScopes         = auth.DefaultScopes
)

const (
	ScopeImageUpload               = auth.ScopeImageUpload
	ScopePlaylistReadPrivate       = auth.ScopePlaylistReadPrivate
	ScopePlaylistModifyPublic      = auth.ScopePlaylistModifyPublic
	ScopePlaylistModifyPrivate     = auth.ScopePlaylistModifyPrivate
	ScopePlaylistReadCollaborative = auth.ScopePlaylistReadCollaborative
	ScopeUserFollowModify          = auth.ScopeUserFollowModify
	ScopeUserFollowRead            = auth.ScopeUserFollowRead
	ScopeUserLibraryModify         = auth.ScopeUserLibraryModify
	ScopeUserLibraryRead           = auth.ScopeUserLibraryRead
	ScopeUserReadPrivate           = auth.ScopeUserReadPrivate
	ScopeUserReadEmail             = auth.ScopeUserReadEmail
	ScopeUserReadCurrentlyPlaying  = auth.ScopeUserReadCurrentlyPlaying
	ScopeUserReadPlaybackState     = auth.ScopeUserReadPlaybackState
	ScopeUserModifyPlaybackState   = auth.ScopeUserModifyPlaybackState
	ScopeUserReadRecentlyPlayed    = auth.ScopeUserReadRecentlyPlayed
	ScopeUserTopRead               = auth.ScopeUserTopRead
	ScopeStreaming                 = auth.ScopeStreaming
)

// Playback.
type (
	Player        = playback.Player
	PlayerOption  = playback.Option
	Device        = playback.Device
	DeviceType    = playback.DeviceType
	PlaybackState = playback.State
	RepeatMode    = playback.RepeatMode
	PlayOptions   = playback.PlayOptions
	RecentQuery   = playback.RecentQuery
	RecentTrack   = playback.RecentTrack
)

var NewPlayer = playback.NewPlayer

const (
	RepeatOff = playback.RepeatOff
	RepeatOne = playback.RepeatOne
	RepeatAll = playback.RepeatAll
)

// Web API.
type (
	Client     = webapi.Client
	Option     = webapi.Option
	Error      = webapi.Error
	Pagination = webapi.Pagination
)

type (
	Page[T any]       = webapi.Page[T]
	CursorPage[T any] = webapi.CursorPage[T]
)

var (
	NewClient           = webapi.NewClient
	WithTokenSource     = webapi.WithTokenSource
	WithMarket          = webapi.WithMarket
	WithMarketFromToken = webapi.WithMarketFromToken
	WithCache           = webapi.WithCache
	WithRateLimit       = webapi.WithRateLimit
	WithRetries         = webapi.WithRetries
	PageNumber          = webapi.PageNumber
)
