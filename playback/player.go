// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playback controls Spotify Connect devices through the Web API
// player endpoints.
package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/spotifykit/internal/log"
	"github.com/ManuGH/spotifykit/webapi"
)

const component = "playback"

const (
	pathPlayer           = "v1/me/player"
	pathDevices          = "v1/me/player/devices"
	pathCurrentlyPlaying = "v1/me/player/currently-playing"
	pathPlay             = "v1/me/player/play"
	pathPause            = "v1/me/player/pause"
	pathNext             = "v1/me/player/next"
	pathPrevious         = "v1/me/player/previous"
	pathSeek             = "v1/me/player/seek"
	pathVolume           = "v1/me/player/volume"
	pathShuffle          = "v1/me/player/shuffle"
	pathRepeat           = "v1/me/player/repeat"
	pathQueue            = "v1/me/player/queue"
	pathRecentlyPlayed   = "v1/me/player/recently-played"

	keyDeviceID      = "device_id"
	keyMarket        = "market"
	keyPositionMS    = "position_ms"
	keyVolumePercent = "volume_percent"
	keyState         = "state"
	keyURI           = "uri"
	keyLimit         = "limit"
	keyAfter         = "after"
	keyBefore        = "before"

	maxRecentLimit = 50
)

// Player sends commands to the current user's devices. The access token
// needs the user-read-playback-state, user-modify-playback-state and, for
// RecentlyPlayed, user-read-recently-played scopes.
type Player struct {
	client *webapi.Client
	logger zerolog.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// NewPlayer returns a Player sending requests through client.
func NewPlayer(client *webapi.Client, opts ...Option) *Player {
	p := &Player{
		client: client,
		logger: xglog.WithComponent(component),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Devices lists the user's available devices.
func (p *Player) Devices(ctx context.Context) ([]Device, error) {
	var env devicesEnvelope
	if err := p.send(ctx, webapi.MethodGet, pathDevices, nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Devices, nil
}

// State returns the full playback state. It is nil, without error, when no
// device is active. An empty market falls back to the client's market.
func (p *Player) State(ctx context.Context, market string) (*State, error) {
	return p.state(ctx, pathPlayer, market)
}

// CurrentlyPlaying returns the item playing on the active device. It is nil,
// without error, when nothing is playing.
func (p *Player) CurrentlyPlaying(ctx context.Context, market string) (*State, error) {
	return p.state(ctx, pathCurrentlyPlaying, market)
}

func (p *Player) state(ctx context.Context, endpoint, market string) (*State, error) {
	if market == "" {
		market = p.client.Market()
	}
	params := map[string]any{}
	if market != "" {
		params[keyMarket] = market
	}

	req, err := webapi.NewEndpointRequest(webapi.MethodGet, endpoint, params)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0 {
		p.logger.Debug().Str(xglog.FieldEndpoint, endpoint).Msg("nothing playing")
		return nil, nil
	}

	var st State
	if err := json.Unmarshal(resp.Body, &st); err != nil {
		return nil, &webapi.RequestError{Operation: req.Endpoint(), Sentinel: webapi.ErrBadResponse, Status: int(resp.Status), Err: err}
	}
	return &st, nil
}

// PlayOptions describe what Play starts. With neither ContextURI nor URIs the
// current playback resumes.
type PlayOptions struct {
	DeviceID   string
	ContextURI string
	URIs       []string

	// OffsetPosition and OffsetURI select where in the context or URI list
	// playback starts. At most one may be set.
	OffsetPosition *int
	OffsetURI      string

	Position time.Duration
}

type playOffset struct {
	Position *int   `json:"position,omitempty"`
	URI      string `json:"uri,omitempty"`
}

type playBody struct {
	ContextURI string      `json:"context_uri,omitempty"`
	URIs       []string    `json:"uris,omitempty"`
	Offset     *playOffset `json:"offset,omitempty"`
	PositionMS int64       `json:"position_ms,omitempty"`
}

func (o PlayOptions) body() (*playBody, error) {
	if o.ContextURI != "" && len(o.URIs) > 0 {
		return nil, invalid("context uri and uris are mutually exclusive")
	}
	if o.OffsetPosition != nil && o.OffsetURI != "" {
		return nil, invalid("offset position and offset uri are mutually exclusive")
	}
	hasOffset := o.OffsetPosition != nil || o.OffsetURI != ""
	if hasOffset && o.ContextURI == "" && len(o.URIs) == 0 {
		return nil, invalid("an offset needs a context uri or uris")
	}
	if o.OffsetPosition != nil && *o.OffsetPosition < 0 {
		return nil, invalid("offset position %d is negative", *o.OffsetPosition)
	}
	if o.Position < 0 {
		return nil, invalid("position %s is negative", o.Position)
	}

	if !hasOffset && o.ContextURI == "" && len(o.URIs) == 0 && o.Position == 0 {
		return nil, nil
	}
	b := &playBody{
		ContextURI: o.ContextURI,
		URIs:       o.URIs,
		PositionMS: o.Position.Milliseconds(),
	}
	if hasOffset {
		b.Offset = &playOffset{Position: o.OffsetPosition, URI: o.OffsetURI}
	}
	return b, nil
}

// Play starts or resumes playback.
func (p *Player) Play(ctx context.Context, opts PlayOptions) error {
	body, err := opts.body()
	if err != nil {
		return err
	}
	var payload any
	if body != nil {
		payload = body
	}
	return p.send(ctx, webapi.MethodPut, pathPlay, deviceParams(opts.DeviceID), payload, nil)
}

// PlayTrack plays a single track from position on the active device.
func (p *Player) PlayTrack(ctx context.Context, uri string, position time.Duration) error {
	if uri == "" {
		return invalid("track uri is empty")
	}
	return p.Play(ctx, PlayOptions{URIs: []string{uri}, Position: position})
}

// PlayContext plays the index-th item of an album or playlist from position.
func (p *Player) PlayContext(ctx context.Context, uri string, index int, position time.Duration) error {
	if !isOffsetContext(uri) {
		return invalid("%q is not an album or playlist uri", uri)
	}
	return p.Play(ctx, PlayOptions{ContextURI: uri, OffsetPosition: &index, Position: position})
}

// isOffsetContext reports whether uri names a context that accepts an
// offset: an album or a playlist, including the legacy user playlist form.
func isOffsetContext(uri string) bool {
	return strings.HasPrefix(uri, "spotify:album:") ||
		strings.HasPrefix(uri, "spotify:playlist:") ||
		(strings.HasPrefix(uri, "spotify:user:") && strings.Contains(uri, ":playlist:"))
}

// Queue appends a track or episode to the queue.
func (p *Player) Queue(ctx context.Context, uri, deviceID string) error {
	if uri == "" {
		return invalid("queue uri is empty")
	}
	params := deviceParams(deviceID)
	params[keyURI] = uri
	return p.send(ctx, webapi.MethodPost, pathQueue, params, nil, nil)
}

// Pause pauses playback.
func (p *Player) Pause(ctx context.Context, deviceID string) error {
	return p.send(ctx, webapi.MethodPut, pathPause, deviceParams(deviceID), nil, nil)
}

// Next skips to the next item.
func (p *Player) Next(ctx context.Context, deviceID string) error {
	return p.send(ctx, webapi.MethodPost, pathNext, deviceParams(deviceID), nil, nil)
}

// Previous skips to the previous item.
func (p *Player) Previous(ctx context.Context, deviceID string) error {
	return p.send(ctx, webapi.MethodPost, pathPrevious, deviceParams(deviceID), nil, nil)
}

// Seek moves to position in the current item.
func (p *Player) Seek(ctx context.Context, position time.Duration, deviceID string) error {
	if position < 0 {
		return invalid("seek position %s is negative", position)
	}
	params := deviceParams(deviceID)
	params[keyPositionMS] = position
	return p.send(ctx, webapi.MethodPut, pathSeek, params, nil, nil)
}

// SetVolume sets the volume in percent.
func (p *Player) SetVolume(ctx context.Context, percent int, deviceID string) error {
	if percent < 0 || percent > 100 {
		return invalid("volume %d is outside 0..100", percent)
	}
	params := deviceParams(deviceID)
	params[keyVolumePercent] = percent
	return p.send(ctx, webapi.MethodPut, pathVolume, params, nil, nil)
}

// SetShuffle toggles shuffle.
func (p *Player) SetShuffle(ctx context.Context, on bool, deviceID string) error {
	params := deviceParams(deviceID)
	params[keyState] = on
	return p.send(ctx, webapi.MethodPut, pathShuffle, params, nil, nil)
}

// SetRepeat sets the repeat mode.
func (p *Player) SetRepeat(ctx context.Context, mode RepeatMode, deviceID string) error {
	if !mode.Valid() {
		return invalid("repeat mode %q", mode)
	}
	params := deviceParams(deviceID)
	params[keyState] = string(mode)
	return p.send(ctx, webapi.MethodPut, pathRepeat, params, nil, nil)
}

type transferBody struct {
	DeviceIDs []string `json:"device_ids"`
	Play      *bool    `json:"play,omitempty"`
}

// Transfer moves playback to the given devices. A nil play keeps the
// current playing state; true starts playback on the new device.
func (p *Player) Transfer(ctx context.Context, deviceIDs []string, play *bool) error {
	if len(deviceIDs) == 0 {
		return invalid("at least one device id is required")
	}
	return p.send(ctx, webapi.MethodPut, pathPlayer, nil, transferBody{DeviceIDs: deviceIDs, Play: play}, nil)
}

// RecentQuery selects a window of the play history. After and Before are
// mutually exclusive.
type RecentQuery struct {
	After  time.Time
	Before time.Time
	Limit  int
}

func (q RecentQuery) params() (map[string]any, error) {
	if !q.After.IsZero() && !q.Before.IsZero() {
		return nil, invalid("after and before are mutually exclusive")
	}
	if q.Limit < 0 || q.Limit > maxRecentLimit {
		return nil, invalid("limit %d is outside 0..%d", q.Limit, maxRecentLimit)
	}
	params := map[string]any{}
	if q.Limit > 0 {
		params[keyLimit] = q.Limit
	}
	if !q.After.IsZero() {
		params[keyAfter] = q.After.UnixMilli()
	}
	if !q.Before.IsZero() {
		params[keyBefore] = q.Before.UnixMilli()
	}
	return params, nil
}

// RecentlyPlayed returns the user's play history. Follow Next with
// webapi.Client.GetNext for older entries.
func (p *Player) RecentlyPlayed(ctx context.Context, q RecentQuery) (*webapi.CursorPage[RecentTrack], error) {
	params, err := q.params()
	if err != nil {
		return nil, err
	}
	var page webapi.CursorPage[RecentTrack]
	if err := p.send(ctx, webapi.MethodGet, pathRecentlyPlayed, params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func deviceParams(deviceID string) map[string]any {
	params := map[string]any{}
	if deviceID != "" {
		params[keyDeviceID] = deviceID
	}
	return params
}

// send performs a player call with an optional JSON body.
func (p *Player) send(ctx context.Context, method webapi.Method, endpoint string, params map[string]any, body, out any) error {
	req, err := webapi.NewEndpointRequest(method, endpoint, params)
	if err != nil {
		return err
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		req.SetBody(data, webapi.ContentTypeJSON)
	}
	if out == nil {
		return p.client.DoNoContent(ctx, req)
	}
	return p.client.DoJSON(ctx, req, out)
}
