// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/h2non/filetype"
)

// Playlists edits playlists addressed by owner and id.
type Playlists struct {
	Client *Client
}

// NewPlaylists returns the playlist editor of c.
func NewPlaylists(c *Client) *Playlists {
	return &Playlists{Client: c}
}

// Create creates a playlist owned by userID.
func (p *Playlists) Create(ctx context.Context, userID string, details PlaylistDetails) (*Playlist, error) {
	var out Playlist
	if err := p.Client.call(ctx, MethodPost, itemPath(pathUsers, userID)+"/playlists", nil, details, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a full playlist.
func (p *Playlists) Get(ctx context.Context, owner, id string) (*Playlist, error) {
	var out Playlist
	if err := p.Client.get(ctx, playlistPath(owner, id), p.Client.marketParams(Pagination{}), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes the playlist's details. Without any change no request is
// sent.
func (p *Playlists) Update(ctx context.Context, owner, id string, changes PlaylistChanges) error {
	if changes.empty() {
		return nil
	}
	return p.Client.call(ctx, MethodPut, playlistPath(owner, id), nil, changes, nil)
}

// UploadCoverImage replaces the playlist cover with a JPEG image. The image
// is rejected before sending when it is not a JPEG or its base64 form
// exceeds MaxImageSize.
func (p *Playlists) UploadCoverImage(ctx context.Context, owner, id string, jpeg []byte) error {
	if !filetype.Is(jpeg, "jpg") {
		return ErrNotJPEG
	}
	if n := base64.StdEncoding.EncodedLen(len(jpeg)); n > MaxImageSize {
		return imageSizeError(n)
	}

	req, err := NewEndpointRequest(MethodPut, playlistPath(owner, id)+"/images", nil)
	if err != nil {
		return err
	}
	req.SetBody([]byte(base64.StdEncoding.EncodeToString(jpeg)), ContentTypeJPEG)
	return p.Client.DoNoContent(ctx, req)
}

// Tracks lists the playlist's tracks.
func (p *Playlists) Tracks(ctx context.Context, owner, id string, page Pagination) (*Page[PlaylistTrack], error) {
	var out Page[PlaylistTrack]
	if err := p.Client.get(ctx, playlistPath(owner, id)+"/tracks", p.Client.marketParams(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddTracks inserts uris at position, or appends them when position is nil.
// It returns the new snapshot id.
func (p *Playlists) AddTracks(ctx context.Context, owner, id string, uris []string, position *int) (string, error) {
	if len(uris) == 0 {
		return "", ErrEmptyIDs
	}
	body := struct {
		URIs     []string `json:"uris"`
		Position *int     `json:"position,omitempty"`
	}{uris, position}
	return p.snapshot(ctx, MethodPost, owner, id, body)
}

type trackRef struct {
	URI string `json:"uri"`
}

type removeBody struct {
	Tracks     []trackRef `json:"tracks,omitempty"`
	Positions  []int      `json:"positions,omitempty"`
	SnapshotID string     `json:"snapshot_id,omitempty"`
}

// RemoveTracks removes every occurrence of uris. An empty snapshot targets
// the latest version.
func (p *Playlists) RemoveTracks(ctx context.Context, owner, id string, uris []string, snapshot string) (string, error) {
	if len(uris) == 0 {
		return "", ErrEmptyIDs
	}
	refs := make([]trackRef, len(uris))
	for i, u := range uris {
		refs[i] = trackRef{URI: u}
	}
	return p.snapshot(ctx, MethodDelete, owner, id, removeBody{Tracks: refs, SnapshotID: snapshot})
}

// RemovePositions removes the tracks at the given zero-based positions of
// the snapshot.
func (p *Playlists) RemovePositions(ctx context.Context, owner, id string, positions []int, snapshot string) (string, error) {
	if len(positions) == 0 {
		return "", ErrEmptyIDs
	}
	return p.snapshot(ctx, MethodDelete, owner, id, removeBody{Positions: positions, SnapshotID: snapshot})
}

// ReorderTracks moves length tracks starting at start before insertBefore.
func (p *Playlists) ReorderTracks(ctx context.Context, owner, id string, start, length, insertBefore int, snapshot string) (string, error) {
	if start < 0 || insertBefore < 0 || length < 1 {
		return "", fmt.Errorf("spotify: invalid reorder range start=%d length=%d before=%d", start, length, insertBefore)
	}
	body := struct {
		RangeStart   int    `json:"range_start"`
		RangeLength  int    `json:"range_length,omitempty"`
		InsertBefore int    `json:"insert_before"`
		SnapshotID   string `json:"snapshot_id,omitempty"`
	}{RangeStart: start, InsertBefore: insertBefore, SnapshotID: snapshot}
	if length > 1 {
		body.RangeLength = length
	}
	return p.snapshot(ctx, MethodPut, owner, id, body)
}

// ReplaceTracks replaces the playlist's content with uris. No uris clears
// the playlist.
func (p *Playlists) ReplaceTracks(ctx context.Context, owner, id string, uris []string) error {
	if uris == nil {
		uris = []string{}
	}
	body := struct {
		URIs []string `json:"uris"`
	}{uris}
	return p.Client.call(ctx, MethodPut, playlistPath(owner, id)+"/tracks", nil, body, nil)
}

func (p *Playlists) snapshot(ctx context.Context, method Method, owner, id string, body any) (string, error) {
	var out snapshotResponse
	if err := p.Client.call(ctx, method, playlistPath(owner, id)+"/tracks", nil, body, &out); err != nil {
		return "", err
	}
	return out.SnapshotID, nil
}
