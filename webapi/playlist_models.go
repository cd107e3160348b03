// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"encoding/json"
	"fmt"
)

// Playlist is the full or simplified playlist object.
type Playlist struct {
	Collaborative bool           `json:"collaborative"`
	Description   *string        `json:"description,omitempty"`
	ExternalURLs  ExternalURLs   `json:"external_urls"`
	Followers     *Followers     `json:"followers,omitempty"`
	Href          string         `json:"href"`
	ID            string         `json:"id"`
	Images        []Image        `json:"images"`
	Name          string         `json:"name"`
	Owner         User           `json:"owner"`
	Public        *bool          `json:"public"`
	SnapshotID    string         `json:"snapshot_id"`
	Tracks        PlaylistTracks `json:"tracks"`
	Type          string         `json:"type"`
	URI           string         `json:"uri"`
}

// TracksHref is the endpoint listing the playlist's tracks.
func (p *Playlist) TracksHref() string { return p.Tracks.Href }

// TotalTracks is the number of tracks, known for both forms.
func (p *Playlist) TotalTracks() int { return p.Tracks.Total }

func (p *Playlist) IsSimplified() bool { return p.Tracks.Page == nil }
func (p *Playlist) Link() string       { return p.Href }

// PlaylistTracks is either the reference {href, total} carried by a
// simplified playlist, or the first page of tracks of a full one.
type PlaylistTracks struct {
	Href  string
	Total int
	Page  *Page[PlaylistTrack]
}

func (t *PlaylistTracks) UnmarshalJSON(data []byte) error {
	var probe struct {
		Href  string          `json:"href"`
		Total int             `json:"total"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: playlist tracks: %w", ErrBadResponse, err)
	}
	t.Href, t.Total, t.Page = probe.Href, probe.Total, nil
	if probe.Items == nil {
		return nil
	}
	page := new(Page[PlaylistTrack])
	if err := json.Unmarshal(data, page); err != nil {
		return err
	}
	t.Page = page
	return nil
}

func (t PlaylistTracks) MarshalJSON() ([]byte, error) {
	if t.Page != nil {
		return json.Marshal(t.Page)
	}
	return json.Marshal(struct {
		Href  string `json:"href"`
		Total int    `json:"total"`
	}{t.Href, t.Total})
}

// FeaturedPlaylists is the editorial selection with its headline.
type FeaturedPlaylists struct {
	Message   string         `json:"message"`
	Playlists Page[Playlist] `json:"playlists"`
}

// PlaylistDetails describes a playlist to create.
type PlaylistDetails struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
}

// PlaylistChanges updates a playlist. Nil fields are left unchanged.
type PlaylistChanges struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Public        *bool   `json:"public,omitempty"`
	Collaborative *bool   `json:"collaborative,omitempty"`
}

func (c PlaylistChanges) empty() bool {
	return c.Name == nil && c.Description == nil && c.Public == nil && c.Collaborative == nil
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}
