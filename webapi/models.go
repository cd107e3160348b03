// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExternalURLs maps a service name (e.g. "spotify") to a URL.
type ExternalURLs map[string]string

// Image is a picture in one of several sizes. Width and height are unknown
// for some images.
type Image struct {
	Height *int   `json:"height"`
	URL    string `json:"url"`
	Width  *int   `json:"width"`
}

// Followers of an artist, playlist or user. Href is always null today.
type Followers struct {
	Href  *string `json:"href"`
	Total int     `json:"total"`
}

// Artist is the full or simplified artist object.
type Artist struct {
	ExternalURLs ExternalURLs `json:"external_urls"`
	Followers    *Followers   `json:"followers,omitempty"`
	Genres       []string     `json:"genres,omitempty"`
	Href         string       `json:"href"`
	ID           string       `json:"id"`
	Images       []Image      `json:"images,omitempty"`
	Name         string       `json:"name"`
	Popularity   *int         `json:"popularity,omitempty"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// IsSimplified reports whether only the simplified fields were returned.
func (a *Artist) IsSimplified() bool { return a.Followers == nil && a.Popularity == nil }

// Link is the endpoint of the full object.
func (a *Artist) Link() string { return a.Href }

// Copyright statement of an album.
type Copyright struct {
	Text string        `json:"text"`
	Type CopyrightType `json:"type"`
}

// Album is the full or simplified album object.
type Album struct {
	AlbumType            AlbumType         `json:"album_type"`
	Artists              []Artist          `json:"artists"`
	AvailableMarkets     []string          `json:"available_markets,omitempty"`
	Copyrights           []Copyright       `json:"copyrights,omitempty"`
	ExternalIDs          map[string]string `json:"external_ids,omitempty"`
	ExternalURLs         ExternalURLs      `json:"external_urls"`
	Genres               []string          `json:"genres,omitempty"`
	Href                 string            `json:"href"`
	ID                   string            `json:"id"`
	Images               []Image           `json:"images"`
	Label                string            `json:"label,omitempty"`
	Name                 string            `json:"name"`
	Popularity           *int              `json:"popularity,omitempty"`
	ReleaseDate          string            `json:"release_date,omitempty"`
	ReleaseDatePrecision DatePrecision     `json:"release_date_precision,omitempty"`
	Tracks               *Page[Track]      `json:"tracks,omitempty"`
	Type                 string            `json:"type"`
	URI                  string            `json:"uri"`
}

// Released parses ReleaseDate according to its precision.
func (a *Album) Released() (time.Time, error) {
	t, err := time.Parse(a.ReleaseDatePrecision.Layout(), a.ReleaseDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: release date %q: %w", ErrBadResponse, a.ReleaseDate, err)
	}
	return t, nil
}

func (a *Album) IsSimplified() bool { return a.Tracks == nil }
func (a *Album) Link() string       { return a.Href }

// SavedAlbum is an album in the user's library.
type SavedAlbum struct {
	AddedAt time.Time `json:"added_at"`
	Album   Album     `json:"album"`
}

// ContentRating tells explicit tracks from clean ones.
type ContentRating string

const (
	RatingExplicit ContentRating = "explicit"
	RatingClean    ContentRating = "clean"
	RatingUnknown  ContentRating = "unknown"
)

// TrackLink points at the track that was relinked for the user's market.
type TrackLink struct {
	ExternalURLs ExternalURLs `json:"external_urls"`
	Href         string       `json:"href"`
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// Track is the full or simplified track object.
type Track struct {
	Album            *Album            `json:"album,omitempty"`
	Artists          []Artist          `json:"artists"`
	AvailableMarkets []string          `json:"available_markets,omitempty"`
	DiscNumber       int               `json:"disc_number"`
	DurationMS       int               `json:"duration_ms"`
	Explicit         *bool             `json:"explicit,omitempty"`
	ExternalIDs      map[string]string `json:"external_ids,omitempty"`
	ExternalURLs     ExternalURLs      `json:"external_urls"`
	Href             string            `json:"href"`
	ID               string            `json:"id"`
	IsLocal          bool              `json:"is_local,omitempty"`
	IsPlayable       *bool             `json:"is_playable,omitempty"`
	LinkedFrom       *TrackLink        `json:"linked_from,omitempty"`
	Name             string            `json:"name"`
	Popularity       *int              `json:"popularity,omitempty"`
	PreviewURL       *string           `json:"preview_url"`
	TrackNumber      int               `json:"track_number"`
	Type             string            `json:"type"`
	URI              string            `json:"uri"`
}

// Duration converts duration_ms.
func (t *Track) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// ContentRating derives the rating from the explicit flag.
func (t *Track) ContentRating() ContentRating {
	switch {
	case t.Explicit == nil:
		return RatingUnknown
	case *t.Explicit:
		return RatingExplicit
	default:
		return RatingClean
	}
}

func (t *Track) IsSimplified() bool { return t.Album == nil }
func (t *Track) Link() string       { return t.Href }

// SavedTrack is a track in the user's library.
type SavedTrack struct {
	AddedAt time.Time `json:"added_at"`
	Track   Track     `json:"track"`
}

// PlaylistTrack is a playlist entry. AddedAt and AddedBy are null for very
// old playlists.
type PlaylistTrack struct {
	AddedAt *time.Time `json:"added_at"`
	AddedBy *User      `json:"added_by"`
	IsLocal bool       `json:"is_local"`
	Track   *Track     `json:"track"`
}

// User is a public user profile.
type User struct {
	DisplayName  *string      `json:"display_name,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Followers    *Followers   `json:"followers,omitempty"`
	Href         string       `json:"href"`
	ID           string       `json:"id"`
	Images       []Image      `json:"images,omitempty"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// Name returns the display name, falling back to the id.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.ID
}

// Date is a calendar day encoded as "2006-01-02".
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("%w: date %q: %w", ErrBadResponse, s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// CurrentUser is the private profile of the token's owner. Birthdate, Email
// and Country need the matching user-read scopes.
type CurrentUser struct {
	User
	Birthdate *Date   `json:"birthdate,omitempty"`
	Country   string  `json:"country,omitempty"`
	Email     string  `json:"email,omitempty"`
	Product   Product `json:"product,omitempty"`
}

// Category is a browse category.
type Category struct {
	Href  string  `json:"href"`
	Icons []Image `json:"icons"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
}
