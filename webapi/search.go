// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"slices"
	"strings"
)

// SearchFilters narrow a search to field values. Empty fields are ignored.
type SearchFilters struct {
	Album  string
	Artist string
	Track  string
	Genre  string
	Year   *Range[int]
	Tag    string // "new" or "hipster"
	ISRC   string
	UPC    string
}

// SearchQuery is the q parameter of a search together with the item types.
type SearchQuery struct {
	Types     []SearchType
	Keywords  string
	Alternate string
	Exclude   string
	InOrder   bool
	Filters   SearchFilters
}

func (q SearchQuery) has(t SearchType) bool {
	return slices.Contains(q.Types, t)
}

// String renders the q parameter, e.g.
// `"some song" OR other NOT live artist:"Some Band" year:1990-1999`.
func (q SearchQuery) String() string {
	var b strings.Builder

	keywords := strings.ToLower(q.Keywords)
	if q.InOrder && keywords != "" {
		keywords = `"` + keywords + `"`
	}
	b.WriteString(keywords)

	if q.Alternate != "" {
		b.WriteString(" OR " + strings.ToLower(q.Alternate))
	}
	if q.Exclude != "" {
		b.WriteString(" NOT " + strings.ToLower(q.Exclude))
	}

	f := q.Filters
	quoted := func(key, value string) {
		if value != "" {
			b.WriteString(" " + key + `:"` + value + `"`)
		}
	}
	plain := func(key, value string) {
		if value != "" {
			b.WriteString(" " + key + ":" + value)
		}
	}

	quoted("album", f.Album)
	quoted("artist", f.Artist)
	quoted("track", f.Track)
	if q.has(SearchArtist) || q.has(SearchTrack) {
		quoted("genre", f.Genre)
	}
	if f.Year != nil {
		plain("year", f.Year.EncodeQuery(DefaultEncoder))
	}
	if q.has(SearchAlbum) {
		plain("tag", f.Tag)
	}
	if q.has(SearchTrack) {
		plain("isrc", f.ISRC)
	}
	if q.has(SearchAlbum) {
		plain("upc", f.UPC)
	}

	return strings.TrimSpace(b.String())
}

// SearchResults holds one page per requested type; the others are nil.
type SearchResults struct {
	Albums    *Page[Album]    `json:"albums,omitempty"`
	Artists   *Page[Artist]   `json:"artists,omitempty"`
	Tracks    *Page[Track]    `json:"tracks,omitempty"`
	Playlists *Page[Playlist] `json:"playlists,omitempty"`
}

// Search looks up the catalog. Without types, every type is searched.
func (cat *Catalog) Search(ctx context.Context, query SearchQuery, page Pagination) (*SearchResults, error) {
	if len(query.Types) == 0 {
		query.Types = []SearchType{SearchAlbum, SearchArtist, SearchTrack, SearchPlaylist}
	}

	params := page.apply(cat.params())
	params[keyQuery] = query.String()
	params[keyType] = query.Types

	var out SearchResults
	if err := cat.Client.get(ctx, pathSearch, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
