// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"fmt"
	"time"
)

// browseParams adds country and locale. The browse endpoints want a real
// country, so "from_token" is not sent.
func (cat *Catalog) browseParams(withLocale bool) map[string]any {
	params := make(map[string]any, 5)
	if c := cat.country(); c != "" && c != MarketFromToken {
		params[keyCountry] = c
	}
	if withLocale {
		if l := Locale(cat.Market); l != "" {
			params[keyLocale] = l
		}
	}
	return params
}

// FeaturedPlaylists lists the editorial playlists. A zero at uses the
// server's current time.
func (cat *Catalog) FeaturedPlaylists(ctx context.Context, at time.Time, page Pagination) (*FeaturedPlaylists, error) {
	params := page.apply(cat.browseParams(true))
	if !at.IsZero() {
		params[keyTimestamp] = at
	}
	var out FeaturedPlaylists
	if err := cat.Client.get(ctx, pathFeaturedPlaylists, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewReleases lists newly released albums.
func (cat *Catalog) NewReleases(ctx context.Context, page Pagination) (*Page[Album], error) {
	var p Page[Album]
	if err := cat.Client.get(ctx, pathNewReleases, page.apply(cat.browseParams(false)), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Categories lists the browse categories.
func (cat *Catalog) Categories(ctx context.Context, page Pagination) (*Page[Category], error) {
	var p Page[Category]
	if err := cat.Client.get(ctx, pathCategories, page.apply(cat.browseParams(true)), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Category returns one browse category.
func (cat *Catalog) Category(ctx context.Context, id string) (*Category, error) {
	var c Category
	if err := cat.Client.get(ctx, itemPath(pathCategories, id), cat.browseParams(true), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CategoryPlaylists lists the playlists of a category.
func (cat *Catalog) CategoryPlaylists(ctx context.Context, id string, page Pagination) (*Page[Playlist], error) {
	var p Page[Playlist]
	if err := cat.Client.get(ctx, itemPath(pathCategories, id)+"/playlists", page.apply(cat.browseParams(false)), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AvailableGenreSeeds lists the genres usable as recommendation seeds.
func (cat *Catalog) AvailableGenreSeeds(ctx context.Context) ([]string, error) {
	var out struct {
		Genres []string `json:"genres"`
	}
	if err := cat.Client.get(ctx, pathGenreSeeds, nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// Recommendations generates tracks from up to five seeds, tuned by attrs.
// limit <= 0 uses the server default.
func (cat *Catalog) Recommendations(ctx context.Context, seeds Seeds, attrs []TrackAttribute, limit int) (*Recommendations, error) {
	if n := seeds.count(); n > maxSeeds {
		return nil, fmt.Errorf("%w: got %d", ErrTooManySeeds, n)
	}

	params := cat.params()
	if limit > 0 {
		params[keyLimit] = limit
	}
	if len(seeds.Artists) > 0 {
		params[keySeedArtists] = seeds.Artists
	}
	if len(seeds.Tracks) > 0 {
		params[keySeedTracks] = seeds.Tracks
	}
	if len(seeds.Genres) > 0 {
		params[keySeedGenres] = seeds.Genres
	}
	attributeParams(attrs, params)

	var out Recommendations
	if err := cat.Client.get(ctx, pathRecommendations, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
