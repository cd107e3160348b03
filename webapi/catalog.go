// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"encoding/json"
	"net/url"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// batchConcurrency bounds the chunks of one batch fetched at once.
const batchConcurrency = 4

// Catalog reads albums, artists, tracks and browse content for one market.
type Catalog struct {
	Client *Client
	// Market selects the storefront and, for browse calls, the locale.
	// language.Und falls back to the client's market.
	Market language.Tag
}

// NewCatalog returns a catalog for market.
func NewCatalog(c *Client, market language.Tag) *Catalog {
	return &Catalog{Client: c, Market: market}
}

func (cat *Catalog) country() string {
	if code := Country(cat.Market); code != "" {
		return code
	}
	return cat.Client.market
}

func (cat *Catalog) params() map[string]any {
	params := make(map[string]any, 4)
	if m := cat.country(); m != "" {
		params[keyMarket] = m
	}
	return params
}

func itemPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}

// Album returns one album.
func (cat *Catalog) Album(ctx context.Context, id string) (*Album, error) {
	var a Album
	if err := cat.Client.get(ctx, itemPath(pathAlbums, id), cat.params(), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Albums returns albums in the order of ids. Unknown ids yield nil entries.
func (cat *Catalog) Albums(ctx context.Context, ids []string) ([]*Album, error) {
	return fetchBatch(ctx, ids, maxBatchAlbums, func(ctx context.Context, chunk []string) ([]*Album, error) {
		var out struct {
			Albums []*Album `json:"albums"`
		}
		params := cat.params()
		params[keyIDs] = chunk
		err := cat.Client.get(ctx, pathAlbums, params, &out)
		return out.Albums, err
	})
}

// AlbumTracks lists the tracks of an album.
func (cat *Catalog) AlbumTracks(ctx context.Context, id string, page Pagination) (*Page[Track], error) {
	var p Page[Track]
	if err := cat.Client.get(ctx, itemPath(pathAlbums, id)+"/tracks", page.apply(cat.params()), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Artist returns one artist.
func (cat *Catalog) Artist(ctx context.Context, id string) (*Artist, error) {
	var a Artist
	if err := cat.Client.get(ctx, itemPath(pathArtists, id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Artists returns artists in the order of ids. Unknown ids yield nil entries.
func (cat *Catalog) Artists(ctx context.Context, ids []string) ([]*Artist, error) {
	return fetchBatch(ctx, ids, maxBatchArtists, func(ctx context.Context, chunk []string) ([]*Artist, error) {
		var out struct {
			Artists []*Artist `json:"artists"`
		}
		err := cat.Client.get(ctx, pathArtists, map[string]any{keyIDs: chunk}, &out)
		return out.Artists, err
	})
}

// ArtistAlbums lists an artist's albums, optionally restricted to types.
func (cat *Catalog) ArtistAlbums(ctx context.Context, id string, types []AlbumType, page Pagination) (*Page[Album], error) {
	params := page.apply(cat.params())
	if len(types) > 0 {
		params[keyAlbumType] = types
	}
	var p Page[Album]
	if err := cat.Client.get(ctx, itemPath(pathArtists, id)+"/albums", params, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ArtistTopTracks returns an artist's top tracks in the catalog's country.
func (cat *Catalog) ArtistTopTracks(ctx context.Context, id string) ([]Track, error) {
	country := cat.country()
	if country == "" || country == MarketFromToken {
		return nil, ErrMarketRequired
	}
	var out struct {
		Tracks []Track `json:"tracks"`
	}
	if err := cat.Client.get(ctx, itemPath(pathArtists, id)+"/top-tracks", map[string]any{keyCountry: country}, &out); err != nil {
		return nil, err
	}
	return out.Tracks, nil
}

// RelatedArtists returns artists similar to id.
func (cat *Catalog) RelatedArtists(ctx context.Context, id string) ([]Artist, error) {
	var out struct {
		Artists []Artist `json:"artists"`
	}
	if err := cat.Client.get(ctx, itemPath(pathArtists, id)+"/related-artists", nil, &out); err != nil {
		return nil, err
	}
	return out.Artists, nil
}

// Track returns one track.
func (cat *Catalog) Track(ctx context.Context, id string) (*Track, error) {
	var t Track
	if err := cat.Client.get(ctx, itemPath(pathTracks, id), cat.params(), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Tracks returns tracks in the order of ids. Unknown ids yield nil entries.
func (cat *Catalog) Tracks(ctx context.Context, ids []string) ([]*Track, error) {
	return fetchBatch(ctx, ids, maxBatchTracks, func(ctx context.Context, chunk []string) ([]*Track, error) {
		var out struct {
			Tracks []*Track `json:"tracks"`
		}
		params := cat.params()
		params[keyIDs] = chunk
		err := cat.Client.get(ctx, pathTracks, params, &out)
		return out.Tracks, err
	})
}

// AudioFeatures returns the audio features of one track.
func (cat *Catalog) AudioFeatures(ctx context.Context, id string) (*AudioFeatures, error) {
	var f AudioFeatures
	if err := cat.Client.get(ctx, itemPath(pathAudioFeatures, id), nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// AudioFeaturesFor returns audio features in the order of ids.
func (cat *Catalog) AudioFeaturesFor(ctx context.Context, ids []string) ([]*AudioFeatures, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyIDs
	}
	return fetchBatch(ctx, ids, maxBatchFeatures, func(ctx context.Context, chunk []string) ([]*AudioFeatures, error) {
		var out struct {
			AudioFeatures []*AudioFeatures `json:"audio_features"`
		}
		err := cat.Client.get(ctx, pathAudioFeatures, map[string]any{keyIDs: chunk}, &out)
		return out.AudioFeatures, err
	})
}

// AudioAnalysis returns the raw low-level analysis of a track.
func (cat *Catalog) AudioAnalysis(ctx context.Context, id string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := cat.Client.get(ctx, itemPath(pathAudioAnalysis, id), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// fetchBatch splits ids into chunks of size, fetches them concurrently and
// reassembles the results in input order.
func fetchBatch[T any](ctx context.Context, ids []string, size int, fetch func(context.Context, []string) ([]*T, error)) ([]*T, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyIDs
	}

	out := make([]*T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		g.Go(func() error {
			items, err := fetch(gctx, ids[start:end])
			if err != nil {
				return err
			}
			copy(out[start:end], items)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
