// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import "context"

func (c *Client) marketParams(page Pagination) map[string]any {
	params := page.apply(nil)
	if c.market != "" {
		params[keyMarket] = c.market
	}
	return params
}

// SaveAlbums adds albums to the user's library.
func (c *Client) SaveAlbums(ctx context.Context, ids []string) error {
	return c.modifyLibrary(ctx, MethodPut, pathSavedAlbums, ids)
}

// RemoveAlbums removes albums from the user's library.
func (c *Client) RemoveAlbums(ctx context.Context, ids []string) error {
	return c.modifyLibrary(ctx, MethodDelete, pathSavedAlbums, ids)
}

// AlbumsSaved reports, per id, whether the album is in the library.
func (c *Client) AlbumsSaved(ctx context.Context, ids []string) ([]bool, error) {
	return c.libraryContains(ctx, pathSavedAlbumsHas, ids)
}

// SavedAlbums lists the albums in the library.
func (c *Client) SavedAlbums(ctx context.Context, page Pagination) (*Page[SavedAlbum], error) {
	var p Page[SavedAlbum]
	if err := c.get(ctx, pathSavedAlbums, c.marketParams(page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveTracks adds tracks to the user's library.
func (c *Client) SaveTracks(ctx context.Context, ids []string) error {
	return c.modifyLibrary(ctx, MethodPut, pathSavedTracks, ids)
}

// RemoveTracks removes tracks from the user's library.
func (c *Client) RemoveTracks(ctx context.Context, ids []string) error {
	return c.modifyLibrary(ctx, MethodDelete, pathSavedTracks, ids)
}

// TracksSaved reports, per id, whether the track is in the library.
func (c *Client) TracksSaved(ctx context.Context, ids []string) ([]bool, error) {
	return c.libraryContains(ctx, pathSavedTracksHas, ids)
}

// SavedTracks lists the tracks in the library.
func (c *Client) SavedTracks(ctx context.Context, page Pagination) (*Page[SavedTrack], error) {
	var p Page[SavedTrack]
	if err := c.get(ctx, pathSavedTracks, c.marketParams(page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) modifyLibrary(ctx context.Context, method Method, endpoint string, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyIDs
	}
	return c.call(ctx, method, endpoint, map[string]any{keyIDs: ids}, nil, nil)
}

func (c *Client) libraryContains(ctx context.Context, endpoint string, ids []string) ([]bool, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyIDs
	}
	var out []bool
	if err := c.get(ctx, endpoint, map[string]any{keyIDs: ids}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
