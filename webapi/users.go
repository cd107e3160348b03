// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"fmt"
)

// User returns a public profile.
func (c *Client) User(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.get(ctx, itemPath(pathUsers, id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser returns the profile of the token's owner.
func (c *Client) CurrentUser(ctx context.Context) (*CurrentUser, error) {
	var u CurrentUser
	if err := c.get(ctx, pathMe, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserPlaylists lists a user's public playlists.
func (c *Client) UserPlaylists(ctx context.Context, userID string, page Pagination) (*Page[Playlist], error) {
	var p Page[Playlist]
	if err := c.get(ctx, itemPath(pathUsers, userID)+"/playlists", page.apply(nil), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MyPlaylists lists the playlists the current user owns or follows.
func (c *Client) MyPlaylists(ctx context.Context, page Pagination) (*Page[Playlist], error) {
	var p Page[Playlist]
	if err := c.get(ctx, pathMyPlaylists, page.apply(nil), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TopArtists lists the user's top artists. An empty range means medium term.
func (c *Client) TopArtists(ctx context.Context, r TimeRange, page Pagination) (*Page[Artist], error) {
	var p Page[Artist]
	if err := c.get(ctx, pathTop+"/artists", topParams(r, page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TopTracks lists the user's top tracks. An empty range means medium term.
func (c *Client) TopTracks(ctx context.Context, r TimeRange, page Pagination) (*Page[Track], error) {
	var p Page[Track]
	if err := c.get(ctx, pathTop+"/tracks", topParams(r, page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func topParams(r TimeRange, page Pagination) map[string]any {
	if r == "" {
		r = MediumTerm
	}
	return page.apply(map[string]any{keyTimeRange: r})
}

// Follow follows artists or users.
func (c *Client) Follow(ctx context.Context, kind FollowKind, ids []string) error {
	return c.modifyFollowing(ctx, MethodPut, kind, ids)
}

// Unfollow unfollows artists or users.
func (c *Client) Unfollow(ctx context.Context, kind FollowKind, ids []string) error {
	return c.modifyFollowing(ctx, MethodDelete, kind, ids)
}

func (c *Client) modifyFollowing(ctx context.Context, method Method, kind FollowKind, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyIDs
	}
	return c.call(ctx, method, pathFollowing, map[string]any{keyType: kind, keyIDs: ids}, nil, nil)
}

// IsFollowing reports, per id, whether the user follows it.
func (c *Client) IsFollowing(ctx context.Context, kind FollowKind, ids []string) ([]bool, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyIDs
	}
	var out []bool
	if err := c.get(ctx, pathFollowingContains, map[string]any{keyType: kind, keyIDs: ids}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FollowedArtists lists followed artists after the given cursor.
func (c *Client) FollowedArtists(ctx context.Context, after string, limit int) (*CursorPage[Artist], error) {
	params := map[string]any{keyType: FollowArtist}
	if after != "" {
		params[keyAfter] = after
	}
	if limit > 0 {
		params[keyLimit] = limit
	}
	var p CursorPage[Artist]
	if err := c.get(ctx, pathFollowing, params, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func playlistPath(owner, id string) string {
	return itemPath(itemPath(pathUsers, owner)+"/playlists", id)
}

// FollowPlaylist follows a playlist, publicly or privately.
func (c *Client) FollowPlaylist(ctx context.Context, owner, id string, public bool) error {
	body := map[string]bool{"public": public}
	return c.call(ctx, MethodPut, playlistPath(owner, id)+"/followers", nil, body, nil)
}

// UnfollowPlaylist unfollows a playlist.
func (c *Client) UnfollowPlaylist(ctx context.Context, owner, id string) error {
	return c.call(ctx, MethodDelete, playlistPath(owner, id)+"/followers", nil, nil, nil)
}

// UsersFollowPlaylist reports, per user id, whether the user follows the
// playlist. At most five users can be checked at once.
func (c *Client) UsersFollowPlaylist(ctx context.Context, owner, id string, userIDs []string) ([]bool, error) {
	if len(userIDs) == 0 {
		return nil, ErrEmptyIDs
	}
	if len(userIDs) > 5 {
		return nil, fmt.Errorf("spotify: at most 5 users can be checked, got %d", len(userIDs))
	}
	var out []bool
	if err := c.get(ctx, playlistPath(owner, id)+"/followers/contains", map[string]any{keyIDs: userIDs}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
