// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

// Service locations and limits of the Spotify Web API.
const (
	BaseURL     = "https://api.spotify.com"
	AccountsURL = "https://accounts.spotify.com"
	TokenType   = "Bearer"

	// MaxImageSize is the largest base64-encoded playlist cover the API accepts.
	MaxImageSize = 256000
)

// Query keys.
const (
	keyIDs         = "ids"
	keyURIs        = "uris"
	keyQuery       = "q"
	keyCountry     = "country"
	keyMarket      = "market"
	keyLocale      = "locale"
	keyLimit       = "limit"
	keyOffset      = "offset"
	keyBefore      = "before"
	keyAfter       = "after"
	keyPosition    = "position"
	keyType        = "type"
	keyAlbumType   = "album_type"
	keyTimeRange   = "time_range"
	keyTimestamp   = "timestamp"
	keySeedArtists = "seed_artists"
	keySeedGenres  = "seed_genres"
	keySeedTracks  = "seed_tracks"

	prefixMin    = "min_"
	prefixMax    = "max_"
	prefixTarget = "target_"
)

// Endpoint paths relative to BaseURL.
const (
	pathAlbums            = "v1/albums"
	pathArtists           = "v1/artists"
	pathAudioAnalysis     = "v1/audio-analysis"
	pathAudioFeatures     = "v1/audio-features"
	pathFeaturedPlaylists = "v1/browse/featured-playlists"
	pathNewReleases       = "v1/browse/new-releases"
	pathCategories        = "v1/browse/categories"
	pathMe                = "v1/me"
	pathRecommendations   = "v1/recommendations"
	pathGenreSeeds        = "v1/recommendations/available-genre-seeds"
	pathSearch            = "v1/search"
	pathTracks            = "v1/tracks"
	pathUsers             = "v1/users"
	pathFollowing         = "v1/me/following"
	pathFollowingContains = "v1/me/following/contains"
	pathSavedAlbums       = "v1/me/albums"
	pathSavedAlbumsHas    = "v1/me/albums/contains"
	pathSavedTracks       = "v1/me/tracks"
	pathSavedTracksHas    = "v1/me/tracks/contains"
	pathTop               = "v1/me/top"
	pathMyPlaylists       = "v1/me/playlists"
)

// Maximum ids per batch request.
const (
	maxBatchAlbums   = 20
	maxBatchArtists  = 50
	maxBatchTracks   = 50
	maxBatchFeatures = 100
	maxSeeds         = 5
)
