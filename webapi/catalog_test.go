// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var sweden = language.MustParse("sv-SE")

func TestCatalog_AlbumsKeepsOrderAcrossChunks(t *testing.T) {
	var chunks atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/albums", func(w http.ResponseWriter, r *http.Request) {
		chunks.Add(1)
		assert.Equal(t, "SE", r.URL.Query().Get("market"))
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		assert.LessOrEqual(t, len(ids), maxBatchAlbums)

		items := make([]string, len(ids))
		for i, id := range ids {
			if id == "missing" {
				items[i] = "null"
				continue
			}
			items[i] = fmt.Sprintf(`{"id":%q,"album_type":"album"}`, id)
		}
		writeJSON(w, http.StatusOK, `{"albums":[`+strings.Join(items, ",")+`]}`)
	})
	cat := NewCatalog(newTestClient(t, mux), sweden)

	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("a%02d", i)
	}
	ids[21] = "missing"

	albums, err := cat.Albums(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, albums, 25)
	assert.Equal(t, int32(2), chunks.Load())
	for i, a := range albums {
		if i == 21 {
			assert.Nil(t, a)
			continue
		}
		require.NotNil(t, a, i)
		assert.Equal(t, ids[i], a.ID)
	}
}

func TestCatalog_EmptyIDs(t *testing.T) {
	cat := NewCatalog(NewClient(), language.Und)
	ctx := context.Background()

	_, err := cat.Albums(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyIDs)
	_, err = cat.Artists(ctx, []string{})
	assert.ErrorIs(t, err, ErrEmptyIDs)
	_, err = cat.Tracks(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyIDs)
	_, err = cat.AudioFeaturesFor(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyIDs)
}

func TestCatalog_ArtistTopTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/artists/{id}/top-tracks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ar1", r.PathValue("id"))
		assert.Equal(t, "SE", r.URL.Query().Get("country"))
		writeJSON(w, http.StatusOK, `{"tracks":[{"id":"t1"},{"id":"t2"}]}`)
	})
	c := newTestClient(t, mux)

	_, err := NewCatalog(c, language.Und).ArtistTopTracks(context.Background(), "ar1")
	assert.ErrorIs(t, err, ErrMarketRequired)

	fromToken := NewCatalog(newTestClient(t, mux, WithMarketFromToken()), language.Und)
	_, err = fromToken.ArtistTopTracks(context.Background(), "ar1")
	assert.ErrorIs(t, err, ErrMarketRequired)

	tracks, err := NewCatalog(c, sweden).ArtistTopTracks(context.Background(), "ar1")
	require.NoError(t, err)
	assert.Len(t, tracks, 2)
}

func TestCatalog_ArtistAlbums(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/artists/ar1/albums", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "album_type=album,single&limit=5&market=SE&offset=5", r.URL.RawQuery)
		writeJSON(w, http.StatusOK, `{"items":[{"id":"al1","album_type":"single"}],"total":6,"offset":5,"limit":5}`)
	})
	cat := NewCatalog(newTestClient(t, mux), sweden)

	p, err := cat.ArtistAlbums(context.Background(), "ar1", []AlbumType{AlbumTypeAlbum, AlbumTypeSingle}, PageNumber(5, 2))
	require.NoError(t, err)
	assert.Equal(t, AlbumTypeSingle, p.At(0).AlbumType)
}

func TestCatalog_AudioAnalysisIsRaw(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/audio-analysis/t1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"track":{"tempo":120.0},"bars":[]}`)
	})
	raw, err := NewCatalog(newTestClient(t, mux), language.Und).AudioAnalysis(context.Background(), "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"track":{"tempo":120.0},"bars":[]}`, string(raw))
}

func TestSearchQuery_String(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  string
	}{
		{
			name:  "keywords only",
			query: SearchQuery{Keywords: "Daft Punk"},
			want:  "daft punk",
		},
		{
			name: "operators and filters",
			query: SearchQuery{
				Types:     []SearchType{SearchTrack},
				Keywords:  "Around the World",
				InOrder:   true,
				Alternate: "Da Funk",
				Exclude:   "Live",
				Filters: SearchFilters{
					Artist: "Daft Punk",
					Genre:  "house",
					Year:   &Range[int]{From: 1990, To: 1999},
					Tag:    "new",
					ISRC:   "GBDUW0000059",
					UPC:    "724384260927",
				},
			},
			want: `"around the world" OR da funk NOT live artist:"Daft Punk" genre:"house" year:1990-1999 isrc:GBDUW0000059`,
		},
		{
			name: "album only filters",
			query: SearchQuery{
				Types:   []SearchType{SearchAlbum},
				Filters: SearchFilters{Album: "Discovery", Genre: "house", Tag: "hipster", UPC: "724384960650"},
			},
			want: `album:"Discovery" tag:hipster upc:724384960650`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.String())
		})
	}
}

func TestCatalog_Search(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, `daft punk artist:"Daft Punk"`, q.Get("q"))
		assert.Contains(t, r.URL.RawQuery, "type=album,artist,track,playlist")
		assert.Equal(t, "10", q.Get("limit"))
		writeJSON(w, http.StatusOK, `{
			"artists": {"items":[{"id":"ar1","name":"Daft Punk"}],"total":1},
			"tracks": {"items":[],"total":0}
		}`)
	})
	cat := NewCatalog(newTestClient(t, mux), language.Und)

	res, err := cat.Search(context.Background(), SearchQuery{
		Keywords: "daft punk",
		Filters:  SearchFilters{Artist: "Daft Punk"},
	}, Pagination{Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, res.Artists)
	assert.Equal(t, "Daft Punk", res.Artists.At(0).Name)
	assert.NotNil(t, res.Tracks)
	assert.Nil(t, res.Albums)
	assert.Nil(t, res.Playlists)
}

func TestCatalog_FeaturedPlaylists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/browse/featured-playlists", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "SE", q.Get("country"))
		assert.Equal(t, "sv_SE", q.Get("locale"))
		assert.Equal(t, "2024-01-02T03:04:05", q.Get("timestamp"))
		writeJSON(w, http.StatusOK, `{"message":"Monday morning","playlists":{"items":[{"id":"p1","tracks":{"href":"h","total":4}}],"total":1}}`)
	})
	cat := NewCatalog(newTestClient(t, mux), sweden)

	fp, err := cat.FeaturedPlaylists(context.Background(), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Pagination{})
	require.NoError(t, err)
	assert.Equal(t, "Monday morning", fp.Message)
	assert.Equal(t, 4, fp.Playlists.Items[0].TotalTracks())
}

func TestCatalog_BrowseOmitsFromToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/browse/new-releases", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("country"))
		writeJSON(w, http.StatusOK, `{"albums":{"items":[{"id":"al1","album_type":"album"}],"total":1}}`)
	})
	cat := NewCatalog(newTestClient(t, mux, WithMarketFromToken()), language.Und)

	p, err := cat.NewReleases(context.Background(), Pagination{})
	require.NoError(t, err)
	assert.Equal(t, "al1", p.At(0).ID)
}

func TestCatalog_Categories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/browse/categories", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"categories":{"items":[{"id":"party","name":"Party"}],"total":1}}`)
	})
	mux.HandleFunc("GET /v1/browse/categories/party", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"party","name":"Party"}`)
	})
	mux.HandleFunc("GET /v1/browse/categories/party/playlists", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"playlists":{"items":[{"id":"p1","tracks":{"href":"h","total":1}}],"total":1}}`)
	})
	cat := NewCatalog(newTestClient(t, mux), language.Und)
	ctx := context.Background()

	cats, err := cat.Categories(ctx, Pagination{})
	require.NoError(t, err)
	assert.Equal(t, "party", cats.At(0).ID)

	one, err := cat.Category(ctx, "party")
	require.NoError(t, err)
	assert.Equal(t, "Party", one.Name)

	pls, err := cat.CategoryPlaylists(ctx, "party", Pagination{})
	require.NoError(t, err)
	assert.Equal(t, "p1", pls.At(0).ID)
}

func TestCatalog_Recommendations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/recommendations", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "ar1,ar2", q.Get("seed_artists"))
		assert.Equal(t, "rock", q.Get("seed_genres"))
		assert.False(t, q.Has("seed_tracks"))
		assert.Equal(t, "0.5", q.Get("min_energy"))
		assert.Equal(t, "120", q.Get("target_tempo"))
		assert.Equal(t, "10", q.Get("limit"))
		writeJSON(w, http.StatusOK, `{"seeds":[{"id":"rock","type":"GENRE"}],"tracks":[{"id":"t1"}]}`)
	})
	cat := NewCatalog(newTestClient(t, mux), language.Und)

	recs, err := cat.Recommendations(context.Background(),
		Seeds{Artists: []string{"ar1", "ar2"}, Genres: []string{"rock"}},
		[]TrackAttribute{Tune(AttrEnergy).WithMin(0.5), Tune(AttrTempo).WithTarget(120)},
		10,
	)
	require.NoError(t, err)
	assert.Equal(t, "t1", recs.Tracks[0].ID)

	_, err = cat.Recommendations(context.Background(),
		Seeds{Artists: []string{"1", "2", "3"}, Tracks: []string{"4", "5"}, Genres: []string{"6"}}, nil, 0)
	assert.ErrorIs(t, err, ErrTooManySeeds)
}
