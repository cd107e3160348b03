// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/spotifykit/webapi"
)

const defaultListLimit = 10

func newMeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := c.webClient(ctx, false)
			if err != nil {
				return err
			}
			me, err := client.CurrentUser(ctx)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "Field", "Value")
			t.AppendRow([]any{"ID", me.ID})
			t.AppendRow([]any{"Name", me.Name()})
			t.AppendRow([]any{"Country", orDash(me.Country)})
			t.AppendRow([]any{"Email", orDash(me.Email)})
			t.AppendRow([]any{"Product", orDash(string(me.Product))})
			if me.Followers != nil {
				t.AppendRow([]any{"Followers", me.Followers.Total})
			}
			t.Render()
			return nil
		},
	}
}

func newSearchCmd(c *cli) *cobra.Command {
	var (
		types  []string
		limit  int
		artist string
		year   string
	)
	cmd := &cobra.Command{
		Use:   "search <keywords>...",
		Short: "Search the catalog",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("search needs keywords")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			q := webapi.SearchQuery{
				Keywords: strings.Join(args, " "),
				Filters:  webapi.SearchFilters{Artist: artist},
			}
			for _, raw := range types {
				st, err := parseSearchType(raw)
				if err != nil {
					return err
				}
				q.Types = append(q.Types, st)
			}
			if year != "" {
				r, err := parseYears(year)
				if err != nil {
					return err
				}
				q.Filters.Year = r
			}

			cat, err := c.catalog(ctx)
			if err != nil {
				return err
			}

			var res *webapi.SearchResults
			err = withSpinner(c.errWriter(), "Searching...", func() error {
				var serr error
				res, serr = cat.Search(ctx, q, webapi.Pagination{Limit: limit})
				return serr
			})
			if err != nil {
				return err
			}
			renderSearch(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&types, "type", "t", []string{"track"}, "item types: album, artist, track, playlist")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "results per type (1-50)")
	cmd.Flags().StringVar(&artist, "artist", "", "only items by this artist")
	cmd.Flags().StringVar(&year, "year", "", "year or range, e.g. 1994 or 1990-1999")
	return cmd
}

func parseSearchType(s string) (webapi.SearchType, error) {
	switch st := webapi.SearchType(strings.ToLower(strings.TrimSpace(s))); st {
	case webapi.SearchAlbum, webapi.SearchArtist, webapi.SearchTrack, webapi.SearchPlaylist:
		return st, nil
	default:
		return "", usagef("unknown search type %q", s)
	}
}

func parseYears(s string) (*webapi.Range[int], error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		to = from
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(from))
	hi, err2 := strconv.Atoi(strings.TrimSpace(to))
	if err1 != nil || err2 != nil || lo > hi {
		return nil, usagef("invalid year or range %q", s)
	}
	return &webapi.Range[int]{From: lo, To: hi}, nil
}

func renderSearch(cmd *cobra.Command, res *webapi.SearchResults) {
	out := cmd.OutOrStdout()
	if res.Tracks != nil {
		t := newTable(out, "Track", "Artists", "Length", "URI")
		for _, tr := range res.Tracks.Items {
			t.AppendRow([]any{truncate(tr.Name, maxCellWidth), truncate(artistNames(tr.Artists), maxCellWidth), formatDuration(tr.Duration()), tr.URI})
		}
		t.SetTitle("Tracks (%d)", res.Tracks.Total)
		t.Render()
	}
	if res.Albums != nil {
		t := newTable(out, "Album", "Artists", "Released", "URI")
		for _, a := range res.Albums.Items {
			t.AppendRow([]any{truncate(a.Name, maxCellWidth), truncate(artistNames(a.Artists), maxCellWidth), orDash(a.ReleaseDate), a.URI})
		}
		t.SetTitle("Albums (%d)", res.Albums.Total)
		t.Render()
	}
	if res.Artists != nil {
		t := newTable(out, "Artist", "Genres", "Popularity", "URI")
		for _, a := range res.Artists.Items {
			t.AppendRow([]any{truncate(a.Name, maxCellWidth), truncate(strings.Join(a.Genres, ", "), maxCellWidth), optional(a.Popularity), a.URI})
		}
		t.SetTitle("Artists (%d)", res.Artists.Total)
		t.Render()
	}
	if res.Playlists != nil {
		t := newTable(out, "Playlist", "Owner", "Tracks", "URI")
		for _, p := range res.Playlists.Items {
			t.AppendRow([]any{truncate(p.Name, maxCellWidth), p.Owner.Name(), p.TotalTracks(), p.URI})
		}
		t.SetTitle("Playlists (%d)", res.Playlists.Total)
		t.Render()
	}
}

func newAlbumCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "album <id>",
		Short: "Show an album and its tracks",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := c.catalog(ctx)
			if err != nil {
				return err
			}
			album, err := cat.Album(ctx, idFromURI(args[0]))
			if err != nil {
				return err
			}

			tracks := []webapi.Track{}
			if album.Tracks != nil {
				tracks, err = webapi.Collect(ctx, cat.Client, album.Tracks, 0)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s by %s (%s, %s)\n", album.Name, artistNames(album.Artists), album.AlbumType, orDash(album.ReleaseDate))
			t := newTable(out, "#", "Track", "Length", "URI")
			var total int
			for _, tr := range tracks {
				total += tr.DurationMS
				t.AppendRow([]any{tr.TrackNumber, truncate(tr.Name, maxCellWidth), formatDuration(tr.Duration()), tr.URI})
			}
			t.AppendFooter([]any{"", fmt.Sprintf("%d tracks", len(tracks)), formatDuration(time.Duration(total) * time.Millisecond), ""})
			t.Render()
			return nil
		},
	}
}

func newArtistCmd(c *cli) *cobra.Command {
	var top bool
	cmd := &cobra.Command{
		Use:   "artist <id>",
		Short: "Show an artist, optionally with top tracks",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := c.catalog(ctx)
			if err != nil {
				return err
			}
			id := idFromURI(args[0])
			artist, err := cat.Artist(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := newTable(out, "Field", "Value")
			t.AppendRow([]any{"Name", artist.Name})
			t.AppendRow([]any{"Genres", orDash(strings.Join(artist.Genres, ", "))})
			t.AppendRow([]any{"Popularity", optional(artist.Popularity)})
			if artist.Followers != nil {
				t.AppendRow([]any{"Followers", artist.Followers.Total})
			}
			t.AppendRow([]any{"URI", artist.URI})
			t.Render()

			if !top {
				return nil
			}
			tracks, err := cat.ArtistTopTracks(ctx, id)
			if err != nil {
				return err
			}
			tt := newTable(out, "Top track", "Album", "Length")
			for _, tr := range tracks {
				album := "-"
				if tr.Album != nil {
					album = tr.Album.Name
				}
				tt.AppendRow([]any{truncate(tr.Name, maxCellWidth), truncate(album, maxCellWidth), formatDuration(tr.Duration())})
			}
			tt.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&top, "top", false, "also list the artist's top tracks")
	return cmd
}

func newGenresCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genre seeds accepted by recommendations",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cat, err := c.catalog(ctx)
			if err != nil {
				return err
			}
			genres, err := cat.AvailableGenreSeeds(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range genres {
				if _, err := fmt.Fprintln(out, g); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newTopCmd(c *cli) *cobra.Command {
	var (
		timeRange string
		limit     int
	)
	cmd := &cobra.Command{
		Use:       "top <artists|tracks>",
		Short:     "List your top artists or tracks",
		Args:      exactArgs(1),
		ValidArgs: []string{"artists", "tracks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := webapi.TimeRange(timeRange + "_term")
			switch r {
			case webapi.ShortTerm, webapi.MediumTerm, webapi.LongTerm:
			default:
				return usagef("unknown range %q (use short, medium or long)", timeRange)
			}
			client, err := c.webClient(ctx, false)
			if err != nil {
				return err
			}

			page := webapi.Pagination{Limit: limit}
			out := cmd.OutOrStdout()
			switch args[0] {
			case "artists":
				artists, err := client.TopArtists(ctx, r, page)
				if err != nil {
					return err
				}
				t := newTable(out, "#", "Artist", "Genres")
				for i, a := range artists.Items {
					t.AppendRow([]any{i + 1, a.Name, truncate(strings.Join(a.Genres, ", "), maxCellWidth)})
				}
				t.Render()
			case "tracks":
				tracks, err := client.TopTracks(ctx, r, page)
				if err != nil {
					return err
				}
				t := newTable(out, "#", "Track", "Artists")
				for i, tr := range tracks.Items {
					t.AppendRow([]any{i + 1, truncate(tr.Name, maxCellWidth), truncate(artistNames(tr.Artists), maxCellWidth)})
				}
				t.Render()
			default:
				return usagef("top lists artists or tracks, not %q", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&timeRange, "range", "medium", "affinity window: short, medium or long")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "number of items (1-50)")
	return cmd
}

// idFromURI accepts a bare ID or a spotify:kind:id URI.
func idFromURI(s string) string {
	if strings.HasPrefix(s, "spotify:") {
		return s[strings.LastIndex(s, ":")+1:]
	}
	return s
}
