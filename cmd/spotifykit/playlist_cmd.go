// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/ManuGH/spotifykit/webapi"
)

func newPlaylistCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "List, export and edit playlists",
	}
	cmd.AddCommand(
		newPlaylistListCmd(c),
		newPlaylistTracksCmd(c),
		newPlaylistCreateCmd(c),
		newPlaylistAddCmd(c),
		newPlaylistCoverCmd(c),
	)
	return cmd
}

func (c *cli) playlists(cmd *cobra.Command) (*webapi.Playlists, error) {
	client, err := c.webClient(cmd.Context(), false)
	if err != nil {
		return nil, err
	}
	return webapi.NewPlaylists(client), nil
}

func newPlaylistListCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your playlists",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := c.webClient(ctx, false)
			if err != nil {
				return err
			}
			first, err := client.MyPlaylists(ctx, webapi.Pagination{Limit: min(limit, 50)})
			if err != nil {
				return err
			}
			all, err := webapi.Collect(ctx, client, first, limit)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "Playlist", "Owner", "Tracks", "Public", "ID")
			for _, p := range all {
				public := "-"
				if p.Public != nil {
					public = yesNo(*p.Public)
				}
				t.AppendRow([]any{truncate(p.Name, maxCellWidth), p.Owner.ID, p.TotalTracks(), public, p.ID})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of playlists; 0 lists all")
	return cmd
}

// playlistRow is one exported playlist entry.
type playlistRow struct {
	Position int    `csv:"position"`
	Name     string `csv:"name"`
	Artists  string `csv:"artists"`
	Album    string `csv:"album"`
	Duration string `csv:"duration"`
	AddedAt  string `csv:"added_at"`
	AddedBy  string `csv:"added_by"`
	Local    bool   `csv:"local"`
	URI      string `csv:"uri"`
}

func playlistRows(items []webapi.PlaylistTrack) []*playlistRow {
	rows := make([]*playlistRow, 0, len(items))
	for i, it := range items {
		row := &playlistRow{Position: i + 1, Local: it.IsLocal}
		if it.AddedAt != nil {
			row.AddedAt = it.AddedAt.UTC().Format(time.RFC3339)
		}
		if it.AddedBy != nil {
			row.AddedBy = it.AddedBy.ID
		}
		// Removed tracks come back as null.
		if tr := it.Track; tr != nil {
			row.Name = tr.Name
			row.Artists = artistNames(tr.Artists)
			row.Duration = formatDuration(tr.Duration())
			row.URI = tr.URI
			if tr.Album != nil {
				row.Album = tr.Album.Name
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func newPlaylistTracksCmd(c *cli) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "tracks <owner> <id>",
		Short: "List a playlist's tracks, optionally exporting them as CSV",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pl, err := c.playlists(cmd)
			if err != nil {
				return err
			}

			var items []webapi.PlaylistTrack
			err = withSpinner(c.errWriter(), "Fetching tracks...", func() error {
				first, err := pl.Tracks(ctx, args[0], idFromURI(args[1]), webapi.Pagination{Limit: 100})
				if err != nil {
					return err
				}
				items, err = webapi.Collect(ctx, pl.Client, first, 0)
				return err
			})
			if err != nil {
				return err
			}
			rows := playlistRows(items)

			switch csvPath {
			case "":
				t := newTable(cmd.OutOrStdout(), "#", "Track", "Artists", "Length", "Added")
				for _, r := range rows {
					t.AppendRow([]any{r.Position, truncate(orDash(r.Name), maxCellWidth), truncate(r.Artists, maxCellWidth), r.Duration, r.AddedAt})
				}
				t.Render()
				return nil
			case "-":
				return writeCSV(cmd.OutOrStdout(), rows)
			default:
				f, err := renameio.NewPendingFile(csvPath)
				if err != nil {
					return err
				}
				defer func() { _ = f.Cleanup() }()
				if err := writeCSV(f, rows); err != nil {
					return err
				}
				if err := f.CloseAtomicallyReplace(); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tracks to %s\n", len(rows), csvPath)
				return err
			}
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", `write CSV to this file ("-" for stdout)`)
	return cmd
}

func writeCSV(w io.Writer, rows []*playlistRow) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func newPlaylistCreateCmd(c *cli) *cobra.Command {
	var details webapi.PlaylistDetails
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a playlist for the logged-in user",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pl, err := c.playlists(cmd)
			if err != nil {
				return err
			}
			me, err := pl.Client.CurrentUser(ctx)
			if err != nil {
				return err
			}
			details.Name = args[0]
			created, err := pl.Create(ctx, me.ID, details)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", created.Name, created.URI)
			return err
		},
	}
	cmd.Flags().StringVar(&details.Description, "description", "", "playlist description")
	cmd.Flags().BoolVar(&details.Public, "public", false, "show the playlist on your profile")
	cmd.Flags().BoolVar(&details.Collaborative, "collaborative", false, "let followers edit the playlist")
	return cmd
}

func newPlaylistAddCmd(c *cli) *cobra.Command {
	var position int
	cmd := &cobra.Command{
		Use:   "add <owner> <id> <uri>...",
		Short: "Add tracks to a playlist",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return usagef("add needs an owner, a playlist id and at least one track URI")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := c.playlists(cmd)
			if err != nil {
				return err
			}
			var pos *int
			if cmd.Flags().Changed("position") {
				if position < 0 {
					return usagef("position must not be negative")
				}
				pos = &position
			}
			snapshot, err := pl.AddTracks(cmd.Context(), args[0], idFromURI(args[1]), args[2:], pos)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %d tracks (snapshot %s)\n", len(args)-2, snapshot)
			return err
		},
	}
	cmd.Flags().IntVar(&position, "position", 0, "insert at this zero-based position instead of appending")
	return cmd
}

func newPlaylistCoverCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cover <owner> <id> <image.jpg>",
		Short: "Upload a JPEG as the playlist cover",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			jpeg, err := os.ReadFile(args[2])
			if err != nil {
				return &usageError{err: err}
			}
			pl, err := c.playlists(cmd)
			if err != nil {
				return err
			}
			if err := pl.UploadCoverImage(cmd.Context(), args[0], idFromURI(args[1]), jpeg); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Cover updated.")
			return err
		},
	}
}
