// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/spotifykit/playback"
)

func newPlayerCmd(c *cli) *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:     "player",
		Aliases: []string{"p"},
		Short:   "Control Spotify Connect playback",
		Long:    "player commands act on the active device unless --device names another one.",
	}
	cmd.PersistentFlags().StringVarP(&device, "device", "d", "", "target device id")

	// simple wraps a command that only needs the player and the device.
	simple := func(use, short string, fn func(*cobra.Command, *playback.Player, string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				p, err := c.player(cmd.Context())
				if err != nil {
					return err
				}
				return fn(cmd, p, device)
			},
		}
	}

	cmd.AddCommand(
		newPlayerStatusCmd(c),
		newPlayerDevicesCmd(c),
		newPlayerPlayCmd(c, &device),
		simple("pause", "Pause playback", func(cmd *cobra.Command, p *playback.Player, dev string) error {
			return p.Pause(cmd.Context(), dev)
		}),
		simple("next", "Skip to the next track", func(cmd *cobra.Command, p *playback.Player, dev string) error {
			return p.Next(cmd.Context(), dev)
		}),
		simple("previous", "Go back to the previous track", func(cmd *cobra.Command, p *playback.Player, dev string) error {
			return p.Previous(cmd.Context(), dev)
		}),
		newPlayerSeekCmd(c, &device),
		newPlayerVolumeCmd(c, &device),
		newPlayerShuffleCmd(c, &device),
		newPlayerRepeatCmd(c, &device),
		newPlayerQueueCmd(c, &device),
		newPlayerTransferCmd(c),
		newPlayerRecentCmd(c),
	)
	return cmd
}

func newPlayerStatusCmd(c *cli) *cobra.Command {
	var market string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what is playing",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := c.player(ctx)
			if err != nil {
				return err
			}
			st, err := p.State(ctx, market)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if st == nil {
				_, err := fmt.Fprintln(out, "Nothing is playing.")
				return err
			}

			t := newTable(out, "Field", "Value")
			if st.Item != nil {
				t.AppendRow([]any{"Track", st.Item.Name})
				t.AppendRow([]any{"Artists", artistNames(st.Item.Artists)})
				if st.Item.Album != nil {
					t.AppendRow([]any{"Album", st.Item.Album.Name})
				}
				t.AppendRow([]any{"Position", formatDuration(st.Elapsed(time.Now())) + " / " + formatDuration(st.Item.Duration())})
			}
			t.AppendRow([]any{"Playing", yesNo(st.IsPlaying)})
			if st.Device != nil {
				t.AppendRow([]any{"Device", fmt.Sprintf("%s (%s)", st.Device.Name, st.Device.Type)})
				t.AppendRow([]any{"Volume", volumeText(*st.Device)})
			}
			t.AppendRow([]any{"Shuffle", optional(st.ShuffleState)})
			t.AppendRow([]any{"Repeat", optional(st.RepeatMode)})
			if st.Context != nil {
				t.AppendRow([]any{"Context", st.Context.URI})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&market, "market", "", "relink tracks for this market (default: configured market)")
	return cmd
}

func volumeText(d playback.Device) string {
	v, ok := d.Volume()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", v*100)
}

func newPlayerDevicesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available devices",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := c.player(ctx)
			if err != nil {
				return err
			}
			devices, err := p.Devices(ctx)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "Name", "Type", "Active", "Volume", "ID")
			for _, d := range devices {
				t.AppendRow([]any{d.Name, d.Type, yesNo(d.IsActive), volumeText(d), optional(d.ID)})
			}
			t.Render()
			return nil
		},
	}
}

func newPlayerPlayCmd(c *cli, device *string) *cobra.Command {
	var (
		contextURI string
		offset     int
		offsetURI  string
		position   string
	)
	cmd := &cobra.Command{
		Use:   "play [uri]...",
		Short: "Resume playback, or play tracks or a context",
		Long: "Without arguments play resumes. Track URIs start a list of tracks; --context starts an " +
			"album, artist or playlist, optionally at --offset or --offset-uri.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := playback.PlayOptions{
				DeviceID:   *device,
				ContextURI: contextURI,
				URIs:       args,
				OffsetURI:  offsetURI,
			}
			if cmd.Flags().Changed("offset") {
				opts.OffsetPosition = &offset
			}
			if position != "" {
				pos, err := parsePosition(position)
				if err != nil {
					return err
				}
				opts.Position = pos
			}

			p, err := c.player(cmd.Context())
			if err != nil {
				return err
			}
			if err := p.Play(cmd.Context(), opts); err != nil {
				return asUsage(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&contextURI, "context", "", "album, artist or playlist URI to play")
	cmd.Flags().IntVar(&offset, "offset", 0, "zero-based index to start at")
	cmd.Flags().StringVar(&offsetURI, "offset-uri", "", "track URI to start at")
	cmd.Flags().StringVar(&position, "position", "", "start position, e.g. 1:30 or 90s")
	return cmd
}

func newPlayerSeekCmd(c *cli, device *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seek <position>",
		Short: "Seek within the current track (e.g. 1:30 or 90s)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			p, err := c.player(cmd.Context())
			if err != nil {
				return err
			}
			return asUsage(p.Seek(cmd.Context(), pos, *device))
		},
	}
}

func newPlayerVolumeCmd(c *cli, device *string) *cobra.Command {
	return &cobra.Command{
		Use:   "volume <0-100>",
		Short: "Set the volume",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			percent, err := strconv.Atoi(strings.TrimSuffix(args[0], "%"))
			if err != nil {
				return usagef("invalid volume %q", args[0])
			}
			p, err := c.player(cmd.Context())
			if err != nil {
				return err
			}
			return asUsage(p.SetVolume(cmd.Context(), percent, *device))
		},
	}
}

func newPlayerShuffleCmd(c *cli, device *string) *cobra.Command {
	return &cobra.Command{
		Use:       "shuffle <on|off>",
		Short:     "Toggle shuffle",
		Args:      exactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			p, err := c.player(cmd.Context())
			if err != nil {
				return err
			}
			return p.SetShuffle(cmd.Context(), on, *device)
		},
	}
}

func newPlayerRepeatCmd(c *cli, device *string) *cobra.Command {
	return &cobra.Command{
		Use:       "repeat <off|track|context>",
		Short:     "Set the repeat mode",
		Args:      exactArgs(1),
		ValidArgs: []string{string(playback.RepeatOff), string(playback.RepeatOne), string(playback.RepeatAll)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := playback.RepeatMode(strings.ToLower(args[0]))
			if !mode.Valid() {
				return usagef("unknown repeat mode %q (use off, track or context)", args[0])
			}
			p, err := c.player(cmd.Context())
			if err != nil {
				return err
			}
			return p.SetRepeat(cmd.Context(), mode, *device)
		},
	}
}

func newPlayerQueueCmd(c *cli, device *string) *cobra.Command {
	return &cobra.Command{
		Use:   "queue <uri>",
		Short: "Add a track or episode to the queue",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.player(cmd.Context())
			if err != nil {
				return err
			}
			return asUsage(p.Queue(cmd.Context(), args[0], *device))
		},
	}
}

func newPlayerTransferCmd(c *cli) *cobra.Command {
	var play bool
	cmd := &cobra.Command{
		Use:   "transfer <device-id>",
		Short: "Move playback to another device",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.player(cmd.Context())
			if err != nil {
				return err
			}
			var playPtr *bool
			if cmd.Flags().Changed("play") {
				playPtr = &play
			}
			return p.Transfer(cmd.Context(), args, playPtr)
		},
	}
	cmd.Flags().BoolVar(&play, "play", false, "start (true) or keep paused (false) after the transfer")
	return cmd
}

func newPlayerRecentCmd(c *cli) *cobra.Command {
	var (
		limit int
		since time.Duration
	)
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently played tracks",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			q := playback.RecentQuery{Limit: limit}
			if since > 0 {
				q.After = time.Now().Add(-since)
			}
			p, err := c.player(ctx)
			if err != nil {
				return err
			}
			page, err := p.RecentlyPlayed(ctx, q)
			if err != nil {
				return asUsage(err)
			}
			t := newTable(cmd.OutOrStdout(), "Played", "Track", "Artists")
			for _, rt := range page.Items {
				t.AppendRow([]any{rt.PlayedAt.Local().Format("2006-01-02 15:04"), truncate(rt.Track.Name, maxCellWidth), truncate(artistNames(rt.Track.Artists), maxCellWidth)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of tracks (1-50)")
	cmd.Flags().DurationVar(&since, "since", 0, "only tracks played within this window, e.g. 2h")
	return cmd
}

// parsePosition accepts Go durations ("90s", "1m30s") and clock notation
// ("1:30", "1:02:03").
func parsePosition(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, usagef("position must not be negative")
		}
		return d, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, usagef("invalid position %q", s)
	}
	var d time.Duration
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, usagef("invalid position %q", s)
		}
		d = d*60 + time.Duration(n)
	}
	return d * time.Second, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, usagef("expected on or off, got %q", s)
	}
}

// asUsage reports argument validation failures as usage errors.
func asUsage(err error) error {
	if errors.Is(err, playback.ErrInvalidArgument) {
		return &usageError{err: err}
	}
	return err
}
