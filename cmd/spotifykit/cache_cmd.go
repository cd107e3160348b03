// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/spotifykit/internal/config"
)

func newCacheCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the response cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show cache statistics",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				rc, err := c.responseCache(cmd.Context())
				if err != nil {
					return err
				}
				if hc, ok := rc.Cache.(interface{ HealthCheck(context.Context) error }); ok {
					if err := hc.HealthCheck(cmd.Context()); err != nil {
						return fmt.Errorf("%s cache unreachable: %w", rc.Backend, err)
					}
				}
				s := rc.Cache.Stats()
				t := newTable(cmd.OutOrStdout(), "Backend", "Entries", "Hits", "Misses", "Sets", "Evictions")
				t.AppendRow([]any{rc.Backend, s.CurrentSize, s.Hits, s.Misses, s.Sets, s.Evictions})
				t.Render()
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Drop every cached response",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				rc, err := c.responseCache(cmd.Context())
				if err != nil {
					return err
				}
				rc.Cache.Clear()
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared the %s cache.\n", rc.Backend)
				return err
			},
		},
	)
	return cmd
}

// responseCache opens the configured cache without a Web API client.
func (c *cli) responseCache(ctx context.Context) (*responseCache, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	cfg, err := c.config(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := openResponseCache(cfg.Cache, c.logger)
	if err != nil {
		return nil, err
	}
	c.cache = rc
	c.closers = append(c.closers, rc.Close)
	return rc, nil
}

func cacheEnabled(rc *responseCache) bool { return rc.Backend != config.CacheNone }
