// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"

	"github.com/ManuGH/spotifykit/auth"
	"github.com/ManuGH/spotifykit/internal/config"
	xglog "github.com/ManuGH/spotifykit/internal/log"
	"github.com/ManuGH/spotifykit/internal/platform/httpx"
	"github.com/ManuGH/spotifykit/internal/telemetry"
	"github.com/ManuGH/spotifykit/internal/version"
	"github.com/ManuGH/spotifykit/playback"
	"github.com/ManuGH/spotifykit/webapi"
)

const serviceName = "spotifykit"

// cli holds the flags and the lazily opened resources shared by commands.
type cli struct {
	configPath string
	logLevel   string

	stdout io.Writer
	stderr io.Writer

	// store and clientOptions replace the configured token store and extend
	// the Web API client options. Tests use them to point at fakes.
	store         auth.TokenStore
	clientOptions []webapi.Option

	cfg       *config.Config
	logger    zerolog.Logger
	telemetry *telemetry.Provider
	cache     *responseCache
	client    *webapi.Client
	closers   []func() error
}

// resolveConfigPath returns --config, or config.yaml in the user config dir
// when it exists.
func (c *cli) resolveConfigPath() string {
	if p := strings.TrimSpace(c.configPath); p != "" {
		return p
	}
	auto := filepath.Join(config.DataDir(), "config.yaml")
	if _, err := os.Stat(auto); err == nil {
		return auto
	}
	return ""
}

// config loads and validates the configuration once and configures logging
// and tracing from it.
func (c *cli) config(ctx context.Context) (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}

	path := c.resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, &usageError{err: err}
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}

	xglog.Reconfigure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  c.errWriter(),
		Service: serviceName,
		Version: version.Version,
	})
	c.logger = xglog.WithComponent("cli")
	c.logger.Debug().
		Str(xglog.FieldEvent, "config.loaded").
		Str(xglog.FieldPath, path).
		Msg("configuration loaded")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		Environment:    "cli",
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return cfg, fmt.Errorf("start telemetry: %w", err)
	}
	c.telemetry = tp

	c.cfg = &cfg
	return cfg, nil
}

func (c *cli) out() io.Writer {
	if c.stdout == nil {
		return os.Stdout
	}
	return c.stdout
}

func (c *cli) errWriter() io.Writer {
	if c.stderr == nil {
		return os.Stderr
	}
	return c.stderr
}

func (c *cli) authenticator(cfg config.Config, extra ...auth.Option) *auth.Authenticator {
	opts := []auth.Option{
		auth.WithClientID(cfg.ClientID),
		auth.WithClientSecret(cfg.ClientSecret),
		auth.WithRedirectURL(cfg.RedirectURL),
		auth.WithHTTPClient(httpx.NewTracedClient(cfg.HTTP.Timeout)),
	}
	if len(cfg.Scopes) > 0 {
		opts = append(opts, auth.WithScopes(cfg.Scopes...))
	}
	return auth.NewAuthenticator(append(opts, extra...)...)
}

// tokenStore opens the configured store once.
func (c *cli) tokenStore(ctx context.Context, cfg config.Config) (auth.TokenStore, error) {
	if c.store != nil {
		return c.store, nil
	}
	store, closer, err := openTokenStore(ctx, cfg.Token)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}
	c.store = store
	return store, nil
}

// tokenSource returns the stored user session. Without one, commands that
// allow it fall back to the client credentials flow when a client secret
// is configured.
func (c *cli) tokenSource(ctx context.Context, cfg config.Config, allowApp bool) (oauth2.TokenSource, error) {
	store, err := c.tokenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := c.authenticator(cfg)

	sess, err := store.Load(ctx)
	switch {
	case err == nil:
		return a.TokenSource(ctx, sess, store), nil
	case errors.Is(err, auth.ErrNoToken) && allowApp && cfg.ClientSecret != "":
		c.logger.Debug().Msg("no stored session, using client credentials")
		app, err := a.ClientCredentials(ctx)
		if err != nil {
			return nil, err
		}
		return a.TokenSource(ctx, app, nil), nil
	default:
		return nil, err
	}
}

// webClient builds the Web API client. allowApp permits an app-only token for
// commands that do not need a user.
func (c *cli) webClient(ctx context.Context, allowApp bool) (*webapi.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	cfg, err := c.config(ctx)
	if err != nil {
		return nil, err
	}
	ts, err := c.tokenSource(ctx, cfg, allowApp)
	if err != nil {
		return nil, err
	}

	rc, err := c.responseCache(ctx)
	if err != nil {
		return nil, err
	}

	opts := []webapi.Option{
		webapi.WithTokenSource(ts),
		webapi.WithHTTPClient(httpx.NewTracedClient(cfg.HTTP.Timeout)),
		webapi.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
		webapi.WithRetries(cfg.HTTP.Retries),
		webapi.WithCircuitBreaker(cfg.HTTP.BreakerThreshold, cfg.HTTP.BreakerReset),
	}
	if cacheEnabled(rc) {
		opts = append(opts, webapi.WithCache(rc.Cache, cfg.Cache.TTL))
	}
	if market, ok := marketOption(cfg.Market); ok {
		opts = append(opts, market)
	}
	opts = append(opts, c.clientOptions...)

	c.client = webapi.NewClient(opts...)
	return c.client, nil
}

// marketOption maps the configured market onto a client option.
func marketOption(market string) (webapi.Option, bool) {
	if market == "" {
		return nil, false
	}
	if strings.EqualFold(market, webapi.MarketFromToken) {
		return webapi.WithMarketFromToken(), true
	}
	region, err := language.ParseRegion(market)
	if err != nil {
		return nil, false
	}
	tag, err := language.Compose(region)
	if err != nil {
		return nil, false
	}
	return webapi.WithMarket(tag), true
}

// catalogTag combines the configured locale with the market region so that
// browse calls get both country and locale.
func catalogTag(cfg config.Config) language.Tag {
	if cfg.Market == "" || strings.EqualFold(cfg.Market, webapi.MarketFromToken) {
		return language.Und
	}
	region, err := language.ParseRegion(cfg.Market)
	if err != nil {
		return language.Und
	}
	base := language.English
	if loc, err := language.Parse(cfg.Locale); err == nil {
		base = loc
	}
	b, _ := base.Base()
	tag, err := language.Compose(b, region)
	if err != nil {
		return language.Und
	}
	return tag
}

func (c *cli) catalog(ctx context.Context) (*webapi.Catalog, error) {
	client, err := c.webClient(ctx, true)
	if err != nil {
		return nil, err
	}
	return webapi.NewCatalog(client, catalogTag(*c.cfg)), nil
}

func (c *cli) player(ctx context.Context) (*playback.Player, error) {
	client, err := c.webClient(ctx, false)
	if err != nil {
		return nil, err
	}
	return playback.NewPlayer(client), nil
}

// close releases everything opened by the commands, newest first.
func (c *cli) close() {
	logger := xglog.WithComponent("cli")
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logger.Warn().Err(err).Msg("close failed")
		}
	}
	c.closers = nil
	if c.telemetry != nil {
		if err := c.telemetry.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}
}

// exactArgs is cobra.ExactArgs reported as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
