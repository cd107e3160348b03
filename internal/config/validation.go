// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate checks the effective configuration. All problems are reported
// together, each wrapped with ErrInvalidConfig.
func Validate(cfg Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(cfg.ClientID) == "" {
		add("clientId is required (set %s)", EnvClientID)
	}

	if cfg.RedirectURL != "" {
		u, err := url.Parse(cfg.RedirectURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			add("redirectUrl must be an absolute URL: %q", cfg.RedirectURL)
		}
	}

	if cfg.Market != "" && !strings.EqualFold(cfg.Market, "from_token") {
		if _, err := language.ParseRegion(cfg.Market); err != nil {
			add("market %q is not an ISO 3166-1 country code", cfg.Market)
		}
	}
	if cfg.Locale != "" {
		if _, err := language.Parse(cfg.Locale); err != nil {
			add("locale %q is not a BCP 47 tag", cfg.Locale)
		}
	}

	switch cfg.Token.Store {
	case StoreFile, StoreSQLite:
		if cfg.Token.Path == "" {
			add("token.path is required for the %s store", cfg.Token.Store)
		}
	case StoreMemory:
	default:
		add("token.store %q is not one of file, sqlite, memory", cfg.Token.Store)
	}

	switch cfg.Cache.Backend {
	case CacheNone, CacheMemory, "":
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			add("cache.redisAddr is required for the redis cache")
		}
	case CacheBadger:
		if cfg.Cache.Dir == "" {
			add("cache.dir is required for the badger cache")
		}
	default:
		add("cache.backend %q is not one of none, memory, redis, badger", cfg.Cache.Backend)
	}

	if cfg.HTTP.RateLimit < 0 {
		add("http.rateLimit must not be negative")
	}
	if cfg.HTTP.Retries < 0 {
		add("http.retries must not be negative")
	}
	if cfg.HTTP.Timeout < 0 {
		add("http.timeout must not be negative")
	}

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.Exporter != "grpc" && cfg.Telemetry.Exporter != "http" {
			add("telemetry.exporter %q is not one of grpc, http", cfg.Telemetry.Exporter)
		}
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			add("telemetry.samplingRate must be within [0, 1]")
		}
	}

	return errors.Join(errs...)
}
