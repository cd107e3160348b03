// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/spotifykit/auth"
	"github.com/ManuGH/spotifykit/internal/cache"
	"github.com/ManuGH/spotifykit/internal/config"
)

const memoryCacheJanitor = time.Minute

// openTokenStore opens the session store selected by cfg. The returned closer
// may be nil.
func openTokenStore(ctx context.Context, cfg config.TokenConfig) (auth.TokenStore, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return auth.NewMemoryStore(), nil, nil
	case config.StoreFile:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create token dir: %w", err)
		}
		return auth.NewFileStore(cfg.Path), nil, nil
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create token dir: %w", err)
		}
		s, err := auth.NewSQLiteStore(ctx, cfg.Path, cfg.Account)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: token store %q", config.ErrInvalidConfig, cfg.Store)
	}
}

// responseCache is the opened response cache. A disabled cache is a no-op.
type responseCache struct {
	Backend string
	Cache   cache.Cache
	closer  func() error
}

func (r *responseCache) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// openResponseCache opens the cache backend selected by cfg.
func openResponseCache(cfg config.CacheConfig, logger zerolog.Logger) (*responseCache, error) {
	switch cfg.Backend {
	case config.CacheNone, "":
		return &responseCache{Backend: config.CacheNone, Cache: cache.NewNoOpCache()}, nil
	case config.CacheMemory:
		mc := cache.NewMemoryCache(memoryCacheJanitor)
		return &responseCache{Backend: cfg.Backend, Cache: mc, closer: func() error {
			mc.Stop()
			return nil
		}}, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &responseCache{Backend: cfg.Backend, Cache: rc, closer: rc.Close}, nil
	case config.CacheBadger:
		if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		bc, err := cache.NewBadgerCache(cache.BadgerConfig{Dir: cfg.Dir}, logger)
		if err != nil {
			return nil, err
		}
		return &responseCache{Backend: cfg.Backend, Cache: bc, closer: bc.Close}, nil
	default:
		return nil, fmt.Errorf("%w: cache backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}
