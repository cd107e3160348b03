// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment keys read by Load.
const (
	EnvClientID         = "SPOTIFYKIT_CLIENT_ID"
	EnvClientSecret     = "SPOTIFYKIT_CLIENT_SECRET"
	EnvRedirectURL      = "SPOTIFYKIT_REDIRECT_URL"
	EnvScopes           = "SPOTIFYKIT_SCOPES"
	EnvMarket           = "SPOTIFYKIT_MARKET"
	EnvLocale           = "SPOTIFYKIT_LOCALE"
	EnvTokenStore       = "SPOTIFYKIT_TOKEN_STORE"
	EnvTokenPath        = "SPOTIFYKIT_TOKEN_PATH"
	EnvTokenAccount     = "SPOTIFYKIT_ACCOUNT"
	EnvCache            = "SPOTIFYKIT_CACHE"
	EnvCacheTTL         = "SPOTIFYKIT_CACHE_TTL"
	EnvCacheDir         = "SPOTIFYKIT_CACHE_DIR"
	EnvRedisAddr        = "SPOTIFYKIT_REDIS_ADDR"
	EnvRedisPassword    = "SPOTIFYKIT_REDIS_PASSWORD"
	EnvRedisDB          = "SPOTIFYKIT_REDIS_DB"
	EnvTimeout          = "SPOTIFYKIT_TIMEOUT"
	EnvRetries          = "SPOTIFYKIT_RETRIES"
	EnvRateLimit        = "SPOTIFYKIT_RATE_LIMIT"
	EnvRateBurst        = "SPOTIFYKIT_RATE_BURST"
	EnvOTelEnabled      = "SPOTIFYKIT_OTEL_ENABLED"
	EnvOTelExporter     = "SPOTIFYKIT_OTEL_EXPORTER"
	EnvOTelEndpoint     = "SPOTIFYKIT_OTEL_ENDPOINT"
	EnvOTelSamplingRate = "SPOTIFYKIT_OTEL_SAMPLING_RATE"
	EnvLogLevel         = "LOG_LEVEL"
)

// Loader handles configuration loading with precedence ENV > file > defaults.
type Loader struct {
	configPath      string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty path skips the file layer.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath:      configPath,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Load is shorthand for NewLoader(path).Load().
func Load(path string) (Config, error) {
	return NewLoader(path).Load()
}

// Load resolves and validates the effective configuration.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields cause an error to prevent silent misconfiguration.
func (l *Loader) loadFile(path string, cfg *Config) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *Config) {
	cfg.ClientID = l.envString(EnvClientID, cfg.ClientID)
	cfg.ClientSecret = l.envString(EnvClientSecret, cfg.ClientSecret)
	cfg.RedirectURL = l.envString(EnvRedirectURL, cfg.RedirectURL)
	cfg.Scopes = l.envList(EnvScopes, cfg.Scopes)
	cfg.Market = l.envString(EnvMarket, cfg.Market)
	cfg.Locale = l.envString(EnvLocale, cfg.Locale)

	cfg.Token.Store = l.envString(EnvTokenStore, cfg.Token.Store)
	cfg.Token.Path = l.envString(EnvTokenPath, cfg.Token.Path)
	cfg.Token.Account = l.envString(EnvTokenAccount, cfg.Token.Account)

	cfg.Cache.Backend = l.envString(EnvCache, cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration(EnvCacheTTL, cfg.Cache.TTL)
	cfg.Cache.Dir = l.envString(EnvCacheDir, cfg.Cache.Dir)
	cfg.Cache.RedisAddr = l.envString(EnvRedisAddr, cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString(EnvRedisPassword, cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt(EnvRedisDB, cfg.Cache.RedisDB)

	cfg.HTTP.Timeout = l.envDuration(EnvTimeout, cfg.HTTP.Timeout)
	cfg.HTTP.Retries = l.envInt(EnvRetries, cfg.HTTP.Retries)
	cfg.HTTP.RateLimit = l.envFloat(EnvRateLimit, cfg.HTTP.RateLimit)
	cfg.HTTP.RateBurst = l.envInt(EnvRateBurst, cfg.HTTP.RateBurst)

	cfg.Telemetry.Enabled = l.envBool(EnvOTelEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvOTelExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTelEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvOTelSamplingRate, cfg.Telemetry.SamplingRate)

	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
}

// Wrapper methods for mechanical tracking of consumed keys.

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}
