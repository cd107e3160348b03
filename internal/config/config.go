// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads spotifykit settings from a YAML file and the environment.
//
// Precedence is ENV > file > defaults.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Token store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Response cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheBadger = "badger"
)

// Config is the effective configuration.
type Config struct {
	ClientID     string   `yaml:"clientId"`
	ClientSecret string   `yaml:"clientSecret"`
	RedirectURL  string   `yaml:"redirectUrl"`
	Scopes       []string `yaml:"scopes,omitempty"`

	// Market is an ISO 3166-1 alpha-2 country code ("US") or "from_token".
	Market string `yaml:"market"`
	// Locale is a BCP 47 tag ("en-US") used for browse endpoints.
	Locale string `yaml:"locale"`

	Token     TokenConfig     `yaml:"token"`
	Cache     CacheConfig     `yaml:"cache"`
	HTTP      HTTPConfig      `yaml:"http"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	LogLevel string `yaml:"logLevel"`
}

// TokenConfig selects where sessions are persisted.
type TokenConfig struct {
	Store   string `yaml:"store"`
	Path    string `yaml:"path"`
	Account string `yaml:"account"`
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDb"`
	Dir           string        `yaml:"dir"`
}

// HTTPConfig tunes the Web API client.
type HTTPConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	Retries          int           `yaml:"retries"`
	RateLimit        float64       `yaml:"rateLimit"`
	RateBurst        int           `yaml:"rateBurst"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

// TelemetryConfig enables OTLP tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// Defaults returns the configuration used when neither file nor env set a value.
func Defaults() Config {
	return Config{
		RedirectURL: "http://127.0.0.1:8888/callback",
		Market:      "US",
		Locale:      "en-US",
		Token: TokenConfig{
			Store:   StoreFile,
			Path:    filepath.Join(DataDir(), "token.json"),
			Account: "default",
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     10 * time.Minute,
			Dir:     filepath.Join(CacheDir(), "responses"),
		},
		HTTP: HTTPConfig{
			Timeout:          15 * time.Second,
			Retries:          3,
			RateLimit:        10,
			RateBurst:        20,
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
		LogLevel: "info",
	}
}

// DataDir is the per-user directory for persisted sessions.
func DataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "spotifykit")
	}
	return ".spotifykit"
}

// CacheDir is the per-user directory for the on-disk response cache.
func CacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "spotifykit")
	}
	return filepath.Join(".spotifykit", "cache")
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	out := c
	out.Scopes = append([]string(nil), c.Scopes...)
	if out.ClientSecret != "" {
		out.ClientSecret = "***"
	}
	if out.Cache.RedisPassword != "" {
		out.Cache.RedisPassword = "***"
	}
	return out
}
