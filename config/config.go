package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Cache     CacheConfig     `yaml:"cache"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Search    SearchConfig    `yaml:"search"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8080
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool `yaml:"enabled"` // default: true

	// APIKeys is the list of accepted bearer tokens.
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting of the API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 5

	// Burst is the maximum burst size per API key.
	Burst int `yaml:"burst"` // default: 10
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API. "*" allows any.
	// Empty disables CORS headers.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CacheConfig controls the answer cache.
type CacheConfig struct {
	MaxEntries      int           `yaml:"max_entries"`      // default: 1000
	TTL             time.Duration `yaml:"ttl"`              // default: 1h
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // default: 5m
}

// FetchConfig controls outbound requests to search providers.
type FetchConfig struct {
	// Timeout bounds a single page request.
	Timeout time.Duration `yaml:"timeout"` // default: 15s

	UserAgent string `yaml:"user_agent"`
	Proxy     string `yaml:"proxy"`

	// RequestsPerSecond paces requests per provider host. 0 disables pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 1
	Burst             int     `yaml:"burst"`               // default: 2

	GoogleBaseURL string `yaml:"google_base_url"` // default: "https://www.google.com"
	BingBaseURL   string `yaml:"bing_base_url"`   // default: "https://www.bing.com"
}

// SearchConfig controls rank resolution.
type SearchConfig struct {
	// Timeout bounds a whole resolution, all pages included.
	Timeout time.Duration `yaml:"timeout"` // default: 60s

	// Coalesce shares one resolution between identical in-flight queries.
	Coalesce bool `yaml:"coalesce"` // default: true
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"

	// File enables size-rotated file output instead of stdout.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`  // default: 100
	MaxAgeDays int    `yaml:"max_age_days"` // default: 28
	MaxBackups int    `yaml:"max_backups"`  // default: 5
	Compress   bool   `yaml:"compress"`     // default: true
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5.0,
			Burst:             10,
		},
		Cache: CacheConfig{
			MaxEntries:      1000,
			TTL:             time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		Fetch: FetchConfig{
			Timeout:           15 * time.Second,
			RequestsPerSecond: 1.0,
			Burst:             2,
			GoogleBaseURL:     "https://www.google.com",
			BingBaseURL:       "https://www.bing.com",
		},
		Search: SearchConfig{
			Timeout:  60 * time.Second,
			Coalesce: true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxAgeDays: 28,
			MaxBackups: 5,
			Compress:   true,
		},
	}
}

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file named by SERPRANK_CONFIG_FILE, a .env file (path from
// SERPRANK_ENV_FILE, default ".env") and SERPRANK_* environment variables.
// The result is not validated; servers call Validate before starting.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("SERPRANK_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	envFile := envOr("SERPRANK_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnv overrides fields with any SERPRANK_* variables that are set.
func (c *Config) applyEnv() {
	c.Server.Host = envOr("SERPRANK_HOST", c.Server.Host)
	c.Server.Port = envIntOr("SERPRANK_PORT", c.Server.Port)
	c.Server.Mode = envOr("SERPRANK_MODE", c.Server.Mode)

	c.Auth.Enabled = envBoolOr("SERPRANK_AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.APIKeys = envSliceOr("SERPRANK_API_KEYS", c.Auth.APIKeys)

	c.RateLimit.RequestsPerSecond = envFloatOr("SERPRANK_RATE_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = envIntOr("SERPRANK_RATE_BURST", c.RateLimit.Burst)

	c.CORS.AllowedOrigins = envSliceOr("SERPRANK_CORS_ORIGINS", c.CORS.AllowedOrigins)

	c.Cache.MaxEntries = envIntOr("SERPRANK_CACHE_MAX_ENTRIES", c.Cache.MaxEntries)
	c.Cache.TTL = envDurationOr("SERPRANK_CACHE_TTL", c.Cache.TTL)
	c.Cache.CleanupInterval = envDurationOr("SERPRANK_CACHE_CLEANUP_INTERVAL", c.Cache.CleanupInterval)

	c.Fetch.Timeout = envDurationOr("SERPRANK_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.UserAgent = envOr("SERPRANK_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.Proxy = envOr("SERPRANK_PROXY", c.Fetch.Proxy)
	c.Fetch.RequestsPerSecond = envFloatOr("SERPRANK_FETCH_RPS", c.Fetch.RequestsPerSecond)
	c.Fetch.Burst = envIntOr("SERPRANK_FETCH_BURST", c.Fetch.Burst)
	c.Fetch.GoogleBaseURL = envOr("SERPRANK_GOOGLE_BASE_URL", c.Fetch.GoogleBaseURL)
	c.Fetch.BingBaseURL = envOr("SERPRANK_BING_BASE_URL", c.Fetch.BingBaseURL)

	c.Search.Timeout = envDurationOr("SERPRANK_SEARCH_TIMEOUT", c.Search.Timeout)
	c.Search.Coalesce = envBoolOr("SERPRANK_COALESCE", c.Search.Coalesce)

	c.Log.Level = envOr("SERPRANK_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("SERPRANK_LOG_FORMAT", c.Log.Format)
	c.Log.File = envOr("SERPRANK_LOG_FILE", c.Log.File)
	c.Log.MaxSizeMB = envIntOr("SERPRANK_LOG_MAX_SIZE_MB", c.Log.MaxSizeMB)
	c.Log.MaxAgeDays = envIntOr("SERPRANK_LOG_MAX_AGE_DAYS", c.Log.MaxAgeDays)
	c.Log.MaxBackups = envIntOr("SERPRANK_LOG_MAX_BACKUPS", c.Log.MaxBackups)
	c.Log.Compress = envBoolOr("SERPRANK_LOG_COMPRESS", c.Log.Compress)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	case c.Auth.Enabled && len(c.Auth.APIKeys) == 0:
		return errors.New("auth is enabled but no API keys are configured (set SERPRANK_API_KEYS or SERPRANK_AUTH_ENABLED=false)")
	case c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1:
		return errors.New("rate limit requires a positive rate and burst")
	case c.Fetch.RequestsPerSecond < 0:
		return errors.New("fetch rate cannot be negative")
	case c.Cache.MaxEntries < 1:
		return errors.New("cache max entries must be at least 1")
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
