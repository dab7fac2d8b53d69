// Package config loads the shell host configuration from the environment.
package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/wxshell/cache"
	"github.com/jonwraymond/wxshell/intercept"
	"github.com/jonwraymond/wxshell/observe"
	"github.com/jonwraymond/wxshell/secret"
)

// ServiceName identifies the host in telemetry.
const ServiceName = "wxshell"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

var (
	// ErrInvalidStore indicates an unknown WXSHELL_STORE value.
	ErrInvalidStore = errors.New("config: store must be memory, sqlite or redis")

	// ErrMissingDSN indicates a durable store without WXSHELL_STORE_DSN.
	ErrMissingDSN = errors.New("config: store dsn is required")

	// ErrInvalidOrigin indicates WXSHELL_ORIGIN is not an absolute URL.
	ErrInvalidOrigin = errors.New("config: origin must be an absolute URL")
)

// Config is the host configuration.
type Config struct {
	Addr         string        `env:"WXSHELL_ADDR" envDefault:":8080"`
	Origin       string        `env:"WXSHELL_ORIGIN" envDefault:"http://localhost:8080"`
	Store        string        `env:"WXSHELL_STORE" envDefault:"memory"`
	StoreDSN     string        `env:"WXSHELL_STORE_DSN"`
	CacheName    string        `env:"WXSHELL_CACHE_NAME" envDefault:"wxshell-shell-v1"`
	Manifest     []string      `env:"WXSHELL_MANIFEST" envSeparator:","`
	RelayDynamic bool          `env:"WXSHELL_RELAY_DYNAMIC" envDefault:"true"`
	StrictCache  bool          `env:"WXSHELL_STRICT_CACHE" envDefault:"false"`
	TokenSecret  string        `env:"WXSHELL_TOKEN_SECRET"`
	TokenTTL     time.Duration `env:"WXSHELL_TOKEN_TTL" envDefault:"15m"`
	MaxInflight  int           `env:"WXSHELL_MAX_INFLIGHT" envDefault:"64"`

	LogLevel        string  `env:"WXSHELL_LOG_LEVEL" envDefault:"info"`
	TracingExporter string  `env:"WXSHELL_TRACING_EXPORTER" envDefault:"none"`
	MetricsExporter string  `env:"WXSHELL_METRICS_EXPORTER" envDefault:"none"`
	TraceSamplePct  float64 `env:"WXSHELL_TRACE_SAMPLE" envDefault:"1"`

	// EphemeralSecret is set when no token secret was configured and a
	// random one was generated. Tokens do not survive a restart.
	EphemeralSecret bool `env:"-"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment, resolves secret-bearing values and validates
// the result. A nil resolver uses secret.NewDefaultResolver.
func Load(ctx context.Context, resolver *secret.Resolver) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if resolver == nil {
		resolver = secret.NewDefaultResolver()
	}
	if err := resolver.ResolveInto(ctx, map[string]*string{
		"WXSHELL_STORE_DSN":    &cfg.StoreDSN,
		"WXSHELL_TOKEN_SECRET": &cfg.TokenSecret,
	}); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.TokenSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return Config{}, fmt.Errorf("config: generate token secret: %w", err)
		}
		cfg.TokenSecret = hex.EncodeToString(buf)
		cfg.EphemeralSecret = true
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the store selection and origin, then the telemetry
// settings.
func (c Config) Validate() error {
	if !slices.Contains([]string{StoreMemory, StoreSQLite, StoreRedis}, c.Store) {
		return fmt.Errorf("%w: %q", ErrInvalidStore, c.Store)
	}
	if c.Store != StoreMemory && c.StoreDSN == "" {
		return fmt.Errorf("%w for %s", ErrMissingDSN, c.Store)
	}
	if u, err := url.Parse(c.Origin); err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: %q", ErrInvalidOrigin, c.Origin)
	}
	return c.Observe().Validate()
}

// Observe returns the telemetry configuration.
func (c Config) Observe() observe.Config {
	return observe.Config{
		ServiceName:     ServiceName,
		TraceExporter:   c.TracingExporter,
		TraceSample:     c.TraceSamplePct,
		MetricsExporter: c.MetricsExporter,
		LogLevel:        c.LogLevel,
	}
}

// Worker returns the interception layer configuration.
func (c Config) Worker() intercept.Config {
	wc := intercept.DefaultConfig(c.Origin)
	wc.CacheName = c.CacheName
	wc.RelayDynamic = c.RelayDynamic
	if len(c.Manifest) > 0 {
		wc.Manifest = c.Manifest
	}
	return wc
}

// CachePolicy returns the response policy for the shell cache.
func (c Config) CachePolicy() cache.Policy {
	if c.StrictCache {
		return cache.StrictPolicy()
	}
	return cache.LenientPolicy()
}
