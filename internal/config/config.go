// Package config loads the server configuration from METASITE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrInvalid is wrapped by Validate failures.
var ErrInvalid = errors.New("invalid config")

// Config is the server configuration.
type Config struct {
	Addr    string `env:"ADDR" envDefault:":8080"`
	BaseURL string `env:"BASE_URL" envDefault:"https://microlink.io"`

	APIEndpoint  string        `env:"API_ENDPOINT" envDefault:"https://api.microlink.io"`
	APIKey       string        `env:"API_KEY"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	HealthcheckURL      string        `env:"HEALTHCHECK_URL" envDefault:"https://api.microlink.io/healthcheck"`
	HealthcheckInterval time.Duration `env:"HEALTHCHECK_INTERVAL" envDefault:"5m"`

	DemoRate  float64 `env:"DEMO_RATE" envDefault:"1"`
	DemoBurst int     `env:"DEMO_BURST" envDefault:"5"`
	// DemoTimeout bounds one demo fetch with its retries. FetchTimeout
	// bounds each attempt.
	DemoTimeout time.Duration `env:"DEMO_TIMEOUT" envDefault:"30s"`

	MaxConnectionsPerIP int `env:"MAX_CONNECTIONS_PER_IP" envDefault:"20"`
	MaxSessions         int `env:"MAX_SESSIONS" envDefault:"10000"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Prefix is prepended to every variable name.
const Prefix = "METASITE_"

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalid)
	case c.APIEndpoint == "":
		return fmt.Errorf("%w: empty api endpoint", ErrInvalid)
	case c.FetchTimeout <= 0:
		return fmt.Errorf("%w: fetch timeout must be positive", ErrInvalid)
	case c.HealthcheckInterval <= 0:
		return fmt.Errorf("%w: healthcheck interval must be positive", ErrInvalid)
	case c.DemoRate <= 0 || c.DemoBurst <= 0:
		return fmt.Errorf("%w: demo rate and burst must be positive", ErrInvalid)
	case c.DemoTimeout < c.FetchTimeout:
		return fmt.Errorf("%w: demo timeout %v is shorter than fetch timeout %v", ErrInvalid, c.DemoTimeout, c.FetchTimeout)
	}
	return nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
