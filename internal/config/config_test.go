package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.Addr)
	}
	if cfg.HealthcheckInterval != 5*time.Minute {
		t.Errorf("expected 5m, got %v", cfg.HealthcheckInterval)
	}
	if cfg.FetchTimeout != 10*time.Second || cfg.CacheTTL != 10*time.Minute {
		t.Errorf("unexpected timeouts %v %v", cfg.FetchTimeout, cfg.CacheTTL)
	}
	if cfg.DemoRate != 1 || cfg.DemoBurst != 5 {
		t.Errorf("unexpected demo limits %v/%d", cfg.DemoRate, cfg.DemoBurst)
	}
	if cfg.DemoTimeout != 30*time.Second {
		t.Errorf("expected 30s demo timeout, got %v", cfg.DemoTimeout)
	}
	if !cfg.OTelEnabled || cfg.OTelEndpoint != "" {
		t.Errorf("tracing should be enabled without an endpoint by default")
	}
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"METASITE_ADDR":                 ":9000",
		"METASITE_API_KEY":              "secret",
		"METASITE_HEALTHCHECK_INTERVAL": "30s",
		"METASITE_LOG_JSON":             "true",
		"ADDR":                          ":1",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("unprefixed variables must be ignored, got %q", cfg.Addr)
	}
	if cfg.APIKey != "secret" || !cfg.LogJSON || cfg.HealthcheckInterval != 30*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadFromParseError(t *testing.T) {
	_, err := LoadFrom(map[string]string{"METASITE_FETCH_TIMEOUT": "soon"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	_, err := LoadFrom(map[string]string{"METASITE_DEMO_BURST": "0"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadFromDemoTimeoutShorterThanAttempt(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"METASITE_FETCH_TIMEOUT": "20s",
		"METASITE_DEMO_TIMEOUT":  "5s",
	})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	cfg, err := LoadFrom(map[string]string{"METASITE_DEMO_TIMEOUT": "1m"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DemoTimeout != time.Minute {
		t.Errorf("expected 1m, got %v", cfg.DemoTimeout)
	}
}

func TestLoadReadsProcessEnv(t *testing.T) {
	t.Setenv("METASITE_BASE_URL", "https://example.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://example.test" {
		t.Errorf("expected env override, got %q", cfg.BaseURL)
	}
}
