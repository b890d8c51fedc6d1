package config

import (
	"strings"
	"testing"
)

func TestDefaultFillsUnsetFields(t *testing.T) {
	r := strings.NewReader(`
[registry]
token = "secret"
`)
	cfg, err := Read(r)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Registry.URL != DefaultRegistryURL {
		t.Errorf("expected default URL %q, got %q", DefaultRegistryURL, cfg.Registry.URL)
	}
	if cfg.Registry.Token != "secret" {
		t.Errorf("expected token to be read from file, got %q", cfg.Registry.Token)
	}
	if cfg.Solve.Concurrency != DefaultConcurrency {
		t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, cfg.Solve.Concurrency)
	}
}

func TestReadOverridesDefaults(t *testing.T) {
	r := strings.NewReader(`
[registry]
url = "https://mirror.example.com"

[solve]
concurrency = 4
downgrade = true
`)
	cfg, err := Read(r)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Registry.URL != "https://mirror.example.com" {
		t.Errorf("expected overridden URL, got %q", cfg.Registry.URL)
	}
	if cfg.Solve.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.Solve.Concurrency)
	}
	if !cfg.Solve.Downgrade {
		t.Error("expected downgrade to be true")
	}
}

func TestReadMalformedTOML(t *testing.T) {
	r := strings.NewReader(`not = [valid toml`)
	if _, err := Read(r); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}
