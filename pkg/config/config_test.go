package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
engine:
  symbols: [AAPL, MSFT]
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "development" {
		t.Fatalf("expected default environment, got %q", c.Environment)
	}
	if c.Logging.Level != "info" {
		t.Fatalf("expected default log level, got %q", c.Logging.Level)
	}
	if c.Cache.Backend != "memory" {
		t.Fatalf("expected default cache backend, got %q", c.Cache.Backend)
	}
	if c.Engine.HistoryBars != 600 {
		t.Fatalf("expected default history bars, got %d", c.Engine.HistoryBars)
	}
}

func TestLoadRequiresSymbols(t *testing.T) {
	path := writeConfig(t, `
environment: development
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for missing symbols")
	}
}

func TestLoadRejectsBadBackend(t *testing.T) {
	path := writeConfig(t, `
engine:
  symbols: [BTC]
cache:
  backend: memcached
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for unknown cache backend")
	}
}

func TestLoadWithEnvOverride(t *testing.T) {
	path := writeConfig(t, `
engine:
  symbols: [AAPL]
`)
	t.Setenv("SYMBOLS", "ETH,SOL")
	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Engine.Symbols) != 2 || c.Engine.Symbols[0] != "ETH" {
		t.Fatalf("expected env symbols, got %v", c.Engine.Symbols)
	}
}
