package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Practice.Count != nil || cfg.Serve.Addr != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[practice]
category = "jlpt"
mode = "smart"
count = 15
reshow = "every"

[corpus]
dir = "/tmp/vocab"

[ledger]
on-save-error = "warn"

[serve]
addr = ":9000"

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Category == nil || *cfg.Practice.Category != "jlpt" {
		t.Fatalf("unexpected category: %v", cfg.Practice.Category)
	}
	if cfg.Practice.Count == nil || *cfg.Practice.Count != 15 {
		t.Fatalf("unexpected count: %v", cfg.Practice.Count)
	}
	if cfg.Ledger.OnSaveError == nil || *cfg.Ledger.OnSaveError != "warn" {
		t.Fatalf("unexpected on-save-error: %v", cfg.Ledger.OnSaveError)
	}
	if cfg.Serve.Addr == nil || *cfg.Serve.Addr != ":9000" {
		t.Fatalf("unexpected addr: %v", cfg.Serve.Addr)
	}
	if cfg.Log.Format == nil || *cfg.Log.Format != "json" {
		t.Fatalf("unexpected log format: %v", cfg.Log.Format)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLedgerPathBesideCorpus(t *testing.T) {
	got := LedgerPath(filepath.Join("data", "vocab"))
	want := filepath.Join("data", "vocab", "stats.json")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
