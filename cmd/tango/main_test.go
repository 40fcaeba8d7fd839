package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tango/internal/config"
	"github.com/verte-zerg/tango/internal/model"
)

func TestApplyStringConfigFlagWins(t *testing.T) {
	var target string
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&target, "category", "", "")
	fromFile := "adjetivo"

	applyStringConfig(cmd, "category", &target, &fromFile)
	if target != "adjetivo" {
		t.Fatalf("expected config value, got %q", target)
	}

	if err := cmd.Flags().Set("category", "verbo"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyStringConfig(cmd, "category", &target, &fromFile)
	if target != "verbo" {
		t.Fatalf("expected flag to win, got %q", target)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.Config
		wantErr string
	}{
		{"ok", model.Config{CorpusDir: "/tmp", Count: 10}, ""},
		{"negative count", model.Config{CorpusDir: "/tmp", Count: -1}, "--count"},
		{"bad reshow", model.Config{CorpusDir: "/tmp", Reshow: "twice"}, "--reshow"},
		{"no corpus dir", model.Config{}, "--corpus-dir"},
	}
	for _, tt := range tests {
		err := validateConfig(tt.cfg)
		if tt.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Fatalf("%s: expected error naming %s, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestBuildPracticeConfigRejectsUnknownCategory(t *testing.T) {
	practiceCategory, practiceMode = "sustantivo", ""
	t.Cleanup(func() { practiceCategory = "" })
	if _, err := buildPracticeConfig(); err == nil || !strings.Contains(err.Error(), "--category") {
		t.Fatalf("expected category error, got %v", err)
	}
}

func TestDefaultConfigTemplateUncommentedDecodes(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") && strings.Contains(trimmed, " = ") {
			line = strings.TrimPrefix(trimmed, "# ")
		}
		lines = append(lines, line)
	}
	var cfg config.FileConfig
	if _, err := toml.Decode(strings.Join(lines, "\n"), &cfg); err != nil {
		t.Fatalf("uncommented template must decode: %v", err)
	}
	if cfg.Practice.Count == nil || *cfg.Practice.Count != 10 {
		t.Fatalf("expected count 10, got %v", cfg.Practice.Count)
	}
	if cfg.Ledger.OnSaveError == nil || *cfg.Ledger.OnSaveError != "fail" {
		t.Fatalf("expected on-save-error fail, got %v", cfg.Ledger.OnSaveError)
	}
}

func TestWriteCategories(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "verbos.json"), []byte(`[{"id":"v1"},{"id":"v2"}]`), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	var buf bytes.Buffer
	if err := writeCategories(&buf, dir); err != nil {
		t.Fatalf("write categories: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2 cards") || !strings.Contains(out, "missing") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestLoadAllCardsSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "adverbios.json"), []byte(`[{"id":"a1","adverbio":"もう"}]`), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	cards := loadAllCards(dir)
	if len(cards) != 1 || cards[0].Category != model.CategoryAdverb {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}
