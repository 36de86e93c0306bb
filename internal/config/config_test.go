package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"dubline/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Board.Name != "True Crime Video Dubs" {
		t.Errorf("board name = %q", cfg.Board.Name)
	}
	if cfg.Payment.Rates.Narrator != 3.00 || cfg.Payment.Rates.SpeakerFemale != 1.25 {
		t.Errorf("rates = %+v", cfg.Payment.Rates)
	}
	if cfg.Duration.BudgetSeconds != 25 || cfg.Duration.RequestTimeoutSeconds != 8 || cfg.Duration.MaxLinks != 3 {
		t.Errorf("duration = %+v", cfg.Duration)
	}
	cutoff, err := cfg.CutoffDate()
	if err != nil {
		t.Fatalf("cutoff: %v", err)
	}
	if cutoff.Format("2006-01-02") != "2026-01-15" {
		t.Errorf("cutoff = %s", cutoff)
	}
	start, err := cfg.RollupStartMonth()
	if err != nil {
		t.Fatalf("rollup start: %v", err)
	}
	if start.Format("2006-01") != "2026-02" {
		t.Errorf("rollup start = %s", start)
	}
	if _, ok := cfg.Speakers["Lucas"]; !ok {
		t.Error("default speaker profiles missing")
	}
}

func TestGenerateDefaultRoundTrips(t *testing.T) {
	cfg, err := config.FromYAML([]byte(config.GenerateDefault()))
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if len(cfg.Roles.Narrators) == 0 || cfg.Roles.Narrators[0] != "lucas" {
		t.Errorf("narrators = %v", cfg.Roles.Narrators)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty board name", func(c *config.Config) { c.Board.Name = "" }},
		{"empty source list", func(c *config.Config) { c.Board.SourceList = "" }},
		{"no narrators", func(c *config.Config) { c.Roles.Narrators = nil }},
		{"bad cutoff", func(c *config.Config) { c.Payment.Cutoff = "15.01.2026" }},
		{"bad rollup start", func(c *config.Config) { c.Payment.RollupStart = "February" }},
		{"zero rate", func(c *config.Config) { c.Payment.Rates.Narrator = 0 }},
		{"missing express bump", func(c *config.Config) { c.Payment.Rates.ExpressBump = 0 }},
		{"zero budget", func(c *config.Config) { c.Duration.BudgetSeconds = 0 }},
		{"zero max links", func(c *config.Config) { c.Duration.MaxLinks = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := config.Default()
			c.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Board.Name == "" {
		t.Fatal("defaults not applied")
	}

	custom := []byte(config.GenerateDefault())
	custom = append(custom, []byte("\n")...)
	if err := os.WriteFile(config.Path(dir), custom, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadOptional(dir); err != nil {
		t.Fatalf("load written config: %v", err)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := config.Load(t.TempDir()); err == nil {
		t.Fatal("expected an error for a missing config")
	}
}

func TestPath(t *testing.T) {
	if got := config.Path(""); got != filepath.Join(".", "dubline.yml") {
		t.Errorf("Path(\"\") = %s", got)
	}
	if got := config.Path("/ws"); got != "/ws/dubline.yml" {
		t.Errorf("Path(/ws) = %s", got)
	}
}
