package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/internalerr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("empty path should load defaults: %v", err)
	}
	if cfg.MaxCandidates != Default().MaxCandidates {
		t.Errorf("expected default max_candidates, got %d", cfg.MaxCandidates)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, "score_floor: 0.25\nmax_links_per_page: 8\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ScoreFloor != 0.25 {
		t.Errorf("override lost: score_floor=%f", cfg.ScoreFloor)
	}
	if cfg.MaxLinksPerPage != 8 {
		t.Errorf("override lost: max_links_per_page=%d", cfg.MaxLinksPerPage)
	}
	if cfg.BaseLinksPerPage != Default().BaseLinksPerPage {
		t.Errorf("untouched key should keep default, got %d", cfg.BaseLinksPerPage)
	}
	if len(cfg.Weights) != len(Default().Weights) {
		t.Errorf("weight map should keep default entries, got %d", len(cfg.Weights))
	}
}

func TestLoadMergesPartialWeightMap(t *testing.T) {
	path := writeConfig(t, "weights:\n  f_title_bm25: 3.0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Weight("f_title_bm25") != 3.0 {
		t.Errorf("overridden weight lost: %f", cfg.Weight("f_title_bm25"))
	}
	if cfg.Weight("f_semantic") != Default().Weight("f_semantic") {
		t.Errorf("unlisted weight should keep default, got %f", cfg.Weight("f_semantic"))
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "scor_floor: 0.25\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("misspelled key should be a fatal configuration error")
	}
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("missing file should error")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max_candidates", func(c *Config) { c.MaxCandidates = 0 }},
		{"zero max_anchors_per_target", func(c *Config) { c.MaxAnchorsPerTarget = 0 }},
		{"max below base links", func(c *Config) { c.MaxLinksPerPage = 1; c.BaseLinksPerPage = 3 }},
		{"score floor above one", func(c *Config) { c.ScoreFloor = 1.5 }},
		{"negative half life", func(c *Config) { c.FreshnessHalfLifeDays = -1 }},
		{"unknown depth shape", func(c *Config) { c.ClickDepthShape = "quadratic" }},
		{"zero max click depth", func(c *Config) { c.MaxClickDepth = 0 }},
		{"unknown anchor variant", func(c *Config) { c.AnchorVariantPriority = []string{"exact", "fuzzy"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestWeightAndPenaltyUnconfiguredZero(t *testing.T) {
	cfg := Default()
	if cfg.Weight("f_unknown") != 0 {
		t.Error("unconfigured weight should be 0")
	}
	if cfg.Penalty("f_unknown") != 0 {
		t.Error("unconfigured penalty should be 0")
	}
}
