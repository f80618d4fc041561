// Package config holds the immutable parameter object for a pipeline run:
// weights, penalties, budgets, thresholds, and language policy. A Config is
// loaded once per invocation and never modified afterwards.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/internalerr"
)

// Click-depth decay shapes for f_click_depth.
const (
	DepthShapeHarmonic = "harmonic" // 1/(1+depth)
	DepthShapeLinear   = "linear"   // 1 - depth/max_click_depth
)

// Config supplies every threshold, weight, penalty, and budget the pipeline
// references. Zero values are filled from Default before user overrides are
// applied, so a partial document is always complete by load time.
type Config struct {
	TitleBM25Norm         float64            `yaml:"title_bm25_norm"`
	BodyBM25Norm          float64            `yaml:"body_bm25_norm"`
	MaxCandidates         int                `yaml:"max_candidates"`
	MinRecallScore        float64            `yaml:"min_recall_score"`
	ReviewBias            float64            `yaml:"review_bias"`
	BaseLinksPerPage      int                `yaml:"base_links_per_page"`
	MaxLinksPerPage       int                `yaml:"max_links_per_page"`
	MaxAnchorsPerTarget   int                `yaml:"max_anchors_per_target"`
	ProductWordcountMin   int                `yaml:"product_wordcount_min"`
	QualityWordcountNorm  float64            `yaml:"quality_wordcount_norm"`
	FreshnessHalfLifeDays float64            `yaml:"freshness_half_life_days"`
	FreshnessFloor        float64            `yaml:"freshness_floor"`
	MaxClickDepth         int                `yaml:"max_click_depth"`
	ClickDepthShape       string             `yaml:"click_depth_shape"`
	InboundDepthDecay     float64            `yaml:"inbound_depth_decay"`
	AuthorityNorm         float64            `yaml:"authority_norm"`
	AllowCrossLanguage    bool               `yaml:"allow_cross_language"`
	ScoreFloor            float64            `yaml:"score_floor"`
	Weights               map[string]float64 `yaml:"weights"`
	Penalties             map[string]float64 `yaml:"penalties"`
	EntityWeights         map[string]float64 `yaml:"entity_weights"`
	AnchorVariantPriority []string           `yaml:"anchor_variant_priority"`
}

// Default returns the baseline configuration. The stated numeric values are
// calibration defaults; every one of them can be overridden by the loaded
// document.
func Default() Config {
	return Config{
		TitleBM25Norm:         8.0,
		BodyBM25Norm:          12.0,
		MaxCandidates:         120,
		MinRecallScore:        0.05,
		ReviewBias:            1.2,
		BaseLinksPerPage:      3,
		MaxLinksPerPage:       12,
		MaxAnchorsPerTarget:   3,
		ProductWordcountMin:   250,
		QualityWordcountNorm:  800,
		FreshnessHalfLifeDays: 90,
		FreshnessFloor:        0.1,
		MaxClickDepth:         6,
		ClickDepthShape:       DepthShapeHarmonic,
		InboundDepthDecay:     0.5,
		AuthorityNorm:         50,
		AllowCrossLanguage:    false,
		ScoreFloor:            0.4,
		Weights: map[string]float64{
			"f_title_bm25":        1.4,
			"f_body_bm25":         1.1,
			"f_semantic":          1.2,
			"f_entity_overlap":    1.5,
			"f_tag_overlap":       0.9,
			"f_taxonomy_distance": 0.7,
			"f_authority":         0.8,
			"f_click_depth":       0.7,
			"f_conversion_intent": 0.6,
			"f_freshness":         0.4,
			"f_lang_match":        0.5,
			"f_quality":           0.8,
		},
		Penalties: map[string]float64{
			"f_duplicate_risk": 2.5,
			"f_lang_mismatch":  1.0,
		},
		EntityWeights: map[string]float64{
			"product":  1.0,
			"brand":    0.8,
			"category": 0.6,
			"generic":  0.3,
		},
		AnchorVariantPriority: []string{"exact", "entity", "brand", "partial"},
	}
}

// Load reads a YAML configuration document and merges it over the defaults.
// An empty path returns the defaults. Unrecognized keys are a fatal
// configuration error: weights and budgets are load-bearing for every
// downstream decision, so a typo must not silently fall back.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that would corrupt downstream decisions.
func (c Config) Validate() error {
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("%w: max_candidates must be positive", internalerr.ErrInvalidConfig)
	}
	if c.MaxAnchorsPerTarget <= 0 {
		return fmt.Errorf("%w: max_anchors_per_target must be positive", internalerr.ErrInvalidConfig)
	}
	if c.BaseLinksPerPage < 0 || c.MaxLinksPerPage < c.BaseLinksPerPage {
		return fmt.Errorf("%w: link budget bounds are inconsistent", internalerr.ErrInvalidConfig)
	}
	if c.ScoreFloor < 0 || c.ScoreFloor > 1 {
		return fmt.Errorf("%w: score_floor must lie in [0,1]", internalerr.ErrInvalidConfig)
	}
	if c.FreshnessHalfLifeDays <= 0 {
		return fmt.Errorf("%w: freshness_half_life_days must be positive", internalerr.ErrInvalidConfig)
	}
	if c.ClickDepthShape != DepthShapeHarmonic && c.ClickDepthShape != DepthShapeLinear {
		return fmt.Errorf("%w: unknown click_depth_shape %q", internalerr.ErrInvalidConfig, c.ClickDepthShape)
	}
	if c.MaxClickDepth <= 0 {
		return fmt.Errorf("%w: max_click_depth must be positive", internalerr.ErrInvalidConfig)
	}
	known := map[string]struct{}{"exact": {}, "entity": {}, "brand": {}, "partial": {}}
	for _, v := range c.AnchorVariantPriority {
		if _, ok := known[v]; !ok {
			return fmt.Errorf("%w: unknown anchor variant %q in anchor_variant_priority", internalerr.ErrInvalidConfig, v)
		}
	}
	return nil
}

// Weight returns the scoring weight for a feature, 0 when unconfigured.
func (c Config) Weight(feature string) float64 {
	return c.Weights[feature]
}

// Penalty returns the penalty weight for a feature, 0 when unconfigured.
func (c Config) Penalty(feature string) float64 {
	return c.Penalties[feature]
}
