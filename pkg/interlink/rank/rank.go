// Package rank combines the feature mapping into a single probability-like
// score through a configurable logistic model. The weight and penalty
// associations live entirely in the configuration, so adding a feature only
// requires extending the mapping and the extractor, never this package.
package rank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
)

// Logistic computes the sigmoid with the argument clamped so extreme linear
// combinations cannot overflow.
func Logistic(x float64) float64 {
	if x > 60 {
		x = 60
	} else if x < -60 {
		x = -60
	}
	return 1.0 / (1.0 + math.Exp(-x))
}

// Score returns sigmoid(Σ weight·f − Σ penalty·f) in (0,1). Features are
// accumulated in sorted name order: float addition is not associative, so a
// fixed order is what keeps the score bit-identical across runs.
func Score(feats map[string]float64, cfg config.Config) float64 {
	names := make([]string, 0, len(feats))
	for name := range feats {
		names = append(names, name)
	}
	sort.Strings(names)

	linear := 0.0
	for _, name := range names {
		linear += cfg.Weight(name) * feats[name]
		linear -= cfg.Penalty(name) * feats[name]
	}
	return Logistic(linear)
}

var reasonDescriptors = map[string]string{
	"f_title_bm25":        "strong title match",
	"f_body_bm25":         "content overlap",
	"f_semantic":          "semantic similarity",
	"f_entity_overlap":    "shared entities",
	"f_tag_overlap":       "tag overlap",
	"f_taxonomy_distance": "related taxonomy",
	"f_authority":         "authoritative target",
	"f_click_depth":       "shallow depth",
	"f_conversion_intent": "conversion intent",
	"f_freshness":         "recent update",
	"f_lang_match":        "language match",
	"f_quality":           "high-quality target",
}

// Reason summarizes the dominant contributing features as a short
// human-readable explanation. Ties break by feature name so the wording is
// stable across runs.
func Reason(feats map[string]float64, cfg config.Config, topK int) string {
	type contribution struct {
		weighted float64
		name     string
		value    float64
	}

	var contribs []contribution
	for name, value := range feats {
		w := cfg.Weight(name)
		if w > 0 && value > 0 {
			contribs = append(contribs, contribution{weighted: w * value, name: name, value: value})
		}
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].weighted != contribs[j].weighted {
			return contribs[i].weighted > contribs[j].weighted
		}
		return contribs[i].name < contribs[j].name
	})

	var fragments []string
	for _, c := range contribs {
		if len(fragments) >= topK {
			break
		}
		descriptor, ok := reasonDescriptors[c.name]
		if !ok {
			continue
		}
		fragments = append(fragments, fmt.Sprintf("%s %s", qualifier(c.value), descriptor))
	}
	return strings.Join(fragments, "; ")
}

func qualifier(value float64) string {
	switch {
	case value >= 0.85:
		return "excellent"
	case value >= 0.6:
		return "strong"
	default:
		return "good"
	}
}
