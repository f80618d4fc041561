// Package features converts the raw per-pair signals into the normalized
// feature mapping consumed by the scorer. Every feature the scorer may
// reference is always present; a missing underlying signal yields 0, never
// an absent key, and zero normalization denominators fail closed to 0.
package features

import (
	"math"
	"time"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/candidates"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/corpus"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

// Feature names. Weights and penalties in the configuration refer to these
// keys; the scorer itself never hard-wires any of them.
const (
	TitleBM25        = "f_title_bm25"
	BodyBM25         = "f_body_bm25"
	Semantic         = "f_semantic"
	EntityOverlap    = "f_entity_overlap"
	TagOverlap       = "f_tag_overlap"
	TaxonomyDistance = "f_taxonomy_distance"
	Authority        = "f_authority"
	ClickDepth       = "f_click_depth"
	ConversionIntent = "f_conversion_intent"
	Freshness        = "f_freshness"
	DuplicateRisk    = "f_duplicate_risk"
	LangMatch        = "f_lang_match"
	LangMismatch     = "f_lang_mismatch"
	Quality          = "f_quality"
)

// Names lists every feature the extractor emits, in a fixed order.
func Names() []string {
	return []string{
		TitleBM25, BodyBM25, Semantic, EntityOverlap, TagOverlap,
		TaxonomyDistance, Authority, ClickDepth, ConversionIntent,
		Freshness, DuplicateRisk, LangMatch, LangMismatch, Quality,
	}
}

// Extract computes the full feature mapping for a candidate pair. All
// non-boolean values lie in [0,1]. Freshness is measured against the
// supplied as-of time, never the wall clock.
func Extract(src *corpus.Stats, pair candidates.Pair, ctx *corpus.Context, cfg config.Config, asOf time.Time) map[string]float64 {
	target := pair.Target
	f := make(map[string]float64, 14)

	f[TitleBM25] = normalize(pair.TitleBM25, cfg.TitleBM25Norm)
	f[BodyBM25] = normalize(pair.BodyBM25, cfg.BodyBM25Norm)
	f[Semantic] = clamp(pair.Semantic)
	f[EntityOverlap] = clamp(pair.EntityOverlap)
	f[TagOverlap] = clamp(pair.TagOverlap)
	f[TaxonomyDistance] = taxonomyDistance(src.Page.TaxonomyPath, target.Page.TaxonomyPath)
	f[Authority] = authority(target.Page.Authority, ctx.MaxAuthority, cfg.AuthorityNorm)
	f[ClickDepth] = clickDepth(target.Page.ClickDepth, cfg)
	f[ConversionIntent] = conversionIntent(target.Page.Type)
	f[Freshness] = freshness(target.Page, cfg, asOf)
	f[DuplicateRisk] = duplicateRisk(src, target.Page.URL)
	if pair.CrossLanguage {
		f[LangMatch] = 0
		f[LangMismatch] = 1
	} else {
		f[LangMatch] = 1
		f[LangMismatch] = 0
	}
	f[Quality] = quality(target, cfg)

	return f
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalize(v, scale float64) float64 {
	if scale == 0 {
		return 0
	}
	return clamp(v / scale)
}

// taxonomyDistance is the shared root-first path prefix depth over the
// longer path's depth.
func taxonomyDistance(source, target []string) float64 {
	if len(source) == 0 || len(target) == 0 {
		return 0
	}
	shared := 0
	for shared < len(source) && shared < len(target) && source[shared] == target[shared] {
		shared++
	}
	longer := len(source)
	if len(target) > longer {
		longer = len(target)
	}
	return float64(shared) / float64(longer)
}

// authority normalizes against the corpus maximum, falling back to a
// configured constant when the corpus carries no authority data at all.
func authority(value, corpusMax, fallbackNorm float64) float64 {
	norm := corpusMax
	if norm == 0 {
		norm = fallbackNorm
	}
	return normalize(value, norm)
}

// clickDepth is 1 at depth 0 and decays monotonically with depth; the shape
// is configurable.
func clickDepth(depth int, cfg config.Config) float64 {
	if depth < 0 {
		depth = 0
	}
	switch cfg.ClickDepthShape {
	case config.DepthShapeLinear:
		return clamp(1 - float64(depth)/float64(cfg.MaxClickDepth))
	default:
		return 1 / (1 + float64(depth))
	}
}

func conversionIntent(t page.Type) float64 {
	switch t {
	case page.TypeReview, page.TypeCategory, page.TypeProduct:
		return 1
	default:
		return 0
	}
}

// freshness applies exponential half-life decay relative to the as-of time,
// floored at the configured permissive minimum. A page with no usable
// timestamp scores 0.
func freshness(p page.Page, cfg config.Config, asOf time.Time) float64 {
	ts := p.UpdateDate
	if ts.IsZero() {
		ts = p.PublishDate
	}
	if ts.IsZero() {
		return 0
	}
	ageDays := asOf.Sub(ts).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}
	decayed := math.Pow(0.5, ageDays/cfg.FreshnessHalfLifeDays)
	if decayed < cfg.FreshnessFloor {
		return cfg.FreshnessFloor
	}
	return clamp(decayed)
}

func duplicateRisk(src *corpus.Stats, targetURL string) float64 {
	if _, linked := src.Outbound[targetURL]; linked {
		return 1
	}
	return 0
}

// quality blends word-count normalization with the crawler's content score
// and schema signals when present.
func quality(target *corpus.Stats, cfg config.Config) float64 {
	wcNorm := normalize(float64(target.Words), cfg.QualityWordcountNorm)

	contentScore := target.Page.ContentScore
	if len(target.Page.SchemaSignals) > 0 && contentScore < 0.6 {
		contentScore = 0.6
	}
	if contentScore <= 0 {
		return wcNorm
	}
	return clamp((wcNorm + clamp(contentScore)) / 2)
}
