// Package candidates implements candidate generation: a recall-oriented,
// deduplicated set of target pages for a source, with raw retrieval signals
// attached for the feature stage.
package candidates

import (
	"sort"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/corpus"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/entities"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/guardrails"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/textutil"
)

// Pair is a (source, target) candidate with its raw, un-normalized signals.
// The generator guarantees at most one Pair per target URL.
type Pair struct {
	Target        *corpus.Stats
	TitleBM25     float64
	BodyBM25      float64
	Semantic      float64
	EntityOverlap float64
	TagOverlap    float64
	Recall        float64
	CrossLanguage bool
}

// Generate returns the ranked candidate pairs for the source page, capped at
// max_candidates. Ties on the combined raw score break by lexicographic
// target URL so identical inputs always produce identical candidate sets.
func Generate(src *corpus.Stats, ctx *corpus.Context, cfg config.Config) []Pair {
	pairs := make([]Pair, 0, len(ctx.Order))

	for _, targetURL := range ctx.Order {
		target := ctx.Stats[targetURL]
		if guardrails.HardDrop(src.Page, target.Page, cfg) {
			continue
		}
		crossLang, _ := guardrails.CrossLanguage(src.Page, target.Page, cfg)

		pair := Pair{
			Target:        target,
			TitleBM25:     textutil.BM25(src.TitleTokens, target.TitleTF, target.TitleLen, ctx.AvgTitleLen, ctx.TitleDF, ctx.TotalDocs),
			BodyBM25:      textutil.BM25(src.BodyTokens, target.BodyTF, target.BodyLen, ctx.AvgBodyLen, ctx.BodyDF, ctx.TotalDocs),
			Semantic:      textutil.Cosine(src.BodyTF, target.BodyTF),
			EntityOverlap: entities.Overlap(src.Entities, target.Entities, cfg.EntityWeights),
			TagOverlap:    textutil.Jaccard(src.Page.Tags, target.Page.Tags),
			CrossLanguage: crossLang,
		}

		recall := pair.TitleBM25 + pair.BodyBM25 + pair.Semantic + pair.EntityOverlap + pair.TagOverlap
		recall *= reviewBias(src.Page, target.Page, cfg)
		if recall <= cfg.MinRecallScore {
			continue
		}
		pair.Recall = recall
		pairs = append(pairs, pair)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Recall != pairs[j].Recall {
			return pairs[i].Recall > pairs[j].Recall
		}
		return pairs[i].Target.Page.URL < pairs[j].Target.Page.URL
	})
	if len(pairs) > cfg.MaxCandidates {
		pairs = pairs[:cfg.MaxCandidates]
	}
	return pairs
}

// reviewBias boosts hub and product targets when the source is a review.
func reviewBias(src, target page.Page, cfg config.Config) float64 {
	if src.Type != page.TypeReview {
		return 1.0
	}
	if target.Type == page.TypeProduct || target.Type == page.TypeCategory || target.Metadata.IsPillar {
		return cfg.ReviewBias
	}
	return 1.0
}
