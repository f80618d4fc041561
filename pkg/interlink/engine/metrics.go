package engine

import (
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/corpus"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/internalerr"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

// Metrics aggregates a corpus-wide dry run: every page run as a source
// against the remaining corpus, with no link persisted.
type Metrics struct {
	Coverage            float64                `json:"coverage"`
	OrphanRate          float64                `json:"orphan_rate"`
	AvgClickDepthAfter  float64                `json:"avg_click_depth_after"`
	AnchorDiversity     float64                `json:"anchor_diversity_index"`
	DupTargetRate       float64                `json:"dup_target_rate"`
	MeanScoreSelected   float64                `json:"mean_score_selected"`
	MeanScoreRejected   float64                `json:"mean_score_rejected"`
	LangMismatchRate    float64                `json:"language_mismatch_rate"`
	AnchorVariantCounts map[page.Variant]int64 `json:"anchor_variant_counts"`
}

// Accumulator collects dry-run counts. Merging is associative and
// commutative (sums only), so partial accumulators from concurrent workers
// combine in any order to the same aggregate.
type Accumulator struct {
	Pages                int64
	PagesWithSuggestions int64
	Suggestions          int64
	DuplicateTargets     int64
	LangMismatches       int64
	SelectedScoreSum     float64
	RejectedScoreSum     float64
	RejectedCount        int64
	InboundCounts        map[string]int64
	VariantCounts        map[page.Variant]int64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		InboundCounts: make(map[string]int64),
		VariantCounts: make(map[page.Variant]int64),
	}
}

// Record folds one source page's outcome into the accumulator.
func (a *Accumulator) Record(suggestions []page.Suggestion, rejectedScores []float64) {
	a.Pages++
	if len(suggestions) > 0 {
		a.PagesWithSuggestions++
	}

	seen := make(map[string]struct{}, len(suggestions))
	for _, s := range suggestions {
		a.Suggestions++
		a.SelectedScoreSum += s.Score
		a.InboundCounts[s.TargetURL]++
		for _, anchor := range s.Anchors {
			a.VariantCounts[anchor.Variant]++
		}
		for _, flag := range s.RiskFlags {
			if flag == page.RiskLangMismatch {
				a.LangMismatches++
			}
		}
		if _, dup := seen[s.TargetURL]; dup {
			a.DuplicateTargets++
		}
		seen[s.TargetURL] = struct{}{}
	}

	for _, score := range rejectedScores {
		a.RejectedScoreSum += score
		a.RejectedCount++
	}
}

// Merge folds another accumulator into this one.
func (a *Accumulator) Merge(other *Accumulator) {
	a.Pages += other.Pages
	a.PagesWithSuggestions += other.PagesWithSuggestions
	a.Suggestions += other.Suggestions
	a.DuplicateTargets += other.DuplicateTargets
	a.LangMismatches += other.LangMismatches
	a.SelectedScoreSum += other.SelectedScoreSum
	a.RejectedScoreSum += other.RejectedScoreSum
	a.RejectedCount += other.RejectedCount
	for url, n := range other.InboundCounts {
		a.InboundCounts[url] += n
	}
	for variant, n := range other.VariantCounts {
		a.VariantCounts[variant] += n
	}
}

// Finalize computes the aggregate metrics against the corpus context.
func (a *Accumulator) Finalize(ctx *corpus.Context, inboundDepthDecay float64) Metrics {
	m := Metrics{AnchorVariantCounts: a.VariantCounts}

	if a.Pages > 0 {
		m.Coverage = float64(a.PagesWithSuggestions) / float64(a.Pages)
		m.DupTargetRate = float64(a.DuplicateTargets) / float64(a.Pages)
	}
	if a.Suggestions > 0 {
		m.MeanScoreSelected = a.SelectedScoreSum / float64(a.Suggestions)
		m.LangMismatchRate = float64(a.LangMismatches) / float64(a.Suggestions)
	}
	if a.RejectedCount > 0 {
		m.MeanScoreRejected = a.RejectedScoreSum / float64(a.RejectedCount)
	}

	if ctx.TotalDocs > 0 {
		orphans := 0
		depthSum := 0.0
		for _, url := range ctx.Order {
			inbound := a.InboundCounts[url]
			if inbound == 0 {
				orphans++
			}
			depth := float64(ctx.Stats[url].Page.ClickDepth)
			if inbound > 0 {
				depth -= inboundDepthDecay * float64(inbound)
				if depth < 0 {
					depth = 0
				}
			}
			depthSum += depth
		}
		m.OrphanRate = float64(orphans) / float64(ctx.TotalDocs)
		m.AvgClickDepthAfter = depthSum / float64(ctx.TotalDocs)
	}

	m.AnchorDiversity = variantEntropy(a.VariantCounts)
	return m
}

// variantEntropy is the Shannon entropy of the anchor-variant distribution,
// normalized to [0,1] by the entropy of a uniform distribution over the
// observed variants.
func variantEntropy(counts map[page.Variant]int64) float64 {
	total := int64(0)
	for _, n := range counts {
		total += n
	}
	if total == 0 || len(counts) <= 1 {
		return 0
	}
	entropy := 0.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		entropy -= p * math.Log(p)
	}
	return entropy / math.Log(float64(len(counts)))
}

// DryRun applies the full pipeline across every corpus page as a source
// against the remaining corpus, fanning out across workers. The corpus is
// read-only during the run, so workers need no coordination beyond the
// final merge; merge order cannot affect the aggregate.
func (e *Engine) DryRun(corpusPages []page.Page, asOf time.Time, workers int) (Metrics, []corpus.Warning, error) {
	ctx, warnings := corpus.Build(corpusPages)
	if ctx.TotalDocs == 0 {
		return Metrics{}, warnings, internalerr.ErrEmptyCorpus
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > ctx.TotalDocs && ctx.TotalDocs > 0 {
		workers = ctx.TotalDocs
	}

	partials := make([]*Accumulator, workers)
	var group errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		acc := NewAccumulator()
		partials[w] = acc
		group.Go(func() error {
			for i := w; i < len(ctx.Order); i += workers {
				src := ctx.Stats[ctx.Order[i]]
				pool := e.evaluate(src, ctx, asOf)
				suggestions, rejected := e.selectFromPool(src, pool)
				acc.Record(suggestions, rejected)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Metrics{}, warnings, err
	}

	total := NewAccumulator()
	for _, acc := range partials {
		total.Merge(acc)
	}
	return total.Finalize(ctx, e.cfg.InboundDepthDecay), warnings, nil
}
