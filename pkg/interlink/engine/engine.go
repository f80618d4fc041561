// Package engine coordinates the linking pipeline: candidate generation,
// feature extraction, scoring, guardrails, anchor selection, placement, and
// the sibling/hub priority correction. Every run is a pure function of
// (source, corpus, config, as-of time).
package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/anchors"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/candidates"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/corpus"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/features"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/guardrails"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/internalerr"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/placement"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/rank"
)

// Candidate roles for the money-page priority rule.
type role int

const (
	roleOther role = iota
	roleSibling
	roleParent
)

// Engine runs the linking pipeline under one immutable configuration.
type Engine struct {
	cfg config.Config
}

// New validates the configuration and returns an engine. Configuration
// errors are fatal before any page is processed.
func New(cfg config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Suggest returns ordered link suggestions for the source page against the
// corpus, along with warnings for corpus entries that failed validation.
func (e *Engine) Suggest(src page.Page, corpusPages []page.Page, asOf time.Time) ([]page.Suggestion, []corpus.Warning, error) {
	if err := page.Validate(src); err != nil {
		return nil, nil, fmt.Errorf("source page: %w", err)
	}
	ctx, warnings := corpus.Build(corpusPages)
	if ctx.TotalDocs == 0 {
		return nil, warnings, internalerr.ErrEmptyCorpus
	}
	srcStats := ctx.SourceStats(src)
	return e.suggest(srcStats, ctx, asOf), warnings, nil
}

// evaluated is one candidate that survived scoring and anchor selection.
type evaluated struct {
	target  *corpus.Stats
	feats   map[string]float64
	score   float64
	anchors []page.Anchor
	hint    page.Hint
	reason  string
	role    role
}

// evaluate runs candidate generation, feature extraction, scoring, and
// anchor selection for one source and returns the survivors in descending
// score order.
func (e *Engine) evaluate(src *corpus.Stats, ctx *corpus.Context, asOf time.Time) []evaluated {
	pairs := candidates.Generate(src, ctx, e.cfg)

	out := make([]evaluated, 0, len(pairs))
	for _, pair := range pairs {
		feats := features.Extract(src, pair, ctx, e.cfg, asOf)
		score := rank.Score(feats, e.cfg)
		if score < e.cfg.ScoreFloor {
			continue
		}
		selected := anchors.Select(src, pair.Target, e.cfg)
		if len(selected) == 0 {
			continue
		}
		out = append(out, evaluated{
			target:  pair.Target,
			feats:   feats,
			score:   score,
			anchors: selected,
			hint:    placement.Hint(pair.Target),
			reason:  rank.Reason(feats, e.cfg, 2),
			role:    candidateRole(src.Page, pair.Target.Page),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].target.Page.URL < out[j].target.Page.URL
	})
	return out
}

// suggest runs the full pipeline and applies the link budget and the
// sibling/hub priority correction.
func (e *Engine) suggest(src *corpus.Stats, ctx *corpus.Context, asOf time.Time) []page.Suggestion {
	pool := e.evaluate(src, ctx, asOf)
	suggestions, _ := e.selectFromPool(src, pool)
	return suggestions
}

// selectFromPool truncates the ranked pool to the link budget, attaches
// risk flags, and enforces the sibling and hub presence rules. It also
// returns the scores of pool entries left unselected, for dry-run metrics.
func (e *Engine) selectFromPool(src *corpus.Stats, pool []evaluated) ([]page.Suggestion, []float64) {
	budget := placement.LinkBudget(src, e.cfg)

	var suggestions []page.Suggestion
	usedTargets := make(map[string]struct{})
	usedAnchorTexts := make(map[string]struct{})
	presentRoles := make(map[role]struct{})

	build := func(item evaluated) page.Suggestion {
		flags := guardrails.Flags(src, item.target, item.anchors, usedAnchorTexts, e.cfg)
		return page.Suggestion{
			TargetURL:     item.target.Page.URL,
			Reason:        item.reason,
			Score:         item.score,
			Anchors:       item.anchors,
			PlacementHint: item.hint,
			Rel:           "follow",
			RiskFlags:     flags,
		}
	}
	admit := func(item evaluated) {
		s := build(item)
		suggestions = append(suggestions, s)
		usedTargets[s.TargetURL] = struct{}{}
		for _, a := range s.Anchors {
			usedAnchorTexts[strings.ToLower(a.Text)] = struct{}{}
		}
		presentRoles[item.role] = struct{}{}
	}

	for _, item := range pool {
		if len(suggestions) >= budget {
			break
		}
		if _, dup := usedTargets[item.target.Page.URL]; dup {
			continue
		}
		admit(item)
	}

	// Money-page priority: guarantee one sibling and one hub/parent when the
	// guardrail-passing pool offers one, swapping out the lowest-scoring
	// selection if the budget is already full. The parent rule runs first, so
	// when the budget can only hold one of the two the later sibling swap
	// prevails. The swap never exceeds the budget and never admits a
	// candidate that failed guardrails upstream.
	for _, want := range []role{roleParent, roleSibling} {
		if budget == 0 {
			break
		}
		if _, ok := presentRoles[want]; ok {
			continue
		}
		for _, item := range pool {
			if item.role != want {
				continue
			}
			if _, dup := usedTargets[item.target.Page.URL]; dup {
				continue
			}
			if len(suggestions) < budget {
				admit(item)
			} else {
				lowest := 0
				for i := range suggestions {
					if suggestions[i].Score < suggestions[lowest].Score {
						lowest = i
					}
				}
				delete(usedTargets, suggestions[lowest].TargetURL)
				suggestions[lowest] = build(item)
				usedTargets[item.target.Page.URL] = struct{}{}
				for _, a := range item.anchors {
					usedAnchorTexts[strings.ToLower(a.Text)] = struct{}{}
				}
				presentRoles[item.role] = struct{}{}
			}
			break
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].TargetURL < suggestions[j].TargetURL
	})

	var rejected []float64
	for _, item := range pool {
		if _, ok := usedTargets[item.target.Page.URL]; !ok {
			rejected = append(rejected, item.score)
		}
	}
	return suggestions, rejected
}

// candidateRole classifies a target for the priority rule: a sibling shares
// the source's taxonomy parent without being a category page; a parent is a
// pillar or category hub.
func candidateRole(src, target page.Page) role {
	if target.Metadata.IsPillar || target.Type == page.TypeCategory {
		return roleParent
	}
	if sameTaxonomyParent(src.TaxonomyPath, target.TaxonomyPath) && target.Type != page.TypeCategory {
		return roleSibling
	}
	return roleOther
}

func sameTaxonomyParent(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
