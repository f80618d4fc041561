// Package placement assigns placement hints to suggestions and computes the
// per-page link budget.
package placement

import (
	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/corpus"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

// Hint chooses where the link belongs: hub and pillar targets open the
// document, conversion-intent targets and everything else sit in the body,
// and reference material closes it.
func Hint(target *corpus.Stats) page.Hint {
	if target.Page.Metadata.IsPillar || target.Page.Type == page.TypeCategory {
		return page.HintIntro
	}
	if target.Page.Type == page.TypeProduct || target.Page.Type == page.TypeReview {
		return page.HintBody
	}
	if target.Page.Metadata.IsReference {
		return page.HintConclusion
	}
	return page.HintBody
}

// LinkBudget returns min(base + floor(words/500), max) for the source page.
func LinkBudget(src *corpus.Stats, cfg config.Config) int {
	budget := cfg.BaseLinksPerPage + src.Words/500
	if budget > cfg.MaxLinksPerPage {
		budget = cfg.MaxLinksPerPage
	}
	return budget
}
