// Package guardrails implements the hard, non-configurable-by-score
// exclusion rules and the soft risk flags attached to surviving
// suggestions. Hard drops apply before and independently of scoring.
package guardrails

import (
	"net/url"
	"strings"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/corpus"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/textutil"
)

// HardDrop reports whether the target must never be suggested for the
// source: self-links, redirected or canonicalized targets, unhealthy status
// codes, login/cart duplicates, tracking-parameter URLs, and disallowed
// cross-language pairs.
func HardDrop(src, target page.Page, cfg config.Config) bool {
	if target.URL == src.URL {
		return true
	}
	if target.Metadata.IsRedirect || target.StatusCode >= 300 {
		return true
	}
	if target.CanonicalURL != "" && target.CanonicalURL != target.URL {
		return true
	}
	if target.CanonicalURL != "" && src.CanonicalURL != "" && target.CanonicalURL == src.CanonicalURL {
		return true
	}
	if target.Metadata.IsLogin || target.Metadata.IsCart {
		return true
	}
	if HasTrackingParams(target) {
		return true
	}
	_, drop := CrossLanguage(src, target, cfg)
	return drop
}

// CrossLanguage evaluates the language policy for a pair. A cross-language
// target is dropped outright when cross-language linking is disallowed;
// when allowed it survives only with at least one shared tag, and the
// mismatch marker feeds the downstream penalty and risk flag.
func CrossLanguage(src, target page.Page, cfg config.Config) (mismatch, drop bool) {
	if src.Language == "" || target.Language == "" || src.Language == target.Language {
		return false, false
	}
	if !cfg.AllowCrossLanguage {
		return true, true
	}
	if textutil.Jaccard(src.Tags, target.Tags) > 0 {
		return true, false
	}
	return true, true
}

// HasTrackingParams reports whether the target URL carries tracking or
// session query parameters, making it a duplicate of its clean form.
func HasTrackingParams(p page.Page) bool {
	if len(p.QueryParams) > 0 {
		for name := range p.QueryParams {
			if trackingParam(name) {
				return true
			}
		}
		return false
	}
	if !strings.Contains(p.URL, "?") {
		return false
	}
	parsed, err := url.Parse(p.URL)
	if err != nil {
		return false
	}
	for name := range parsed.Query() {
		if trackingParam(name) {
			return true
		}
	}
	return false
}

func trackingParam(name string) bool {
	name = strings.ToLower(name)
	return strings.HasPrefix(name, "utm") ||
		strings.HasPrefix(name, "ref") ||
		strings.HasPrefix(name, "session") ||
		name == "sid" || name == "phpsessid" || name == "replytocom"
}

// Flags returns the soft risk flags for a surviving pair: a permitted
// cross-language link, a thin product target, or an anchor text already
// used elsewhere on the page. Flags never drop the suggestion.
func Flags(src, target *corpus.Stats, selected []page.Anchor, usedAnchorTexts map[string]struct{}, cfg config.Config) []page.RiskFlag {
	var flags []page.RiskFlag

	if mismatch, drop := CrossLanguage(src.Page, target.Page, cfg); mismatch && !drop {
		flags = append(flags, page.RiskLangMismatch)
	}

	if target.Page.Type == page.TypeProduct && target.Words < cfg.ProductWordcountMin {
		flags = append(flags, page.RiskThinTarget)
	}

	for _, a := range selected {
		if _, used := usedAnchorTexts[strings.ToLower(a.Text)]; used {
			flags = append(flags, page.RiskDupAnchor)
			break
		}
	}

	return flags
}
