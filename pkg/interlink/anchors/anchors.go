// Package anchors derives anchor-text spans for a target page inside the
// canonicalized source text, enforcing span non-overlap, variant diversity,
// and the exact-match share limit.
package anchors

import (
	"sort"
	"strings"
	"unicode"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/corpus"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/entities"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

const (
	minAnchorWords = 2
	maxAnchorWords = 7
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "to": {}, "of": {}, "a": {}, "in": {},
	"for": {}, "on": {}, "with": {}, "at": {}, "by": {}, "an": {}, "be": {},
	"is": {},
}

type candidate struct {
	anchor page.Anchor
	score  float64
}

// Select returns the ordered anchors for the target within the source text,
// at most max_anchors_per_target of them. Offsets are rune positions into
// the canonicalized source text and are stable across runs.
func Select(src, target *corpus.Stats, cfg config.Config) []page.Anchor {
	phrases := collectPhrases(src, target)
	if len(phrases) == 0 {
		return nil
	}

	srcRunes := []rune(src.Text)
	loweredSrc := lowerRunes(srcRunes)

	cands := locate(srcRunes, loweredSrc, phrases, cfg)
	if len(cands) == 0 {
		return nil
	}

	return pick(cands, cfg)
}

// collectPhrases gathers candidate anchor phrases from the target title,
// head/tail terms, overlapping entities, brand names, and tags that occur in
// the target's own content. Later sources never downgrade the variant of an
// already-collected phrase.
func collectPhrases(src, target *corpus.Stats) map[string]page.Variant {
	phrases := make(map[string]page.Variant)
	add := func(text string, variant page.Variant) {
		key := strings.ToLower(strings.Join(strings.Fields(text), " "))
		if key == "" {
			return
		}
		if prev, exists := phrases[key]; exists && variantBeats(prev, variant) {
			return
		}
		phrases[key] = variant
	}

	title := strings.TrimSpace(target.Page.Title)
	if title != "" {
		add(title, page.VariantExact)
		if head := headTerms(title, 4); head != title {
			add(head, page.VariantPartial)
		}
		if tail := tailTerms(title, 3); tail != title {
			add(tail, page.VariantPartial)
		}
	}

	if match, ok := entities.FirstMatch(src.Entities, target.Entities); ok {
		if match.Class == entities.ClassBrand {
			add(match.Name, page.VariantBrand)
		} else {
			add(match.Name, page.VariantEntity)
		}
	}

	for _, term := range target.Page.Metadata.HeadTerms {
		add(term, page.VariantPartial)
	}
	if brand := target.Page.Metadata.Brand; brand != "" {
		add(brand, page.VariantBrand)
	}

	// Tags become partial phrases only when the tag text actually occurs in
	// the target's own title or body.
	titleLower := strings.ToLower(target.Page.Title)
	bodyLower := strings.ToLower(target.Text)
	for _, tag := range target.Page.Tags {
		cleaned := strings.TrimSpace(tag)
		if cleaned == "" {
			continue
		}
		lowered := strings.ToLower(cleaned)
		if !strings.Contains(titleLower, lowered) && !strings.Contains(bodyLower, lowered) {
			continue
		}
		add(strings.ReplaceAll(cleaned, "-", " "), page.VariantPartial)
	}

	return phrases
}

// locate finds every word-bounded occurrence of each phrase in the source
// text and scores it. Identical spans keep only their best-scoring variant.
func locate(srcRunes, loweredSrc []rune, phrases map[string]page.Variant, cfg config.Config) []candidate {
	textLen := len(srcRunes)
	if textLen == 0 {
		return nil
	}

	// Deterministic phrase order.
	keys := make([]string, 0, len(phrases))
	for key := range phrases {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	best := make(map[[2]int]candidate)
	for _, key := range keys {
		variant := phrases[key]
		phraseRunes := []rune(key)
		for _, start := range occurrences(loweredSrc, phraseRunes) {
			end := start + len(phraseRunes)
			text := string(srcRunes[start:end])
			if !validAnchorText(text) {
				continue
			}
			anchor := page.Anchor{Text: text, Start: start, End: end, Variant: variant}
			c := candidate{anchor: anchor, score: anchorScore(anchor, textLen, cfg)}
			span := [2]int{start, end}
			if prev, exists := best[span]; !exists || c.score > prev.score {
				best[span] = c
			}
		}
	}

	cands := make([]candidate, 0, len(best))
	for _, c := range best {
		cands = append(cands, c)
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if cands[i].anchor.Start != cands[j].anchor.Start {
			return cands[i].anchor.Start < cands[j].anchor.Start
		}
		return cands[i].anchor.End < cands[j].anchor.End
	})
	return cands
}

// pick selects greedily by score under the per-target cap, keeping the
// exact-match share at or below 40% and spans non-overlapping, then fills
// any remaining slots preferring unused variant types.
func pick(ranked []candidate, cfg config.Config) []page.Anchor {
	limit := cfg.MaxAnchorsPerTarget
	exactAllowed := int(0.4 * float64(limit))

	var selected []page.Anchor
	usedTexts := make(map[string]struct{})
	usedVariants := make(map[page.Variant]struct{})
	exactCount := 0

	admit := func(c candidate) bool {
		key := strings.ToLower(c.anchor.Text)
		if _, dup := usedTexts[key]; dup {
			return false
		}
		for _, a := range selected {
			if c.anchor.Start < a.End && a.Start < c.anchor.End {
				return false
			}
		}
		selected = append(selected, c.anchor)
		usedTexts[key] = struct{}{}
		usedVariants[c.anchor.Variant] = struct{}{}
		return true
	}

	for _, c := range ranked {
		if len(selected) >= limit {
			break
		}
		if c.anchor.Variant == page.VariantExact && exactCount >= exactAllowed {
			continue
		}
		if admit(c) && c.anchor.Variant == page.VariantExact {
			exactCount++
		}
	}

	if len(selected) < limit {
		for _, v := range cfg.AnchorVariantPriority {
			variant := page.Variant(v)
			if variant == page.VariantExact {
				continue
			}
			if _, used := usedVariants[variant]; used {
				continue
			}
			for _, c := range ranked {
				if len(selected) >= limit {
					break
				}
				if c.anchor.Variant != variant {
					continue
				}
				if admit(c) {
					break
				}
			}
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Start < selected[j].Start })
	return selected
}

// occurrences returns the rune offsets of every word-bounded match of the
// lowered phrase within the lowered text.
func occurrences(text, phrase []rune) []int {
	if len(phrase) == 0 || len(phrase) > len(text) {
		return nil
	}
	var starts []int
	for i := 0; i+len(phrase) <= len(text); i++ {
		if !runesEqual(text[i:i+len(phrase)], phrase) {
			continue
		}
		if i > 0 && isWordRune(text[i-1]) {
			continue
		}
		if end := i + len(phrase); end < len(text) && isWordRune(text[end]) {
			continue
		}
		starts = append(starts, i)
	}
	return starts
}

func runesEqual(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// validAnchorText enforces the 2-7 word window and rejects all-stopword
// phrases.
func validAnchorText(text string) bool {
	words := strings.Fields(text)
	if len(words) < minAnchorWords || len(words) > maxAnchorWords {
		return false
	}
	for _, w := range words {
		if _, stop := stopwords[strings.ToLower(w)]; !stop {
			return true
		}
	}
	return false
}

// anchorScore combines the configured variant priority, a contextual
// position term favoring earlier occurrences, and a length-closeness term
// peaking at four words.
func anchorScore(a page.Anchor, textLen int, cfg config.Config) float64 {
	variantWeight := 0.5
	for i, v := range cfg.AnchorVariantPriority {
		if page.Variant(v) == a.Variant {
			variantWeight = 1.0 - 0.1*float64(i)
			break
		}
	}
	position := 1 - float64(a.Start)/float64(textLen)
	words := len(strings.Fields(a.Text))
	closeness := 1 - abs(words-4)/10.0
	if closeness < 0 {
		closeness = 0
	}
	return variantWeight * (0.7 + 0.2*position + 0.1*closeness)
}

func abs(n int) float64 {
	if n < 0 {
		return float64(-n)
	}
	return float64(n)
}

func headTerms(title string, n int) string {
	words := strings.Fields(title)
	if len(words) <= n {
		return title
	}
	return strings.Join(words[:n], " ")
}

func tailTerms(title string, n int) string {
	words := strings.Fields(title)
	if len(words) <= n {
		return title
	}
	return strings.Join(words[len(words)-n:], " ")
}

// variantBeats reports whether a outranks b in the default closed ordering.
func variantBeats(a, b page.Variant) bool {
	order := map[page.Variant]int{
		page.VariantExact:   0,
		page.VariantEntity:  1,
		page.VariantBrand:   2,
		page.VariantPartial: 3,
	}
	return order[a] < order[b]
}
