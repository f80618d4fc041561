package anchors

import (
	"reflect"
	"strings"
	"testing"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/corpus"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

func stats(p page.Page) *corpus.Stats {
	return corpus.NewStats(p)
}

func TestSelectFindsTitleOccurrence(t *testing.T) {
	src := stats(page.Page{
		URL:   "https://shop.example/source",
		Title: "Choosing equipment",
		Body:  "Start with a solid espresso grinder guide before buying anything.",
	})
	tgt := stats(page.Page{
		URL:   "https://shop.example/target",
		Title: "Espresso Grinder Guide",
	})

	selected := Select(src, tgt, config.Default())
	if len(selected) == 0 {
		t.Fatal("expected at least one anchor")
	}
	a := selected[0]
	if a.Variant != page.VariantExact {
		t.Errorf("title occurrence should be an exact anchor, got %s", a.Variant)
	}
	if a.Text != "espresso grinder guide" {
		t.Errorf("anchor should preserve source casing, got %q", a.Text)
	}
	if got := string([]rune(src.Text)[a.Start:a.End]); got != a.Text {
		t.Errorf("offsets do not address the anchor text: %q vs %q", got, a.Text)
	}
}

func TestSelectEnforcesWordWindow(t *testing.T) {
	src := stats(page.Page{
		URL:   "https://shop.example/source",
		Title: "Choosing equipment",
		Body:  "The Baratza brand makes a reliable conical burr coffee grinder for home use and more words here.",
	})

	// One-word title and one-word brand never qualify as anchors.
	short := stats(page.Page{
		URL:      "https://shop.example/short",
		Title:    "Baratza",
		Metadata: page.Metadata{Brand: "Baratza"},
	})
	if got := Select(src, short, config.Default()); len(got) != 0 {
		t.Errorf("one-word phrases must be rejected, got %v", got)
	}

	// An eight-word title exceeds the window; its head terms still fit.
	long := stats(page.Page{
		URL:   "https://shop.example/long",
		Title: "Reliable Conical Burr Coffee Grinder For Home Use",
	})
	selected := Select(src, long, config.Default())
	for _, a := range selected {
		words := len(strings.Fields(a.Text))
		if words < 2 || words > 7 {
			t.Errorf("anchor %q has %d words, outside the window", a.Text, words)
		}
		if a.Variant == page.VariantExact {
			t.Errorf("over-long title must not yield an exact anchor: %q", a.Text)
		}
	}
}

func TestSelectRequiresWordBoundaries(t *testing.T) {
	src := stats(page.Page{
		URL:   "https://shop.example/source",
		Title: "Choosing equipment",
		Body:  "Misespresso grinder guidebook is not a match for anyone.",
	})
	tgt := stats(page.Page{
		URL:   "https://shop.example/target",
		Title: "Espresso Grinder Guide",
	})

	for _, a := range Select(src, tgt, config.Default()) {
		if strings.EqualFold(a.Text, "espresso grinder guide") {
			t.Errorf("mid-word occurrence must not match: %+v", a)
		}
	}
}

func TestSelectCapsExactShare(t *testing.T) {
	src := stats(page.Page{
		URL:   "https://shop.example/source",
		Title: "Choosing equipment",
		Body:  "Read the espresso grinder guide and the full grinder guide section for details.",
	})
	tgt := stats(page.Page{
		URL:   "https://shop.example/target",
		Title: "Espresso Grinder Guide",
		Tags:  []string{"grinder guide"},
	})

	// With a cap of 2 the exact share limit floor(0.4*2)=0 forbids exact
	// anchors entirely.
	cfg := config.Default()
	cfg.MaxAnchorsPerTarget = 2
	for _, a := range Select(src, tgt, cfg) {
		if a.Variant == page.VariantExact {
			t.Errorf("exact anchor exceeds the 40%% share at cap 2: %+v", a)
		}
	}

	// At cap 3 one exact anchor is admissible, never more.
	cfg.MaxAnchorsPerTarget = 3
	exact := 0
	for _, a := range Select(src, tgt, cfg) {
		if a.Variant == page.VariantExact {
			exact++
		}
	}
	if exact > 1 {
		t.Errorf("expected at most 1 exact anchor at cap 3, got %d", exact)
	}
}

func TestSelectSpansNeverOverlap(t *testing.T) {
	src := stats(page.Page{
		URL:   "https://shop.example/source",
		Title: "Choosing equipment",
		Body:  "Our espresso grinder guide covers burr models, and the grinder guide grows yearly.",
	})
	tgt := stats(page.Page{
		URL:   "https://shop.example/target",
		Title: "Espresso Grinder Guide",
		Tags:  []string{"grinder guide"},
	})

	cfg := config.Default()
	cfg.MaxAnchorsPerTarget = 5
	selected := Select(src, tgt, cfg)
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			a, b := selected[i], selected[j]
			if a.Start < b.End && b.Start < a.End {
				t.Errorf("anchors overlap: %+v and %+v", a, b)
			}
		}
	}
}

func TestSelectOrderedByPositionAndDeterministic(t *testing.T) {
	src := stats(page.Page{
		URL:   "https://shop.example/source",
		Title: "Choosing equipment",
		Body:  "The grinder guide intro mentions Baratza Encore models before the espresso grinder guide proper.",
		Metadata: page.Metadata{
			Entities: []page.Entity{{Name: "Baratza Encore", Type: "product"}},
		},
	})
	tgt := stats(page.Page{
		URL:   "https://shop.example/target",
		Title: "Espresso Grinder Guide",
		Tags:  []string{"grinder guide"},
		Metadata: page.Metadata{
			Entities: []page.Entity{{Name: "Baratza Encore", Type: "product"}},
		},
	})

	first := Select(src, tgt, config.Default())
	if len(first) < 2 {
		t.Fatalf("expected multiple anchors, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i].Start < first[i-1].Start {
			t.Errorf("anchors must be ordered by start offset: %+v", first)
		}
	}

	for i := 0; i < 10; i++ {
		if again := Select(src, tgt, config.Default()); !reflect.DeepEqual(first, again) {
			t.Fatalf("selection must be deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestSelectNoPhrasesNoAnchors(t *testing.T) {
	src := stats(page.Page{
		URL:   "https://shop.example/source",
		Title: "Choosing equipment",
		Body:  "Nothing here mentions the other page at all.",
	})
	tgt := stats(page.Page{
		URL:   "https://shop.example/target",
		Title: "Quarterly Shareholder Letter",
	})

	if got := Select(src, tgt, config.Default()); len(got) != 0 {
		t.Errorf("expected no anchors, got %v", got)
	}
}

func TestValidAnchorTextRejectsStopwordPhrases(t *testing.T) {
	if validAnchorText("of the") {
		t.Error("all-stopword phrase should be invalid")
	}
	if !validAnchorText("the grinder") {
		t.Error("phrase with one content word should be valid")
	}
}
