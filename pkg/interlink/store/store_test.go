package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

func openTest(t *testing.T) Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPageRoundTrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	published := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	pages := []page.Page{
		{
			URL:          "https://shop.example/b",
			Title:        "B page",
			Body:         "body text",
			Tags:         []string{"coffee", "grinders"},
			TaxonomyPath: []string{"home", "coffee"},
			Language:     "en",
			Type:         page.TypeProduct,
			Metadata: page.Metadata{
				IsPillar:  true,
				Brand:     "Baratza",
				HeadTerms: []string{"burr grinder"},
				Entities:  []page.Entity{{Name: "Encore", Type: "product"}},
			},
			Authority:     42,
			ClickDepth:    2,
			WordCount:     800,
			ContentScore:  0.7,
			SchemaSignals: []string{"Product"},
			PublishDate:   published,
			StatusCode:    200,
			QueryParams:   map[string]string{"page": "2"},
		},
		{URL: "https://shop.example/a", Title: "A page"},
	}

	if err := s.UpsertPages(ctx, pages); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, err := s.LoadPages(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(loaded))
	}
	if loaded[0].URL != "https://shop.example/a" {
		t.Errorf("pages must come back URL-ordered, got %s first", loaded[0].URL)
	}

	b := loaded[1]
	if b.Title != "B page" || b.Type != page.TypeProduct || b.Authority != 42 {
		t.Errorf("scalar fields lost: %+v", b)
	}
	if len(b.Tags) != 2 || b.Tags[0] != "coffee" {
		t.Errorf("tags lost: %v", b.Tags)
	}
	if !b.Metadata.IsPillar || b.Metadata.Brand != "Baratza" {
		t.Errorf("metadata lost: %+v", b.Metadata)
	}
	if len(b.Metadata.Entities) != 1 || b.Metadata.Entities[0].Name != "Encore" {
		t.Errorf("entities lost: %+v", b.Metadata.Entities)
	}
	if !b.PublishDate.Equal(published) {
		t.Errorf("publish date lost: %v", b.PublishDate)
	}
	if !b.UpdateDate.IsZero() {
		t.Errorf("absent update date should stay zero, got %v", b.UpdateDate)
	}
	if b.QueryParams["page"] != "2" {
		t.Errorf("query params lost: %v", b.QueryParams)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	first := page.Page{URL: "https://shop.example/a", Title: "First crawl"}
	second := page.Page{URL: "https://shop.example/a", Title: "Second crawl", WordCount: 10}

	if err := s.UpsertPages(ctx, []page.Page{first}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertPages(ctx, []page.Page{second}); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadPages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 page after re-crawl, got %d", len(loaded))
	}
	if loaded[0].Title != "Second crawl" || loaded[0].WordCount != 10 {
		t.Errorf("re-crawl should replace the record: %+v", loaded[0])
	}
}

func TestLoadPagesSkipsCorruptColumns(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	pages := []page.Page{
		{URL: "https://shop.example/bad", Title: "Bad page", Tags: []string{"coffee"}},
		{URL: "https://shop.example/good", Title: "Good page"},
	}
	if err := s.UpsertPages(ctx, pages); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	db := s.(*sqliteStore).db
	if _, err := db.ExecContext(ctx,
		`UPDATE pages SET metadata = '{not json' WHERE url = ?`,
		"https://shop.example/bad"); err != nil {
		t.Fatalf("corrupt column: %v", err)
	}

	loaded, err := s.LoadPages(ctx)
	if err != nil {
		t.Fatalf("a corrupt row must not abort the load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected only the clean page, got %d", len(loaded))
	}
	if loaded[0].URL != "https://shop.example/good" {
		t.Errorf("wrong survivor: %s", loaded[0].URL)
	}
}

func TestSaveSuggestions(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	suggestions := []page.Suggestion{
		{
			TargetURL:     "https://shop.example/t",
			Reason:        "strong title match",
			Score:         0.8,
			Anchors:       []page.Anchor{{Text: "burr grinder", Start: 10, End: 22, Variant: page.VariantPartial}},
			PlacementHint: page.HintBody,
			Rel:           "follow",
			RiskFlags:     []page.RiskFlag{page.RiskThinTarget},
		},
	}

	if err := s.SaveSuggestions(ctx, "run-1", "https://shop.example/s", suggestions); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Re-saving the same run replaces rather than conflicting.
	if err := s.SaveSuggestions(ctx, "run-1", "https://shop.example/s", suggestions); err != nil {
		t.Errorf("re-save should not conflict: %v", err)
	}
}
