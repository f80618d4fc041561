// Package jsonl loads page records from JSONL corpus files produced by the
// external crawler.
package jsonl

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/internalerr"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

// record mirrors the page input schema with string-typed dates so malformed
// timestamps surface as per-record warnings instead of decode failures.
type record struct {
	URL           string            `json:"url"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	Tags          []string          `json:"tags"`
	TaxonomyPath  []string          `json:"taxonomy_path"`
	Language      string            `json:"language"`
	Type          string            `json:"type"`
	Metadata      page.Metadata     `json:"metadata"`
	Authority     float64           `json:"authority"`
	ClickDepth    int               `json:"click_depth"`
	WordCount     int               `json:"word_count"`
	ContentScore  float64           `json:"content_score"`
	SchemaSignals []string          `json:"schema_signals"`
	PublishDate   string            `json:"publish_date"`
	UpdateDate    string            `json:"update_date"`
	StatusCode    int               `json:"status_code"`
	CanonicalURL  string            `json:"canonical_url"`
	QueryParams   map[string]string `json:"query_params"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// LoadPages reads a JSONL corpus file. Records that fail to decode or
// validate are skipped with a logged warning; a single bad record never
// aborts the load.
func LoadPages(path string) ([]page.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	var pages []page.Page
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}

		p, err := toPage(rec)
		if err != nil {
			log.Printf("warning: skipping record at line %d in %s: %v", i+1, path, err)
			continue
		}
		pages = append(pages, p)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no valid pages in %s", internalerr.ErrEmptyCorpus, path)
	}
	return pages, nil
}

func toPage(rec record) (page.Page, error) {
	publish, err := parseDate(rec.PublishDate)
	if err != nil {
		return page.Page{}, fmt.Errorf("page %s: unparsable publish_date %q", rec.URL, rec.PublishDate)
	}
	update, err := parseDate(rec.UpdateDate)
	if err != nil {
		return page.Page{}, fmt.Errorf("page %s: unparsable update_date %q", rec.URL, rec.UpdateDate)
	}

	p := page.Page{
		URL:           rec.URL,
		Title:         rec.Title,
		Body:          rec.Body,
		Tags:          rec.Tags,
		TaxonomyPath:  rec.TaxonomyPath,
		Language:      rec.Language,
		Type:          page.Type(rec.Type),
		Metadata:      rec.Metadata,
		Authority:     rec.Authority,
		ClickDepth:    rec.ClickDepth,
		WordCount:     rec.WordCount,
		ContentScore:  rec.ContentScore,
		SchemaSignals: rec.SchemaSignals,
		PublishDate:   publish,
		UpdateDate:    update,
		StatusCode:    rec.StatusCode,
		CanonicalURL:  rec.CanonicalURL,
		QueryParams:   rec.QueryParams,
	}
	if err := page.Validate(p); err != nil {
		return page.Page{}, err
	}
	return p, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
