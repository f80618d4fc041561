// Package store persists crawled pages and emitted suggestion runs in
// SQLite. The pipeline itself never touches storage; the store is the seam
// between the external crawler, the core, and whatever consumes the
// suggestions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

// Store reads and writes page and suggestion records.
type Store interface {
	Close() error

	UpsertPages(ctx context.Context, pages []page.Page) error
	LoadPages(ctx context.Context) ([]page.Page, error)
	SaveSuggestions(ctx context.Context, runID, sourceURL string, suggestions []page.Suggestion) error
}

type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema.
func Open(ctx context.Context, path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS pages (
	url TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT,
	tags TEXT,
	taxonomy_path TEXT,
	language TEXT,
	type TEXT,
	metadata TEXT,
	authority REAL DEFAULT 0,
	click_depth INTEGER DEFAULT 0,
	word_count INTEGER DEFAULT 0,
	content_score REAL DEFAULT 0,
	schema_signals TEXT,
	publish_date TEXT,
	update_date TEXT,
	status_code INTEGER DEFAULT 200,
	canonical_url TEXT,
	query_params TEXT
);

CREATE TABLE IF NOT EXISTS suggestions (
	run_id TEXT NOT NULL,
	source_url TEXT NOT NULL,
	target_url TEXT NOT NULL,
	score REAL NOT NULL,
	reason TEXT,
	anchors TEXT,
	placement_hint TEXT,
	rel TEXT,
	risk_flags TEXT,
	created_at TEXT NOT NULL,
	PRIMARY KEY(run_id, source_url, target_url)
);

CREATE INDEX IF NOT EXISTS idx_suggestions_source ON suggestions(source_url);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertPages writes page records, replacing any previous crawl of the same
// URL.
func (s *sqliteStore) UpsertPages(ctx context.Context, pages []page.Page) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO pages (url, title, body, tags, taxonomy_path, language, type, metadata,
	authority, click_depth, word_count, content_score, schema_signals,
	publish_date, update_date, status_code, canonical_url, query_params)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	title=excluded.title, body=excluded.body, tags=excluded.tags,
	taxonomy_path=excluded.taxonomy_path, language=excluded.language,
	type=excluded.type, metadata=excluded.metadata, authority=excluded.authority,
	click_depth=excluded.click_depth, word_count=excluded.word_count,
	content_score=excluded.content_score, schema_signals=excluded.schema_signals,
	publish_date=excluded.publish_date, update_date=excluded.update_date,
	status_code=excluded.status_code, canonical_url=excluded.canonical_url,
	query_params=excluded.query_params`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range pages {
		tags, _ := json.Marshal(p.Tags)
		taxonomy, _ := json.Marshal(p.TaxonomyPath)
		metadata, _ := json.Marshal(p.Metadata)
		schemaSignals, _ := json.Marshal(p.SchemaSignals)
		queryParams, _ := json.Marshal(p.QueryParams)

		if _, err := stmt.ExecContext(ctx,
			p.URL, p.Title, p.Body, string(tags), string(taxonomy), p.Language,
			string(p.Type), string(metadata), p.Authority, p.ClickDepth,
			p.WordCount, p.ContentScore, string(schemaSignals),
			formatTime(p.PublishDate), formatTime(p.UpdateDate),
			p.StatusCode, p.CanonicalURL, string(queryParams),
		); err != nil {
			return fmt.Errorf("upsert page %s: %w", p.URL, err)
		}
	}

	return tx.Commit()
}

// LoadPages reads every stored page, ordered by URL for determinism. Pages
// with corrupt JSON columns are skipped with a logged warning; a single bad
// row never aborts the load.
func (s *sqliteStore) LoadPages(ctx context.Context) ([]page.Page, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT url, title, body, tags, taxonomy_path, language, type, metadata,
	authority, click_depth, word_count, content_score, schema_signals,
	publish_date, update_date, status_code, canonical_url, query_params
FROM pages ORDER BY url`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []page.Page
	for rows.Next() {
		var p page.Page
		var pageType, tags, taxonomy, metadata, schemaSignals, queryParams string
		var publishDate, updateDate string

		if err := rows.Scan(&p.URL, &p.Title, &p.Body, &tags, &taxonomy, &p.Language,
			&pageType, &metadata, &p.Authority, &p.ClickDepth, &p.WordCount,
			&p.ContentScore, &schemaSignals, &publishDate, &updateDate,
			&p.StatusCode, &p.CanonicalURL, &queryParams); err != nil {
			return nil, err
		}

		p.Type = page.Type(pageType)
		if err := decodeColumns(&p, tags, taxonomy, metadata, schemaSignals, queryParams); err != nil {
			log.Printf("warning: skipping stored page %s: %v", p.URL, err)
			continue
		}
		p.PublishDate = parseTime(publishDate)
		p.UpdateDate = parseTime(updateDate)

		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func decodeColumns(p *page.Page, tags, taxonomy, metadata, schemaSignals, queryParams string) error {
	columns := []struct {
		name string
		raw  string
		dst  any
	}{
		{"tags", tags, &p.Tags},
		{"taxonomy_path", taxonomy, &p.TaxonomyPath},
		{"metadata", metadata, &p.Metadata},
		{"schema_signals", schemaSignals, &p.SchemaSignals},
		{"query_params", queryParams, &p.QueryParams},
	}
	for _, c := range columns {
		if c.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c.raw), c.dst); err != nil {
			return fmt.Errorf("decode %s column: %w", c.name, err)
		}
	}
	return nil
}

// SaveSuggestions persists one source page's suggestion run.
func (s *sqliteStore) SaveSuggestions(ctx context.Context, runID, sourceURL string, suggestions []page.Suggestion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, sug := range suggestions {
		anchors, _ := json.Marshal(sug.Anchors)
		flags, _ := json.Marshal(sug.RiskFlags)
		if _, err := tx.ExecContext(ctx, `
INSERT OR REPLACE INTO suggestions
	(run_id, source_url, target_url, score, reason, anchors, placement_hint, rel, risk_flags, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, sourceURL, sug.TargetURL, sug.Score, sug.Reason,
			string(anchors), string(sug.PlacementHint), sug.Rel, string(flags), now,
		); err != nil {
			return fmt.Errorf("save suggestion %s -> %s: %w", sourceURL, sug.TargetURL, err)
		}
	}

	return tx.Commit()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
