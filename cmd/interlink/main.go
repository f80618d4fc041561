// Command interlink suggests internal links for a source page against a
// crawled corpus, or dry-runs the full pipeline across a corpus to produce
// aggregate quality metrics.
package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/MutabPato/interlinker-tool/internal/jsonl"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/config"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/engine"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/internalerr"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/store"
)

func main() {
	app := &cli.App{
		Name:  "interlink",
		Usage: "deterministic internal link suggestions for a crawled corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML engine configuration"},
			&cli.StringFlag{Name: "corpus", Usage: "JSONL corpus file"},
			&cli.StringFlag{Name: "db", Usage: "SQLite corpus database"},
			&cli.StringFlag{Name: "as-of", Usage: "RFC3339 reference time for freshness (default: now)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "suggest",
				Usage: "suggest links for one source page",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Required: true, Usage: "URL of the source page within the corpus"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "output format: json or report"},
					&cli.StringFlag{Name: "save-db", Usage: "SQLite database to persist the suggestion run"},
				},
				Action: runSuggest,
			},
			{
				Name:   "dry-run",
				Usage:  "run the pipeline across the whole corpus and report aggregate metrics",
				Flags:  []cli.Flag{&cli.IntFlag{Name: "workers", Value: 4, Usage: "concurrent source-page workers"}},
				Action: runDryRun,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads configuration and corpus. Configuration errors are fatal
// before any page is processed.
func setup(c *cli.Context) (*engine.Engine, []page.Page, time.Time, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	pages, err := loadCorpus(c)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	asOf := time.Now().UTC()
	if raw := c.String("as-of"); raw != "" {
		asOf, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, time.Time{}, fmt.Errorf("parse --as-of: %w", err)
		}
	}
	return eng, pages, asOf, nil
}

func loadCorpus(c *cli.Context) ([]page.Page, error) {
	if path := c.String("db"); path != "" {
		st, err := store.Open(c.Context, path)
		if err != nil {
			return nil, fmt.Errorf("open corpus db: %w", err)
		}
		defer st.Close()
		return st.LoadPages(c.Context)
	}
	if path := c.String("corpus"); path != "" {
		return jsonl.LoadPages(path)
	}
	return nil, fmt.Errorf("either --corpus or --db is required")
}

type suggestReport struct {
	RunID       string            `json:"run_id"`
	SourceURL   string            `json:"source_url"`
	AsOf        time.Time         `json:"as_of"`
	Suggestions []page.Suggestion `json:"suggestions"`
}

func runSuggest(c *cli.Context) error {
	eng, pages, asOf, err := setup(c)
	if err != nil {
		return err
	}

	sourceURL := c.String("source")
	var source page.Page
	found := false
	for _, p := range pages {
		if p.URL == sourceURL {
			source = p
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: source page %s is not in the corpus", internalerr.ErrNotFound, sourceURL)
	}

	suggestions, warnings, err := eng.Suggest(source, pages, asOf)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Printf("warning: excluded corpus page %s: %v", w.URL, w.Err)
	}

	report := suggestReport{
		RunID:       newRunID(),
		SourceURL:   sourceURL,
		AsOf:        asOf,
		Suggestions: suggestions,
	}

	if path := c.String("save-db"); path != "" {
		st, err := store.Open(c.Context, path)
		if err != nil {
			return fmt.Errorf("open save db: %w", err)
		}
		defer st.Close()
		if err := st.SaveSuggestions(c.Context, report.RunID, sourceURL, suggestions); err != nil {
			return err
		}
	}

	if c.String("format") == "report" {
		printReport(report)
		return nil
	}
	return emitJSON(report)
}

func runDryRun(c *cli.Context) error {
	eng, pages, asOf, err := setup(c)
	if err != nil {
		return err
	}

	metrics, warnings, err := eng.DryRun(pages, asOf, c.Int("workers"))
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Printf("warning: excluded corpus page %s: %v", w.URL, w.Err)
	}

	return emitJSON(struct {
		RunID   string         `json:"run_id"`
		AsOf    time.Time      `json:"as_of"`
		Pages   int            `json:"pages"`
		Metrics engine.Metrics `json:"metrics"`
	}{RunID: newRunID(), AsOf: asOf, Pages: len(pages), Metrics: metrics})
}

func printReport(report suggestReport) {
	fmt.Printf("Suggestions for %s (run %s)\n", report.SourceURL, report.RunID)
	if len(report.Suggestions) == 0 {
		fmt.Println("  no guardrail-passing candidates")
		return
	}
	for i, s := range report.Suggestions {
		fmt.Printf("%2d. %s  score=%.3f  placement=%s\n", i+1, s.TargetURL, s.Score, s.PlacementHint)
		fmt.Printf("    reason: %s\n", s.Reason)
		for _, a := range s.Anchors {
			fmt.Printf("    anchor [%s] %q at %d-%d\n", a.Variant, a.Text, a.Start, a.End)
		}
		if len(s.RiskFlags) > 0 {
			fmt.Printf("    risks: %v\n", s.RiskFlags)
		}
	}
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRunID() string {
	return ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String()
}
