// Package corpus precomputes the per-page and corpus-level token statistics
// shared by every pipeline stage: canonicalized text, term and document
// frequencies, average lengths, and the authority ceiling. The context is
// built once per run and read concurrently by independent source-page runs.
package corpus

import (
	"github.com/MutabPato/interlinker-tool/pkg/interlink/entities"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
	"github.com/MutabPato/interlinker-tool/pkg/interlink/textutil"
)

// Stats bundles a page with everything derived from it. The embedded Page
// stays untouched; all derived fields are computed exactly once.
type Stats struct {
	Page        page.Page
	Text        string // canonicalized body text
	TitleTokens []string
	BodyTokens  []string
	TitleTF     map[string]int
	BodyTF      map[string]int
	TitleLen    int
	BodyLen     int
	Words       int
	Entities    []entities.Entity
	Outbound    map[string]struct{}
}

// Warning records a corpus entry that was excluded from consideration.
type Warning struct {
	URL string
	Err error
}

// Context holds the corpus-wide statistics for one run.
type Context struct {
	Stats        map[string]*Stats
	Order        []string // corpus order of surviving pages
	TitleDF      map[string]int
	BodyDF       map[string]int
	AvgTitleLen  float64
	AvgBodyLen   float64
	TotalDocs    int
	MaxAuthority float64
}

// NewStats derives token statistics for a single page.
func NewStats(p page.Page) *Stats {
	text := textutil.Canonicalize(p.Body)
	titleTokens := textutil.Tokenize(p.Title)
	bodyTokens := textutil.Tokenize(text)

	s := &Stats{
		Page:        p,
		Text:        text,
		TitleTokens: titleTokens,
		BodyTokens:  bodyTokens,
		TitleTF:     textutil.TermFrequencies(titleTokens),
		BodyTF:      textutil.TermFrequencies(bodyTokens),
		Outbound:    make(map[string]struct{}),
	}
	for _, n := range s.TitleTF {
		s.TitleLen += n
	}
	for _, n := range s.BodyTF {
		s.BodyLen += n
	}

	s.Words = p.WordCount
	if s.Words == 0 {
		s.Words = len(bodyTokens)
	}
	s.Entities = entities.FromPage(p, text)

	outbound := p.Metadata.OutboundLinks
	if len(outbound) == 0 {
		outbound = textutil.ExtractLinks(p.Body)
	}
	for _, link := range outbound {
		s.Outbound[link] = struct{}{}
	}

	return s
}

// Build validates the pages and assembles the corpus context. Invalid
// entries are excluded with a warning; a single bad record never aborts
// the run.
func Build(pages []page.Page) (*Context, []Warning) {
	ctx := &Context{
		Stats: make(map[string]*Stats, len(pages)),
	}
	var warnings []Warning
	var titleDocs, bodyDocs []map[string]int

	for _, p := range pages {
		if err := page.Validate(p); err != nil {
			warnings = append(warnings, Warning{URL: p.URL, Err: err})
			continue
		}
		if _, dup := ctx.Stats[p.URL]; dup {
			continue
		}
		s := NewStats(p)
		ctx.Stats[p.URL] = s
		ctx.Order = append(ctx.Order, p.URL)
		titleDocs = append(titleDocs, s.TitleTF)
		bodyDocs = append(bodyDocs, s.BodyTF)
		if p.Authority > ctx.MaxAuthority {
			ctx.MaxAuthority = p.Authority
		}
	}

	ctx.TotalDocs = len(ctx.Order)
	ctx.TitleDF = textutil.DocumentFrequencies(titleDocs)
	ctx.BodyDF = textutil.DocumentFrequencies(bodyDocs)
	ctx.AvgTitleLen = averageLen(titleDocs)
	ctx.AvgBodyLen = averageLen(bodyDocs)
	return ctx, warnings
}

// Lookup returns the stats for a corpus page.
func (c *Context) Lookup(url string) (*Stats, bool) {
	s, ok := c.Stats[url]
	return s, ok
}

// SourceStats returns stats for the source page, reusing the corpus entry
// when the source is itself part of the corpus.
func (c *Context) SourceStats(p page.Page) *Stats {
	if s, ok := c.Stats[p.URL]; ok {
		return s
	}
	return NewStats(p)
}

func averageLen(docs []map[string]int) float64 {
	if len(docs) == 0 {
		return 1.0
	}
	total := 0
	for _, doc := range docs {
		for _, n := range doc {
			total += n
		}
	}
	return float64(total) / float64(len(docs))
}
