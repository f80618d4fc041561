// Package page defines the read-only page model consumed by the linking
// pipeline and the suggestion records it emits.
package page

import (
	"fmt"
	"time"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/internalerr"
)

// Type classifies a page for conversion-intent and placement decisions.
type Type string

const (
	TypeArticle  Type = "article"
	TypeCategory Type = "category"
	TypeProduct  Type = "product"
	TypeReview   Type = "review"
	TypeOther    Type = "other"
)

// Variant is the semantic category of an anchor phrase.
type Variant string

const (
	VariantExact   Variant = "exact"
	VariantEntity  Variant = "entity"
	VariantBrand   Variant = "brand"
	VariantPartial Variant = "partial"
)

// RiskFlag marks a soft risk attached to a surviving suggestion.
type RiskFlag string

const (
	RiskLangMismatch RiskFlag = "lang_mismatch"
	RiskThinTarget   RiskFlag = "thin_target"
	RiskDupAnchor    RiskFlag = "dup_anchor"
)

// Hint tells the consumer where in the source document to place the link.
type Hint string

const (
	HintIntro      Hint = "intro"
	HintBody       Hint = "body"
	HintConclusion Hint = "conclusion"
)

// Entity is a named entity attached to a page by the crawler.
type Entity struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"` // product, brand, category, generic
}

// Metadata carries crawl-derived page attributes that are optional inputs
// to the pipeline.
type Metadata struct {
	IsPillar      bool     `json:"is_pillar" yaml:"is_pillar"`
	IsLogin       bool     `json:"is_login,omitempty" yaml:"is_login"`
	IsCart        bool     `json:"is_cart,omitempty" yaml:"is_cart"`
	IsRedirect    bool     `json:"is_redirect,omitempty" yaml:"is_redirect"`
	IsReference   bool     `json:"is_reference,omitempty" yaml:"is_reference"`
	Brand         string   `json:"brand,omitempty" yaml:"brand"`
	HeadTerms     []string `json:"head_terms,omitempty" yaml:"head_terms"`
	Entities      []Entity `json:"entities,omitempty" yaml:"entities"`
	OutboundLinks []string `json:"outbound_links,omitempty" yaml:"outbound_links"`
}

// Page is a normalized crawl record. It is read-only input to the pipeline;
// no stage mutates it.
type Page struct {
	URL           string            `json:"url"`
	Title         string            `json:"title"`
	Body          string            `json:"body"` // raw text or markup
	Tags          []string          `json:"tags,omitempty"`
	TaxonomyPath  []string          `json:"taxonomy_path,omitempty"` // root-first
	Language      string            `json:"language,omitempty"`
	Type          Type              `json:"type"`
	Metadata      Metadata          `json:"metadata"`
	Authority     float64           `json:"authority,omitempty"`
	ClickDepth    int               `json:"click_depth,omitempty"`
	WordCount     int               `json:"word_count,omitempty"`
	ContentScore  float64           `json:"content_score,omitempty"`
	SchemaSignals []string          `json:"schema_signals,omitempty"`
	PublishDate   time.Time         `json:"publish_date,omitempty"`
	UpdateDate    time.Time         `json:"update_date,omitempty"`
	StatusCode    int               `json:"status_code,omitempty"`
	CanonicalURL  string            `json:"canonical_url,omitempty"`
	QueryParams   map[string]string `json:"query_params,omitempty"`
}

// Anchor is a deterministic anchor-text span within the canonicalized
// source text. Offsets are character positions into that text.
type Anchor struct {
	Text    string  `json:"text"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
	Variant Variant `json:"variant"`
}

// Suggestion is one recommended internal link. Immutable once emitted.
type Suggestion struct {
	TargetURL     string     `json:"target_url"`
	Reason        string     `json:"reason"`
	Score         float64    `json:"score"`
	Anchors       []Anchor   `json:"anchors"`
	PlacementHint Hint       `json:"placement_hint"`
	Rel           string     `json:"rel"`
	RiskFlags     []RiskFlag `json:"risk_flags"`
}

// Validate checks the fields the pipeline cannot work without. Invalid
// pages are skipped with a warning rather than aborting a run.
func Validate(p Page) error {
	if p.URL == "" {
		return fmt.Errorf("%w: missing url", internalerr.ErrInvalidPage)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: page %s has no title", internalerr.ErrInvalidPage, p.URL)
	}
	switch p.Type {
	case TypeArticle, TypeCategory, TypeProduct, TypeReview, TypeOther, "":
	default:
		return fmt.Errorf("%w: page %s has unknown type %q", internalerr.ErrInvalidPage, p.URL, p.Type)
	}
	if p.ClickDepth < 0 {
		return fmt.Errorf("%w: page %s has negative click depth", internalerr.ErrInvalidPage, p.URL)
	}
	return nil
}
