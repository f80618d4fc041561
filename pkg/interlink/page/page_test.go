package page

import (
	"errors"
	"testing"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/internalerr"
)

func TestValidateAcceptsMinimalPage(t *testing.T) {
	p := Page{URL: "https://example.com/a", Title: "A page"}
	if err := Validate(p); err != nil {
		t.Errorf("minimal page should validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		page Page
	}{
		{"missing url", Page{Title: "A"}},
		{"missing title", Page{URL: "https://example.com/a"}},
		{"unknown type", Page{URL: "https://example.com/a", Title: "A", Type: "landing"}},
		{"negative click depth", Page{URL: "https://example.com/a", Title: "A", ClickDepth: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.page)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, internalerr.ErrInvalidPage) {
				t.Errorf("expected ErrInvalidPage, got %v", err)
			}
		})
	}
}

func TestValidateAcceptsAllKnownTypes(t *testing.T) {
	for _, typ := range []Type{TypeArticle, TypeCategory, TypeProduct, TypeReview, TypeOther, ""} {
		p := Page{URL: "https://example.com/a", Title: "A", Type: typ}
		if err := Validate(p); err != nil {
			t.Errorf("type %q should validate: %v", typ, err)
		}
	}
}
