package textutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// skipElements are elements whose text never belongs to the readable body.
var skipElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"iframe":   {},
	"head":     {},
}

// Canonicalize reduces raw page content (plain text or markup) to a single
// deterministic text form: markup stripped, whitespace runs collapsed to one
// space, leading/trailing space trimmed. Anchor offsets are computed against
// this form, so the transformation must be stable for identical input.
func Canonicalize(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "<") {
		return strings.Join(strings.Fields(raw), " ")
	}

	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return strings.Join(strings.Fields(raw), " ")
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skipElements[n.Data]; skip {
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// ExtractLinks returns the href values of anchor elements in the raw body,
// in document order with duplicates removed. Used to seed duplicate-link
// detection when the crawler did not record outbound links.
func ExtractLinks(raw string) []string {
	if !strings.Contains(raw, "<a") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})
	return links
}
