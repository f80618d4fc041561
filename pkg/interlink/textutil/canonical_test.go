package textutil

import "testing"

func TestCanonicalizePlainText(t *testing.T) {
	got := Canonicalize("  Best   coffee\n\tgrinders  ")
	if got != "Best coffee grinders" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
}

func TestCanonicalizeStripsMarkupAndScripts(t *testing.T) {
	raw := `<html><head><title>ignored</title></head><body>
		<p>Best  coffee grinders</p>
		<script>var x = "never this";</script>
		<style>.a { color: red }</style>
		<p>for espresso</p>
	</body></html>`

	got := Canonicalize(raw)
	if got != "Best coffee grinders for espresso" {
		t.Errorf("unexpected canonical text: %q", got)
	}
}

func TestCanonicalizeDeterministic(t *testing.T) {
	raw := "<p>Alpha <b>beta</b> gamma</p>"
	first := Canonicalize(raw)
	second := Canonicalize(raw)
	if first != second {
		t.Errorf("canonicalization must be stable: %q vs %q", first, second)
	}
}

func TestExtractLinks(t *testing.T) {
	raw := `<p>
		<a href="/a">one</a>
		<a href="/b">two</a>
		<a href="/a">dup</a>
		<a href="#frag">fragment</a>
		<a>no href</a>
	</p>`

	links := ExtractLinks(raw)
	want := []string{"/a", "/b"}
	if len(links) != len(want) {
		t.Fatalf("expected %v, got %v", want, links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d: expected %q, got %q", i, want[i], links[i])
		}
	}
}

func TestExtractLinksPlainText(t *testing.T) {
	if links := ExtractLinks("no markup here"); links != nil {
		t.Errorf("expected nil for plain text, got %v", links)
	}
}
