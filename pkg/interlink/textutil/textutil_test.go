package textutil

import (
	"math"
	"testing"
)

func TestTokenizeKeepsInnerHyphensAndApostrophes(t *testing.T) {
	tokens := Tokenize("The GPT-4 guide isn't class-leading!")
	want := []string{"the", "gpt-4", "guide", "isn't", "class-leading"}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, tok := range tokens {
		if tok != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], tok)
		}
	}
}

func TestTokenizeTrimsDanglingPunctuation(t *testing.T) {
	tokens := Tokenize("--hello-- 'world'")
	if len(tokens) != 2 || tokens[0] != "hello" || tokens[1] != "world" {
		t.Errorf("expected [hello world], got %v", tokens)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if tokens := Tokenize("  ... !!! "); len(tokens) != 0 {
		t.Errorf("expected no tokens, got %v", tokens)
	}
}

func TestBM25FavorsRareTerms(t *testing.T) {
	docs := []map[string]int{
		{"coffee": 2, "grinder": 1},
		{"coffee": 1, "espresso": 3},
		{"coffee": 1, "tea": 1},
	}
	df := DocumentFrequencies(docs)

	common := BM25([]string{"coffee"}, docs[0], 3, 3.0, df, 3)
	rare := BM25([]string{"grinder"}, docs[0], 3, 3.0, df, 3)

	if rare <= common {
		t.Errorf("rare term should outscore common term: rare=%f common=%f", rare, common)
	}
}

func TestBM25MissingTermScoresZero(t *testing.T) {
	docTF := map[string]int{"coffee": 1}
	score := BM25([]string{"espresso"}, docTF, 1, 1.0, map[string]int{"coffee": 1}, 1)
	if score != 0 {
		t.Errorf("expected 0 for absent query term, got %f", score)
	}
}

func TestCosineIdenticalVectors(t *testing.T) {
	v := map[string]int{"coffee": 2, "grinder": 3}
	got := Cosine(v, v)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical vectors should have cosine 1, got %f", got)
	}
}

func TestCosineDisjointAndEmpty(t *testing.T) {
	a := map[string]int{"coffee": 1}
	b := map[string]int{"tea": 1}
	if got := Cosine(a, b); got != 0 {
		t.Errorf("disjoint vectors should have cosine 0, got %f", got)
	}
	if got := Cosine(a, nil); got != 0 {
		t.Errorf("empty vector should have cosine 0, got %f", got)
	}
}

func TestJaccard(t *testing.T) {
	cases := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}, 1.0},
		{"half", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{"disjoint", []string{"a"}, []string{"b"}, 0.0},
		{"case insensitive", []string{"Coffee"}, []string{"coffee"}, 1.0},
		{"one empty", []string{"a"}, nil, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Jaccard(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tc.want, got)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  one  two\nthree "); got != 3 {
		t.Errorf("expected 3 words, got %d", got)
	}
}
