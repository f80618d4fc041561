// Package textutil provides the shared lexical primitives for the linking
// pipeline: tokenization, term statistics, BM25, cosine and Jaccard
// similarity, and deterministic canonicalization of page markup.
package textutil

import (
	"math"
	"strings"
	"unicode"
)

// Tokenize splits text into lower-cased word tokens. Hyphens and
// apostrophes inside a word are kept so tokens like "gpt-4" or "don't"
// survive intact.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := strings.Trim(current.String(), "-'")
		if word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// TermFrequencies returns per-token counts.
func TermFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	return tf
}

// DocumentFrequencies counts how many documents each term appears in.
func DocumentFrequencies(docs []map[string]int) map[string]int {
	df := make(map[string]int)
	for _, doc := range docs {
		for term := range doc {
			df[term]++
		}
	}
	return df
}

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// BM25 scores the query tokens against a document's term frequencies.
func BM25(queryTokens []string, docTF map[string]int, docLen int, avgDocLen float64, df map[string]int, totalDocs int) float64 {
	if avgDocLen == 0 {
		avgDocLen = 1.0
	}
	score := 0.0
	for _, term := range queryTokens {
		freq, ok := docTF[term]
		if !ok {
			continue
		}
		termDF := float64(df[term])
		idf := math.Log(1 + (float64(totalDocs)-termDF+0.5)/(termDF+0.5))
		denom := float64(freq) + bm25K1*(1-bm25B+bm25B*float64(docLen)/avgDocLen)
		score += idf * float64(freq) * (bm25K1 + 1) / denom
	}
	return score
}

// Cosine returns cosine similarity between two sparse term-frequency
// vectors. Non-negative counts keep the result in [0,1].
func Cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	dot := 0.0
	for term, av := range a {
		if bv, ok := b[term]; ok {
			dot += float64(av) * float64(bv)
		}
	}
	normA := 0.0
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	normB := 0.0
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Jaccard returns set similarity for two string slices, case-insensitive.
func Jaccard(a, b []string) float64 {
	aSet := make(map[string]struct{}, len(a))
	for _, s := range a {
		aSet[strings.ToLower(s)] = struct{}{}
	}
	bSet := make(map[string]struct{}, len(b))
	for _, s := range b {
		bSet[strings.ToLower(s)] = struct{}{}
	}
	if len(aSet) == 0 || len(bSet) == 0 {
		return 0.0
	}
	intersection := 0
	for s := range aSet {
		if _, ok := bSet[s]; ok {
			intersection++
		}
	}
	union := len(aSet) + len(bSet) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
