package match

import (
	"math"
	"strings"

	"github.com/embo-press/matchpub/internal/normalize"
)

// Scorer measures similarity between two title strings. Scores are in
// [0,1], symmetric, and 1.0 for identical normalized strings. The
// scorer is injected into the engine so an embedding-based
// implementation can be swapped in without touching the matching
// logic.
type Scorer interface {
	Similarity(a, b string) float64
}

// TokenScorer scores titles by cosine similarity of their term
// frequency vectors after normalization. It is deterministic and needs
// no model state.
type TokenScorer struct {
	opts normalize.Options
}

// NewTokenScorer creates a TokenScorer with the default normalization
// pipeline.
func NewTokenScorer() *TokenScorer {
	return &TokenScorer{opts: normalize.DefaultOptions()}
}

// Similarity implements Scorer.
func (s *TokenScorer) Similarity(a, b string) float64 {
	va := termFrequencies(normalize.Normalize(a, s.opts))
	vb := termFrequencies(normalize.Normalize(b, s.opts))
	return cosine(va, vb)
}

func termFrequencies(s string) map[string]float64 {
	freq := make(map[string]float64)
	for _, token := range strings.Fields(s) {
		freq[token]++
	}
	return freq
}

// cosine computes the cosine similarity between two sparse term
// vectors. Returns 0 when either vector is empty.
func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, wa := range a {
		normA += wa * wa
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}
