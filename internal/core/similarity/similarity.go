package similarity

import (
	"math"

	"github.com/agnivade/levenshtein"
)

const (
	// TextThreshold is the fuzzy-match bar for resolving a planner's
	// free-text reference key against an authoritative subsection title.
	TextThreshold = 0.9
	// LayoutThreshold is the embedding-similarity bar for accepting a
	// planned layout name as one of the library layouts.
	LayoutThreshold = 0.7
)

// MeetsLayoutThreshold reports whether a layout match score is accepted.
// A score of exactly 0.70 passes; anything below triggers repair.
func MeetsLayoutThreshold(score float64) bool {
	return score >= LayoutThreshold
}

// Text scores two short strings in [0,1], monotonically decreasing in edit
// distance. Identical strings score 1.
func Text(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// Cosine scores two embedding vectors. Mismatched or zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// BestMatch returns the index and score of the candidate most similar to
// query. Returns index -1 when there are no candidates.
func BestMatch(query []float32, candidates [][]float32) (int, float64) {
	best := -1
	bestScore := math.Inf(-1)
	for i, c := range candidates {
		if s := Cosine(query, c); s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best == -1 {
		return -1, 0
	}
	return best, bestScore
}
