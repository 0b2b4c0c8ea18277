package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Text("bullet points", "bullet points"))
	assert.Equal(t, 1.0, Text("", ""))
}

func TestTextMonotonicInEditDistance(t *testing.T) {
	base := "introduction"
	oneEdit := Text(base, "introductio")
	twoEdits := Text(base, "introducti")
	farOff := Text(base, "conclusion")

	assert.Greater(t, oneEdit, twoEdits)
	assert.Greater(t, twoEdits, farOff)
	assert.GreaterOrEqual(t, farOff, 0.0)
	assert.Less(t, oneEdit, 1.0)
}

func TestTextThresholdSeparatesNearAndFarKeys(t *testing.T) {
	assert.Greater(t, Text("Background Work", "Background Works"), TextThreshold)
	assert.Less(t, Text("Background Work", "Future Directions"), TextThreshold)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestMeetsLayoutThresholdBoundary(t *testing.T) {
	// exactly 0.70 is accepted, 0.699 is repaired
	assert.True(t, MeetsLayoutThreshold(0.70))
	assert.False(t, MeetsLayoutThreshold(0.699))
	assert.True(t, MeetsLayoutThreshold(0.9))
}

func TestBestMatch(t *testing.T) {
	candidates := [][]float32{
		{1, 0},
		{0, 1},
		{0.9, 0.1},
	}
	idx, score := BestMatch([]float32{1, 0}, candidates)
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 1.0, score, 1e-9)

	idx, _ = BestMatch([]float32{0, 2}, candidates)
	assert.Equal(t, 1, idx)

	idx, score = BestMatch([]float32{1, 0}, nil)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 0.0, score)
}
