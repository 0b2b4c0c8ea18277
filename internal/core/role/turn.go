package role

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/agenthands/slideforge/internal/llm"
)

// Turn is one recorded exchange with a generative backend. Turns are
// identity-equal: two turns are never the same by value. After token
// accounting a turn is only ever mutated to attach its embedding.
type Turn struct {
	ID           int           `json:"id"`
	Prompt       string        `json:"prompt"`
	Response     string        `json:"response"`
	Transcript   []llm.Message `json:"transcript"`
	Images       []string      `json:"images,omitempty"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`

	embedding []float32
}

// CalcTokens fills in the turn's token counts. Image inputs are charged
// with the tiled vision formula: 85 base plus 170 per 512px tile after the
// long edge is clamped to 1024px.
func (t *Turn) CalcTokens(counter TokenCounter) error {
	for _, img := range t.Images {
		tokens, err := imageTokens(img)
		if err != nil {
			return err
		}
		t.InputTokens += tokens
	}
	t.InputTokens += counter.Count(t.Prompt)
	t.OutputTokens = counter.Count(t.Response)
	return nil
}

func imageTokens(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	width, height := cfg.Width, cfg.Height
	if width > 1024 || height > 1024 {
		if width > height {
			height = height * 1024 / width
			width = 1024
		} else {
			width = width * 1024 / height
			height = 1024
		}
	}
	h := int(math.Ceil(float64(height) / 512))
	w := int(math.Ceil(float64(width) / 512))
	return 85 + 170*h*w, nil
}
