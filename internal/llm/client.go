package llm

import (
	"context"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prior exchange message replayed as conditioning context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a backend needs for one completion.
// Images are local file paths; providers without vision support ignore them.
type Request struct {
	System  string
	History []Message
	Prompt  string
	Images  []string
}

type LLMClient interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
