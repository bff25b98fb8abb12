package llm

import (
	"context"
	"errors"
	"strings"

	"femwork/internal/config"
	"femwork/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// NewFromConfig picks the configured model provider, preferring Groq over
// Gemini. It returns a nil generator when neither key is set; callers fall
// back to static content in that case.
func NewFromConfig(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch {
	case cfg.GroqAPIKey != "":
		return NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel), nil
	case cfg.GeminiAPIKey != "":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return nil, nil
}

// Close releases the generator if it holds resources.
func Close(g TextGenerator) error {
	if c, ok := g.(Closer); ok {
		return c.Close()
	}
	return nil
}

// StripFences removes a Markdown code fence some models wrap JSON in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var errNoContent = errors.New("no content generated")
