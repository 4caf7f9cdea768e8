package llm

import (
	"context"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

// Generator is the narrow facade agents use to produce debate text.
// It binds a provider to a model and temperature.
type Generator struct {
	provider    Provider
	model       string
	temperature float64
}

// NewGenerator creates a generator. A nil provider is allowed; Generate then
// reports GENERATION_UNAVAILABLE and callers use their fallback texts.
func NewGenerator(provider Provider, model string, temperature float64) *Generator {
	return &Generator{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// Available reports whether a backend is configured.
func (g *Generator) Available() bool {
	return g != nil && g.provider != nil
}

// Generate produces one completion for a system persona and a user prompt.
func (g *Generator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if !g.Available() {
		return "", errors.New(errors.CodeGenerationUnavailable, "no generation backend configured", nil).
			WithRecoverable(true)
	}
	resp, err := g.provider.Chat(ctx, ChatRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.New(errors.CodeGenerationUnavailable, "generation backend failed", err).
			WithRecoverable(true)
	}
	return resp.Content, nil
}
