package llm

import (
	"context"
	"fmt"
)

// Provider is a single text-generation backend. Options carry per-call
// overrides such as "model" and "response_format".
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// GenerateWithFallback tries each model in order against one provider,
// returning the first successful response. An empty model list runs a
// single call with the provider's default model.
func GenerateWithFallback(ctx context.Context, p Provider, models []string, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	if len(models) == 0 {
		return p.GenerateResponse(ctx, prompt, systemPrompt, options)
	}

	var lastErr error
	for _, model := range models {
		opts := make(map[string]interface{}, len(options)+1)
		for k, v := range options {
			opts[k] = v
		}
		opts["model"] = model

		text, err := p.GenerateResponse(ctx, prompt, systemPrompt, opts)
		if err == nil && text != "" {
			return text, nil
		}
		if err == nil {
			err = fmt.Errorf("model %s returned empty response", model)
		}
		lastErr = err
	}
	return "", fmt.Errorf("all models failed: %w", lastErr)
}
