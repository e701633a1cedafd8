// Package llm defines the text-completion boundary used by schema
// normalization and SQL generation.
//
// The core only ever needs "prompt in, text out"; everything else
// (provider selection, auth, transport) lives behind the Completer
// interface so components are testable with injected fakes.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"
)

// Completer is the completion capability consumed by the core.
// Implementations must be safe for concurrent use.
type Completer interface {
	// Complete sends a prompt and returns the model's text output.
	// Transport failures, rate limits and model errors all surface as
	// the returned error; no retry is performed at this layer.
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenkitCompleter implements Completer on top of a Genkit instance.
// The model is addressed by its provider-qualified name
// (e.g. "googleai/gemini-2.5-flash").
type GenkitCompleter struct {
	g           *genkit.Genkit
	modelName   string
	temperature float32
	maxTokens   int
}

// New creates a GenkitCompleter.
//
// modelName must be provider-qualified (config.FullModelName provides
// this). temperature and maxTokens are passed through to the provider.
func New(g *genkit.Genkit, modelName string, temperature float32, maxTokens int) (*GenkitCompleter, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &GenkitCompleter{
		g:           g,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Complete implements Completer via a single genkit.Generate call.
func (c *GenkitCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithPrompt(prompt),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(c.temperature),
			MaxOutputTokens: int32(c.maxTokens), // #nosec G115 -- bounded by config validation
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}
