// Package model provides LLM backends for the conversation engine.
//
// All backends implement the LLM interface: a single-shot completion
// call that takes a system prompt plus a user prompt and returns text.
// The engine drives every backend the same way, so the mock backend is
// interchangeable with the hosted providers in tests and demos.
package model

import (
	"context"
	"fmt"

	"github.com/yooncheol/bapsang/internal/config"
)

// Request is a single completion request.
type Request struct {
	// System is the system prompt. Empty means no system message.
	System string

	// User is the user-turn prompt.
	User string

	// JSONMode asks the backend to return a single JSON object.
	// Backends that support constrained output enable it; the mock
	// backend always honors it.
	JSONMode bool
}

// Response is the backend's completion.
type Response struct {
	// Text is the raw completion text.
	Text string

	// InputTokens and OutputTokens are usage figures when the backend
	// reports them, zero otherwise.
	InputTokens  int
	OutputTokens int

	// Model is the concrete model that served the request.
	Model string
}

// LLM is the minimal completion interface the engine depends on.
type LLM interface {
	// Complete runs one completion. Implementations must honor ctx
	// cancellation and return an error rather than a partial response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Name identifies the backend ("mock", "openai", ...).
	Name() string
}

// New builds the backend selected by cfg.Backend.
func New(cfg config.ModelConfig) (LLM, error) {
	switch cfg.Backend {
	case "mock", "":
		return NewMockModel(cfg.ScenarioPath)
	case "openai":
		return NewOpenAIModel(cfg)
	case "anthropic":
		return NewAnthropicModel(cfg)
	case "gemini":
		return NewGeminiModel(cfg)
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
	}
}
