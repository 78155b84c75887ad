package model

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/yooncheol/bapsang/internal/config"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiModel implements LLM against the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini backend. The API key comes from
// cfg.APIKey, falling back to the GEMINI_API_KEY environment variable.
func NewGeminiModel(cfg config.ModelConfig) (*GeminiModel, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("gemini backend requires an API key (model.api_key or GEMINI_API_KEY)")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiModel{client: client, model: modelName}, nil
}

// Name implements LLM.
func (m *GeminiModel) Name() string { return "gemini" }

// Complete implements LLM.
func (m *GeminiModel) Complete(ctx context.Context, req Request) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: 2000,
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(req.User), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini completion: %w", err)
	}

	out := &Response{
		Text:  resp.Text(),
		Model: m.model,
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}
