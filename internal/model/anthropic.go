package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yooncheol/bapsang/internal/config"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicModel implements LLM against the Anthropic Messages API.
type AnthropicModel struct {
	client anthropic.Client
	model  string
}

// NewAnthropicModel creates an Anthropic backend. With an empty
// cfg.APIKey the SDK reads ANTHROPIC_API_KEY from the environment.
func NewAnthropicModel(cfg config.ModelConfig) (*AnthropicModel, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultAnthropicModel
	}

	var client anthropic.Client
	if cfg.APIKey != "" {
		client = anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	} else {
		client = anthropic.NewClient()
	}

	return &AnthropicModel{client: client, model: modelName}, nil
}

// Name implements LLM.
func (m *AnthropicModel) Name() string { return "anthropic" }

// Complete implements LLM.
func (m *AnthropicModel) Complete(ctx context.Context, req Request) (*Response, error) {
	user := req.User
	if req.JSONMode {
		// The Messages API has no JSON response mode, so constrain via
		// the prompt instead.
		user += "\n\n반드시 하나의 JSON 객체로만 응답하세요. 다른 텍스트는 쓰지 마세요."
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: 2000,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic completion: %w", err)
	}

	var parts []string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			parts = append(parts, resp.Content[i].Text)
		}
	}

	return &Response{
		Text:         strings.Join(parts, ""),
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		Model:        m.model,
	}, nil
}
