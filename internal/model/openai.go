package model

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yooncheol/bapsang/internal/config"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIModel implements LLM against the OpenAI chat completions API.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel creates an OpenAI backend. The API key comes from
// cfg.APIKey, falling back to the OPENAI_API_KEY environment variable.
func NewOpenAIModel(cfg config.ModelConfig) (*OpenAIModel, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("openai backend requires an API key (model.api_key or OPENAI_API_KEY)")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	return &OpenAIModel{
		client: openai.NewClient(key),
		model:  modelName,
	}, nil
}

// Name implements LLM.
func (m *OpenAIModel) Name() string { return "openai" }

// Complete implements LLM.
func (m *OpenAIModel) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   2000,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := m.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion: empty choice list")
	}

	return &Response{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
	}, nil
}
