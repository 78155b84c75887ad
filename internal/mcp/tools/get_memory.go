package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/memory"
)

// GetMemoryTool lists the long-term facts known about a user.
type GetMemoryTool struct {
	engine *agent.Engine
}

// NewGetMemoryTool creates a new get_memory tool.
func NewGetMemoryTool(engine *agent.Engine) *GetMemoryTool {
	return &GetMemoryTool{engine: engine}
}

// GetMemoryInput defines the input parameters for MCP.
type GetMemoryInput struct {
	UserID string `json:"user_id"`
}

// MemoryOutput is the tool result payload.
type MemoryOutput struct {
	UserID string        `json:"user_id"`
	Facts  []memory.Fact `json:"facts"`
}

// Execute fetches the facts (implements Tool).
func (t *GetMemoryTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var params GetMemoryInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	if params.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	facts, err := t.engine.Memory(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memory: %w", err)
	}
	return &MemoryOutput{UserID: params.UserID, Facts: facts}, nil
}
