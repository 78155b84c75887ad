package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/session"
)

// GetHistoryTool lists a session's exchanges, oldest first.
type GetHistoryTool struct {
	engine *agent.Engine
}

// NewGetHistoryTool creates a new get_history tool.
func NewGetHistoryTool(engine *agent.Engine) *GetHistoryTool {
	return &GetHistoryTool{engine: engine}
}

// GetHistoryInput defines the input parameters for MCP.
type GetHistoryInput struct {
	SessionID string `json:"session_id"`
}

// HistoryOutput is the tool result payload.
type HistoryOutput struct {
	SessionID string             `json:"session_id"`
	Exchanges []session.Exchange `json:"exchanges"`
}

// Execute fetches the history (implements Tool).
func (t *GetHistoryTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var params GetHistoryInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	if params.SessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	exchanges, err := t.engine.History(params.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return &HistoryOutput{SessionID: params.SessionID, Exchanges: exchanges}, nil
}
