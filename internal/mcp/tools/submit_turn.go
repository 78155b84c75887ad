// Package tools implements the MCP tool surface over the turn engine.
// Each tool parses its raw JSON input, validates the required fields
// and delegates to the engine.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yooncheol/bapsang/internal/agent"
)

// SubmitTurnTool runs one conversational turn.
type SubmitTurnTool struct {
	engine *agent.Engine
}

// NewSubmitTurnTool creates a new submit_turn tool.
func NewSubmitTurnTool(engine *agent.Engine) *SubmitTurnTool {
	return &SubmitTurnTool{engine: engine}
}

// SubmitTurnInput defines the input parameters for MCP.
type SubmitTurnInput struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"` // Optional: defaults to session_id
	Text      string `json:"text"`
	Budget    int64  `json:"budget,omitempty"` // Optional: shopping budget in KRW
}

// Execute runs the turn (implements Tool).
func (t *SubmitTurnTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var params SubmitTurnInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	if params.SessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	if strings.TrimSpace(params.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	if params.Budget < 0 {
		return nil, fmt.Errorf("budget must not be negative")
	}

	result, err := t.engine.SubmitTurn(ctx, agent.TurnRequest{
		SessionID: params.SessionID,
		UserID:    params.UserID,
		Text:      params.Text,
		Budget:    params.Budget,
	})
	if err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}
	return result, nil
}
