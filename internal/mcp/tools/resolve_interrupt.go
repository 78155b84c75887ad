package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yooncheol/bapsang/internal/agent"
)

// ResolveInterruptTool applies the user's choice to a turn suspended on
// a budget interrupt.
type ResolveInterruptTool struct {
	engine *agent.Engine
}

// NewResolveInterruptTool creates a new resolve_interrupt tool.
func NewResolveInterruptTool(engine *agent.Engine) *ResolveInterruptTool {
	return &ResolveInterruptTool{engine: engine}
}

// ResolveInterruptInput defines the input parameters for MCP.
type ResolveInterruptInput struct {
	SessionID string `json:"session_id"`
	Choice    string `json:"choice"` // continue, substitute or cancel
}

// Execute resolves the pending interrupt (implements Tool).
func (t *ResolveInterruptTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var params ResolveInterruptInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	if params.SessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	if params.Choice == "" {
		return nil, fmt.Errorf("choice is required")
	}

	result, err := t.engine.ResolveInterrupt(ctx, params.SessionID, params.Choice)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve interrupt: %w", err)
	}
	return result, nil
}
