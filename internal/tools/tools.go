// Package tools provides the tool registry and the mock-backed
// capabilities the bapsang agents dispatch against: shopping and
// recipe search, nutrition lookups, weather, health guidelines and
// small calculators. All capabilities are deterministic and offline.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	// MaxToolResponseBytes is the maximum size of a tool response in bytes.
	// Responses larger than this will be truncated to prevent context overflow.
	// 50KB is a reasonable limit (~12,500 tokens at 4 chars/token).
	MaxToolResponseBytes = 50 * 1024
)

// Tool defines the interface for agent tools.
type Tool interface {
	// Name returns the tool's unique identifier.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// InputSchema returns JSON Schema for input validation.
	InputSchema() json.RawMessage

	// Execute runs the tool with given input.
	Execute(ctx context.Context, input json.RawMessage) (*Result, error)
}

// Result represents the output of a tool execution. Failure is a
// value (Success=false plus Error), never a turn-aborting error.
type Result struct {
	// Success indicates if the tool executed successfully
	Success bool `json:"success"`

	// Value contains the tool's output (tool-specific structure)
	Value interface{} `json:"value,omitempty"`

	// CostEstimate is the basket cost in KRW quoted by shopping results.
	// Zero for tools that do not quote prices.
	CostEstimate int64 `json:"cost_estimate,omitempty"`

	// Error contains error details if Success is false
	Error string `json:"error,omitempty"`

	// Summary is a brief description of what happened (for display)
	Summary string `json:"summary,omitempty"`

	// ElapsedMs is how long the tool took to run
	ElapsedMs int64 `json:"elapsed_ms"`
}

// Call is one planned tool invocation within a turn.
type Call struct {
	ID    string `json:"id"`
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

// Input marshals the call's query into the common tool payload.
func (c Call) Input() json.RawMessage {
	raw, err := json.Marshal(QueryInput{Query: c.Query})
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

// Outcome pairs a dispatched call with its result.
type Outcome struct {
	Call   Call    `json:"call"`
	Result *Result `json:"result"`
}

// QueryInput is the common input payload accepted by every capability.
type QueryInput struct {
	Query string `json:"query"`
}

func parseQuery(input json.RawMessage) (string, error) {
	var in QueryInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return "", fmt.Errorf("invalid tool input: %w", err)
		}
	}
	return in.Query, nil
}

// querySchema is the JSON Schema shared by query-driven capabilities.
func querySchema(description string) json.RawMessage {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []string{"query"},
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": description,
			},
		},
	}
	raw, _ := json.Marshal(schema)
	return raw
}

// truncatedValue is used when tool output exceeds MaxToolResponseBytes.
// It preserves structure while indicating data was truncated.
type truncatedValue struct {
	Truncated      bool   `json:"_truncated"`
	OriginalBytes  int    `json:"_original_bytes"`
	TruncatedBytes int    `json:"_truncated_bytes"`
	TruncationNote string `json:"_truncation_note"`
	PartialValue   string `json:"partial_value"`
}

// truncateResult checks if the result value exceeds maxBytes and
// truncates it if necessary to prevent context overflow.
func truncateResult(result *Result, maxBytes int) *Result {
	if result == nil || result.Value == nil {
		return result
	}

	valueBytes, err := json.Marshal(result.Value)
	if err != nil {
		// If we can't marshal, return as-is and let the caller handle it
		return result
	}

	if len(valueBytes) <= maxBytes {
		return result
	}

	// Keep the first ~80% of the allowed bytes as partial value
	partialBytes := maxBytes * 80 / 100
	partial := string(valueBytes)
	if len(partial) > partialBytes {
		partial = partial[:partialBytes]
	}

	truncated := &truncatedValue{
		Truncated:      true,
		OriginalBytes:  len(valueBytes),
		TruncatedBytes: maxBytes,
		TruncationNote: fmt.Sprintf("Response truncated from %d to ~%d bytes to prevent context overflow. Consider using more specific queries to reduce result size.", len(valueBytes), maxBytes),
		PartialValue:   partial,
	}

	summary := result.Summary
	if summary != "" {
		summary = fmt.Sprintf("%s [TRUNCATED: %d→%d bytes]", summary, len(valueBytes), maxBytes)
	} else {
		summary = fmt.Sprintf("[TRUNCATED: %d→%d bytes]", len(valueBytes), maxBytes)
	}

	return &Result{
		Success:      result.Success,
		Value:        truncated,
		CostEstimate: result.CostEstimate,
		Error:        result.Error,
		Summary:      summary,
		ElapsedMs:    result.ElapsedMs,
	}
}
