package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToolPlan is one tool invocation the model asks for.
type ToolPlan struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

// Decision is the phase-one output of the main agent: either a draft
// answer that stands on its own, or a set of tool calls to ground the
// draft before synthesis.
type Decision struct {
	Draft     string     `json:"draft"`
	NeedTools bool       `json:"need_tools"`
	Thought   string     `json:"thought,omitempty"`
	ToolCalls []ToolPlan `json:"tool_calls,omitempty"`
}

// ModifyDecision is the phase-one output of the modify agent: a revised
// answer plus the list of changes, optionally preceded by one tool call.
type ModifyDecision struct {
	Answer   string    `json:"answer"`
	Changes  []string  `json:"changes,omitempty"`
	NeedTool bool      `json:"need_tool"`
	ToolCall *ToolPlan `json:"tool_call,omitempty"`
}

// ParseDecision decodes and validates a phase-one decision document.
// The text may wrap the JSON object in markdown fences or prose; only
// the first balanced object is considered.
func ParseDecision(text string) (*Decision, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var d Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decision is not valid JSON: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Decision) validate() error {
	if d.NeedTools {
		if len(d.ToolCalls) == 0 {
			return fmt.Errorf("decision requests tools but lists no tool calls")
		}
		for i, tc := range d.ToolCalls {
			if strings.TrimSpace(tc.Tool) == "" {
				return fmt.Errorf("tool call %d has no tool name", i)
			}
			if strings.TrimSpace(tc.Query) == "" {
				return fmt.Errorf("tool call %d (%s) has no query", i, tc.Tool)
			}
		}
		return nil
	}
	if strings.TrimSpace(d.Draft) == "" {
		return fmt.Errorf("decision has neither draft nor tool calls")
	}
	return nil
}

// ParseModifyDecision decodes and validates a modify-agent decision.
func ParseModifyDecision(text string) (*ModifyDecision, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var d ModifyDecision
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("modify decision is not valid JSON: %w", err)
	}
	if d.NeedTool {
		if d.ToolCall == nil {
			return nil, fmt.Errorf("modify decision requests a tool but names none")
		}
		if strings.TrimSpace(d.ToolCall.Tool) == "" || strings.TrimSpace(d.ToolCall.Query) == "" {
			return nil, fmt.Errorf("modify decision tool call is incomplete")
		}
	} else if strings.TrimSpace(d.Answer) == "" {
		return nil, fmt.Errorf("modify decision has neither answer nor tool call")
	}
	return &d, nil
}

// extractJSONObject finds the first balanced top-level JSON object in
// text. Models sometimes wrap the object in ```json fences or lead with
// a sentence; both are tolerated.
func extractJSONObject(text string) (json.RawMessage, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return json.RawMessage(text[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("unterminated JSON object in model output")
}
