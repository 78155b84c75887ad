package agent

import (
	"github.com/yooncheol/bapsang/internal/session"
)

// TurnRequest is one user turn submitted to the engine.
type TurnRequest struct {
	// SessionID identifies the conversation. Required.
	SessionID string

	// UserID owns the long-term memory. Defaults to the session ID.
	UserID string

	// Text is the user's message.
	Text string

	// Budget overrides the session budget in KRW when positive.
	Budget int64
}

// InterruptPrompt is the question surfaced to the user while a turn is
// suspended on a budget interrupt.
type InterruptPrompt struct {
	Message string   `json:"message"`
	Options []string `json:"options"`
	Budget  int64    `json:"budget"`
	Actual  int64    `json:"actual"`
	Diff    int64    `json:"diff"`
}

// TurnDebug exposes pipeline internals alongside the answer.
type TurnDebug struct {
	Route         string              `json:"route"`
	ModKind       string              `json:"mod_kind,omitempty"`
	SnippetCount  int                 `json:"snippet_count"`
	Reranked      bool                `json:"reranked"`
	ToolCalls     int                 `json:"tool_calls"`
	ToolFailures  int                 `json:"tool_failures"`
	SpentEstimate int64               `json:"spent_estimate"`
	LLMCalls      int                 `json:"llm_calls"`
	Violations    []session.Violation `json:"violations,omitempty"`
	Changes       []string            `json:"changes,omitempty"`
}

// TurnResult is the engine's verdict for one turn. A non-nil Interrupt
// means the turn is suspended awaiting a budget choice and Answer is
// empty until the interrupt resolves.
type TurnResult struct {
	TurnID     string           `json:"turn_id"`
	Answer     string           `json:"answer"`
	Confidence float64          `json:"confidence"`
	Route      string           `json:"route"`
	Interrupt  *InterruptPrompt `json:"interrupt,omitempty"`
	Debug      TurnDebug        `json:"debug"`
}

// debugFrom snapshots the turn state into the result debug block.
func debugFrom(turn *session.TurnState) TurnDebug {
	var failures int
	for _, out := range turn.Results {
		if out.Result == nil || !out.Result.Success {
			failures++
		}
	}
	return TurnDebug{
		Route:         turn.Route.String(),
		ModKind:       turn.ModKind,
		SnippetCount:  len(turn.Snippets),
		Reranked:      turn.Reranked,
		ToolCalls:     len(turn.Results),
		ToolFailures:  failures,
		SpentEstimate: turn.SpentEstimate,
		LLMCalls:      turn.LLMCalls,
		Violations:    turn.Violations,
		Changes:       turn.Changes,
	}
}

// promptFrom builds the user-facing view of a raised interrupt.
func promptFrom(intr *session.Interrupt) *InterruptPrompt {
	if intr == nil {
		return nil
	}
	return &InterruptPrompt{
		Message: intr.Message,
		Options: intr.Options,
		Budget:  intr.Budget,
		Actual:  intr.Actual,
		Diff:    intr.Diff,
	}
}
