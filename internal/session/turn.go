package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/yooncheol/bapsang/internal/retrieval"
	"github.com/yooncheol/bapsang/internal/tools"
)

// ViolationBudgetExceed marks a turn whose estimated spend crossed the
// session budget.
const ViolationBudgetExceed = "budget_exceed"

// Violation records a constraint the turn could not honor. Violations
// survive into the turn result so shells can surface them.
type Violation struct {
	Type   string `json:"type"`
	Budget int64  `json:"budget"`
	Actual int64  `json:"actual"`
	Diff   int64  `json:"diff"`
}

// NewBudgetViolation builds the budget_exceed violation for actual
// spend over budget.
func NewBudgetViolation(budget, actual int64) Violation {
	return Violation{
		Type:   ViolationBudgetExceed,
		Budget: budget,
		Actual: actual,
		Diff:   actual - budget,
	}
}

// TurnState is the working state of one turn. It lives on the Session
// from submission until the turn completes, and across a budget
// suspension, so a resolution can resume exactly where dispatch
// stopped.
type TurnState struct {
	TurnID    string
	Input     string
	StartedAt time.Time

	// Routing.
	Route   Route
	ModKind string

	// BudgetMention is the budget the user named with this turn, 0
	// when the request carried none. Survives suspension so the memory
	// write still sees it after a resume.
	BudgetMention int64

	// Retrieval.
	Snippets []retrieval.Snippet
	Reranked bool

	// Planning phase output.
	Draft   string
	Thought string

	// Tool dispatch. NextCall is the cursor into PendingCalls: calls
	// before it have outcomes in Results, calls from it on are still
	// undispatched. A resumed turn continues from NextCall.
	PendingCalls  []tools.Call
	NextCall      int
	Results       []tools.Outcome
	SpentEstimate int64

	// Interrupt is the suspended budget question, nil unless raised.
	Interrupt *Interrupt

	// Revision bookkeeping for MODIFY turns.
	Changes []string

	// Synthesis and reflection output.
	FinalAnswer string
	Confidence  float64
	Violations  []Violation

	// LLMCalls counts model completions spent on this turn.
	LLMCalls int
}

// NewTurnState starts the working state for one user input.
func NewTurnState(input string) *TurnState {
	return &TurnState{
		TurnID:    uuid.NewString(),
		Input:     input,
		StartedAt: time.Now(),
	}
}

// Suspended reports whether the turn is parked on an unresolved
// interrupt.
func (t *TurnState) Suspended() bool {
	return t.Interrupt != nil && t.Interrupt.State() == InterruptAwaitingChoice
}
