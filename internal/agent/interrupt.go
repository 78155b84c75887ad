package agent

import (
	"github.com/yooncheol/bapsang/internal/session"
)

// InterruptController arms the budget checkpoint for one dispatch pass.
// It accumulates the costs quoted by tool results and reports the first
// crossing of the budget ceiling. Resumed passes over the same turn
// tolerate overage, so a controller is only built for the initial
// dispatch: one interrupt per turn.
type InterruptController struct {
	budget int64
	spent  int64
	fired  bool
}

// NewInterruptController arms a checkpoint against budget, starting from
// the cost already quoted this turn. A budget of 0 or less never fires.
func NewInterruptController(budget, alreadySpent int64) *InterruptController {
	return &InterruptController{budget: budget, spent: alreadySpent}
}

// RecordCost adds one call's quoted cost and reports whether that call
// crossed the ceiling. Only the first crossing fires.
func (c *InterruptController) RecordCost(cost int64) bool {
	c.spent += cost
	if c.budget <= 0 || c.fired {
		return false
	}
	if c.spent > c.budget {
		c.fired = true
		return true
	}
	return false
}

// Spent returns the total quoted cost recorded so far.
func (c *InterruptController) Spent() int64 { return c.spent }

// Fired reports whether the checkpoint has already fired.
func (c *InterruptController) Fired() bool { return c.fired }

// Raise builds the awaiting-choice interrupt for the call at
// triggerIndex that crossed the ceiling.
func (c *InterruptController) Raise(triggerIndex int) *session.Interrupt {
	return session.NewInterrupt(c.budget, c.spent, triggerIndex)
}
