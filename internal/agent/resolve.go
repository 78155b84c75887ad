package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yooncheol/bapsang/internal/session"
	"github.com/yooncheol/bapsang/internal/tools"
)

// substituteSuffix steers a re-issued shopping query at the cheaper
// rows.
const substituteSuffix = " 저렴한 대안"

// ResolveInterrupt applies the user's budget choice to the suspended
// turn and runs it to completion. Racing resolutions are serialized per
// session; only the first applies, later calls get the completed result
// echoed back.
func (e *Engine) ResolveInterrupt(ctx context.Context, sessionID, choice string) (*TurnResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("agent: session id is required")
	}
	c, ok := session.ParseChoice(choice)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}

	lock := e.resolveLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	turn := sess.Turn
	if turn == nil || turn.Interrupt == nil {
		return nil, ErrNoInterrupt
	}

	if _, won := turn.Interrupt.Resolve(c); !won {
		if last := e.lastResult(sessionID); last != nil {
			return last, nil
		}
		return nil, ErrNoInterrupt
	}

	ctx, span := e.tracer.Start(ctx, "agent.resolve_interrupt", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("interrupt.choice", c.String()),
	))
	defer span.End()

	e.audit.LogInterruptResolved(sessionID, turn.TurnID, turn.Interrupt.ID, c.String())
	e.metrics.ObserveInterrupt(c.String())
	e.turnLogger(sess, turn).Info("interrupt %s resolved: %s", turn.Interrupt.ID, c)

	var result *TurnResult
	var rerr error
	switch c {
	case session.ChoiceCancel:
		// Remaining calls are abandoned; the violation stays on record.
		turn.FinalAnswer = cancelledAnswer
		result = e.finishTurn(ctx, sess, turn)
	case session.ChoiceSubstitute:
		e.substituteTrigger(ctx, sess, turn)
		e.dispatchPending(ctx, sess, turn, false)
		result, rerr = e.completeTurn(ctx, sess, turn)
	default:
		e.dispatchPending(ctx, sess, turn, false)
		result, rerr = e.completeTurn(ctx, sess, turn)
	}
	if rerr != nil {
		e.failTurn(sess, turn, rerr)
		return nil, rerr
	}
	return result, nil
}

// substituteTrigger re-issues the call that crossed the budget with a
// cheaper-alternative query, swaps the outcome in place and recomputes
// the spend and violations from the final totals.
func (e *Engine) substituteTrigger(ctx context.Context, sess *session.Session, turn *session.TurnState) {
	idx := turn.Interrupt.TriggerIndex
	if idx < 0 || idx >= len(turn.Results) {
		return
	}

	orig := turn.PendingCalls[idx]
	sub := tools.Call{
		ID:    uuid.NewString(),
		Tool:  orig.Tool,
		Query: orig.Query + substituteSuffix,
	}
	res := e.executeCall(ctx, sess, turn, sub)
	turn.PendingCalls[idx] = sub
	turn.Results[idx] = tools.Outcome{Call: sub, Result: res}

	var spent int64
	for _, out := range turn.Results {
		if out.Result != nil {
			spent += out.Result.CostEstimate
		}
	}
	turn.SpentEstimate = spent

	if sess.Budget > 0 && spent > sess.Budget {
		turn.Violations = []session.Violation{session.NewBudgetViolation(sess.Budget, spent)}
	} else {
		turn.Violations = nil
	}
}
