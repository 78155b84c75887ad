package agent

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yooncheol/bapsang/internal/model"
	"github.com/yooncheol/bapsang/internal/session"
	"github.com/yooncheol/bapsang/internal/tools"
)

// runModifyTurn revises the previous answer instead of drafting a new
// one. Retrieval is skipped; at most one tool call refreshes prices
// before the revision is folded together. The budget checkpoint applies
// to that call the same as on a fresh dispatch.
func (e *Engine) runModifyTurn(ctx context.Context, sess *session.Session, turn *session.TurnState) (*TurnResult, error) {
	original := e.lastAnswer(sess)
	if original == "" {
		turn.FinalAnswer = noOriginalAnswer
		return e.finishTurn(ctx, sess, turn), nil
	}

	md, err := e.planModify(ctx, sess, turn, original)
	if err != nil {
		return nil, err
	}
	turn.Changes = md.Changes

	if !md.NeedTool {
		turn.FinalAnswer = md.Answer
		return e.finishTurn(ctx, sess, turn), nil
	}

	if strings.TrimSpace(md.Answer) != "" {
		turn.Draft = md.Answer
	} else {
		turn.Draft = original
	}
	turn.PendingCalls = []tools.Call{{
		ID:    uuid.NewString(),
		Tool:  md.ToolCall.Tool,
		Query: md.ToolCall.Query,
	}}

	if e.dispatchPending(ctx, sess, turn, true) {
		return e.suspendTurn(sess, turn), nil
	}
	return e.completeTurn(ctx, sess, turn)
}

// planModify runs the modify-agent model call and parses its decision.
func (e *Engine) planModify(ctx context.Context, sess *session.Session, turn *session.TurnState, original string) (*model.ModifyDecision, error) {
	mctx, span := e.tracer.Start(ctx, "agent.modify")
	defer span.End()

	prompt := buildModifyPrompt(original, turn.Input, turn.ModKind, sess.ShortTerm)
	resp, err := e.llm.Complete(mctx, model.Request{
		System:   modifySystemPrompt,
		User:     prompt,
		JSONMode: true,
	})
	if err != nil {
		return nil, NewGenerationFailureError("modify", err)
	}
	turn.LLMCalls++
	e.audit.LogLLMRequest(sess.ID, turn.TurnID, e.llm.Name(), resp.Model, "modify", resp.InputTokens, resp.OutputTokens)

	md, err := model.ParseModifyDecision(resp.Text)
	if err != nil {
		return nil, NewGenerationFailureError("modify", err)
	}
	return md, nil
}
