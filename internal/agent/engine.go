// Package agent implements the turn orchestration engine: route the
// input, draft an answer over retrieval context, dispatch the planned
// tool calls under a budget checkpoint, synthesize the final answer,
// write memory and score the result. A budget overrun suspends the turn
// mid-dispatch until the user picks continue, substitute or cancel.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yooncheol/bapsang/internal/audit"
	"github.com/yooncheol/bapsang/internal/config"
	"github.com/yooncheol/bapsang/internal/logging"
	"github.com/yooncheol/bapsang/internal/memory"
	"github.com/yooncheol/bapsang/internal/metrics"
	"github.com/yooncheol/bapsang/internal/model"
	"github.com/yooncheol/bapsang/internal/retrieval"
	"github.com/yooncheol/bapsang/internal/session"
	"github.com/yooncheol/bapsang/internal/tools"
)

// retrieveTopK is how many snippets the draft prompt receives.
const retrieveTopK = 5

const (
	// cancelledAnswer closes out a turn the user cancelled at the
	// budget checkpoint.
	cancelledAnswer = "작업을 취소했습니다."

	// clarificationAnswer asks for a usable request when routing found
	// nothing to work with.
	clarificationAnswer = "무엇을 도와드릴까요? 원하시는 요리나 식단을 알려주세요."

	// noOriginalAnswer replies to a modification request that has no
	// previous answer to modify.
	noOriginalAnswer = "수정할 이전 응답이 없습니다. 먼저 원하시는 요리를 알려주세요."
)

// Turn outcome labels for metrics.
const (
	outcomeAnswered   = "answered"
	outcomeSuspended  = "suspended"
	outcomeCancelled  = "cancelled"
	outcomeUnroutable = "unroutable"
	outcomeFailed     = "failed"
)

// Options bundles the engine collaborators.
type Options struct {
	Config    config.AgentConfig
	Model     model.LLM
	Retriever retrieval.Retriever
	Registry  *tools.Registry
	Sessions  *session.Store
	Facts     memory.FactStore

	// Classifier defaults to the keyword classifier.
	Classifier CueClassifier

	// Audit defaults to a nop logger.
	Audit *audit.Logger

	// Metrics may be nil to disable instrumentation.
	Metrics *metrics.Metrics
}

// Engine drives the turn pipeline. One engine serves many sessions; the
// session store serializes turns per session.
type Engine struct {
	cfg        config.AgentConfig
	llm        model.LLM
	retriever  retrieval.Retriever
	registry   *tools.Registry
	sessions   *session.Store
	facts      memory.FactStore
	classifier CueClassifier
	audit      *audit.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *logging.Logger

	mu          sync.Mutex
	lastResults map[string]*TurnResult
	resolving   map[string]*sync.Mutex
}

// New builds an engine from opts.
func New(opts Options) (*Engine, error) {
	if opts.Model == nil {
		return nil, fmt.Errorf("agent: model backend is required")
	}
	if opts.Retriever == nil {
		return nil, fmt.Errorf("agent: retriever is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("agent: tool registry is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("agent: session store is required")
	}
	if opts.Facts == nil {
		return nil, fmt.Errorf("agent: fact store is required")
	}
	if opts.Classifier == nil {
		opts.Classifier = NewKeywordClassifier()
	}
	if opts.Audit == nil {
		opts.Audit = audit.NewNopLogger()
	}

	return &Engine{
		cfg:         opts.Config,
		llm:         opts.Model,
		retriever:   opts.Retriever,
		registry:    opts.Registry,
		sessions:    opts.Sessions,
		facts:       opts.Facts,
		classifier:  opts.Classifier,
		audit:       opts.Audit,
		metrics:     opts.Metrics,
		tracer:      otel.Tracer("bapsang/agent"),
		logger:      logging.GetLogger("agent.engine"),
		lastResults: make(map[string]*TurnResult),
		resolving:   make(map[string]*sync.Mutex),
	}, nil
}

// SubmitTurn runs one user turn end to end. When the budget checkpoint
// fires, the returned result carries an InterruptPrompt and the session
// stays claimed until ResolveInterrupt completes the turn.
func (e *Engine) SubmitTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.SessionID == "" {
		return nil, fmt.Errorf("agent: session id is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := e.sessions.Acquire(req.SessionID, req.UserID, e.cfg.DefaultBudgetKRW)
	if err != nil {
		return nil, err
	}
	if req.Budget > 0 {
		sess.Budget = req.Budget
	}

	turn := session.NewTurnState(req.Text)
	turn.BudgetMention = req.Budget
	sess.Turn = turn

	ctx, span := e.tracer.Start(ctx, "agent.turn", trace.WithAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("turn.id", turn.TurnID),
	))
	defer span.End()

	e.audit.LogTurnStarted(sess.ID, turn.TurnID, sess.UserID, req.Text)

	decision := e.classifier.Classify(req.Text, sess.History)
	turn.Route = decision.Route
	turn.ModKind = decision.ModKind
	span.SetAttributes(attribute.String("turn.route", decision.Route.String()))
	e.audit.LogRouteDecided(sess.ID, turn.TurnID, decision.Route.String(), decision.ModKind)
	e.turnLogger(sess, turn).Debug("routed %s (cue=%q, kind=%q)", decision.Route, decision.Cue, decision.ModKind)

	var result *TurnResult
	switch decision.Route {
	case session.RouteUnroutable:
		return e.finishUnroutable(sess, turn), nil
	case session.RouteModify:
		result, err = e.runModifyTurn(ctx, sess, turn)
	default:
		result, err = e.runNewTurn(ctx, sess, turn)
	}
	if err != nil {
		e.failTurn(sess, turn, err)
		return nil, err
	}
	return result, nil
}

// runNewTurn drafts and answers a fresh request: retrieve, plan,
// dispatch tools under the budget checkpoint, synthesize.
func (e *Engine) runNewTurn(ctx context.Context, sess *session.Session, turn *session.TurnState) (*TurnResult, error) {
	rctx, rspan := e.tracer.Start(ctx, "agent.retrieve")
	snippets, err := e.retriever.Retrieve(rctx, turn.Input, retrieveTopK)
	rspan.End()
	if err != nil {
		// A failed lookup degrades to an ungrounded draft.
		e.turnLogger(sess, turn).Warn("retrieval failed, drafting without context: %v", err)
		snippets = nil
	}
	turn.Snippets = snippets

	facts := e.userFacts(ctx, sess.UserID)

	dec, err := e.planDecision(ctx, sess, turn, facts)
	if err != nil {
		return nil, err
	}
	turn.Draft = dec.Draft
	turn.Thought = dec.Thought

	if dec.NeedTools {
		plans := dec.ToolCalls
		if limit := e.cfg.MaxToolCalls; limit > 0 && len(plans) > limit {
			plans = plans[:limit]
		}
		for _, p := range plans {
			turn.PendingCalls = append(turn.PendingCalls, tools.Call{
				ID:    uuid.NewString(),
				Tool:  p.Tool,
				Query: p.Query,
			})
		}
	}

	if e.dispatchPending(ctx, sess, turn, true) {
		return e.suspendTurn(sess, turn), nil
	}
	return e.completeTurn(ctx, sess, turn)
}

// planDecision runs the phase-one model call and parses the decision
// document.
func (e *Engine) planDecision(ctx context.Context, sess *session.Session, turn *session.TurnState, facts []memory.Fact) (*model.Decision, error) {
	pctx, span := e.tracer.Start(ctx, "agent.plan")
	defer span.End()

	prompt := buildMainPrompt(turn.Input, sess.Budget, facts, turn.Snippets, e.registry.Descriptions())
	resp, err := e.llm.Complete(pctx, model.Request{
		System:   mainSystemPrompt,
		User:     prompt,
		JSONMode: true,
	})
	if err != nil {
		return nil, NewGenerationFailureError("decision", err)
	}
	turn.LLMCalls++
	e.audit.LogLLMRequest(sess.ID, turn.TurnID, e.llm.Name(), resp.Model, "decision", resp.InputTokens, resp.OutputTokens)

	dec, err := model.ParseDecision(resp.Text)
	if err != nil {
		return nil, NewGenerationFailureError("decision", err)
	}
	return dec, nil
}

// dispatchPending executes the turn's planned calls from the cursor
// onward, sequentially and in plan order. With checkpoint set, quoted
// costs are armed against the session budget and the first crossing
// suspends the turn; resumed passes tolerate overage. Reports whether
// the turn suspended.
func (e *Engine) dispatchPending(ctx context.Context, sess *session.Session, turn *session.TurnState, checkpoint bool) bool {
	if turn.NextCall >= len(turn.PendingCalls) {
		return false
	}

	tctx, span := e.tracer.Start(ctx, "agent.tools", trace.WithAttributes(
		attribute.Int("tools.pending", len(turn.PendingCalls)-turn.NextCall),
	))
	defer span.End()

	var ctl *InterruptController
	if checkpoint {
		ctl = NewInterruptController(sess.Budget, turn.SpentEstimate)
	}

	for turn.NextCall < len(turn.PendingCalls) {
		call := turn.PendingCalls[turn.NextCall]
		res := e.executeCall(tctx, sess, turn, call)
		turn.Results = append(turn.Results, tools.Outcome{Call: call, Result: res})
		turn.NextCall++

		var cost int64
		if res != nil {
			cost = res.CostEstimate
		}
		if ctl == nil {
			turn.SpentEstimate += cost
			continue
		}
		crossed := ctl.RecordCost(cost)
		turn.SpentEstimate = ctl.Spent()
		if crossed {
			intr := ctl.Raise(turn.NextCall - 1)
			turn.Interrupt = intr
			turn.Violations = append(turn.Violations, session.NewBudgetViolation(intr.Budget, intr.Actual))
			e.audit.LogInterruptRaised(sess.ID, turn.TurnID, intr.ID, int(intr.Budget), int(intr.Actual), int(intr.Diff))
			return true
		}
	}
	return false
}

// executeCall runs one tool call with audit and metrics around it.
func (e *Engine) executeCall(ctx context.Context, sess *session.Session, turn *session.TurnState, call tools.Call) *tools.Result {
	e.audit.LogToolStart(sess.ID, turn.TurnID, call.Tool, call.Query)
	started := time.Now()
	res := e.registry.Execute(ctx, call.Tool, call.Input())
	elapsed := time.Since(started)

	success := res != nil && res.Success
	var cost int64
	if res != nil {
		cost = res.CostEstimate
	}
	e.audit.LogToolComplete(sess.ID, turn.TurnID, call.Tool, success, elapsed, int(cost))
	e.metrics.ObserveTool(call.Tool, success)
	return res
}

// suspendTurn parks the turn on its interrupt. The session stays
// claimed so no second turn can start underneath the suspension.
func (e *Engine) suspendTurn(sess *session.Session, turn *session.TurnState) *TurnResult {
	e.metrics.ObserveTurn(turn.Route.String(), outcomeSuspended, time.Since(turn.StartedAt))
	e.turnLogger(sess, turn).Info("suspended on budget interrupt: spent %d of %d", turn.SpentEstimate, sess.Budget)
	return &TurnResult{
		TurnID:    turn.TurnID,
		Route:     turn.Route.String(),
		Interrupt: promptFrom(turn.Interrupt),
		Debug:     debugFrom(turn),
	}
}

// completeTurn synthesizes the final answer unless one is already fixed
// (a cancelled turn), then runs the persistence tail.
func (e *Engine) completeTurn(ctx context.Context, sess *session.Session, turn *session.TurnState) (*TurnResult, error) {
	if turn.FinalAnswer == "" {
		if len(turn.Results) == 0 {
			turn.FinalAnswer = turn.Draft
		} else {
			answer, err := e.synthesize(ctx, sess, turn)
			if err != nil {
				return nil, err
			}
			turn.FinalAnswer = answer
		}
	}
	return e.finishTurn(ctx, sess, turn), nil
}

// synthesize runs the phase-two model call over the draft, the tool
// outcomes and the budget verdict.
func (e *Engine) synthesize(ctx context.Context, sess *session.Session, turn *session.TurnState) (string, error) {
	sctx, span := e.tracer.Start(ctx, "agent.synthesize")
	defer span.End()

	budgetLine := budgetStatus(sess.Budget, turn.SpentEstimate, turn.Interrupt)
	prompt := buildSynthesisPrompt(turn.Input, turn.Draft, turn.Results, budgetLine)
	resp, err := e.llm.Complete(sctx, model.Request{
		System: synthesisSystemPrompt,
		User:   prompt,
	})
	if err != nil {
		return "", NewGenerationFailureError("synthesis", err)
	}
	turn.LLMCalls++
	e.audit.LogLLMRequest(sess.ID, turn.TurnID, e.llm.Name(), resp.Model, "synthesis", resp.InputTokens, resp.OutputTokens)

	if strings.TrimSpace(resp.Text) == "" {
		return "", NewGenerationFailureError("synthesis", fmt.Errorf("empty completion"))
	}
	return resp.Text, nil
}

// finishTurn runs the persistence tail for a completed turn: the memory
// write, the conversation writes, reflection scoring and annotation.
// The session claim is released at the end.
func (e *Engine) finishTurn(ctx context.Context, sess *session.Session, turn *session.TurnState) *TurnResult {
	e.writeMemory(ctx, sess, turn)

	ex := session.Exchange{User: turn.Input, Answer: turn.FinalAnswer, At: time.Now()}
	sess.AppendShortTerm(ex, e.cfg.ShortTermLimit)
	sess.AppendHistory(ex, e.cfg.HistoryCompactThreshold)

	_, rspan := e.tracer.Start(ctx, "agent.reflect")
	turn.Confidence = Reflect(turn)
	if turn.Confidence < rerankThreshold && len(turn.Snippets) > 0 {
		turn.Snippets = retrieval.Rerank(turn.Input, turn.Snippets)
		turn.Reranked = true
	}

	answer := turn.FinalAnswer
	annotations := 0
	if facts := e.userFacts(ctx, sess.UserID); len(facts) > 0 {
		answer, annotations = Annotate(answer, facts)
	}
	rspan.End()

	e.audit.LogReflectionScored(sess.ID, turn.TurnID, turn.Confidence, annotations, len(turn.Violations))
	e.metrics.ObserveConfidence(turn.Confidence)

	outcome := outcomeAnswered
	if turn.Interrupt != nil && turn.Interrupt.Choice() == session.ChoiceCancel {
		outcome = outcomeCancelled
	}
	elapsed := time.Since(turn.StartedAt)
	e.audit.LogTurnComplete(sess.ID, turn.TurnID, turn.Route.String(), elapsed, turn.LLMCalls)
	e.metrics.ObserveTurn(turn.Route.String(), outcome, elapsed)
	e.turnLogger(sess, turn).Info("completed %s turn in %s (confidence %.2f, %d tool calls)",
		turn.Route, elapsed.Round(time.Millisecond), turn.Confidence, len(turn.Results))

	result := &TurnResult{
		TurnID:     turn.TurnID,
		Answer:     answer,
		Confidence: turn.Confidence,
		Route:      turn.Route.String(),
		Debug:      debugFrom(turn),
	}
	e.setLastResult(sess.ID, result)
	e.sessions.Release(sess.ID)
	return result
}

// finishUnroutable answers with a fixed clarification. Nothing is
// retrieved, generated or persisted for an unroutable turn.
func (e *Engine) finishUnroutable(sess *session.Session, turn *session.TurnState) *TurnResult {
	turn.FinalAnswer = clarificationAnswer

	ambiguous := NewRoutingAmbiguousError(turn.Input)
	e.turnLogger(sess, turn).Warn("%v, answering with clarification", ambiguous)

	elapsed := time.Since(turn.StartedAt)
	e.audit.LogTurnComplete(sess.ID, turn.TurnID, turn.Route.String(), elapsed, turn.LLMCalls)
	e.metrics.ObserveTurn(turn.Route.String(), outcomeUnroutable, elapsed)

	result := &TurnResult{
		TurnID: turn.TurnID,
		Answer: turn.FinalAnswer,
		Route:  turn.Route.String(),
		Debug:  debugFrom(turn),
	}
	e.sessions.Release(sess.ID)
	return result
}

// failTurn aborts the turn: per-turn state is discarded and nothing is
// persisted.
func (e *Engine) failTurn(sess *session.Session, turn *session.TurnState, err error) {
	e.turnLogger(sess, turn).Error("turn failed: %v", err)
	e.audit.LogTurnFailed(sess.ID, turn.TurnID, err.Error())
	e.metrics.ObserveTurn(turn.Route.String(), outcomeFailed, time.Since(turn.StartedAt))
	sess.Turn = nil
	e.sessions.Release(sess.ID)
}

// writeMemory extracts durable facts from the turn input and merges
// them into long-term memory. Failures are logged, never fatal to the
// turn.
func (e *Engine) writeMemory(ctx context.Context, sess *session.Session, turn *session.TurnState) {
	facts := memory.ExtractFacts(turn.Input, turn.BudgetMention, sess.ID)
	if len(facts) == 0 {
		return
	}
	if err := e.facts.Merge(ctx, sess.UserID, facts); err != nil {
		e.turnLogger(sess, turn).Warn("memory write failed for user %s: %v", sess.UserID, err)
		return
	}
	types := make([]string, 0, len(facts))
	for _, f := range facts {
		types = append(types, string(f.Type))
	}
	e.audit.LogMemoryWritten(sess.ID, turn.TurnID, sess.UserID, len(facts), types)
}

// userFacts reads long-term memory, empty on error.
func (e *Engine) userFacts(ctx context.Context, userID string) []memory.Fact {
	facts, err := e.facts.Facts(ctx, userID)
	if err != nil {
		e.logger.Warn("long-term memory read failed for user %s: %v", userID, err)
		return nil
	}
	return facts
}

// lastAnswer returns the previous completed answer for the session,
// falling back to recorded history after a restart.
func (e *Engine) lastAnswer(sess *session.Session) string {
	if r := e.lastResult(sess.ID); r != nil && r.Answer != "" {
		return r.Answer
	}
	for i := len(sess.History) - 1; i >= 0; i-- {
		if sess.History[i].User != session.SummaryUser {
			return sess.History[i].Answer
		}
	}
	return ""
}

func (e *Engine) setLastResult(sessionID string, result *TurnResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastResults[sessionID] = result
}

func (e *Engine) lastResult(sessionID string) *TurnResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastResults[sessionID]
}

// resolveLock returns the per-session mutex serializing interrupt
// resolutions.
func (e *Engine) resolveLock(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.resolving[sessionID]
	if !ok {
		m = &sync.Mutex{}
		e.resolving[sessionID] = m
	}
	return m
}

func (e *Engine) turnLogger(sess *session.Session, turn *session.TurnState) *logging.Logger {
	return e.logger.
		WithField("session_id", sess.ID).
		WithField("turn_id", turn.TurnID)
}

// PendingInterrupt returns the open interrupt prompt for a session, nil
// when nothing is suspended.
func (e *Engine) PendingInterrupt(sessionID string) *InterruptPrompt {
	sess, err := e.sessions.Get(sessionID)
	if err != nil {
		return nil
	}
	if sess.Turn != nil && sess.Turn.Suspended() {
		return promptFrom(sess.Turn.Interrupt)
	}
	return nil
}

// History returns a copy of the session's recorded exchanges.
func (e *Engine) History(sessionID string) ([]session.Exchange, error) {
	return e.sessions.History(sessionID)
}

// Memory returns the user's long-term facts.
func (e *Engine) Memory(ctx context.Context, userID string) ([]memory.Fact, error) {
	return e.facts.Facts(ctx, userID)
}

// ClearSession drops a session's conversation state along with the
// engine's record of its last answer. A turn in flight is dropped with
// it.
func (e *Engine) ClearSession(sessionID string) error {
	err := e.sessions.Clear(sessionID)
	e.mu.Lock()
	delete(e.lastResults, sessionID)
	delete(e.resolving, sessionID)
	e.mu.Unlock()
	return err
}
