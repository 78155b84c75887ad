package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooncheol/bapsang/internal/agent"
)

type stubTurner struct {
	submitReq  agent.TurnRequest
	submitRes  *agent.TurnResult
	submitErr  error
	resolved   []string
	resolveRes *agent.TurnResult
	resolveErr error
}

func (s *stubTurner) SubmitTurn(_ context.Context, req agent.TurnRequest) (*agent.TurnResult, error) {
	s.submitReq = req
	return s.submitRes, s.submitErr
}

func (s *stubTurner) ResolveInterrupt(_ context.Context, _ string, choice string) (*agent.TurnResult, error) {
	s.resolved = append(s.resolved, choice)
	return s.resolveRes, s.resolveErr
}

func steakPrompt() *agent.InterruptPrompt {
	return &agent.InterruptPrompt{
		Message: "예산을 3,000원 초과합니다. 어떻게 할까요?",
		Options: []string{"계속 진행", "저렴한 대안 찾기", "취소"},
		Budget:  20000,
		Actual:  23000,
		Diff:    3000,
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		want     []string
	}{
		{
			name:     "short line stays whole",
			text:     "hello world",
			maxWidth: 40,
			want:     []string{"hello world"},
		},
		{
			name:     "wraps at width",
			text:     "one two three four",
			maxWidth: 9,
			want:     []string{"one two", "three", "four"},
		},
		{
			name:     "empty input",
			text:     "   ",
			maxWidth: 10,
			want:     []string{""},
		},
		{
			name:     "non-positive width falls back",
			text:     "abc",
			maxWidth: 0,
			want:     []string{"abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.maxWidth))
		})
	}
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short", 8))
	assert.Equal(t, "abcdefgh", truncateID("abcdefgh-1234", 8))
}

func TestTurnMeta(t *testing.T) {
	clarification := &agent.TurnResult{Route: "UNROUTABLE"}
	assert.Empty(t, turnMeta(clarification))

	res := &agent.TurnResult{
		Confidence: 0.75,
		Debug:      agent.TurnDebug{LLMCalls: 2, ToolCalls: 3},
	}
	assert.Equal(t, "🔍 LLM 호출 2회 | 도구 3회 | 신뢰도 0.75", turnMeta(res))
}

func TestInterruptDetail(t *testing.T) {
	detail := interruptDetail(steakPrompt())
	assert.Equal(t, "예산 20,000원 | 예상 23,000원 | 초과 3,000원", detail)
}

func TestSubmitTurnBuildsRequest(t *testing.T) {
	st := &stubTurner{submitRes: &agent.TurnResult{Answer: "네", Route: "NEW"}}
	m := NewModel(Config{Engine: st, SessionID: "s1", UserID: "u1", Budget: 20000})

	msg := m.submitTurn("스테이크 만들고 싶어")()

	res, ok := msg.(turnResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	assert.Equal(t, "네", res.result.Answer)

	assert.Equal(t, "s1", st.submitReq.SessionID)
	assert.Equal(t, "u1", st.submitReq.UserID)
	assert.Equal(t, "스테이크 만들고 싶어", st.submitReq.Text)
	assert.Equal(t, int64(20000), st.submitReq.Budget)
}

func TestResolveChoiceCallsEngine(t *testing.T) {
	st := &stubTurner{resolveRes: &agent.TurnResult{Answer: "완료"}}
	m := NewModel(Config{Engine: st, SessionID: "s1"})

	msg := m.resolveChoice("계속 진행")()

	res, ok := msg.(turnResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	assert.Equal(t, "완료", res.result.Answer)
	assert.Equal(t, []string{"계속 진행"}, st.resolved)
}

func TestStartTurnEntersProcessing(t *testing.T) {
	m := NewModel(Config{Engine: &stubTurner{}, SessionID: "s1"})
	m.textArea.SetValue("비빔밥 레시피 알려줘")

	_, cmd := m.startTurn("비빔밥 레시피 알려줘")

	require.NotNil(t, cmd)
	assert.True(t, m.processing)
	assert.False(t, m.inputMode)
	assert.Empty(t, m.textArea.Value())
	require.Len(t, m.entries, 1)
	assert.Equal(t, entryUser, m.entries[0].kind)
	assert.Equal(t, "비빔밥 레시피 알려줘", m.entries[0].text)
	assert.NotNil(t, m.turnSpinner)
}

func TestHandleTurnResultAppendsAnswer(t *testing.T) {
	m := NewModel(Config{Engine: &stubTurner{}, SessionID: "s1", Budget: 30000})
	m.processing = true
	m.inputMode = false

	res := &agent.TurnResult{
		Answer:     "## 간단 스테이크 레시피",
		Confidence: 0.7475,
		Route:      "NEW",
		Debug:      agent.TurnDebug{LLMCalls: 2, ToolCalls: 2, SpentEstimate: 23000},
	}
	m.handleTurnResult(turnResultMsg{result: res})

	assert.False(t, m.processing)
	assert.True(t, m.inputMode)
	assert.Nil(t, m.pendingInterrupt)
	assert.Equal(t, int64(23000), m.lastSpent)
	require.Len(t, m.entries, 1)
	assert.Equal(t, entryAnswer, m.entries[0].kind)
	assert.Equal(t, res.Answer, m.entries[0].text)
	assert.Contains(t, m.entries[0].meta, "LLM 호출 2회")
}

func TestHandleTurnResultSuspends(t *testing.T) {
	m := NewModel(Config{Engine: &stubTurner{}, SessionID: "s1"})
	m.width = 100
	m.processing = true

	res := &agent.TurnResult{Route: "NEW", Interrupt: steakPrompt()}
	m.handleTurnResult(turnResultMsg{result: res})

	require.NotNil(t, m.pendingInterrupt)
	assert.Equal(t, int64(20000), m.budget)
	assert.Equal(t, int64(23000), m.lastSpent)
	assert.Equal(t, []string{"계속 진행", "저렴한 대안 찾기", "취소"}, m.choiceSelector.options)
	require.Len(t, m.entries, 1)
	assert.Equal(t, entryNotice, m.entries[0].kind)
	assert.Equal(t, res.Interrupt.Message, m.entries[0].text)
}

func TestHandleTurnResultKeepsSelectorOnUnknownChoice(t *testing.T) {
	m := NewModel(Config{Engine: &stubTurner{}, SessionID: "s1"})
	m.pendingInterrupt = steakPrompt()

	m.handleTurnResult(turnResultMsg{err: agent.ErrUnknownChoice})

	assert.NotNil(t, m.pendingInterrupt)
	assert.ErrorIs(t, m.lastError, agent.ErrUnknownChoice)
	assert.True(t, m.inputMode)
}

func TestHandleTurnResultDropsInterruptOnFailure(t *testing.T) {
	m := NewModel(Config{Engine: &stubTurner{}, SessionID: "s1"})
	m.pendingInterrupt = steakPrompt()

	m.handleTurnResult(turnResultMsg{err: errors.New("synthesis failed")})

	assert.Nil(t, m.pendingInterrupt)
	assert.Error(t, m.lastError)
	assert.True(t, m.inputMode)
}

func TestChoiceKeyEnterResolves(t *testing.T) {
	m := NewModel(Config{Engine: &stubTurner{}, SessionID: "s1"})
	prompt := steakPrompt()
	m.pendingInterrupt = prompt
	m.choiceSelector.SetPrompt(prompt.Message, interruptDetail(prompt), prompt.Options)
	m.choiceSelector.MoveDown()

	_, cmd := m.handleChoiceKey(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, m.processing)
	assert.False(t, m.inputMode)
	require.NotEmpty(t, m.entries)
	last := m.entries[len(m.entries)-1]
	assert.Equal(t, entryChoice, last.kind)
	assert.Equal(t, "저렴한 대안 찾기", last.text)
}

func TestViewLifecycleStates(t *testing.T) {
	m := NewModel(Config{Engine: &stubTurner{}, SessionID: "s1"})

	assert.Equal(t, "초기화 중...\n", m.View())

	m.quitting = true
	assert.Equal(t, "👋 종료합니다.\n", m.View())
}

func TestRenderBudgetBar(t *testing.T) {
	m := NewModel(Config{Engine: &stubTurner{}, SessionID: "s1"})
	assert.Empty(t, m.renderBudgetBar())

	m.budget = 20000
	m.lastSpent = 15000
	assert.Contains(t, m.renderBudgetBar(), "15,000/20,000원")
}

func TestNewAppRequiresEngine(t *testing.T) {
	_, err := NewApp(Config{})
	require.Error(t, err)

	app, err := NewApp(Config{Engine: &stubTurner{}})
	require.NoError(t, err)
	assert.NotEmpty(t, app.model.sessionID)
}
