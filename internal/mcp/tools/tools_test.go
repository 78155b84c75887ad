package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/audit"
	"github.com/yooncheol/bapsang/internal/config"
	"github.com/yooncheol/bapsang/internal/memory"
	"github.com/yooncheol/bapsang/internal/model"
	"github.com/yooncheol/bapsang/internal/retrieval"
	"github.com/yooncheol/bapsang/internal/session"
	"github.com/yooncheol/bapsang/internal/tools"
)

func newTestEngine(t *testing.T) *agent.Engine {
	t.Helper()

	llm, err := model.NewMockModel("")
	require.NoError(t, err)

	eng, err := agent.New(agent.Options{
		Config: config.AgentConfig{
			DefaultBudgetKRW:        20000,
			ShortTermLimit:          10,
			HistoryCompactThreshold: 20,
			MaxToolCalls:            5,
		},
		Model:     llm,
		Retriever: retrieval.NewCorpusRetriever(),
		Registry:  tools.NewMockRegistry(),
		Sessions:  session.NewStore(),
		Facts:     memory.NewInMemoryStore(),
		Audit:     audit.NewNopLogger(),
	})
	require.NoError(t, err)
	return eng
}

func TestSubmitTurnToolRunsTurn(t *testing.T) {
	tool := NewSubmitTurnTool(newTestEngine(t))

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"session_id":"s1","text":"안녕하세요"}`))
	require.NoError(t, err)

	res, ok := out.(*agent.TurnResult)
	require.True(t, ok)
	assert.Equal(t, "NEW", res.Route)
	assert.Contains(t, res.Answer, "안녕하세요")
	assert.Nil(t, res.Interrupt)
}

func TestSubmitTurnToolValidation(t *testing.T) {
	tool := NewSubmitTurnTool(newTestEngine(t))

	tests := []struct {
		name  string
		input string
	}{
		{name: "malformed json", input: `{"session_id":`},
		{name: "missing session_id", input: `{"text":"안녕하세요"}`},
		{name: "blank text", input: `{"session_id":"s1","text":"   "}`},
		{name: "negative budget", input: `{"session_id":"s1","text":"안녕","budget":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Execute(context.Background(), json.RawMessage(tt.input))
			require.Error(t, err)
		})
	}
}

func TestInterruptRoundTripOverTools(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	submit := NewSubmitTurnTool(eng)
	out, err := submit.Execute(ctx, json.RawMessage(`{"session_id":"s1","text":"스테이크 만들고 싶어. 장보기 도와줘"}`))
	require.NoError(t, err)

	suspended, ok := out.(*agent.TurnResult)
	require.True(t, ok)
	require.NotNil(t, suspended.Interrupt)
	assert.Empty(t, suspended.Answer)

	resolve := NewResolveInterruptTool(eng)
	out, err = resolve.Execute(ctx, json.RawMessage(`{"session_id":"s1","choice":"substitute"}`))
	require.NoError(t, err)

	final, ok := out.(*agent.TurnResult)
	require.True(t, ok)
	assert.Contains(t, final.Answer, "호주산")
	assert.Equal(t, int64(14500), final.Debug.SpentEstimate)

	history := NewGetHistoryTool(eng)
	out, err = history.Execute(ctx, json.RawMessage(`{"session_id":"s1"}`))
	require.NoError(t, err)

	hist, ok := out.(*HistoryOutput)
	require.True(t, ok)
	assert.Equal(t, "s1", hist.SessionID)
	require.Len(t, hist.Exchanges, 1)
}

func TestResolveInterruptToolValidation(t *testing.T) {
	tool := NewResolveInterruptTool(newTestEngine(t))
	ctx := context.Background()

	_, err := tool.Execute(ctx, json.RawMessage(`{"session_id":"s1"}`))
	require.Error(t, err)

	_, err = tool.Execute(ctx, json.RawMessage(`{"choice":"continue"}`))
	require.Error(t, err)

	// Nothing suspended anywhere.
	_, err = tool.Execute(ctx, json.RawMessage(`{"session_id":"ghost","choice":"continue"}`))
	require.Error(t, err)
}

func TestGetHistoryToolValidation(t *testing.T) {
	tool := NewGetHistoryTool(newTestEngine(t))
	ctx := context.Background()

	_, err := tool.Execute(ctx, json.RawMessage(`{}`))
	require.Error(t, err)

	_, err = tool.Execute(ctx, json.RawMessage(`{"session_id":"ghost"}`))
	require.Error(t, err)
}

func TestGetMemoryToolReadsFacts(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	submit := NewSubmitTurnTool(eng)
	_, err := submit.Execute(ctx, json.RawMessage(`{"session_id":"s1","user_id":"u1","text":"안녕하세요","budget":25000}`))
	require.NoError(t, err)

	tool := NewGetMemoryTool(eng)
	out, err := tool.Execute(ctx, json.RawMessage(`{"user_id":"u1"}`))
	require.NoError(t, err)

	mem, ok := out.(*MemoryOutput)
	require.True(t, ok)
	assert.Equal(t, "u1", mem.UserID)
	require.NotEmpty(t, mem.Facts)
	assert.Contains(t, mem.Facts[0].Content, "25,000원")
}

func TestGetMemoryToolRequiresUser(t *testing.T) {
	tool := NewGetMemoryTool(newTestEngine(t))

	_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
}
