package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooncheol/bapsang/internal/config"
)

func configFor(backend, scenarioPath string) config.ModelConfig {
	return config.ModelConfig{Backend: backend, ScenarioPath: scenarioPath}
}

func TestMockBuiltinDecision(t *testing.T) {
	m, err := NewMockModel("")
	require.NoError(t, err)

	t.Run("shopping and recipe request", func(t *testing.T) {
		resp, err := m.Complete(context.Background(), Request{
			User:     "[사용자 요청]\n스테이크 저녁 만들어줘\n\n[제약조건]\n예산: 20,000원",
			JSONMode: true,
		})
		require.NoError(t, err)

		d, err := ParseDecision(resp.Text)
		require.NoError(t, err)
		assert.True(t, d.NeedTools)

		tools := make([]string, 0, len(d.ToolCalls))
		for _, tc := range d.ToolCalls {
			tools = append(tools, tc.Tool)
		}
		assert.Contains(t, tools, "recipe_search")
		assert.NotEmpty(t, d.Draft)
		assert.Greater(t, resp.OutputTokens, 0)
	})

	t.Run("price request includes shopping_search", func(t *testing.T) {
		resp, err := m.Complete(context.Background(), Request{
			User:     "[사용자 요청]\n스테이크 재료 가격 알아봐줘",
			JSONMode: true,
		})
		require.NoError(t, err)

		d, err := ParseDecision(resp.Text)
		require.NoError(t, err)
		require.True(t, d.NeedTools)
		assert.Equal(t, "shopping_search", d.ToolCalls[0].Tool)
		assert.Equal(t, "스테이크 재료", d.ToolCalls[0].Query)
	})

	t.Run("plain question needs no tools", func(t *testing.T) {
		resp, err := m.Complete(context.Background(), Request{
			User:     "[사용자 요청]\n감사 인사 전해줘",
			JSONMode: true,
		})
		require.NoError(t, err)

		d, err := ParseDecision(resp.Text)
		require.NoError(t, err)
		assert.False(t, d.NeedTools)
		assert.NotEmpty(t, d.Draft)
	})
}

func TestMockBuiltinModify(t *testing.T) {
	m, err := NewMockModel("")
	require.NoError(t, err)

	t.Run("direct revision", func(t *testing.T) {
		resp, err := m.Complete(context.Background(), Request{
			User:     "[원본 응답]\n스테이크 2인분 안내\n\n[수정 요청]\n4인분으로 바꿔줘\n\n[수정 유형]\nservings",
			JSONMode: true,
		})
		require.NoError(t, err)

		d, err := ParseModifyDecision(resp.Text)
		require.NoError(t, err)
		assert.False(t, d.NeedTool)
		assert.Contains(t, d.Answer, "스테이크 2인분 안내")
		assert.Contains(t, d.Answer, "4인분으로 바꿔줘")
		require.Len(t, d.Changes, 1)
	})

	t.Run("budget revision wants a tool", func(t *testing.T) {
		resp, err := m.Complete(context.Background(), Request{
			User:     "[원본 응답]\n스테이크 안내\n\n[수정 요청]\n더 저렴하게 해줘\n\n[수정 유형]\nbudget",
			JSONMode: true,
		})
		require.NoError(t, err)

		d, err := ParseModifyDecision(resp.Text)
		require.NoError(t, err)
		require.True(t, d.NeedTool)
		assert.Equal(t, "shopping_search", d.ToolCall.Tool)
	})
}

func TestMockBuiltinSynthesis(t *testing.T) {
	m, err := NewMockModel("")
	require.NoError(t, err)

	prompt := `[사용자 요청]
스테이크 저녁 만들어줘

[초안]
스테이크 준비를 도와드릴게요.

[도구 결과]
🛒 소고기 등심 300g: 15,000원 (이마트)
총 예상 비용: 23,000원

[예산 처리]
⚠️ 예산 20,000원을 3,000원 초과합니다.`

	resp, err := m.Complete(context.Background(), Request{User: prompt})
	require.NoError(t, err)

	assert.Contains(t, resp.Text, "스테이크 준비를 도와드릴게요.")
	assert.Contains(t, resp.Text, "### 🛒 검색 결과")
	assert.Contains(t, resp.Text, "소고기 등심 300g")
	assert.Contains(t, resp.Text, "⚠️ 예산 20,000원을 3,000원 초과합니다.")
}

func TestMockSynthesisSkipsEmptySections(t *testing.T) {
	m, err := NewMockModel("")
	require.NoError(t, err)

	resp, err := m.Complete(context.Background(), Request{
		User: "[초안]\n간단한 안내입니다.\n\n[도구 결과]\n없음\n\n[예산 처리]\n없음",
	})
	require.NoError(t, err)
	assert.Equal(t, "간단한 안내입니다.", resp.Text)
}

func TestMockScenarioPlayback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dinner.yaml")
	scenario := `name: dinner-demo
description: scripted steak dinner
steps:
  - trigger: "phase:decision"
    text: '{"draft": "대본 초안", "need_tools": true, "tool_calls": [{"tool": "shopping_search", "query": "스테이크 재료"}]}'
  - trigger: "phase:synthesis"
    text: "대본으로 작성된 최종 답변"
`
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o600))

	m, err := NewMockModel(path)
	require.NoError(t, err)

	// First request asks for a decision and consumes step one.
	resp, err := m.Complete(context.Background(), Request{User: "스테이크", JSONMode: true})
	require.NoError(t, err)
	d, err := ParseDecision(resp.Text)
	require.NoError(t, err)
	assert.Equal(t, "대본 초안", d.Draft)

	// Synthesis step matches the non-JSON request.
	resp, err = m.Complete(context.Background(), Request{User: "[초안]\n대본 초안"})
	require.NoError(t, err)
	assert.Equal(t, "대본으로 작성된 최종 답변", resp.Text)

	// Steps exhausted: built-in behavior takes over.
	resp, err = m.Complete(context.Background(), Request{User: "[초안]\n다른 초안"})
	require.NoError(t, err)
	assert.Equal(t, "다른 초안", resp.Text)

	assert.Equal(t, 3, m.Calls())

	// Reset rewinds playback.
	m.Reset()
	resp, err = m.Complete(context.Background(), Request{User: "아무거나", JSONMode: true})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "대본 초안")
}

func TestMockSwapScenario(t *testing.T) {
	m, err := NewMockModel("")
	require.NoError(t, err)

	sc := &Scenario{
		Name:  "swapped",
		Steps: []ScenarioStep{{Text: "교체된 응답"}},
	}
	require.NoError(t, sc.Validate())
	m.SwapScenario(sc)

	resp, err := m.Complete(context.Background(), Request{User: "무엇이든"})
	require.NoError(t, err)
	assert.Equal(t, "교체된 응답", resp.Text)
}

func TestMockHonorsContextCancellation(t *testing.T) {
	m, err := NewMockModel("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Complete(ctx, Request{User: "취소된 요청"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadScenarioValidation(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScenario(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("no steps", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: empty\nsteps: []\n"), 0o600))
		_, err := LoadScenario(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one step")
	})

	t.Run("step without text", func(t *testing.T) {
		path := filepath.Join(dir, "notext.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: notext\nsteps:\n  - trigger: x\n"), 0o600))
		_, err := LoadScenario(path)
		require.Error(t, err)
	})
}

func TestStepMatcherTriggers(t *testing.T) {
	sc := &Scenario{
		Name: "triggers",
		Steps: []ScenarioStep{
			{Trigger: "contains:파스타", Text: "파스타 응답"},
			{Trigger: "phase:decision", Text: "결정 응답"},
			{Trigger: "", Text: "기본 응답"},
		},
	}
	m := NewStepMatcher(sc)

	// Substring trigger is case-insensitive and checked first.
	step := m.NextStep(Request{User: "크림 파스타 알려줘"})
	require.NotNil(t, step)
	assert.Equal(t, "파스타 응답", step.Text)

	// JSON-mode requests match phase:decision.
	step = m.NextStep(Request{User: "아무거나", JSONMode: true})
	require.NotNil(t, step)
	assert.Equal(t, "결정 응답", step.Text)

	// Empty trigger matches anything remaining.
	step = m.NextStep(Request{User: "마지막"})
	require.NotNil(t, step)
	assert.Equal(t, "기본 응답", step.Text)

	// Exhausted.
	assert.Nil(t, m.NextStep(Request{User: "더 없음"}))
}

func TestNewFactory(t *testing.T) {
	t.Run("mock by default", func(t *testing.T) {
		llm, err := New(configFor("mock", ""))
		require.NoError(t, err)
		assert.Equal(t, "mock", llm.Name())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(configFor("llama", ""))
		require.Error(t, err)
	})

	t.Run("openai without key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := New(configFor("openai", ""))
		require.Error(t, err)
	})

	t.Run("gemini without key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		_, err := New(configFor("gemini", ""))
		require.Error(t, err)
	})
}
