package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		check   func(t *testing.T, d *Decision)
	}{
		{
			name: "draft only",
			text: `{"draft": "된장찌개는 이렇게 끓입니다.", "need_tools": false}`,
			check: func(t *testing.T, d *Decision) {
				assert.False(t, d.NeedTools)
				assert.Equal(t, "된장찌개는 이렇게 끓입니다.", d.Draft)
			},
		},
		{
			name: "tools requested",
			text: `{"draft": "초안", "need_tools": true, "thought": "가격 확인 필요", "tool_calls": [{"tool": "shopping_search", "query": "스테이크 재료"}]}`,
			check: func(t *testing.T, d *Decision) {
				assert.True(t, d.NeedTools)
				require.Len(t, d.ToolCalls, 1)
				assert.Equal(t, "shopping_search", d.ToolCalls[0].Tool)
				assert.Equal(t, "가격 확인 필요", d.Thought)
			},
		},
		{
			name: "fenced JSON",
			text: "다음과 같이 판단했습니다:\n```json\n{\"draft\": \"초안\", \"need_tools\": false}\n```",
			check: func(t *testing.T, d *Decision) {
				assert.Equal(t, "초안", d.Draft)
			},
		},
		{
			name: "nested braces in strings survive extraction",
			text: `{"draft": "중괄호 {예시} 포함", "need_tools": false}`,
			check: func(t *testing.T, d *Decision) {
				assert.Equal(t, "중괄호 {예시} 포함", d.Draft)
			},
		},
		{
			name:    "no JSON at all",
			text:    "죄송합니다, 판단할 수 없습니다.",
			wantErr: true,
		},
		{
			name:    "tools without calls",
			text:    `{"draft": "초안", "need_tools": true, "tool_calls": []}`,
			wantErr: true,
		},
		{
			name:    "tool call missing query",
			text:    `{"need_tools": true, "tool_calls": [{"tool": "recipe_search", "query": ""}]}`,
			wantErr: true,
		},
		{
			name:    "empty draft without tools",
			text:    `{"draft": "   ", "need_tools": false}`,
			wantErr: true,
		},
		{
			name:    "unterminated object",
			text:    `{"draft": "초안", "need_tools": false`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDecision(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, d)
		})
	}
}

func TestParseModifyDecision(t *testing.T) {
	t.Run("direct answer", func(t *testing.T) {
		d, err := ParseModifyDecision(`{"answer": "4인분으로 조정했습니다.", "changes": ["인원 2 -> 4"], "need_tool": false}`)
		require.NoError(t, err)
		assert.Equal(t, "4인분으로 조정했습니다.", d.Answer)
		assert.Equal(t, []string{"인원 2 -> 4"}, d.Changes)
		assert.False(t, d.NeedTool)
	})

	t.Run("tool call", func(t *testing.T) {
		d, err := ParseModifyDecision(`{"answer": "", "need_tool": true, "tool_call": {"tool": "shopping_search", "query": "저렴한 소고기"}}`)
		require.NoError(t, err)
		require.NotNil(t, d.ToolCall)
		assert.Equal(t, "shopping_search", d.ToolCall.Tool)
	})

	t.Run("tool requested but missing", func(t *testing.T) {
		_, err := ParseModifyDecision(`{"answer": "", "need_tool": true}`)
		require.Error(t, err)
	})

	t.Run("neither answer nor tool", func(t *testing.T) {
		_, err := ParseModifyDecision(`{"answer": "", "need_tool": false}`)
		require.Error(t, err)
	})
}
