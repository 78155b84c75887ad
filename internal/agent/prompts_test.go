package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooncheol/bapsang/internal/memory"
	"github.com/yooncheol/bapsang/internal/retrieval"
	"github.com/yooncheol/bapsang/internal/session"
	"github.com/yooncheol/bapsang/internal/tools"
)

func TestBuildMainPrompt(t *testing.T) {
	facts := []memory.Fact{
		memory.NewFact(memory.TypeAllergy, "사용자 제한사항: 새우 알레르기가 있어요", "s1"),
	}
	snippets := []retrieval.Snippet{
		{Text: "스테이크는 굽기 전에 실온에 둔다.", Score: 0.85, Source: "기본 지식"},
	}

	got := buildMainPrompt("스테이크 만들어줘", 20000, facts, snippets, "- shopping_search: 상품 가격 검색\n")

	assert.Contains(t, got, "[사용자 요청]\n스테이크 만들어줘")
	assert.Contains(t, got, "[제약조건]")
	assert.Contains(t, got, "- 예산: 20,000원")
	assert.Contains(t, got, "- 사용자 제한사항: 새우 알레르기가 있어요")
	assert.Contains(t, got, "[RAG 검색 결과]")
	assert.Contains(t, got, "[1] (관련도: 0.85)\n스테이크는 굽기 전에 실온에 둔다.")
	assert.Contains(t, got, "반드시 아래 JSON 형식으로만 응답하세요:")
	assert.Contains(t, got, "사용 가능한 도구:\n- shopping_search")
}

func TestBuildMainPromptEmptySections(t *testing.T) {
	got := buildMainPrompt("뭐 먹지", 0, nil, nil, "")

	assert.Contains(t, got, "[제약조건]\n없음")
	assert.Contains(t, got, "[RAG 검색 결과]\n없음")
}

func TestFormatConstraintsCapsFacts(t *testing.T) {
	facts := make([]memory.Fact, 0, 8)
	for i := 0; i < 8; i++ {
		facts = append(facts, memory.NewFact(memory.TypePreference, fmt.Sprintf("사용자 선호: 취향 %d", i), "s1"))
	}

	got := formatConstraints(0, facts)
	assert.Equal(t, constraintFactCap, strings.Count(got, "- "))
}

func TestFormatOutcomesShoppingRows(t *testing.T) {
	reg := tools.NewMockRegistry()
	call := tools.Call{ID: "c1", Tool: "shopping_search", Query: "스테이크 재료"}
	res := reg.Execute(context.Background(), call.Tool, call.Input())
	require.True(t, res.Success)

	got := formatOutcomes([]tools.Outcome{{Call: call, Result: res}})

	assert.Contains(t, got, "🛒 소고기 등심 300g: 15,000원 (이마트)")
	assert.Contains(t, got, "🛒 버터 100g: 5,000원 (쿠팡)")
	assert.Contains(t, got, "총 예상 비용: 23,000원")
}

func TestFormatOutcomesRecipeAndFailure(t *testing.T) {
	reg := tools.NewMockRegistry()

	recipeCall := tools.Call{ID: "c1", Tool: "recipe_search", Query: "스테이크 레시피"}
	recipeRes := reg.Execute(context.Background(), recipeCall.Tool, recipeCall.Input())
	require.True(t, recipeRes.Success)

	missingCall := tools.Call{ID: "c2", Tool: "nope", Query: "x"}
	missingRes := reg.Execute(context.Background(), missingCall.Tool, missingCall.Input())
	require.False(t, missingRes.Success)

	got := formatOutcomes([]tools.Outcome{
		{Call: recipeCall, Result: recipeRes},
		{Call: missingCall, Result: missingRes},
	})

	assert.Contains(t, got, "🍳")
	assert.Contains(t, got, "⚠️ nope 실패:")
	// Recipes quote no prices, so no total line appears.
	assert.NotContains(t, got, "총 예상 비용")
}

func TestFormatOutcomesEmpty(t *testing.T) {
	assert.Equal(t, sectionNone, formatOutcomes(nil))
}

func TestBudgetStatus(t *testing.T) {
	continued := session.NewInterrupt(20000, 23000, 0)
	continued.Resolve(session.ChoiceContinue)

	substituted := session.NewInterrupt(20000, 23000, 0)
	substituted.Resolve(session.ChoiceSubstitute)

	tests := []struct {
		name     string
		budget   int64
		spent    int64
		intr     *session.Interrupt
		contains []string
		excludes []string
	}{
		{
			name:     "no budget",
			budget:   0,
			spent:    23000,
			contains: []string{sectionNone},
		},
		{
			name:     "within budget",
			budget:   30000,
			spent:    23000,
			contains: []string{"✅ 예산 30,000원 내입니다."},
		},
		{
			name:     "over budget",
			budget:   20000,
			spent:    23000,
			contains: []string{"⚠️ 예산 20,000원을 3,000원 초과합니다."},
			excludes: []string{"사용자 선택"},
		},
		{
			name:     "over budget accepted",
			budget:   20000,
			spent:    23000,
			intr:     continued,
			contains: []string{"⚠️ 예산 20,000원을 3,000원 초과합니다.", "계속 진행"},
		},
		{
			name:     "substituted back under budget",
			budget:   20000,
			spent:    14500,
			intr:     substituted,
			contains: []string{"✅ 예산 20,000원 내입니다.", "저렴한 대안으로 대체"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := budgetStatus(tc.budget, tc.spent, tc.intr)
			for _, want := range tc.contains {
				assert.Contains(t, got, want)
			}
			for _, not := range tc.excludes {
				assert.NotContains(t, got, not)
			}
		})
	}
}

func TestBuildSynthesisPromptSections(t *testing.T) {
	got := buildSynthesisPrompt("스테이크 만들어줘", "초안입니다", nil, "✅ 예산 20,000원 내입니다.")

	assert.Contains(t, got, "[사용자 요청]\n스테이크 만들어줘")
	assert.Contains(t, got, "[초안]\n초안입니다")
	assert.Contains(t, got, "[도구 결과]\n없음")
	assert.Contains(t, got, "[예산 처리]\n✅ 예산 20,000원 내입니다.")
}

func TestBuildModifyPromptSections(t *testing.T) {
	recent := []session.Exchange{
		{User: "스테이크 만들어줘", Answer: "스테이크 안내"},
	}

	got := buildModifyPrompt("원본 답변", "4인분으로 바꿔줘", ModServings, recent)

	assert.Contains(t, got, "[원본 응답]\n원본 답변")
	assert.Contains(t, got, "[수정 요청]\n4인분으로 바꿔줘")
	assert.Contains(t, got, "[수정 유형]\nservings")
	assert.Contains(t, got, "[참고 - 최근 대화]\n질문: 스테이크 만들어줘\n답변: 스테이크 안내")
}

func TestFormatRecentWindowAndTruncation(t *testing.T) {
	long := strings.Repeat("가", 200)
	recent := []session.Exchange{
		{User: "q1", Answer: "a1"},
		{User: "q2", Answer: "a2"},
		{User: "q3", Answer: "a3"},
		{User: "q4", Answer: "a4"},
		{User: "q5", Answer: long},
	}

	got := formatRecent(recent)

	assert.NotContains(t, got, "q1")
	assert.NotContains(t, got, "q2")
	assert.Contains(t, got, "q3")
	assert.Contains(t, got, "q5")
	assert.Contains(t, got, "...")
	assert.NotContains(t, got, long)

	assert.Equal(t, sectionNone, formatRecent(nil))
}
