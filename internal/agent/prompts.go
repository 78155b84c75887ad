package agent

import (
	"fmt"
	"strings"

	"github.com/yooncheol/bapsang/internal/memory"
	"github.com/yooncheol/bapsang/internal/retrieval"
	"github.com/yooncheol/bapsang/internal/session"
	"github.com/yooncheol/bapsang/internal/tools"
)

// sectionNone fills a prompt section that has nothing to report.
const sectionNone = "없음"

const mainSystemPrompt = `당신은 한국 가정의 요리와 장보기를 돕는 AI 어시스턴트 '밥상'입니다.
사용자 요청을 분석해 답변 초안을 작성하고, 가격이나 레시피 확인이 필요하면 도구 호출을 계획하세요.
- 예산이 주어지면 반드시 예산 안에서 제안하세요.
- 제약조건의 알레르기와 제한사항은 절대 어기지 마세요.
- 가격을 지어내지 말고 도구로 확인하세요.`

const synthesisSystemPrompt = `당신은 한국 가정의 요리와 장보기를 돕는 AI 어시스턴트 '밥상'입니다.
초안과 도구 결과를 바탕으로 최종 답변을 작성하세요.
- 도구가 확인한 가격과 재료만 사용하세요.
- 예산 처리 내용이 있으면 답변에 그대로 반영하세요.
- 마크다운으로 읽기 쉽게 정리하세요.`

const modifySystemPrompt = `당신은 이전 답변을 사용자의 요청대로 고쳐 쓰는 수정 어시스턴트입니다.
원본 응답의 형식과 말투를 유지하면서 요청된 부분만 바꾸세요.
반드시 아래 JSON 형식으로만 응답하세요:
{
  "answer": "수정된 전체 답변",
  "changes": ["바뀐 내용 요약"],
  "need_tool": false,
  "tool_call": {"tool": "도구 이름", "query": "검색어"}
}
가격을 다시 확인해야 할 때만 need_tool을 true로 하고 tool_call을 채우세요.`

// decisionFormat instructs the phase-one call to answer as a decision
// document.
const decisionFormat = `반드시 아래 JSON 형식으로만 응답하세요:
{
  "draft": "초안 답변",
  "need_tools": true,
  "thought": "판단 근거 한 줄",
  "tool_calls": [
    {"tool": "도구 이름", "query": "검색어"}
  ]
}
도구가 필요 없으면 need_tools를 false로 하고 tool_calls를 비워두세요.`

// buildMainPrompt assembles the phase-one user prompt: the request, the
// standing constraints, retrieval context and the tool catalog.
func buildMainPrompt(input string, budget int64, facts []memory.Fact, snippets []retrieval.Snippet, toolCatalog string) string {
	var b strings.Builder
	b.WriteString("[사용자 요청]\n")
	b.WriteString(strings.TrimSpace(input))
	b.WriteString("\n\n[제약조건]\n")
	b.WriteString(formatConstraints(budget, facts))
	b.WriteString("\n\n[RAG 검색 결과]\n")
	b.WriteString(formatSnippets(snippets))
	b.WriteString("\n\n")
	b.WriteString(decisionFormat)
	b.WriteString("\n\n사용 가능한 도구:\n")
	b.WriteString(strings.TrimRight(toolCatalog, "\n"))
	return b.String()
}

// buildSynthesisPrompt assembles the phase-two user prompt: the request,
// the draft, every tool outcome and the budget verdict.
func buildSynthesisPrompt(input, draft string, outcomes []tools.Outcome, budgetLine string) string {
	var b strings.Builder
	b.WriteString("[사용자 요청]\n")
	b.WriteString(strings.TrimSpace(input))
	b.WriteString("\n\n[초안]\n")
	b.WriteString(strings.TrimSpace(draft))
	b.WriteString("\n\n[도구 결과]\n")
	b.WriteString(formatOutcomes(outcomes))
	b.WriteString("\n\n[예산 처리]\n")
	b.WriteString(budgetLine)
	return b.String()
}

// buildModifyPrompt assembles the modify-agent user prompt: the answer
// being revised, the request, its kind and recent conversation context.
func buildModifyPrompt(original, request, kind string, recent []session.Exchange) string {
	var b strings.Builder
	b.WriteString("[원본 응답]\n")
	b.WriteString(strings.TrimSpace(original))
	b.WriteString("\n\n[수정 요청]\n")
	b.WriteString(strings.TrimSpace(request))
	b.WriteString("\n\n[수정 유형]\n")
	b.WriteString(kind)
	b.WriteString("\n\n[참고 - 최근 대화]\n")
	b.WriteString(formatRecent(recent))
	return b.String()
}

// constraintFactCap bounds how many memory facts the draft prompt
// carries.
const constraintFactCap = 5

func formatConstraints(budget int64, facts []memory.Fact) string {
	var lines []string
	if budget > 0 {
		lines = append(lines, fmt.Sprintf("- 예산: %s원", tools.FormatWon(budget)))
	}
	added := 0
	for _, f := range facts {
		if added >= constraintFactCap {
			break
		}
		switch f.Type {
		case memory.TypeAllergy, memory.TypePreference:
			lines = append(lines, "- "+f.Content)
			added++
		}
	}
	if len(lines) == 0 {
		return sectionNone
	}
	return strings.Join(lines, "\n")
}

func formatSnippets(snippets []retrieval.Snippet) string {
	if len(snippets) == 0 {
		return sectionNone
	}
	lines := make([]string, 0, len(snippets))
	for i, s := range snippets {
		lines = append(lines, fmt.Sprintf("[%d] (관련도: %.2f)\n%s", i+1, s.Score, s.Text))
	}
	return strings.Join(lines, "\n")
}

// formatOutcomes renders tool outcomes the way answers quote them:
// shopping rows with prices, recipes with their steps, anything else by
// its summary line, with the running total at the end.
func formatOutcomes(outcomes []tools.Outcome) string {
	if len(outcomes) == 0 {
		return sectionNone
	}

	var b strings.Builder
	var total int64
	for _, out := range outcomes {
		res := out.Result
		if res == nil || !res.Success {
			reason := "알 수 없는 오류"
			if res != nil && res.Error != "" {
				reason = res.Error
			}
			fmt.Fprintf(&b, "⚠️ %s 실패: %s\n", out.Call.Tool, reason)
			continue
		}
		total += res.CostEstimate

		if items := tools.ItemsFrom(res); len(items) > 0 {
			for _, item := range items {
				fmt.Fprintf(&b, "🛒 %s: %s원 (%s)\n", item.Title, tools.FormatWon(item.Price), item.Source)
			}
			continue
		}
		if recipes := tools.RecipesFrom(res); len(recipes) > 0 {
			for _, r := range recipes {
				fmt.Fprintf(&b, "🍳 %s\n%s\n", r.Title, r.Content)
			}
			continue
		}
		fmt.Fprintf(&b, "🔍 %s: %s\n", out.Call.Tool, res.Summary)
	}
	if total > 0 {
		fmt.Fprintf(&b, "총 예상 비용: %s원\n", tools.FormatWon(total))
	}
	return strings.TrimRight(b.String(), "\n")
}

// budgetStatus renders the budget verdict for the synthesis prompt,
// including the user's interrupt choice once one was made.
func budgetStatus(budget, spent int64, intr *session.Interrupt) string {
	if budget <= 0 {
		return sectionNone
	}

	var b strings.Builder
	if spent <= budget {
		fmt.Fprintf(&b, "✅ 예산 %s원 내입니다.", tools.FormatWon(budget))
	} else {
		fmt.Fprintf(&b, "⚠️ 예산 %s원을 %s원 초과합니다.", tools.FormatWon(budget), tools.FormatWon(spent-budget))
	}
	if intr != nil && intr.State() == session.InterruptResolved {
		switch intr.Choice() {
		case session.ChoiceContinue:
			b.WriteString("\n사용자 선택: 예산 초과를 감수하고 계속 진행")
		case session.ChoiceSubstitute:
			b.WriteString("\n사용자 선택: 저렴한 대안으로 대체")
		}
	}
	return b.String()
}

// recentContextWindow bounds how many short-term exchanges the modify
// prompt carries.
const recentContextWindow = 3

func formatRecent(recent []session.Exchange) string {
	if len(recent) == 0 {
		return sectionNone
	}
	start := len(recent) - recentContextWindow
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, recentContextWindow)
	for _, ex := range recent[start:] {
		lines = append(lines, fmt.Sprintf("질문: %s\n답변: %s", ex.User, truncateRunes(ex.Answer, 120)))
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
