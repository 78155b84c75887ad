package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// MockModel implements LLM without network calls. With a scenario it
// plays back scripted responses; without one (or when no step matches)
// it falls back to deterministic built-in behavior good enough to run
// the full turn pipeline in tests and demos.
type MockModel struct {
	scenario *Scenario
	matcher  *StepMatcher

	thinkingDelay time.Duration

	mu    sync.Mutex
	calls int
}

// MockOption configures a MockModel.
type MockOption func(*MockModel)

// WithThinkingDelay adds an artificial delay before each response,
// useful for demos that want visible latency.
func WithThinkingDelay(d time.Duration) MockOption {
	return func(m *MockModel) {
		m.thinkingDelay = d
	}
}

// NewMockModel creates a mock backend. scenarioPath may be empty for
// pure built-in behavior.
func NewMockModel(scenarioPath string, opts ...MockOption) (*MockModel, error) {
	m := &MockModel{}
	if scenarioPath != "" {
		sc, err := LoadScenario(scenarioPath)
		if err != nil {
			return nil, err
		}
		m.scenario = sc
		m.matcher = NewStepMatcher(sc)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// NewMockModelFromScenario creates a mock backend from an already
// loaded scenario.
func NewMockModelFromScenario(sc *Scenario, opts ...MockOption) *MockModel {
	m := &MockModel{scenario: sc, matcher: NewStepMatcher(sc)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements LLM.
func (m *MockModel) Name() string { return "mock" }

// Calls reports how many completions have been served.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Reset rewinds scenario playback to the first step.
func (m *MockModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.matcher != nil {
		m.matcher.Reset()
	}
	m.calls = 0
}

// SwapScenario replaces the scenario mid-flight. Used by config reload
// so a running demo can switch scripts without a restart.
func (m *MockModel) SwapScenario(sc *Scenario) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenario = sc
	if sc != nil {
		m.matcher = NewStepMatcher(sc)
	} else {
		m.matcher = nil
	}
}

// Complete implements LLM.
func (m *MockModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if m.thinkingDelay > 0 {
		select {
		case <-time.After(m.thinkingDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls++
	var step *ScenarioStep
	if m.matcher != nil {
		step = m.matcher.NextStep(req)
	}
	m.mu.Unlock()

	var text string
	if step != nil {
		text = step.Text
	} else {
		text = m.builtin(req)
	}

	return &Response{
		Text:         text,
		InputTokens:  estimateTokens(req.System) + estimateTokens(req.User),
		OutputTokens: estimateTokens(text),
		Model:        "mock-bapsang-1",
	}, nil
}

// builtin produces a deterministic response from the prompt alone.
func (m *MockModel) builtin(req Request) string {
	if req.JSONMode {
		if strings.Contains(req.User, "[수정 요청]") {
			return m.builtinModify(req.User)
		}
		return m.builtinDecision(req.User)
	}
	return m.builtinSynthesis(req.User)
}

// builtinDecision plans the first phase: a draft plus any tool calls
// the request seems to need.
func (m *MockModel) builtinDecision(prompt string) string {
	query := promptSection(prompt, "[사용자 요청]")
	if query == "" {
		query = prompt
	}

	d := Decision{
		Thought: "요청을 분석하고 필요한 도구를 고른다.",
	}

	topic := dishIn(query)
	if containsAny(query, "장보", "재료", "가격", "얼마", "구매", "예산", "사야", "싸게", "저렴") {
		d.ToolCalls = append(d.ToolCalls, ToolPlan{Tool: "shopping_search", Query: topic + " 재료"})
	}
	if containsAny(query, "만들", "레시피", "요리", "조리", "저녁", "점심", "아침", "메뉴", "식단", "먹") {
		d.ToolCalls = append(d.ToolCalls, ToolPlan{Tool: "recipe_search", Query: topic + " 레시피"})
	}
	if containsAny(query, "칼로리", "열량") {
		d.ToolCalls = append(d.ToolCalls, ToolPlan{Tool: "calorie_lookup", Query: topic})
	}
	if containsAny(query, "날씨", "계절", "제철") {
		d.ToolCalls = append(d.ToolCalls, ToolPlan{Tool: "weather_lookup", Query: query})
	}
	if containsAny(query, "혈압", "당뇨", "고지혈", "통풍", "건강") {
		d.ToolCalls = append(d.ToolCalls, ToolPlan{Tool: "health_guidelines", Query: query})
	}

	if len(d.ToolCalls) > 0 {
		d.NeedTools = true
		d.Draft = fmt.Sprintf("%s 준비를 도와드릴게요. 필요한 재료와 순서를 정리해 보겠습니다.", topic)
	} else {
		d.Draft = fmt.Sprintf("네, 도와드릴게요. %s 기준으로 안내드립니다.", strings.TrimSpace(query))
	}

	raw, _ := json.Marshal(d)
	return string(raw)
}

// builtinModify revises a previous answer per the modification request.
func (m *MockModel) builtinModify(prompt string) string {
	original := promptSection(prompt, "[원본 응답]")
	request := promptSection(prompt, "[수정 요청]")

	d := ModifyDecision{}
	if containsAny(request, "예산", "싸게", "저렴", "가격") {
		d.NeedTool = true
		d.ToolCall = &ToolPlan{Tool: "shopping_search", Query: request + " 저렴한 대안"}
	} else {
		d.Answer = strings.TrimSpace(original) + "\n\n### ✏️ 수정 반영\n- " + strings.TrimSpace(request)
		d.Changes = []string{strings.TrimSpace(request)}
	}

	raw, _ := json.Marshal(d)
	return string(raw)
}

// builtinSynthesis composes the final answer from the draft, tool
// results, and budget status the prompt carries.
func (m *MockModel) builtinSynthesis(prompt string) string {
	draft := promptSection(prompt, "[초안]")
	tools := promptSection(prompt, "[도구 결과]")
	budget := promptSection(prompt, "[예산 처리]")

	var b strings.Builder
	if draft != "" {
		b.WriteString(strings.TrimSpace(draft))
	} else {
		b.WriteString("요청하신 내용을 정리했습니다.")
	}
	if tools != "" && tools != "없음" {
		b.WriteString("\n\n### 🛒 검색 결과\n")
		b.WriteString(strings.TrimSpace(tools))
	}
	if budget != "" && budget != "없음" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(budget))
	}
	return b.String()
}

// promptSection returns the text between a "[헤더]" line and the next
// bracketed header (or end of prompt), trimmed.
func promptSection(prompt, header string) string {
	idx := strings.Index(prompt, header)
	if idx < 0 {
		return ""
	}
	rest := prompt[idx+len(header):]
	if end := strings.Index(rest, "\n["); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// dishIn picks a known dish name out of the query, defaulting to the
// trimmed query itself.
func dishIn(query string) string {
	dishes := []string{
		"스테이크", "김치찌개", "된장찌개", "파스타", "불고기",
		"비빔밥", "볶음밥", "삼겹살", "라면", "샐러드",
	}
	for _, d := range dishes {
		if strings.Contains(query, d) {
			return d
		}
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return "요리"
	}
	return q
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// estimateTokens approximates token usage for accounting. Hangul runs
// denser than English, so runes over three is close enough.
func estimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	return n/3 + 1
}
