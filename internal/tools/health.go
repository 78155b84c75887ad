package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type guideline struct {
	Avoid     []string
	Recommend []string
	Tip       string
}

var conditionGuidelines = map[string]guideline{
	"고혈압": {
		Avoid:     []string{"짠 음식", "젓갈", "가공육", "라면"},
		Recommend: []string{"채소", "등푸른 생선", "저염식", "바나나"},
		Tip:       "나트륨 섭취를 하루 2,000mg 이하로 줄이세요.",
	},
	"당뇨": {
		Avoid:     []string{"설탕", "흰쌀밥", "탄산음료", "케이크"},
		Recommend: []string{"현미", "잡곡밥", "채소", "닭가슴살"},
		Tip:       "혈당 지수가 낮은 음식을 선택하세요.",
	},
	"고지혈증": {
		Avoid:     []string{"튀긴 음식", "삼겹살", "버터"},
		Recommend: []string{"등푸른 생선", "견과류", "올리브유"},
		Tip:       "포화지방 섭취를 줄이세요.",
	},
	"통풍": {
		Avoid:     []string{"맥주", "내장류", "등푸른 생선"},
		Recommend: []string{"저지방 유제품", "채소", "충분한 수분"},
		Tip:       "퓨린이 많은 음식을 피하세요.",
	},
}

// HealthGuidelinesTool returns dietary guidance for a health condition.
type HealthGuidelinesTool struct{}

func NewHealthGuidelinesTool() *HealthGuidelinesTool { return &HealthGuidelinesTool{} }

func (t *HealthGuidelinesTool) Name() string { return "health_guidelines" }

func (t *HealthGuidelinesTool) Description() string {
	return "건강 상태별 식이 가이드"
}

func (t *HealthGuidelinesTool) InputSchema() json.RawMessage {
	return querySchema("건강 상태 (예: 고혈압, 당뇨)")
}

func (t *HealthGuidelinesTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	condition := strings.TrimSpace(query)
	for name := range conditionGuidelines {
		if strings.Contains(query, name) {
			condition = name
			break
		}
	}

	g, known := conditionGuidelines[condition]
	if !known {
		return &Result{
			Success: true,
			Value: map[string]interface{}{
				"condition": condition,
				"tips":      []string{"균형 잡힌 식단을 유지하세요."},
				"type":      "health_guidelines",
			},
			Summary: fmt.Sprintf("'%s' 식이 가이드 정보 없음", condition),
		}, nil
	}

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"condition":       condition,
			"avoid_foods":     g.Avoid,
			"recommend_foods": g.Recommend,
			"tips":            []string{g.Tip},
			"type":            "health_guidelines",
		},
		Summary: fmt.Sprintf("%s 식이 가이드: 피할 음식 %d개, 권장 %d개", condition, len(g.Avoid), len(g.Recommend)),
	}, nil
}

// unsafePairs lists foods to warn about per condition.
var unsafePairs = map[string][]string{
	"고혈압":  {"라면", "젓갈", "짬뽕", "베이컨"},
	"당뇨":   {"케이크", "콜라", "설탕", "꿀"},
	"고지혈증": {"삼겹살", "튀김", "버터"},
	"통풍":   {"맥주", "내장", "고등어"},
}

// FoodCompatibilityTool checks whether a food suits the health
// conditions named in the query (e.g. "고혈압 라면").
type FoodCompatibilityTool struct{}

func NewFoodCompatibilityTool() *FoodCompatibilityTool { return &FoodCompatibilityTool{} }

func (t *FoodCompatibilityTool) Name() string { return "food_compatibility" }

func (t *FoodCompatibilityTool) Description() string {
	return "음식과 건강 상태 호환성 확인"
}

func (t *FoodCompatibilityTool) InputSchema() json.RawMessage {
	return querySchema("건강 상태와 음식 (예: 고혈압 라면)")
}

func (t *FoodCompatibilityTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	var conditions []string
	food := query
	for name := range unsafePairs {
		if strings.Contains(query, name) {
			conditions = append(conditions, name)
			food = strings.TrimSpace(strings.ReplaceAll(food, name, ""))
		}
	}

	var warnings []map[string]string
	for _, condition := range conditions {
		for _, bad := range unsafePairs[condition] {
			if strings.Contains(food, bad) {
				warnings = append(warnings, map[string]string{
					"condition": condition,
					"food":      bad,
					"message":   fmt.Sprintf("%s에는 %s 섭취를 피하는 것이 좋습니다.", condition, bad),
				})
			}
		}
	}

	isSafe := len(warnings) == 0
	summary := fmt.Sprintf("'%s' 섭취 가능", food)
	if !isSafe {
		summary = fmt.Sprintf("'%s' 주의: %d건의 경고", food, len(warnings))
	}

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"food":              food,
			"health_conditions": conditions,
			"is_safe":           isSafe,
			"warnings":          warnings,
			"type":              "food_compatibility",
		},
		Summary: summary,
	}, nil
}
