package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

var weekdayKorean = [...]string{"일", "월", "화", "수", "목", "금", "토"}

var mealSlots = []string{"아침", "점심", "간식", "저녁", "야식"}

func mealSlotForHour(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return "아침"
	case hour >= 11 && hour < 14:
		return "점심"
	case hour >= 14 && hour < 17:
		return "간식"
	case hour >= 17 && hour < 21:
		return "저녁"
	default:
		return "야식"
	}
}

// CurrentTimeTool resolves "now" or a natural-language expression like
// "내일 점심" to a concrete time plus the meal slot it falls into.
type CurrentTimeTool struct {
	now func() time.Time
}

func NewCurrentTimeTool() *CurrentTimeTool {
	return &CurrentTimeTool{now: time.Now}
}

func (t *CurrentTimeTool) Name() string { return "current_time" }

func (t *CurrentTimeTool) Description() string {
	return "현재 시간 조회. 자연어 시점 해석 (예: 내일 점심)"
}

func (t *CurrentTimeTool) InputSchema() json.RawMessage {
	return querySchema("시점 표현 (비우면 현재 시간)")
}

func (t *CurrentTimeTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	resolved := t.now()
	if q := strings.TrimSpace(query); q != "" {
		parser := dps.Parser{}
		cfg := &dps.Configuration{
			CurrentTime:         t.now(),
			PreferredDateSource: dps.CurrentPeriod,
		}
		if parsed, err := parser.Parse(cfg, q); err == nil && !parsed.IsZero() {
			resolved = parsed.Time
		}
	}

	// An explicit meal word in the query wins over the clock
	mealTime := mealSlotForHour(resolved.Hour())
	for _, slot := range mealSlots {
		if strings.Contains(query, slot) {
			mealTime = slot
			break
		}
	}

	weekday := weekdayKorean[int(resolved.Weekday())]

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"datetime":  resolved.Format(time.RFC3339),
			"hour":      resolved.Hour(),
			"minute":    resolved.Minute(),
			"weekday":   weekday,
			"meal_time": mealTime,
		},
		Summary: fmt.Sprintf("%s (%d시, %s요일)", mealTime, resolved.Hour(), weekday),
	}, nil
}

// cookingTimes holds the estimated minutes per dish.
var cookingTimes = []struct {
	dish    string
	minutes int
}{
	{"라면", 5},
	{"볶음밥", 10},
	{"비빔밥", 15},
	{"김치찌개", 20},
	{"된장찌개", 20},
	{"파스타", 20},
	{"스테이크", 25},
	{"불고기", 25},
	{"삼겹살", 30},
}

// CookingTimeTool estimates how long a dish takes to cook.
type CookingTimeTool struct{}

func NewCookingTimeTool() *CookingTimeTool { return &CookingTimeTool{} }

func (t *CookingTimeTool) Name() string { return "cooking_time" }

func (t *CookingTimeTool) Description() string {
	return "조리 시간 예상"
}

func (t *CookingTimeTool) InputSchema() json.RawMessage {
	return querySchema("요리 이름")
}

func (t *CookingTimeTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	for _, entry := range cookingTimes {
		if strings.Contains(query, entry.dish) {
			return &Result{
				Success: true,
				Value: map[string]interface{}{
					"recipe":            entry.dish,
					"estimated_minutes": entry.minutes,
				},
				Summary: fmt.Sprintf("%s은(는) 약 %d분 정도 소요됩니다.", entry.dish, entry.minutes),
			}, nil
		}
	}

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"recipe":            query,
			"estimated_minutes": 30,
		},
		Summary: fmt.Sprintf("%s은(는) 약 30분 정도 소요될 것으로 예상됩니다.", query),
	}, nil
}
