package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var seasonFoods = map[string][]string{
	"겨울": {"김치찌개", "부대찌개", "순두부찌개", "감자탕", "설렁탕"},
	"봄":  {"비빔밥", "제육볶음", "나물무침", "된장찌개"},
	"여름": {"물냉면", "콩국수", "냉모밀", "화채", "삼계탕"},
	"가을": {"갈비찜", "전골", "버섯요리", "불고기"},
}

func seasonOf(t time.Time) (string, int) {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "겨울", 0
	case time.March, time.April, time.May:
		return "봄", 15
	case time.June, time.July, time.August:
		return "여름", 28
	default:
		return "가을", 18
	}
}

// WeatherLookupTool reports seasonal weather for a location and the
// foods that suit it. Temperature is the season default; no network.
type WeatherLookupTool struct {
	now func() time.Time
}

func NewWeatherLookupTool() *WeatherLookupTool {
	return &WeatherLookupTool{now: time.Now}
}

func (t *WeatherLookupTool) Name() string { return "weather_lookup" }

func (t *WeatherLookupTool) Description() string {
	return "현재 날씨 조회. 날씨 기반 음식 추천 포함"
}

func (t *WeatherLookupTool) InputSchema() json.RawMessage {
	return querySchema("지역명 (비우면 서울)")
}

func (t *WeatherLookupTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	location := strings.TrimSpace(query)
	if location == "" {
		location = "서울"
	}

	season, temperature := seasonOf(t.now())

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"location":          location,
			"temperature":       temperature,
			"season":            season,
			"recommended_foods": seasonFoods[season],
			"type":              "weather",
		},
		Summary: fmt.Sprintf("%s %d°C (%s)", location, temperature, season),
	}, nil
}
