package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// calorieTable holds kcal per 100g for the mock nutrition lookups.
var calorieTable = []struct {
	food string
	kcal float64
}{
	{"닭가슴살", 165},
	{"돼지고기", 242},
	{"소고기", 250},
	{"스테이크", 271},
	{"버터", 717},
	{"마늘", 149},
	{"라면", 436},
	{"파스타", 157},
	{"김치", 15},
	{"두부", 76},
	{"계란", 155},
	{"쌀밥", 130},
	{"땅콩", 567},
}

func lookupCalories(query string) (string, float64, bool) {
	for _, entry := range calorieTable {
		if strings.Contains(query, entry.food) {
			return entry.food, entry.kcal, true
		}
	}
	return "", 0, false
}

// CalorieLookupTool reports kcal per 100g for a food name.
type CalorieLookupTool struct{}

func NewCalorieLookupTool() *CalorieLookupTool { return &CalorieLookupTool{} }

func (t *CalorieLookupTool) Name() string { return "calorie_lookup" }

func (t *CalorieLookupTool) Description() string {
	return "음식 칼로리 조회"
}

func (t *CalorieLookupTool) InputSchema() json.RawMessage {
	return querySchema("칼로리를 조회할 음식 이름")
}

func (t *CalorieLookupTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	name, kcal, found := lookupCalories(query)
	calorieText := "정보 없음"
	summary := fmt.Sprintf("'%s' 칼로리 정보 없음", query)
	if found {
		calorieText = fmt.Sprintf("%.0fkcal (100g 기준)", kcal)
		summary = fmt.Sprintf("%s: %s", name, calorieText)
	} else {
		name = query
	}

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"name":         name,
			"calories":     kcal,
			"calorie_text": calorieText,
			"type":         "nutrition",
		},
		Summary: summary,
	}, nil
}

// mealItem is one parsed "food amount" entry of a meal_calories query.
type mealItem struct {
	Name     string  `json:"name"`
	AmountG  float64 `json:"amount_g"`
	Calories float64 `json:"calories"`
	Note     string  `json:"note,omitempty"`
}

// MealCaloriesTool sums calories over a comma-separated ingredient
// list like "소고기 300g, 버터 20g". Missing amounts default to 100g.
type MealCaloriesTool struct{}

func NewMealCaloriesTool() *MealCaloriesTool { return &MealCaloriesTool{} }

func (t *MealCaloriesTool) Name() string { return "meal_calories" }

func (t *MealCaloriesTool) Description() string {
	return "식사 총 칼로리 계산"
}

func (t *MealCaloriesTool) InputSchema() json.RawMessage {
	return querySchema("쉼표로 구분한 재료와 양 (예: 소고기 300g, 버터 20g)")
}

func (t *MealCaloriesTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	var total float64
	var details []mealItem

	for _, part := range strings.Split(query, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, amount := splitAmount(part)
		item := mealItem{Name: name, AmountG: amount}

		if _, kcal, found := lookupCalories(name); found {
			item.Calories = kcal * amount / 100
			total += item.Calories
		} else {
			item.Note = "칼로리 정보를 찾을 수 없음"
		}
		details = append(details, item)
	}

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"total_calories": total,
			"details":        details,
			"type":           "meal_calories",
		},
		Summary: fmt.Sprintf("총 %.0fkcal (%d개 재료)", total, len(details)),
	}, nil
}

// splitAmount separates "소고기 300g" into the food name and grams.
func splitAmount(s string) (string, float64) {
	amount := 100.0
	name := s

	if price := ParsePrice(s); price > 0 {
		amount = float64(price)
		// Strip the trailing amount token from the name
		if idx := strings.LastIndexByte(s, ' '); idx >= 0 && ParsePrice(s[idx:]) == price {
			name = strings.TrimSpace(s[:idx])
		}
	}

	return name, amount
}
