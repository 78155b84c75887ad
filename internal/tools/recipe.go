package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Recipe is one recipe row with numbered cooking steps.
type Recipe struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Link    string `json:"link,omitempty"`
}

var steakRecipe = Recipe{
	Title:   "간단 스테이크 레시피",
	Content: "1. 소고기를 상온에 30분 둔다. 2. 소금, 후추로 간한다. 3. 버터를 녹여 굽는다.",
}

var recipesByKeyword = []struct {
	keyword string
	recipe  Recipe
}{
	{"스테이크", steakRecipe},
	{"김치", Recipe{
		Title:   "김치찌개 레시피",
		Content: "1. 돼지고기를 볶는다. 2. 김치를 넣고 함께 볶는다. 3. 물을 붓고 20분 끓인다.",
	}},
	{"파스타", Recipe{
		Title:   "크림 파스타 레시피",
		Content: "1. 면을 삶는다. 2. 마늘을 볶고 생크림을 넣는다. 3. 면과 버무려 마무리한다.",
	}},
	{"된장", Recipe{
		Title:   "된장찌개 레시피",
		Content: "1. 멸치 육수를 낸다. 2. 된장을 풀고 채소를 넣는다. 3. 두부를 넣고 끓인다.",
	}},
}

// RecipeSearchTool looks up a recipe matching the query keywords.
// Unmatched queries fall back to the steak recipe.
type RecipeSearchTool struct{}

func NewRecipeSearchTool() *RecipeSearchTool { return &RecipeSearchTool{} }

func (t *RecipeSearchTool) Name() string { return "recipe_search" }

func (t *RecipeSearchTool) Description() string {
	return "레시피 검색. 요리법, 재료, 조리 순서 제공"
}

func (t *RecipeSearchTool) InputSchema() json.RawMessage {
	return querySchema("검색할 요리 이름")
}

func (t *RecipeSearchTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	recipe := steakRecipe
	for _, entry := range recipesByKeyword {
		if strings.Contains(query, entry.keyword) {
			recipe = entry.recipe
			break
		}
	}

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"query":   query,
			"recipes": []Recipe{recipe},
		},
		Summary: fmt.Sprintf("레시피 1건: %s", recipe.Title),
	}, nil
}
