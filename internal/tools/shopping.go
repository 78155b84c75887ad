package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ShoppingItem is one priced product row.
type ShoppingItem struct {
	Title  string `json:"title"`
	Price  int64  `json:"price"`
	Link   string `json:"link,omitempty"`
	Source string `json:"source"`
}

// substituteMarker in a query switches the quote to the cheaper rows.
const substituteMarker = "저렴한 대안"

var standardBasket = []ShoppingItem{
	{Title: "소고기 등심 300g", Price: 15000, Source: "이마트"},
	{Title: "버터 100g", Price: 5000, Source: "쿠팡"},
	{Title: "마늘 1팩", Price: 3000, Source: "마켓컬리"},
}

var substituteBasket = []ShoppingItem{
	{Title: "호주산 소고기 등심 300g", Price: 9000, Source: "홈플러스"},
	{Title: "무염버터 100g", Price: 3500, Source: "이마트"},
	{Title: "깐마늘 1팩", Price: 2000, Source: "쿠팡"},
}

func basketFor(query string) []ShoppingItem {
	if strings.Contains(query, substituteMarker) {
		return substituteBasket
	}
	return standardBasket
}

func basketTotal(items []ShoppingItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price
	}
	return total
}

// ShoppingSearchTool quotes ingredient prices. Its results are the
// only ones carrying a cost estimate, which feeds the budget checkpoint.
type ShoppingSearchTool struct{}

func NewShoppingSearchTool() *ShoppingSearchTool { return &ShoppingSearchTool{} }

func (t *ShoppingSearchTool) Name() string { return "shopping_search" }

func (t *ShoppingSearchTool) Description() string {
	return "상품 가격 검색. 재료 가격, 구매처 정보 제공"
}

func (t *ShoppingSearchTool) InputSchema() json.RawMessage {
	return querySchema("검색할 재료 또는 상품 이름")
}

func (t *ShoppingSearchTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	items := basketFor(query)
	total := basketTotal(items)

	return &Result{
		Success:      true,
		CostEstimate: total,
		Value: map[string]interface{}{
			"query":       query,
			"items":       items,
			"total_price": total,
		},
		Summary: fmt.Sprintf("상품 %d개, 총 %s원", len(items), FormatWon(total)),
	}, nil
}

// CheapestTool returns the lowest-priced row for a query.
type CheapestTool struct{}

func NewCheapestTool() *CheapestTool { return &CheapestTool{} }

func (t *CheapestTool) Name() string { return "get_cheapest" }

func (t *CheapestTool) Description() string {
	return "최저가 상품 찾기"
}

func (t *CheapestTool) InputSchema() json.RawMessage {
	return querySchema("최저가를 찾을 상품 이름")
}

func (t *CheapestTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	items := basketFor(query)
	cheapest := items[0]
	for _, item := range items[1:] {
		if item.Price < cheapest.Price {
			cheapest = item
		}
	}

	return &Result{
		Success: true,
		Value:   cheapest,
		Summary: fmt.Sprintf("최저가: %s (%s원, %s)", cheapest.Title, FormatWon(cheapest.Price), cheapest.Source),
	}, nil
}

// ComparePricesTool returns the price rows sorted ascending.
type ComparePricesTool struct{}

func NewComparePricesTool() *ComparePricesTool { return &ComparePricesTool{} }

func (t *ComparePricesTool) Name() string { return "compare_prices" }

func (t *ComparePricesTool) Description() string {
	return "가격 비교"
}

func (t *ComparePricesTool) InputSchema() json.RawMessage {
	return querySchema("가격을 비교할 상품 이름")
}

func (t *ComparePricesTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	items := basketFor(query)
	sorted := make([]ShoppingItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"query": query,
			"items": sorted,
		},
		Summary: fmt.Sprintf("가격 비교: %d개 상품 (최저 %s원)", len(sorted), FormatWon(sorted[0].Price)),
	}, nil
}
