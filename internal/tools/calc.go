package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CalculatorTool evaluates arithmetic expressions ("15000 + 5000 + 3000").
// Supports + - * / % and parentheses; anything else is rejected.
type CalculatorTool struct{}

func NewCalculatorTool() *CalculatorTool { return &CalculatorTool{} }

func (t *CalculatorTool) Name() string { return "calculator" }

func (t *CalculatorTool) Description() string {
	return "수식 계산. 가격 합계 등"
}

func (t *CalculatorTool) InputSchema() json.RawMessage {
	return querySchema("계산식 (예: 15000 + 5000 + 3000)")
}

func (t *CalculatorTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	for _, r := range query {
		if !strings.ContainsRune("0123456789+-*/().% ", r) {
			return &Result{
				Success: false,
				Error:   "허용되지 않는 문자가 포함되어 있습니다.",
			}, nil
		}
	}

	value, err := evalExpression(query)
	if err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("계산 오류: %v", err),
		}, nil
	}

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"expression": query,
			"result":     value,
		},
		Summary: fmt.Sprintf("%s = %s", strings.TrimSpace(query), formatNumber(value)),
	}, nil
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return FormatWon(int64(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// exprParser is a recursive descent parser over + - * / % ( ).
type exprParser struct {
	input []rune
	pos   int
}

func evalExpression(s string) (float64, error) {
	p := &exprParser{input: []rune(s)}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("예상하지 못한 문자 %q", string(p.input[p.pos]))
	}
	return value, nil
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() rune {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("0으로 나눌 수 없습니다")
			}
			left /= right
		case '%':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("0으로 나눌 수 없습니다")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("닫는 괄호가 없습니다")
		}
		p.pos++
		return value, nil
	case c >= '0' && c <= '9', c == '.':
		start := p.pos
		for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
			p.pos++
		}
		value, err := strconv.ParseFloat(string(p.input[start:p.pos]), 64)
		if err != nil {
			return 0, fmt.Errorf("잘못된 숫자 형식")
		}
		return value, nil
	case c == 0:
		return 0, fmt.Errorf("수식이 불완전합니다")
	default:
		return 0, fmt.Errorf("예상하지 못한 문자 %q", string(c))
	}
}

// SumPricesTool sums every price token in the query
// ("15,000원 5,000원 3,000원" → 23000).
type SumPricesTool struct{}

func NewSumPricesTool() *SumPricesTool { return &SumPricesTool{} }

func (t *SumPricesTool) Name() string { return "sum_prices" }

func (t *SumPricesTool) Description() string {
	return "가격 합계 계산"
}

func (t *SumPricesTool) InputSchema() json.RawMessage {
	return querySchema("합산할 가격 목록 (공백 구분)")
}

func (t *SumPricesTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	query, err := parseQuery(input)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	var total int64
	var count int
	for _, field := range strings.Fields(query) {
		if price := ParsePrice(field); price > 0 {
			total += price
			count++
		}
	}

	return &Result{
		Success: true,
		Value: map[string]interface{}{
			"total": total,
			"count": count,
		},
		Summary: fmt.Sprintf("합계: %s원 (%d건)", FormatWon(total), count),
	}, nil
}
