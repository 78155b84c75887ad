package memory

import (
	"fmt"
	"strings"

	"github.com/yooncheol/bapsang/internal/tools"
)

// ExtractFacts decides what, if anything, a completed turn is worth
// remembering. Rules are keyword based and first-match-wins: dietary
// restrictions outrank taste preferences, which outrank an explicit
// budget. budget is the amount the user named this turn, 0 when none.
func ExtractFacts(input string, budget int64, sessionID string) []Fact {
	query := strings.ToLower(input)

	if strings.Contains(query, "알레르기") || strings.Contains(query, "못 먹") {
		return []Fact{NewFact(TypeAllergy, "사용자 제한사항: "+input, sessionID)}
	}

	if strings.Contains(query, "좋아") || strings.Contains(query, "선호") || strings.Contains(query, "싫어") {
		return []Fact{NewFact(TypePreference, "사용자 선호: "+input, sessionID)}
	}

	if budget > 0 {
		content := fmt.Sprintf("사용자 예산 선호: %s원", tools.FormatWon(budget))
		return []Fact{NewFact(TypePreference, content, sessionID)}
	}

	return nil
}
