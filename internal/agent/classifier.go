package agent

import (
	"strings"

	"github.com/yooncheol/bapsang/internal/session"
)

// Modification kinds attached to MODIFY routes.
const (
	ModServings   = "servings"
	ModIngredient = "ingredient"
	ModBudget     = "budget"
	ModPreference = "preference"
	ModQuantity   = "quantity"
	ModGeneral    = "general"
)

// RouteDecision is the router's verdict for one input.
type RouteDecision struct {
	Route session.Route

	// ModKind classifies what a MODIFY turn wants changed, empty on
	// other routes.
	ModKind string

	// Cue is the phrase that triggered the MODIFY route, empty on other
	// routes.
	Cue string
}

// CueClassifier decides the route for an input given the session history
// recorded so far.
type CueClassifier interface {
	Classify(input string, history []session.Exchange) RouteDecision
}

// modifyCues mark a follow-up as a modification of the previous answer.
// The first match is recorded as the routing cue, so more specific
// phrases come first.
var modifyCues = []string{
	"인분으로", "명으로", "사람으로",
	"대신", "바꿔", "빼줘", "넣어줘", "추가해", "제외",
	"늘려", "줄여", "더", "덜",
	"저렴하게", "비싸게", "예산",
	"안맵게", "맵게", "달게", "짜게", "싱겁게",
	"수정", "변경", "고쳐", "다시",
}

// KeywordClassifier routes on surface cues: empty input is unroutable,
// a modification phrase with an earlier exchange to modify routes to
// MODIFY, everything else starts a new request.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the default cue-based classifier.
func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

// Classify implements CueClassifier.
func (c *KeywordClassifier) Classify(input string, history []session.Exchange) RouteDecision {
	if strings.TrimSpace(input) == "" {
		return RouteDecision{Route: session.RouteUnroutable}
	}

	if len(history) > 0 {
		for _, cue := range modifyCues {
			if strings.Contains(input, cue) {
				return RouteDecision{
					Route:   session.RouteModify,
					ModKind: classifyModKind(input),
					Cue:     cue,
				}
			}
		}
	}

	return RouteDecision{Route: session.RouteNew}
}

// classifyModKind buckets a modification request. Servings outranks
// ingredient outranks budget outranks preference outranks quantity;
// anything else is a general rewrite.
func classifyModKind(input string) string {
	switch {
	case containsAny(input, "인분", "명으로", "사람"):
		return ModServings
	case containsAny(input, "재료", "대신", "바꿔", "빼", "넣어", "추가", "제외"):
		return ModIngredient
	case containsAny(input, "예산", "가격", "저렴", "비싸", "싸게"):
		return ModBudget
	case containsAny(input, "맵", "달", "짜", "싱거", "매운", "단", "짠"):
		return ModPreference
	case containsAny(input, "늘려", "줄여", "더", "덜"):
		return ModQuantity
	default:
		return ModGeneral
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
