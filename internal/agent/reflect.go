package agent

import (
	"strings"

	"github.com/yooncheol/bapsang/internal/memory"
	"github.com/yooncheol/bapsang/internal/session"
)

// Reflection scoring weights. The score starts at the base, earns trust
// from retrieval grounding and successful tool calls, and loses it on
// failures, cancellation and standing violations.
const (
	reflectBase          = 0.45
	reflectSnippetWeight = 0.15
	reflectToolStep      = 0.05
	reflectToolCap       = 0.25
	reflectCancelPenalty = 0.20
	reflectCleanBonus    = 0.10

	// rerankThreshold is the confidence below which retrieval results
	// are reranked for the debug view.
	rerankThreshold = 0.7
)

// Reflect scores how much the turn's answer deserves trust, in [0, 1].
func Reflect(turn *session.TurnState) float64 {
	score := reflectBase

	if n := len(turn.Snippets); n > 0 {
		var sum float64
		for _, s := range turn.Snippets {
			sum += s.Score
		}
		score += reflectSnippetWeight * clamp(sum/float64(n), 0, 1)
	}

	var successes, failures int
	for _, out := range turn.Results {
		if out.Result != nil && out.Result.Success {
			successes++
		} else {
			failures++
		}
	}
	score += min(float64(successes)*reflectToolStep, reflectToolCap)
	score -= min(float64(failures)*reflectToolStep, reflectToolCap)

	if turn.Interrupt != nil && turn.Interrupt.Choice() == session.ChoiceCancel {
		score -= reflectCancelPenalty
	}
	if len(turn.Violations) == 0 {
		score += reflectCleanBonus
	}

	return clamp(score, 0, 1)
}

// annotationCap bounds how many memory notes are appended to an answer.
const annotationCap = 3

// annotationStopwords are tokens too generic to identify a fact's
// subject inside an answer.
var annotationStopwords = map[string]struct{}{
	"저는": {}, "제가": {}, "저": {}, "나는": {}, "나": {},
	"좀": {}, "너무": {}, "정말": {}, "진짜": {}, "요즘": {},
	"알레르기": {}, "알레르기가": {}, "있어요": {}, "있어서": {}, "있습니다": {},
	"못": {}, "먹어요": {}, "먹습니다": {}, "때문에": {},
	"좋아해요": {}, "좋아합니다": {}, "싫어해요": {}, "싫어합니다": {},
	"선호해요": {}, "선호합니다": {}, "해주세요": {}, "주세요": {},
}

// Annotate appends memory notes to an answer: a caution for each stored
// restriction whose subject the answer touches and a nod for each
// matching preference. Returns the annotated answer and the note count.
func Annotate(answer string, facts []memory.Fact) (string, int) {
	if answer == "" || len(facts) == 0 {
		return answer, 0
	}

	var notes []string
	for _, f := range facts {
		if len(notes) >= annotationCap {
			break
		}
		switch f.Type {
		case memory.TypeAllergy:
			if factSubjectIn(answer, f.Content) {
				notes = append(notes, "⚠️ 참고: "+f.Content)
			}
		case memory.TypePreference:
			if factSubjectIn(answer, f.Content) {
				notes = append(notes, "💡 선호도 반영: "+f.Content)
			}
		}
	}
	if len(notes) == 0 {
		return answer, 0
	}
	return answer + "\n\n" + strings.Join(notes, "\n"), len(notes)
}

// factSubjectIn reports whether any subject token of the fact content
// appears in the answer. The stored prefix ("사용자 제한사항: " and
// friends) is stripped before tokenizing.
func factSubjectIn(answer, content string) bool {
	if idx := strings.Index(content, ": "); idx >= 0 {
		content = content[idx+2:]
	}
	for _, token := range strings.Fields(content) {
		if _, skip := annotationStopwords[token]; skip {
			continue
		}
		if len([]rune(token)) < 2 {
			continue
		}
		if strings.Contains(answer, token) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
