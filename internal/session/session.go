// Package session holds the conversational state shared across the
// engine, the shells, and the stores: sessions with their history and
// short-term memory, the per-turn working state, routing labels, budget
// interrupts, and constraint violations. Behavior lives in
// internal/agent; this package owns the data so every layer speaks the
// same vocabulary.
package session

import (
	"fmt"
	"strings"
	"time"
)

// DefaultShortTermLimit caps the short-term exchange window.
const DefaultShortTermLimit = 10

// DefaultCompactThreshold is the history length that triggers
// compaction of the older half into a summary exchange.
const DefaultCompactThreshold = 20

// SummaryUser marks the synthetic exchange holding a compacted history
// summary.
const SummaryUser = "(이전 대화 요약)"

// Exchange is one completed (user, answer) turn.
type Exchange struct {
	User   string    `json:"user"`
	Answer string    `json:"answer"`
	At     time.Time `json:"at"`
}

// Session is the per-conversation state. A Session is owned exclusively
// by the turn that acquired it; the Store serializes ownership.
type Session struct {
	// ID is the session identifier chosen by the caller.
	ID string

	// UserID links the session to long-term memory. Defaults to ID.
	UserID string

	// Budget is the ingredient budget ceiling in KRW. 0 means no
	// ceiling.
	Budget int64

	// History is the full exchange log, compacted past the threshold.
	History []Exchange

	// ShortTerm is the recent exchange window fed into prompts.
	ShortTerm []Exchange

	// Turn is the in-flight turn state, nil when idle.
	Turn *TurnState

	// CreatedAt records session creation.
	CreatedAt time.Time

	// inFlight marks a turn (possibly suspended) in progress.
	inFlight bool
}

// AppendShortTerm records a completed exchange in the short-term
// window, evicting the oldest entries beyond limit.
func (s *Session) AppendShortTerm(ex Exchange, limit int) {
	if limit <= 0 {
		limit = DefaultShortTermLimit
	}
	s.ShortTerm = append(s.ShortTerm, ex)
	if len(s.ShortTerm) > limit {
		s.ShortTerm = s.ShortTerm[len(s.ShortTerm)-limit:]
	}
}

// AppendHistory records a completed exchange in the history log. When
// the log reaches compactAt entries, the older half is folded into a
// single summary exchange so prompt payloads stay bounded.
func (s *Session) AppendHistory(ex Exchange, compactAt int) {
	if compactAt < 2 {
		compactAt = DefaultCompactThreshold
	}
	s.History = append(s.History, ex)
	if len(s.History) < compactAt {
		return
	}

	half := len(s.History) / 2
	older := s.History[:half]
	recent := s.History[half:]

	compacted := make([]Exchange, 0, len(recent)+1)
	compacted = append(compacted, summarize(older))
	compacted = append(compacted, recent...)
	s.History = compacted
}

// summarize joins the older exchanges into one deterministic summary
// entry. No model call; the first few questions name the topics.
func summarize(older []Exchange) Exchange {
	sample := len(older)
	if sample > 3 {
		sample = 3
	}
	queries := make([]string, 0, sample)
	for _, ex := range older[:sample] {
		queries = append(queries, ex.User)
	}

	text := fmt.Sprintf("이전 대화 요약 (%d턴)\n주요 질문: %s", len(older), strings.Join(queries, ", "))
	if len(older) > sample {
		text += fmt.Sprintf(" 외 %d건", len(older)-sample)
	}

	return Exchange{
		User:   SummaryUser,
		Answer: text,
		At:     time.Now(),
	}
}
