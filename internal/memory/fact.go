package memory

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FactType classifies what a fact says about the user.
type FactType string

const (
	TypeAllergy    FactType = "allergy"
	TypePreference FactType = "preference"
	TypeHistory    FactType = "history"
	TypeFeedback   FactType = "feedback"
)

// Fact is one durable observation about a user. Key is the dedup
// identity; Sessions lists every session that produced the fact, and a
// fact seen in two or more distinct sessions is marked Reinforced.
type Fact struct {
	ID         string    `json:"id"`
	Type       FactType  `json:"type"`
	Content    string    `json:"content"`
	Key        string    `json:"key"`
	Sessions   []string  `json:"sessions"`
	Reinforced bool      `json:"reinforced"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewFact builds a fact observed in sessionID.
func NewFact(t FactType, content, sessionID string) Fact {
	now := time.Now()
	return Fact{
		ID:        uuid.NewString(),
		Type:      t,
		Content:   content,
		Key:       FactKey(t, content),
		Sessions:  []string{sessionID},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FactKey normalizes the dedup identity of a fact: type plus the
// content lowercased with whitespace collapsed, so restatements of the
// same observation merge instead of piling up.
func FactKey(t FactType, content string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(content)), " ")
	return string(t) + ":" + normalized
}

// mergeFacts unions incoming into existing. An incoming fact with a
// known key reinforces it instead of duplicating: sessions union,
// UpdatedAt advances, and two or more distinct sessions set
// Reinforced. Order is stable so merges stay deterministic.
func mergeFacts(existing, incoming []Fact) []Fact {
	merged := make([]Fact, len(existing))
	copy(merged, existing)

	byKey := make(map[string]int, len(merged))
	for i, f := range merged {
		byKey[f.Key] = i
	}

	for _, in := range incoming {
		if in.Key == "" {
			in.Key = FactKey(in.Type, in.Content)
		}
		idx, seen := byKey[in.Key]
		if !seen {
			in.Reinforced = distinctCount(in.Sessions) >= 2
			byKey[in.Key] = len(merged)
			merged = append(merged, in)
			continue
		}

		cur := merged[idx]
		for _, sid := range in.Sessions {
			if !containsString(cur.Sessions, sid) {
				cur.Sessions = append(cur.Sessions, sid)
			}
		}
		cur.Reinforced = distinctCount(cur.Sessions) >= 2
		cur.UpdatedAt = time.Now()
		merged[idx] = cur
	}

	return merged
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func distinctCount(ss []string) int {
	seen := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		seen[s] = struct{}{}
	}
	return len(seen)
}
