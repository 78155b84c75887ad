package memory

import (
	"context"
	"sync"
)

// InMemoryStore keeps facts per user in process memory. Users are
// locked individually so merges for different users never contend.
type InMemoryStore struct {
	mu    sync.Mutex
	users map[string]*userRecord
}

type userRecord struct {
	mu    sync.Mutex
	facts []Fact
}

// NewInMemoryStore builds an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]*userRecord)}
}

func (s *InMemoryStore) record(userID string) *userRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		rec = &userRecord{}
		s.users[userID] = rec
	}
	return rec
}

// Merge folds facts into the user's record.
func (s *InMemoryStore) Merge(ctx context.Context, userID string, facts []Fact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(facts) == 0 {
		return nil
	}

	rec := s.record(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.facts = mergeFacts(rec.facts, facts)
	return nil
}

// Facts returns a copy of the user's facts.
func (s *InMemoryStore) Facts(ctx context.Context, userID string) ([]Fact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := s.record(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make([]Fact, len(rec.facts))
	copy(out, rec.facts)
	return out, nil
}

// Close is a no-op for the in-process store.
func (s *InMemoryStore) Close() error {
	return nil
}
