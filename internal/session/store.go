package session

import (
	"errors"
	"sync"
	"time"

	"github.com/yooncheol/bapsang/internal/logging"
)

var (
	// ErrTurnInFlight is returned when a session already has a turn in
	// progress, including one suspended on an interrupt.
	ErrTurnInFlight = errors.New("turn already in flight for session")

	// ErrSessionNotFound is returned for lookups of unknown sessions.
	ErrSessionNotFound = errors.New("session not found")
)

// Store keeps sessions in memory and serializes turn ownership: at most
// one turn may hold a session at a time. Suspension on an interrupt
// keeps the hold; only completion releases it.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *logging.Logger
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logging.GetLogger("session"),
	}
}

// Acquire fetches or creates the session and claims it for a new turn.
// New sessions start with defaultBudget; userID defaults to the
// session ID when empty. Returns ErrTurnInFlight while another turn,
// suspended or running, holds the session.
func (s *Store) Acquire(sessionID, userID string, defaultBudget int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		if userID == "" {
			userID = sessionID
		}
		sess = &Session{
			ID:        sessionID,
			UserID:    userID,
			Budget:    defaultBudget,
			CreatedAt: time.Now(),
		}
		s.sessions[sessionID] = sess
		s.logger.Debug("created session %s for user %s", sessionID, userID)
	}

	if sess.inFlight {
		return nil, ErrTurnInFlight
	}
	sess.inFlight = true
	return sess, nil
}

// Release returns the session to idle. Safe to call for unknown
// sessions.
func (s *Store) Release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.inFlight = false
	}
}

// Get returns the session without claiming it.
func (s *Store) Get(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// InFlight reports whether the session currently holds a turn.
func (s *Store) InFlight(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	return ok && sess.inFlight
}

// Clear drops the session and all its state. This is an administrative
// reset and succeeds even while a turn is in flight; the orphaned turn
// finishes against the detached session.
func (s *Store) Clear(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	s.logger.Debug("cleared session %s", sessionID)
	return nil
}

// History returns a copy of the session's exchange log.
func (s *Store) History(sessionID string) ([]Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := make([]Exchange, len(sess.History))
	copy(out, sess.History)
	return out, nil
}

// Len counts live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
