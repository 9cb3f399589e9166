package store

import (
	"errors"
	"sync"

	"github.com/cardtable/solitaire-be/internal/session"
)

// MemoryStore is an in-memory implementation of session storage
type MemoryStore struct {
	sessions map[string]*session.Session
	variants map[string][]*session.Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session.Session),
		variants: make(map[string][]*session.Session),
	}
}

// SaveSession saves a session to the store
func (s *MemoryStore) SaveSession(sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only the first save adds to the variant list, sessions mutate in place
	if _, exists := s.sessions[sess.ID()]; !exists {
		s.variants[sess.Variant()] = append(s.variants[sess.Variant()], sess)
	}
	s.sessions[sess.ID()] = sess

	return nil
}

// GetSession retrieves a session by ID
func (s *MemoryStore) GetSession(id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}

	return sess, nil
}

// GetVariantSessions retrieves all sessions for a game variant
func (s *MemoryStore) GetVariantSessions(variant string) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions, exists := s.variants[variant]
	if !exists {
		return []*session.Session{}, nil
	}

	return sessions, nil
}

// GetActiveVariantSession retrieves an unfinished session for a variant
func (s *MemoryStore) GetActiveVariantSession(variant string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions, exists := s.variants[variant]
	if !exists {
		return nil, errors.New("variant not found")
	}

	// Find a session that hasn't been won yet
	for _, sess := range sessions {
		if !sess.Won() {
			return sess, nil
		}
	}

	return nil, errors.New("no active session found for variant")
}

// DeleteSession removes a session from the store
func (s *MemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return errors.New("session not found")
	}

	// Remove from sessions map
	delete(s.sessions, id)

	// Remove from variant sessions
	variantSessions, exists := s.variants[sess.Variant()]
	if exists {
		for i, vs := range variantSessions {
			if vs.ID() == id {
				// Remove session from slice
				s.variants[sess.Variant()] = append(variantSessions[:i], variantSessions[i+1:]...)
				break
			}
		}
	}

	return nil
}

// GetAllSessions returns all sessions in the store
func (s *MemoryStore) GetAllSessions() ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}

	return sessions, nil
}
