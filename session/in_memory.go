package session

import (
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/supportmesh/core"
)

// Turn is the record of one dispatch turn.
type Turn struct {
	Query      string          `json:"query"`
	Agent      string          `json:"agent"`
	Next       string          `json:"next"`
	Kind       string          `json:"kind"`
	Reply      string          `json:"reply"`
	Structured bool            `json:"structured,omitempty"`
	Tripped    bool            `json:"tripped,omitempty"`
	Usage      core.TokenUsage `json:"usage"`
	At         time.Time       `json:"at"`
}

// Store persists turn records per session.
type Store interface {
	Append(sessionID string, t Turn) error
	History(sessionID string) ([]Turn, error)
}

// InMemoryStore is a volatile Store keeping records in a process local map.
// It is safe for concurrent access. Returned slices are copies.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

// NewInMemoryStore constructs an empty in‑memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]Turn)}
}

// Append adds a turn to the session, creating it lazily. A zero At is
// stamped with the current time.
func (s *InMemoryStore) Append(sessionID string, t Turn) error {
	if t.At.IsZero() {
		t.At = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], t)
	return nil
}

// History returns the turns of a session in order. Unknown sessions yield an
// empty history.
func (s *InMemoryStore) History(sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Sessions returns the sorted IDs of all recorded sessions.
func (s *InMemoryStore) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Delete drops a session's history.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
