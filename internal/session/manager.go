package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"raisingsim/internal/game"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID    string
	State *game.State

	mu sync.Mutex
}

// Manager keeps one isolated game per session and runs at most one operation
// per session at a time.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

func (m *Manager) Create(s *game.State) string {
	if s == nil {
		s = game.NewState()
	}
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &Session{ID: id, State: s}
	m.mu.Unlock()
	return id
}

// With runs fn while holding the session's lock. fn may replace sess.State.
func (m *Manager) With(id string, fn func(sess *Session) error) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

func (m *Manager) Drop(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
