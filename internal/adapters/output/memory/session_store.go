package memory

import (
	"context"
	"sync"

	"claritas/internal/domain"
	"claritas/internal/ports/output"
)

// Compile-time check to ensure MemorySessionStore implements SessionStore interface
var _ output.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore struct - Output adapter for in-memory session storage.
// Sessions are copied on the way in and out so callers never share state with the store.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions []domain.Session
	index    map[string]int
}

// NewMemorySessionStore creates an empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		index: make(map[string]int),
	}
}

// List returns a copy of every session in insertion order
func (m *MemorySessionStore) List(_ context.Context) []domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]domain.Session, len(m.sessions))
	for i, s := range m.sessions {
		sessions[i] = s.Clone()
	}
	return sessions
}

// Append stores a copy of the session at the end of the list.
// A session whose ID is already present is rejected so IDs stay unique.
func (m *MemorySessionStore) Append(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[session.ID]; exists {
		return domain.ErrDuplicateSession
	}
	m.index[session.ID] = len(m.sessions)
	m.sessions = append(m.sessions, session.Clone())
	return nil
}

// GetByID returns a copy of the session with the given ID
func (m *MemorySessionStore) GetByID(_ context.Context, id string) (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, exists := m.index[id]
	if !exists {
		return domain.Session{}, false
	}
	return m.sessions[i].Clone(), true
}

// ProfileStore struct - in-memory caregiver profile
type ProfileStore struct {
	mu      sync.RWMutex
	profile *domain.CaregiverProfile
}

var _ output.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates an empty in-memory profile store
func NewProfileStore() *ProfileStore {
	return &ProfileStore{}
}

// Load returns the stored profile
func (p *ProfileStore) Load(_ context.Context) (domain.CaregiverProfile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.profile == nil {
		return domain.CaregiverProfile{}, false
	}
	return *p.profile, true
}

// Save replaces the stored profile
func (p *ProfileStore) Save(_ context.Context, profile domain.CaregiverProfile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = &profile
	return nil
}

// Clear removes the stored profile
func (p *ProfileStore) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = nil
	return nil
}
