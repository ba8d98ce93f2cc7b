package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"claritas/internal/domain"
	"claritas/internal/ports/output"

	"github.com/sirupsen/logrus"
)

const (
	// SessionsKey holds the JSON array of sessions
	SessionsKey = "claritas_sessions"
	// CurrentUserKey holds the last signed-in caregiver profile
	CurrentUserKey = "claritas_current_user"
)

var _ output.SessionStore = (*SessionStore)(nil)

// SessionStore struct - Output adapter keeping every session as one JSON array under SessionsKey
type SessionStore struct {
	kv KeyValue
	mu sync.Mutex
}

// NewSessionStore creates a session store over kv
func NewSessionStore(kv KeyValue) *SessionStore {
	return &SessionStore{kv: kv}
}

// List returns every stored session. Missing, unreadable or malformed data yields an empty slice.
func (s *SessionStore) List(_ context.Context) []domain.Session {
	sessions, _, _ := s.load()
	return sessions
}

// Append adds the session to the end of the stored array.
// Malformed existing data is moved aside to a backup key before being replaced.
func (s *SessionStore) Append(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, raw, corrupt := s.load()
	if corrupt {
		backupKey := fmt.Sprintf("%s.corrupt-%d", SessionsKey, time.Now().UnixNano())
		if err := s.kv.Set(backupKey, raw); err != nil {
			return fmt.Errorf("%w: failed to back up unreadable sessions: %v", domain.ErrStorage, err)
		}
		logrus.Warnf("Unreadable session data moved to %s", backupKey)
	}

	for _, existing := range sessions {
		if existing.ID == session.ID {
			return domain.ErrDuplicateSession
		}
	}
	sessions = append(sessions, session)

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("%w: failed to encode sessions: %v", domain.ErrStorage, err)
	}
	if err := s.kv.Set(SessionsKey, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// GetByID scans the stored sessions for id
func (s *SessionStore) GetByID(ctx context.Context, id string) (domain.Session, bool) {
	for _, session := range s.List(ctx) {
		if session.ID == id {
			return session, true
		}
	}
	return domain.Session{}, false
}

// load reads the array, reporting the raw bytes and whether they failed to decode
func (s *SessionStore) load() ([]domain.Session, []byte, bool) {
	raw, found, err := s.kv.Get(SessionsKey)
	if err != nil {
		logrus.Errorf("Error reading sessions: %v", err)
		return []domain.Session{}, nil, false
	}
	if !found || len(raw) == 0 {
		return []domain.Session{}, nil, false
	}

	var sessions []domain.Session
	if err := json.Unmarshal(raw, &sessions); err != nil {
		logrus.Warnf("Error decoding sessions, treating store as empty: %v", err)
		return []domain.Session{}, raw, true
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return sessions, raw, false
}

var _ output.ProfileStore = (*ProfileStore)(nil)

// ProfileStore struct - Output adapter keeping the caregiver profile under CurrentUserKey
type ProfileStore struct {
	kv KeyValue
}

// NewProfileStore creates a profile store over kv
func NewProfileStore(kv KeyValue) *ProfileStore {
	return &ProfileStore{kv: kv}
}

// Load returns the stored profile, false when missing or malformed
func (p *ProfileStore) Load(_ context.Context) (domain.CaregiverProfile, bool) {
	raw, found, err := p.kv.Get(CurrentUserKey)
	if err != nil {
		logrus.Errorf("Error reading caregiver profile: %v", err)
		return domain.CaregiverProfile{}, false
	}
	if !found {
		return domain.CaregiverProfile{}, false
	}
	var profile domain.CaregiverProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		logrus.Warnf("Error decoding caregiver profile: %v", err)
		return domain.CaregiverProfile{}, false
	}
	return profile, true
}

// Save replaces the stored profile
func (p *ProfileStore) Save(_ context.Context, profile domain.CaregiverProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode caregiver profile: %w", err)
	}
	if err := p.kv.Set(CurrentUserKey, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Clear removes the stored profile
func (p *ProfileStore) Clear(_ context.Context) error {
	return p.kv.Delete(CurrentUserKey)
}
