package application

import (
	"context"
	"time"

	"claritas/internal/domain"
	"claritas/internal/ports/input"
	"claritas/internal/ports/output"
)

var _ input.SessionService = (*SessionService)(nil)

// SessionService struct - Application service implementing the read side of the session history
type SessionService struct {
	store    output.SessionStore
	location *time.Location
}

// NewSessionService func - Creates new session service. Chart labels are rendered in location.
func NewSessionService(store output.SessionStore, location *time.Location) *SessionService {
	if location == nil {
		location = time.UTC
	}
	return &SessionService{
		store:    store,
		location: location,
	}
}

// ListSessions func - Use case: sessions in chronological order, narrowed by the filter
func (s *SessionService) ListSessions(ctx context.Context, filter domain.SessionFilter) []domain.Session {
	sessions := s.store.List(ctx)
	filtered := make([]domain.Session, 0, len(sessions))
	for _, session := range sessions {
		if filter.Matches(session) {
			filtered = append(filtered, session)
		}
	}
	return filtered
}

// GetSession func - Use case: one session by ID
func (s *SessionService) GetSession(ctx context.Context, id string) (domain.Session, bool) {
	return s.store.GetByID(ctx, id)
}

// Dashboard func - Use case: derived metrics over the whole history
func (s *SessionService) Dashboard(ctx context.Context) domain.Dashboard {
	return domain.BuildDashboard(s.store.List(ctx), s.location)
}

// Location returns the time zone used for day boundaries and labels
func (s *SessionService) Location() *time.Location {
	return s.location
}
