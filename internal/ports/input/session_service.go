package input

import (
	"context"

	"claritas/internal/domain"
)

// SessionService interface - Input port (use case)
// Read-side queries over the session history
type SessionService interface {
	ListSessions(ctx context.Context, filter domain.SessionFilter) []domain.Session
	GetSession(ctx context.Context, id string) (domain.Session, bool)
	Dashboard(ctx context.Context) domain.Dashboard
}
