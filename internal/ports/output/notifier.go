package output

import (
	"context"

	"claritas/internal/domain"
)

// Notifier interface - Output port
// Tells the caregiver about newly recorded sessions.
type Notifier interface {
	NotifySession(ctx context.Context, session domain.Session) error
}
