package output

import (
	"context"

	"claritas/internal/domain"
)

// SessionStore interface - Output port
// Defines what the application needs from session persistence.
// The store is append-only: sessions are never updated or deleted once written,
// and List preserves insertion order, which is also chronological order.
type SessionStore interface {
	// List returns every session in insertion order.
	// It never fails: an unreadable or corrupt backing store yields an empty slice.
	List(ctx context.Context) []domain.Session

	// Append adds a session to the end of the store.
	// Returns an error wrapping domain.ErrStorage when persistence is unavailable.
	// Callers treat this as non-fatal.
	Append(ctx context.Context, session domain.Session) error

	// GetByID looks a session up by ID. The boolean is false when it does not exist.
	GetByID(ctx context.Context, id string) (domain.Session, bool)
}
