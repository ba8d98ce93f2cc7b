package output

import (
	"context"

	"claritas/internal/domain"
)

// ProfileStore interface - Output port
// Persists the last signed-in caregiver profile.
type ProfileStore interface {
	// Load returns the stored profile, false when absent or unreadable
	Load(ctx context.Context) (domain.CaregiverProfile, bool)

	// Save replaces the stored profile
	Save(ctx context.Context, profile domain.CaregiverProfile) error

	// Clear removes the stored profile. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
