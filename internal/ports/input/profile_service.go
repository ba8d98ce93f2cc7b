package input

import (
	"context"

	"claritas/internal/domain"
)

// ProfileService interface - Input port (use case)
type ProfileService interface {
	SignIn(ctx context.Context, profile domain.CaregiverProfile) error
	Current(ctx context.Context) (domain.CaregiverProfile, bool)
	SignOut(ctx context.Context) error
}
