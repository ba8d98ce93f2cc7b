package input

import (
	"context"

	"claritas/internal/domain"
)

// LineWebhookService interface - Input port (use case)
// Answers the caregiver's LINE chat: follow greetings and status commands.
type LineWebhookService interface {
	HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error
}
