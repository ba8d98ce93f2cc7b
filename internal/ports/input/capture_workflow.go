package input

import (
	"context"

	"claritas/internal/domain"
)

// CaptureWorkflow interface - Input port (use case)
// Drives one record-and-submit cycle at a time
type CaptureWorkflow interface {
	Start(ctx context.Context, task domain.TaskContext) error
	NextSentence(ctx context.Context) (*domain.Session, error)
	Stop(ctx context.Context) (*domain.Session, error)
	Upload(ctx context.Context, task domain.TaskContext, payload domain.AudioPayload) (*domain.Session, error)
	Cancel(ctx context.Context) error
	Snapshot() domain.CaptureSnapshot
	Close() error
}
