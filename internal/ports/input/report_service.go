package input

import (
	"context"

	"claritas/internal/domain"
)

// ReportService interface - Input port (use case)
type ReportService interface {
	Generate(ctx context.Context) (*domain.ClinicalReport, error)
}
