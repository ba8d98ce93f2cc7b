package output

import (
	"context"

	"claritas/internal/domain"
)

// Analyzer interface - Output port
// The external service that turns raw audio into scored metrics.
type Analyzer interface {
	// Analyze submits one payload and returns the parsed result.
	// Every failure (transport, non-2xx status, unparsable body) wraps domain.ErrAnalysisFailed
	// and carries a human-readable message.
	Analyze(ctx context.Context, request domain.AnalysisRequest) (*domain.AnalysisResult, error)
}
