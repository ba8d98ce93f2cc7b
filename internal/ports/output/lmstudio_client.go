package output

import (
	"context"

	"claritas/internal/domain"
)

// LMStudioClient interface - Output port
// Defines what the application needs from LM Studio's OpenAI-compatible API
// to write the clinical report narrative.
type LMStudioClient interface {
	// ChatCompletion sends a non-streaming chat completion request to LM Studio.
	// Returns an error if the request fails or the response cannot be parsed.
	ChatCompletion(ctx context.Context, request domain.ChatCompletionRequest) (*domain.ChatCompletionResponse, error)

	// ListModels queries the /v1/models endpoint to retrieve available models from LM Studio.
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)
}
