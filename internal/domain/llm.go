package domain

// ChatMessageRole represents the author of a chat message
type ChatMessageRole string

const (
	// ChatMessageRoleSystem - system prompt
	ChatMessageRoleSystem ChatMessageRole = "system"
	// ChatMessageRoleUser - user message
	ChatMessageRoleUser ChatMessageRole = "user"
	// ChatMessageRoleAssistant - model response
	ChatMessageRoleAssistant ChatMessageRole = "assistant"
)

// ChatMessage is one message of a chat completion conversation
type ChatMessage struct {
	Role    ChatMessageRole
	Content string
}

// ChatCompletionRequest is a provider-neutral chat completion request
type ChatCompletionRequest struct {
	Messages    []ChatMessage
	Model       *string
	Temperature *float64
}

// ChatCompletionResponse is the generated content and token usage
type ChatCompletionResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ModelInfo describes a model served by the LLM endpoint
type ModelInfo struct {
	ID      string
	Object  string
	OwnedBy string
}
