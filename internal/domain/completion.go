package domain

import "context"

// Completer is the shared chat-completion contract between layers.
type Completer interface {
	Complete(ctx context.Context, prompt PromptSpec) (Completion, error)
}

// HealthChecker verifies completion provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Completion carries the raw reply and token usage through the decorator chain.
// Content is untrusted model output.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// KeyPrefix namespaces every key this service writes to the shared store.
const KeyPrefix = "pathwise:"
