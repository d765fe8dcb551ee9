package pathwise

import (
	"context"

	"github.com/kailas-cloud/pathwise/internal/domain"
)

// Prompt is a fully built model request.
type Prompt = domain.PromptSpec

// Completion is a raw model reply with token usage.
type Completion = domain.Completion

// Model classes a Prompt may ask for.
const (
	ModelStandard = domain.ModelStandard
	ModelLight    = domain.ModelLight
)

// Completer sends one prompt to a chat-completion model.
// Use WithCompleter to plug in a provider other than OpenAI.
// If it also implements HealthCheck(ctx) error, Health reports it.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}
