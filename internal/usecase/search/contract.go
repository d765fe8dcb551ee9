package search

import (
	"context"

	"github.com/kailas-cloud/pathwise/internal/domain"
)

// Limiter admits or rejects one request per client key.
type Limiter interface {
	Admit(ctx context.Context, clientKey string) error
}

// Completer sends one prompt to the model.
type Completer interface {
	Complete(ctx context.Context, prompt domain.PromptSpec) (domain.Completion, error)
}
