package ratelimit

import (
	"context"
	"time"

	domrl "github.com/kailas-cloud/pathwise/internal/domain/ratelimit"
)

// WindowStore persists per-key windows and applies the policy atomically.
type WindowStore interface {
	Admit(ctx context.Context, key string, policy domrl.Policy, now time.Time) (domrl.Decision, error)
}
