// Package ratelimit admits or rejects requests per client key.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pathwise/internal/domain"
	domrl "github.com/kailas-cloud/pathwise/internal/domain/ratelimit"
	"github.com/kailas-cloud/pathwise/internal/logger"
	"github.com/kailas-cloud/pathwise/internal/metrics"
)

// Limiter applies a fixed-window policy through an injected store.
type Limiter struct {
	store  WindowStore
	policy domrl.Policy
	now    func() time.Time
	logger *zap.Logger
}

// New creates a limiter. The policy must be valid.
func New(store WindowStore, policy domrl.Policy, log *zap.Logger) (*Limiter, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("rate limit policy: %w", err)
	}
	return &Limiter{
		store:  store,
		policy: policy,
		now:    time.Now,
		logger: log,
	}, nil
}

// Policy returns the configured policy.
func (l *Limiter) Policy() domrl.Policy { return l.policy }

// Admit records one request for key. A rejection is a *domain.RateLimitError.
// Store failures admit the request.
func (l *Limiter) Admit(ctx context.Context, key string) error {
	d, err := l.Decide(ctx, key, l.now())
	if err != nil {
		metrics.RateLimitDecisionsTotal.WithLabelValues("error").Inc()
		logger.FromContext(ctx, l.logger).Warn("Rate limit store unavailable, admitting request",
			zap.String("client", key),
			zap.Error(err),
		)
		return nil
	}

	if !d.Allowed {
		metrics.RateLimitDecisionsTotal.WithLabelValues("rejected").Inc()
		logger.FromContext(ctx, l.logger).Info("Rate limited",
			zap.String("client", key),
			zap.Int("count", d.Count),
			zap.Duration("retry_after", d.RetryAfter),
		)
		return domain.NewRateLimited(d.RetryAfter)
	}

	metrics.RateLimitDecisionsTotal.WithLabelValues("admitted").Inc()
	return nil
}

// Decide runs one admission at now and returns the raw decision.
func (l *Limiter) Decide(ctx context.Context, key string, now time.Time) (domrl.Decision, error) {
	d, err := l.store.Admit(ctx, key, l.policy, now)
	if err != nil {
		return domrl.Decision{}, fmt.Errorf("admit %s: %w", key, err)
	}
	return d, nil
}
