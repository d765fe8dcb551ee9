package ratewindow

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/pathwise/internal/db"
	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/ratelimit"
)

var keyPrefix = domain.KeyPrefix + "ratelimit:"

// counter is the consumer interface for shared windows (ISP).
type counter interface {
	IncrWindow(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (db.WindowState, error)
}

// RedisStore keeps windows in Redis so every instance shares one budget per client.
type RedisStore struct {
	counter counter
}

// NewRedisStore creates a shared window store.
func NewRedisStore(c counter) *RedisStore {
	return &RedisStore{counter: c}
}

// Admit applies policy to the shared window for key.
func (s *RedisStore) Admit(
	ctx context.Context, key string, policy ratelimit.Policy, now time.Time,
) (ratelimit.Decision, error) {
	st, err := s.counter.IncrWindow(ctx, keyPrefix+key, now, policy.Window, policy.Limit)
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("ratelimit window %s: %w", key, err)
	}
	return policy.DecisionFrom(st.Allowed, st.Count, st.Start, now), nil
}
