package completion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/usage"
)

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore is the persistence interface for budget counters.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// period is one rolling token counter (a UTC day or a UTC month).
type period struct {
	name     string
	layout   string
	limit    int64
	used     int64
	requests int64
	start    time.Time
	truncate func(time.Time) time.Time
}

func (p *period) roll(now time.Time) {
	if cur := p.truncate(now); cur.After(p.start) {
		p.start = cur
		p.used = 0
		p.requests = 0
	}
}

func (p *period) exceeded() bool {
	return p.limit > 0 && p.used >= p.limit
}

func (p *period) remaining() int64 {
	if p.limit == 0 {
		return -1
	}
	return max(p.limit-p.used, 0)
}

func (p *period) key(provider string, t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, provider, p.name, t.Format(p.layout))
}

func (p *period) counter() usage.Counter {
	return usage.Counter{Limit: p.limit, Used: p.used, Remaining: p.remaining(), Requests: p.requests}
}

// BudgetTracker is an in-memory token budget with optional write-behind persistence.
// Check never leaves the process; Record updates memory first, then the store.
type BudgetTracker struct {
	mu       sync.Mutex
	daily    period
	monthly  period
	action   BudgetAction
	provider string
	store    BudgetStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewBudgetTracker creates a budget tracker. A zero limit means unlimited.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	return newBudgetTracker(provider, dailyLimit, monthlyLimit, action, logger, func() time.Time {
		return time.Now().UTC()
	})
}

func newBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger, now func() time.Time,
) *BudgetTracker {
	t := now()
	return &BudgetTracker{
		daily: period{
			name: "daily", layout: "2006-01-02", limit: dailyLimit,
			start: truncateToDay(t), truncate: truncateToDay,
		},
		monthly: period{
			name: "monthly", layout: "2006-01", limit: monthlyLimit,
			start: truncateToMonth(t), truncate: truncateToMonth,
		},
		action:   action,
		provider: provider,
		now:      now,
		logger:   logger,
	}
}

// WithStore attaches a persistence store and loads the current counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now()
	for _, p := range []*period{&b.daily, &b.monthly} {
		val, err := store.Get(ctx, p.key(b.provider, now))
		if err != nil {
			b.logger.Warn("Failed to load budget from store", zap.String("period", p.name), zap.Error(err))
			continue
		}
		p.used = val
	}

	b.logger.Info("Budget loaded from store",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("monthly_used", b.monthly.used),
	)
	return b
}

// Check verifies the budget allows a new request.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll()
	if !b.daily.exceeded() && !b.monthly.exceeded() {
		return nil
	}

	if b.action == BudgetActionReject {
		return domain.ErrQuotaExceeded
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("daily_limit", b.daily.limit),
		zap.Int64("monthly_used", b.monthly.used),
		zap.Int64("monthly_limit", b.monthly.limit),
	)
	return nil
}

// Record registers tokens consumed by one completion call.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.roll()
	now := b.now()
	keys := make(map[string]int64, 2)
	for _, p := range []*period{&b.daily, &b.monthly} {
		p.used += tokens
		p.requests++
		keys[p.key(b.provider, now)] = tokens
	}
	store := b.store
	b.mu.Unlock()

	if store == nil || tokens <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for key, val := range keys {
		if err := store.IncrBy(ctx, key, val); err != nil {
			b.logger.Warn("Failed to persist budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// Daily returns a snapshot of today's counter.
func (b *BudgetTracker) Daily() usage.Counter {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	return b.daily.counter()
}

// Monthly returns a snapshot of this month's counter.
func (b *BudgetTracker) Monthly() usage.Counter {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	return b.monthly.counter()
}

// RemainingDaily returns tokens left today (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 { return b.Daily().Remaining }

// RemainingMonthly returns tokens left this month (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() int64 { return b.Monthly().Remaining }

func (b *BudgetTracker) roll() {
	now := b.now()
	b.daily.roll(now)
	b.monthly.roll(now)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
