// Package usage describes completion token consumption reports.
package usage

import (
	"fmt"

	"github.com/kailas-cloud/pathwise/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodTotal Period = "total"
)

// ParsePeriod reads a period query value. Empty means PeriodMonth.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodMonth, PeriodTotal:
		return Period(s), nil
	default:
		return "", domain.NewValidationError("period", fmt.Sprintf("period must be day, month or total, got %q", s))
	}
}

// Counter is a snapshot of one budget period. Remaining is -1 when the period is unlimited.
type Counter struct {
	Limit     int64
	Used      int64
	Remaining int64
	Requests  int64
}

// Budget is the token budget status inside a report.
type Budget struct {
	tokensLimit     int64
	tokensRemaining int64
	isExhausted     bool
	resetsAt        int64 // unix millis, converted to RFC 3339 at transport layer
}

// NewBudget creates a Budget snapshot.
func NewBudget(limit, remaining int64, isExhausted bool, resetsAt int64) Budget {
	return Budget{
		tokensLimit:     limit,
		tokensRemaining: remaining,
		isExhausted:     isExhausted,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap (0 = unlimited).
func (b Budget) TokensLimit() int64 { return b.tokensLimit }

// TokensRemaining returns tokens left (-1 = unlimited).
func (b Budget) TokensRemaining() int64 { return b.tokensRemaining }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// ResetsAt returns the reset timestamp (unix millis, 0 = never).
func (b Budget) ResetsAt() int64 { return b.resetsAt }

// Report is a completion usage report for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	requests    int64
	tokens      int64
	budget      Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, c Counter, b Budget) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		requests:    c.Requests,
		tokens:      c.Used,
		budget:      b,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Requests returns the number of completion calls in the period.
func (r *Report) Requests() int64 { return r.requests }

// Tokens returns the total tokens consumed.
func (r *Report) Tokens() int64 { return r.tokens }

// Budget returns the budget status.
func (r *Report) Budget() Budget { return r.budget }
