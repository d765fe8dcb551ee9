// Package usage builds completion token usage reports.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/pathwise/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode, nothing tracked).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period.
// The total period reports the monthly counter without boundaries.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	var start, end int64
	var c domusage.Counter

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = dayStart.UnixMilli()
		end = dayStart.Add(24 * time.Hour).UnixMilli()
		if s.br != nil {
			c = s.br.Daily()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = monthStart.UnixMilli()
		end = monthStart.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			c = s.br.Monthly()
		}
	default:
		if s.br != nil {
			c = s.br.Monthly()
		}
	}

	exhausted := c.Limit > 0 && c.Remaining == 0
	b := domusage.NewBudget(c.Limit, c.Remaining, exhausted, end)

	return domusage.NewReport(period, start, end, c, b)
}
