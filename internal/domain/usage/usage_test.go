package usage

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/pathwise/internal/domain"
)

func TestNewReport(t *testing.T) {
	b := NewBudget(1000000, 615800, false, 1700000000000)
	r := NewReport(PeriodMonth, 1700000000, 1702600000, Counter{Used: 384200, Requests: 1542}, b)

	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 || r.PeriodEnd() != 1702600000 {
		t.Errorf("bounds = %d..%d", r.PeriodStart(), r.PeriodEnd())
	}
	if r.Requests() != 1542 || r.Tokens() != 384200 {
		t.Errorf("requests=%d tokens=%d", r.Requests(), r.Tokens())
	}
	if r.Budget().TokensLimit() != 1000000 || r.Budget().TokensRemaining() != 615800 {
		t.Errorf("budget = %+v", r.Budget())
	}
	if r.Budget().IsExhausted() || r.Budget().ResetsAt() != 1700000000000 {
		t.Errorf("budget = %+v", r.Budget())
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"", PeriodMonth},
		{"day", PeriodDay},
		{"month", PeriodMonth},
		{"total", PeriodTotal},
	}
	for _, tc := range tests {
		got, err := ParsePeriod(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParsePeriod(%q) = %q, %v", tc.in, got, err)
		}
	}

	if _, err := ParsePeriod("week"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
