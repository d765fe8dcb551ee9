package career

import (
	"regexp"
	"strings"
	"unicode"
)

// Currency is prefixed to salaries that lack it.
const Currency = "₹"

// DefaultPeriod is appended to salaries without a period qualifier.
const DefaultPeriod = "per annum"

var (
	firstDigit = regexp.MustCompile(`\d`)
	// written-out rupee markers; symbols are caught by unicode.Sc
	currencyWord = regexp.MustCompile(`(?i)\b(?:rs|inr)\b`)
	// period qualifiers the model uses interchangeably with "per annum"
	periodQualifiers = []string{
		"per annum", "per year", "a year", "p.a.", "annually", "/year", "/yr", "/annum",
		"per month", "/month", "lpa",
	}
)

// NormalizeSalary canonicalizes a salary range to "₹... per annum" form.
// The currency check runs first, the period check second; each is idempotent,
// so strings that already carry both are returned unchanged. A string with any
// currency marker ($, Rs, INR, ...) keeps it and gets no ₹. "" stays "".
func NormalizeSalary(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if !hasCurrency(s) {
		if loc := firstDigit.FindStringIndex(s); loc != nil {
			s = s[:loc[0]] + Currency + s[loc[0]:]
		}
	}

	if !hasPeriod(s) {
		s += " " + DefaultPeriod
	}
	return s
}

func hasCurrency(s string) bool {
	if strings.IndexFunc(s, func(r rune) bool { return unicode.Is(unicode.Sc, r) }) >= 0 {
		return true
	}
	return currencyWord.MatchString(s)
}

func hasPeriod(s string) bool {
	lower := strings.ToLower(s)
	for _, q := range periodQualifiers {
		if strings.Contains(lower, q) {
			return true
		}
	}
	return false
}
