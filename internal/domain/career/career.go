// Package career holds career search criteria, prompts and normalization.
package career

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/reply"
)

// MaxQueryLength is the maximum accepted search query length in characters.
const MaxQueryLength = 500

// Suggestions is attached when the model returns no careers.
const Suggestions = "Try:\n" +
	"1. Using a broader job title or field (e.g. \"design\" instead of a niche role)\n" +
	"2. Describing what you enjoy doing rather than a specific title\n" +
	"3. Checking the spelling of the career name\n" +
	"4. Exploring related fields such as management, research or teaching"

// Criteria is a career search request.
type Criteria struct {
	Query string `json:"searchQuery"`
}

// Validate checks the query is present and bounded.
func (c Criteria) Validate() error {
	q := strings.TrimSpace(c.Query)
	if q == "" {
		return domain.NewValidationError("searchQuery", "searchQuery is required")
	}
	if len([]rune(q)) > MaxQueryLength {
		return domain.NewValidationError("searchQuery", "searchQuery is too long")
	}
	return nil
}

// Career is a normalized career suggestion.
type Career struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	MatchScore   float64  `json:"matchScore"`
	Salary       string   `json:"salary"`
	Growth       string   `json:"growth"`
	Requirements []string `json:"requirements"`
	Skills       []string `json:"skills"`
	Category     string   `json:"category"`
}

// FromJSON normalizes one untrusted career object. It never fails.
func FromJSON(r gjson.Result) Career {
	return Career{
		Title:        reply.String(r.Get("title")),
		Description:  reply.String(r.Get("description")),
		MatchScore:   reply.Clamp(reply.Number(r.Get("matchScore")), 0, 100),
		Salary:       NormalizeSalary(reply.String(r.Get("salary"))),
		Growth:       reply.String(r.Get("growth")),
		Requirements: reply.Strings(r.Get("requirements")),
		Skills:       reply.Strings(r.Get("skills")),
		Category:     reply.String(r.Get("category")),
	}
}

// List normalizes the "careers" array of a parsed reply.
func List(doc gjson.Result) []Career {
	objs := reply.Objects(doc, "careers")
	out := make([]Career, 0, len(objs))
	for _, o := range objs {
		out = append(out, FromJSON(o))
	}
	return out
}
