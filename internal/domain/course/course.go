// Package course holds online course search criteria, prompts and normalization.
package course

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/reply"
)

// MaxQueryLength is the maximum accepted search query length in characters.
const MaxQueryLength = 500

// Suggestions is attached when the model returns no courses.
const Suggestions = "Try:\n" +
	"1. Searching for a broader topic (e.g. \"programming\" instead of a single framework)\n" +
	"2. Using the skill you want to learn rather than a course title\n" +
	"3. Browsing beginner-level courses on Coursera, edX or Udacity directly"

// Criteria is a course search request.
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

// Course is a normalized course suggestion. CourseURL is always a valid absolute URL.
type Course struct {
	Title     string  `json:"title"`
	Provider  string  `json:"provider"`
	Duration  string  `json:"duration"`
	Rating    float64 `json:"rating"`
	Level     string  `json:"level"`
	Category  string  `json:"category"`
	CourseURL string  `json:"courseUrl"`

	urlSource URLSource
}

// URLSource reports how CourseURL was produced.
func (c Course) URLSource() URLSource { return c.urlSource }

// FromJSON normalizes one untrusted course object. It never fails.
func FromJSON(r gjson.Result) Course {
	u := NormalizeURL(reply.String(r.Get("courseUrl")))
	return Course{
		Title:     reply.String(r.Get("title")),
		Provider:  reply.String(r.Get("provider")),
		Duration:  reply.String(r.Get("duration")),
		Rating:    reply.Clamp(reply.Number(r.Get("rating")), 0, 5),
		Level:     reply.String(r.Get("level")),
		Category:  reply.String(r.Get("category")),
		CourseURL: u.URL,
		urlSource: u.Source,
	}
}

// List normalizes the "courses" array of a parsed reply.
func List(doc gjson.Result) []Course {
	objs := reply.Objects(doc, "courses")
	out := make([]Course, 0, len(objs))
	for _, o := range objs {
		out = append(out, FromJSON(o))
	}
	return out
}
