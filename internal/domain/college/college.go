// Package college holds college search and URL lookup criteria, prompts and normalization.
package college

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/reply"
)

// Suggestions is attached when the model returns no colleges.
const Suggestions = "Consider:\n" +
	"1. Expanding your search to nearby locations\n" +
	"2. Exploring similar programs\n" +
	"3. Checking colleges with flexible payment plans\n" +
	"4. Looking at colleges in the next budget range"

// budgetPattern matches "₹2,00,000 - ₹5,00,000".
var budgetPattern = regexp.MustCompile(`^₹\d[\d,]* - ₹\d[\d,]*$`)

// Criteria is a college search request.
type Criteria struct {
	Stream   string `json:"stream"`
	Location string `json:"location"`
	Budget   string `json:"budget"`
}

// Validate applies the full rule set: every field required, budget must be a ₹ range.
func (c Criteria) Validate() error {
	if strings.TrimSpace(c.Stream) == "" {
		return domain.NewValidationError("stream", "Academic stream is required")
	}
	if strings.TrimSpace(c.Location) == "" {
		return domain.NewValidationError("location", "Location is required")
	}
	if strings.TrimSpace(c.Budget) == "" {
		return domain.NewValidationError("budget", "Budget is required")
	}
	if !budgetPattern.MatchString(c.Budget) {
		return domain.NewValidationError("budget", "Invalid budget format")
	}
	return nil
}

// ValidateBasic only checks presence, for the lightweight search variant.
func (c Criteria) ValidateBasic() error {
	for _, f := range []struct{ name, value string }{
		{"stream", c.Stream},
		{"location", c.Location},
		{"budget", c.Budget},
	} {
		if strings.TrimSpace(f.value) == "" {
			return domain.NewValidationError(f.name, "Missing required fields")
		}
	}
	return nil
}

// Echo restates the criteria for the lightweight search response.
func (c Criteria) Echo() string {
	return fmt.Sprintf("Here are some college suggestions based on your criteria: %s in %s with a budget of %s.",
		c.Stream, c.Location, c.Budget)
}

// College is a normalized college suggestion. Website is a valid absolute URL or "".
type College struct {
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Requirements string   `json:"requirements"`
	Programs     []string `json:"programs"`
	Courses      []string `json:"courses"`
	Rating       float64  `json:"rating"`
	Website      string   `json:"website"`
	Offerings    []string `json:"offerings"`
}

// FromJSON normalizes one untrusted college object. It never fails.
func FromJSON(r gjson.Result) College {
	return College{
		Name:         reply.String(r.Get("name")),
		Location:     reply.String(r.Get("location")),
		Requirements: reply.String(r.Get("requirements")),
		Programs:     reply.Strings(r.Get("programs")),
		Courses:      reply.Strings(r.Get("courses")),
		Rating:       reply.Clamp(reply.Number(r.Get("rating")), 0, 5),
		Website:      NormalizeWebsite(reply.String(r.Get("website"))),
		Offerings:    reply.Strings(r.Get("offerings")),
	}
}

// List normalizes the "colleges" array of a parsed reply.
func List(doc gjson.Result) []College {
	objs := reply.Objects(doc, "colleges")
	out := make([]College, 0, len(objs))
	for _, o := range objs {
		out = append(out, FromJSON(o))
	}
	return out
}
