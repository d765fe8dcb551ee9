package pathwise

import (
	"github.com/kailas-cloud/pathwise/internal/domain/career"
	"github.com/kailas-cloud/pathwise/internal/domain/college"
	"github.com/kailas-cloud/pathwise/internal/domain/course"
	"github.com/kailas-cloud/pathwise/internal/domain/search/result"
)

// Career is a normalized career suggestion. Salary is always "₹... per annum" style or empty.
type Career = career.Career

// Course is a normalized course suggestion. CourseURL is always an absolute URL.
type Course = course.Course

// College is a normalized college suggestion. Website is an absolute URL or empty.
type College = college.College

// CollegeQuery holds college search criteria.
// Budget must look like "₹2,00,000 - ₹5,00,000" for Colleges.
type CollegeQuery = college.Criteria

// Result is the outcome of one search.
// Suggestions is set only when Items is empty; Message only for CollegesBasic.
type Result[T any] struct {
	Items       []T
	Suggestions string
	Message     string
}

func fromEnvelope[T any](e result.Envelope[T]) Result[T] {
	return Result[T]{
		Items:       e.Items(),
		Suggestions: e.Suggestions(),
		Message:     e.Message(),
	}
}
