package pathwise

import (
	"context"

	"github.com/kailas-cloud/pathwise/internal/domain/career"
	"github.com/kailas-cloud/pathwise/internal/domain/college"
	"github.com/kailas-cloud/pathwise/internal/domain/course"
	"github.com/kailas-cloud/pathwise/internal/domain/search/result"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	careersFn  func(ctx context.Context, key string, c career.Criteria) (result.Envelope[career.Career], error)
	coursesFn  func(ctx context.Context, key string, c course.Criteria) (result.Envelope[course.Course], error)
	collegesFn func(ctx context.Context, key string, c college.Criteria) (result.Envelope[college.College], error)
	basicFn    func(ctx context.Context, key string, c college.Criteria) (result.Envelope[college.College], error)
	urlFn      func(ctx context.Context, key string, c college.URLCriteria) (string, error)
}

func (m *mockSearchUC) Careers(
	ctx context.Context, key string, c career.Criteria,
) (result.Envelope[career.Career], error) {
	return m.careersFn(ctx, key, c)
}

func (m *mockSearchUC) Courses(
	ctx context.Context, key string, c course.Criteria,
) (result.Envelope[course.Course], error) {
	return m.coursesFn(ctx, key, c)
}

func (m *mockSearchUC) Colleges(
	ctx context.Context, key string, c college.Criteria,
) (result.Envelope[college.College], error) {
	return m.collegesFn(ctx, key, c)
}

func (m *mockSearchUC) CollegesBasic(
	ctx context.Context, key string, c college.Criteria,
) (result.Envelope[college.College], error) {
	return m.basicFn(ctx, key, c)
}

func (m *mockSearchUC) CollegeURL(ctx context.Context, key string, c college.URLCriteria) (string, error) {
	return m.urlFn(ctx, key, c)
}

// --- Completer mock ---

type mockCompleter struct {
	fn    func(ctx context.Context, p Prompt) (Completion, error)
	calls int
}

func (m *mockCompleter) Complete(ctx context.Context, p Prompt) (Completion, error) {
	m.calls++
	return m.fn(ctx, p)
}

// replyCompleter answers every prompt with content and reports tokens.
func replyCompleter(content string, tokens int) *mockCompleter {
	return &mockCompleter{fn: func(_ context.Context, _ Prompt) (Completion, error) {
		return Completion{Content: content, TotalTokens: tokens}, nil
	}}
}

// healthyCompleter also implements HealthCheck.
type healthyCompleter struct {
	mockCompleter
	err error
}

func (h *healthyCompleter) HealthCheck(context.Context) error { return h.err }
