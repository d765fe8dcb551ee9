// Package search runs the query-to-result pipeline for careers, courses and colleges.
//
// Every operation follows the same stages: admit the client, validate the criteria,
// build the prompt, call the model once, parse the reply and normalize each entity.
// The first failing stage ends the request.
package search

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/career"
	"github.com/kailas-cloud/pathwise/internal/domain/college"
	"github.com/kailas-cloud/pathwise/internal/domain/course"
	"github.com/kailas-cloud/pathwise/internal/domain/reply"
	"github.com/kailas-cloud/pathwise/internal/domain/search/result"
	"github.com/kailas-cloud/pathwise/internal/logger"
	"github.com/kailas-cloud/pathwise/internal/metrics"
)

// Service handles career, course and college searches.
type Service struct {
	limiter   Limiter
	completer Completer
	logger    *zap.Logger
}

// New creates a search service.
func New(limiter Limiter, completer Completer, log *zap.Logger) *Service {
	return &Service{limiter: limiter, completer: completer, logger: log}
}

// Careers suggests careers for a free-text query.
func (s *Service) Careers(
	ctx context.Context, clientKey string, c career.Criteria,
) (result.Envelope[career.Career], error) {
	items, err := pipeline(ctx, s, clientKey, c.Validate, func() domain.PromptSpec {
		return career.BuildPrompt(c)
	}, career.List)
	if err != nil {
		return result.Envelope[career.Career]{}, fmt.Errorf("career search: %w", err)
	}
	return result.Assemble(items, career.Suggestions, ""), nil
}

// Courses suggests online courses for a free-text query.
func (s *Service) Courses(
	ctx context.Context, clientKey string, c course.Criteria,
) (result.Envelope[course.Course], error) {
	items, err := pipeline(ctx, s, clientKey, c.Validate, func() domain.PromptSpec {
		return course.BuildPrompt(c)
	}, course.List)
	if err != nil {
		return result.Envelope[course.Course]{}, fmt.Errorf("course search: %w", err)
	}

	for _, it := range items {
		if it.URLSource() == course.SourceFallback {
			metrics.NormalizerFallbacksTotal.WithLabelValues("course_url").Inc()
		}
	}
	return result.Assemble(items, course.Suggestions, ""), nil
}

// Colleges suggests colleges using the detailed prompt and the full validator.
func (s *Service) Colleges(
	ctx context.Context, clientKey string, c college.Criteria,
) (result.Envelope[college.College], error) {
	items, err := pipeline(ctx, s, clientKey, c.Validate, func() domain.PromptSpec {
		return college.BuildPrompt(c)
	}, college.List)
	if err != nil {
		return result.Envelope[college.College]{}, fmt.Errorf("college search: %w", err)
	}
	countWebsiteFallbacks(items)
	return result.Assemble(items, college.Suggestions, ""), nil
}

// CollegesBasic is the lightweight college search: presence-only validation,
// the light model, and a criteria echo. Empty results still carry suggestions.
func (s *Service) CollegesBasic(
	ctx context.Context, clientKey string, c college.Criteria,
) (result.Envelope[college.College], error) {
	items, err := pipeline(ctx, s, clientKey, c.ValidateBasic, func() domain.PromptSpec {
		return college.BuildBasicPrompt(c)
	}, college.List)
	if err != nil {
		return result.Envelope[college.College]{}, fmt.Errorf("basic college search: %w", err)
	}
	countWebsiteFallbacks(items)
	return result.Assemble(items, college.Suggestions, c.Echo()), nil
}

// CollegeURL looks up a college's official website.
// A reply that is not a URL is domain.ErrInvalidValue.
func (s *Service) CollegeURL(ctx context.Context, clientKey string, c college.URLCriteria) (string, error) {
	raw, err := s.complete(ctx, clientKey, c.Validate, func() domain.PromptSpec {
		return college.BuildURLPrompt(c)
	})
	if err != nil {
		return "", fmt.Errorf("college url: %w", err)
	}

	u, err := college.ParseURLReply(raw)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("Unusable college URL reply",
			zap.String("college", c.CollegeName),
			zap.Int("reply_bytes", len(raw)),
		)
		return "", fmt.Errorf("college url: %w", err)
	}
	return u, nil
}

// pipeline runs the shared stages and normalizes the reply with list.
func pipeline[T any](
	ctx context.Context, s *Service, clientKey string,
	validate func() error, prompt func() domain.PromptSpec,
	list func(gjson.Result) []T,
) ([]T, error) {
	raw, err := s.complete(ctx, clientKey, validate, prompt)
	if err != nil {
		return nil, err
	}

	doc, err := reply.Parse(raw)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("Unparseable model reply",
			zap.Int("reply_bytes", len(raw)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	return list(doc), nil
}

// Admit charges clientKey one request without running a search. It is used for
// requests that fail before criteria exist, such as an undecodable body.
func (s *Service) Admit(ctx context.Context, clientKey string) error {
	return s.limiter.Admit(ctx, clientKey)
}

// complete admits the client, validates, and calls the model exactly once.
func (s *Service) complete(
	ctx context.Context, clientKey string,
	validate func() error, prompt func() domain.PromptSpec,
) (string, error) {
	if err := s.limiter.Admit(ctx, clientKey); err != nil {
		return "", err
	}
	if err := validate(); err != nil {
		return "", err
	}

	res, err := s.completer.Complete(ctx, prompt())
	if err != nil {
		return "", err
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Content, nil
}

func countWebsiteFallbacks(items []college.College) {
	for _, it := range items {
		if it.Website == "" {
			metrics.NormalizerFallbacksTotal.WithLabelValues("college_website").Inc()
		}
	}
}
