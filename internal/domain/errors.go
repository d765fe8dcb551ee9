package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation signals a caller-supplied field that failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrConfiguration signals a deployment fault, e.g. a missing completion credential.
	ErrConfiguration = errors.New("completion service not configured")
	// ErrUpstream signals a completion provider failure or timeout.
	ErrUpstream = errors.New("completion provider error")
	// ErrEmptyReply signals a successful completion call that returned no content.
	ErrEmptyReply = fmt.Errorf("empty reply: %w", ErrUpstream)
	// ErrMalformedReply signals a completion reply that is not a JSON object.
	ErrMalformedReply = errors.New("malformed completion reply")
	// ErrInvalidValue signals a reply that normalizes to an unusable value.
	ErrInvalidValue = errors.New("invalid value from completion provider")
	// ErrQuotaExceeded signals an exhausted completion token budget.
	ErrQuotaExceeded = errors.New("completion quota exceeded")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RateLimitError wraps ErrRateLimited with the time until the window resets.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited.Error(), e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// NewRateLimited creates a rate limit error.
func NewRateLimited(retryAfter time.Duration) error {
	return &RateLimitError{RetryAfter: retryAfter}
}
