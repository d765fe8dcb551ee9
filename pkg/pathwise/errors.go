package pathwise

import "github.com/kailas-cloud/pathwise/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation     = domain.ErrValidation
	ErrRateLimited    = domain.ErrRateLimited
	ErrConfiguration  = domain.ErrConfiguration
	ErrUpstream       = domain.ErrUpstream
	ErrEmptyReply     = domain.ErrEmptyReply
	ErrMalformedReply = domain.ErrMalformedReply
	ErrInvalidValue   = domain.ErrInvalidValue
	ErrQuotaExceeded  = domain.ErrQuotaExceeded
)

// ValidationError carries the rejected field. Use errors.As() to extract it.
type ValidationError = domain.ValidationError

// RateLimitError carries the time until the client's window resets.
type RateLimitError = domain.RateLimitError
