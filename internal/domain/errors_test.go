package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidationError_IsErrValidation(t *testing.T) {
	err := NewValidationError("budget", "Invalid budget format")
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected errors.Is(err, ErrValidation)")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected *ValidationError")
	}
	if ve.Field != "budget" {
		t.Errorf("field = %q, want budget", ve.Field)
	}
	if err.Error() != "Invalid budget format" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRateLimitError_IsErrRateLimited(t *testing.T) {
	err := NewRateLimited(3 * time.Second)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatal("expected errors.Is(err, ErrRateLimited)")
	}
	var rl *RateLimitError
	if !errors.As(err, &rl) || rl.RetryAfter != 3*time.Second {
		t.Fatalf("unexpected retry after: %v", err)
	}
}

func TestErrEmptyReply_IsUpstream(t *testing.T) {
	if !errors.Is(ErrEmptyReply, ErrUpstream) {
		t.Fatal("empty reply must classify as an upstream failure")
	}
}

func TestCompletionUsage_AddTokens(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(42)

	if !u.Used || u.TotalTokens != 42 {
		t.Errorf("usage = %+v, want 42 tokens used", *u)
	}
}

func TestCompletionUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatal("expected nil usage")
	}
	u.AddTokens(10) // must not panic
}
