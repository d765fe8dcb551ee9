// Package ratelimit holds the fixed-window admission algorithm.
//
// A window opens on the first request for a key and stays open for Policy.Window.
// Requests inside an open window are admitted until Count reaches Policy.Limit.
// Bursts of up to 2*Limit can straddle a window boundary.
package ratelimit

import (
	"fmt"
	"time"
)

// Default policy values.
const (
	DefaultLimit  = 10
	DefaultWindow = time.Minute
)

// Policy configures the limiter.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicy returns 10 requests per minute.
func DefaultPolicy() Policy {
	return Policy{Limit: DefaultLimit, Window: DefaultWindow}
}

// Validate checks the policy for correctness.
func (p Policy) Validate() error {
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", p.Limit)
	}
	if p.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", p.Window)
	}
	return nil
}

// Window is the per-key counter state.
type Window struct {
	Count int
	Start time.Time
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Count      int
	ResetAt    time.Time
	RetryAfter time.Duration // zero when Allowed
}

// Apply runs one admission check against w. found=false means the key has no window yet.
// The returned Window must replace the stored one; a rejection leaves it unchanged.
func (p Policy) Apply(w Window, found bool, now time.Time) (Window, Decision) {
	if !found || now.Sub(w.Start) > p.Window {
		next := Window{Count: 1, Start: now}
		return next, Decision{Allowed: true, Count: 1, ResetAt: now.Add(p.Window)}
	}

	resetAt := w.Start.Add(p.Window)
	if w.Count >= p.Limit {
		return w, Decision{
			Allowed:    false,
			Count:      w.Count,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(resetAt, now),
		}
	}

	w.Count++
	return w, Decision{Allowed: true, Count: w.Count, ResetAt: resetAt}
}

// Expired reports whether the window no longer affects admission at now.
func (p Policy) Expired(w Window, now time.Time) bool {
	return now.Sub(w.Start) > p.Window
}

// DecisionFrom rebuilds a Decision from stored window fields (used by remote stores).
func (p Policy) DecisionFrom(allowed bool, count int, start, now time.Time) Decision {
	resetAt := start.Add(p.Window)
	d := Decision{Allowed: allowed, Count: count, ResetAt: resetAt}
	if !allowed {
		d.RetryAfter = retryAfter(resetAt, now)
	}
	return d
}

func retryAfter(resetAt, now time.Time) time.Duration {
	// the window resets strictly after resetAt
	d := resetAt.Sub(now) + time.Millisecond
	if d < time.Millisecond {
		return time.Millisecond
	}
	return d
}
