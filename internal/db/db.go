package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	KVStore
	WindowCounter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the counter operations budget persistence needs.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// WindowState is the counter state returned by a fixed-window increment.
type WindowState struct {
	Allowed bool
	Count   int
	Start   time.Time
}

// WindowCounter runs an atomic fixed-window admission on a single key.
// The window opens at now when the key is missing or older than window;
// otherwise the count is incremented unless it already reached limit.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (WindowState, error)
}
