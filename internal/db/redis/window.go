package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/pathwise/internal/db"
)

// windowScript keeps {count, start} in a hash so the check and the increment
// happen in one round trip. Returns {allowed, count, startMillis}.
const windowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local start = tonumber(redis.call('HGET', KEYS[1], 'start') or '0')
if count == 0 or now - start > window then
  redis.call('HSET', KEYS[1], 'count', 1, 'start', now)
  redis.call('PEXPIRE', KEYS[1], ttl)
  return {1, 1, now}
end
if count >= limit then
  return {0, count, start}
end
count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {1, count, start}
`

// windowGrace keeps the hash alive slightly past the window so a late
// request still sees the expired start instead of a missing key.
const windowGrace = time.Second

// IncrWindow runs one fixed-window admission for key.
func (s *Store) IncrWindow(
	ctx context.Context, key string, now time.Time, window time.Duration, limit int,
) (db.WindowState, error) {
	cmd := s.b().Eval().Script(windowScript).Numkeys(1).Key(key).Arg(
		strconv.FormatInt(now.UnixMilli(), 10),
		strconv.FormatInt(window.Milliseconds(), 10),
		strconv.Itoa(limit),
		strconv.FormatInt((window+windowGrace).Milliseconds(), 10),
	).Build()

	vals, err := s.do(ctx, cmd).AsIntSlice()
	if err != nil {
		return db.WindowState{}, &db.Error{Op: db.OpEval, Err: err}
	}
	if len(vals) != 3 {
		return db.WindowState{}, &db.Error{
			Op:  db.OpEval,
			Err: fmt.Errorf("window script returned %d values: %w", len(vals), db.ErrBadReply),
		}
	}

	return db.WindowState{
		Allowed: vals[0] == 1,
		Count:   int(vals[1]),
		Start:   time.UnixMilli(vals[2]),
	}, nil
}
