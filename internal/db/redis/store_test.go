package redis

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/pathwise/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Fatalf("expected db.Error for PING, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestDo_AppliesCommandTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		DoAndReturn(func(ctx context.Context, _ rueidis.Completed) rueidis.RedisResult {
			deadline, ok := ctx.Deadline()
			if !ok {
				t.Error("expected a deadline on the command context")
			} else if time.Until(deadline) > DefaultCommandTimeout {
				t.Errorf("deadline too far: %s", time.Until(deadline))
			}
			return mock.Result(mock.RedisBlobString("v"))
		})

	s := NewStoreForTest(c)
	if _, err := s.Get(context.Background(), "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- kv.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisBlobString("value")))

	s := NewStoreForTest(c)
	data, err := s.Get(context.Background(), "mykey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "mykey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "mykey")
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %T", err)
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
}

func TestIncrBy_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("INCRBY", "counter", "5")).
		Return(mock.Result(mock.RedisInt64(5)))

	s := NewStoreForTest(c)
	if err := s.IncrBy(context.Background(), "counter", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire_WithNX(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "EXPIRE" || cmd[1] != "mykey" {
				return false
			}
			for _, arg := range cmd {
				if arg == "NX" {
					return true
				}
			}
			return false
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Expire(context.Background(), "mykey", 48*time.Hour, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- window.go tests ---

func evalFor(key string, now time.Time, windowMs, limit, ttlMs string) func(cmd []string) bool {
	return func(cmd []string) bool {
		// EVAL script numkeys key now window limit ttl
		return len(cmd) == 8 &&
			cmd[0] == "EVAL" && cmd[2] == "1" && cmd[3] == key &&
			cmd[4] == strconv.FormatInt(now.UnixMilli(), 10) && cmd[5] == windowMs &&
			cmd[6] == limit && cmd[7] == ttlMs
	}
}

func TestIncrWindow_Admitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	now := time.UnixMilli(1_700_000_000_000)
	start := now.Add(-10 * time.Second)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(evalFor("pathwise:ratelimit:10.0.0.1", now, "60000", "10", "61000"))).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1), mock.RedisInt64(4), mock.RedisInt64(start.UnixMilli()),
		)))

	s := NewStoreForTest(c)
	st, err := s.IncrWindow(context.Background(), "pathwise:ratelimit:10.0.0.1", now, time.Minute, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Allowed || st.Count != 4 || !st.Start.Equal(start) {
		t.Errorf("unexpected state: %+v", st)
	}
}

func TestIncrWindow_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	now := time.UnixMilli(1_700_000_000_000)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "EVAL" })).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0), mock.RedisInt64(10), mock.RedisInt64(now.UnixMilli()-5000),
		)))

	s := NewStoreForTest(c)
	st, err := s.IncrWindow(context.Background(), "k", now, time.Minute, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Allowed || st.Count != 10 {
		t.Errorf("unexpected state: %+v", st)
	}
}

func TestIncrWindow_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.IncrWindow(context.Background(), "k", time.Now(), time.Minute, 10)
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped DeadlineExceeded, got %v", err)
	}
}

func TestIncrWindow_BadShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(1))))

	s := NewStoreForTest(c)
	_, err := s.IncrWindow(context.Background(), "k", time.Now(), time.Minute, 10)
	if !errors.Is(err, db.ErrBadReply) {
		t.Fatalf("expected ErrBadReply, got %v", err)
	}
}

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
