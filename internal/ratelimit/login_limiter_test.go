package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg LoginLimiterConfig) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewLoginLimiter(rdb, cfg), mr
}

func TestLoginLimiterThrottlesAfterMaxAttempts(t *testing.T) {
	l, _ := newTestLimiter(t, LoginLimiterConfig{MaxAttempts: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Check(ctx, "user", "a@x.io"); err != nil {
			t.Fatalf("attempt %d: unexpected check error %v", i, err)
		}
		if err := l.RecordFailure(ctx, "user", "a@x.io"); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}
	if err := l.Check(ctx, "user", "A@X.io "); !errors.Is(err, ErrLoginThrottled) {
		t.Fatalf("expected throttled, got %v", err)
	}
	if err := l.Check(ctx, "vendor", "a@x.io"); err != nil {
		t.Fatalf("vendor namespace must be independent, got %v", err)
	}
}

func TestLoginLimiterWindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, LoginLimiterConfig{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	if err := l.RecordFailure(ctx, "user", "a@x.io"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if err := l.Check(ctx, "user", "a@x.io"); !errors.Is(err, ErrLoginThrottled) {
		t.Fatalf("expected throttled, got %v", err)
	}
	mr.FastForward(61 * time.Second)
	if err := l.Check(ctx, "user", "a@x.io"); err != nil {
		t.Fatalf("expected window to reset, got %v", err)
	}
}

func TestLoginLimiterReset(t *testing.T) {
	l, _ := newTestLimiter(t, LoginLimiterConfig{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	_ = l.RecordFailure(ctx, "user", "a@x.io")
	if err := l.Reset(ctx, "user", "a@x.io"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := l.Check(ctx, "user", "a@x.io"); err != nil {
		t.Fatalf("expected reset counter, got %v", err)
	}
}

func TestLoginLimiterUnavailableAndDisabled(t *testing.T) {
	l, mr := newTestLimiter(t, LoginLimiterConfig{MaxAttempts: 1, Window: time.Minute})
	mr.Close()
	if err := l.RecordFailure(context.Background(), "user", "a@x.io"); !errors.Is(err, ErrLimiterUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	var disabled *LoginLimiter
	if err := disabled.Check(context.Background(), "user", "a@x.io"); err != nil {
		t.Fatalf("nil limiter must allow, got %v", err)
	}
}

func TestLoginLimiterWindowIsFixed(t *testing.T) {
	l, mr := newTestLimiter(t, LoginLimiterConfig{MaxAttempts: 5, Window: time.Minute})
	ctx := context.Background()
	key := l.key("user", "a@x.io")

	if err := l.RecordFailure(ctx, "user", "a@x.io"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("expected window ttl, got %s", ttl)
	}
	mr.FastForward(40 * time.Second)
	if err := l.RecordFailure(ctx, "user", "a@x.io"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if ttl := mr.TTL(key); ttl != 20*time.Second {
		t.Fatalf("later failure moved the window: ttl %s", ttl)
	}
}

func TestLoginLimiterExpiresCounterLeftWithoutTTL(t *testing.T) {
	l, mr := newTestLimiter(t, LoginLimiterConfig{MaxAttempts: 3, Window: time.Minute})
	ctx := context.Background()
	key := l.key("user", "a@x.io")

	// a counter whose earlier EXPIRE never landed
	if err := mr.Set(key, "3"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := l.RecordFailure(ctx, "user", "a@x.io"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("expected stale counter to get a ttl, got %s", ttl)
	}
	mr.FastForward(61 * time.Second)
	if err := l.Check(ctx, "user", "a@x.io"); err != nil {
		t.Fatalf("expected counter to expire, got %v", err)
	}
}
