package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLoginThrottled is returned when too many failed logins were recorded in the window.
	ErrLoginThrottled = errors.New("too many failed login attempts")
	// ErrLimiterUnavailable indicates the Redis backend could not be reached.
	ErrLimiterUnavailable = errors.New("login limiter backend unavailable")
)

// LoginLimiterConfig configures failed-login throttling.
type LoginLimiterConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// LoginLimiter counts failed logins per actor and email in a fixed Redis window.
// A nil limiter, or one without a client, allows everything.
type LoginLimiter struct {
	redis  redis.UniversalClient
	config LoginLimiterConfig
}

// NewLoginLimiter creates a limiter backed by client.
func NewLoginLimiter(client redis.UniversalClient, cfg LoginLimiterConfig) *LoginLimiter {
	return &LoginLimiter{redis: client, config: cfg}
}

func (l *LoginLimiter) enabled() bool {
	return l != nil && l.redis != nil && l.config.MaxAttempts > 0 && l.config.Window > 0
}

func (l *LoginLimiter) key(actor, email string) string {
	return "glf:" + actor + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Check returns ErrLoginThrottled once the failure budget for the key is spent.
func (l *LoginLimiter) Check(ctx context.Context, actor, email string) error {
	if !l.enabled() {
		return nil
	}
	count, err := l.redis.Get(ctx, l.key(actor, email)).Int()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count >= l.config.MaxAttempts {
		return ErrLoginThrottled
	}
	return nil
}

// RecordFailure increments the failure counter. The window starts on the
// first failure; INCR and EXPIRE NX run in one transaction, so a counter
// never outlives its window and later failures do not extend it.
func (l *LoginLimiter) RecordFailure(ctx context.Context, actor, email string) error {
	if !l.enabled() {
		return nil
	}
	key := l.key(actor, email)
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.config.Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, actor, email string) error {
	if !l.enabled() {
		return nil
	}
	if err := l.redis.Del(ctx, l.key(actor, email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}
