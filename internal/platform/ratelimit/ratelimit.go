// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package ratelimit implements the login-specific sliding-window admission
check. It is the fast path of the two-layer rate-limiting model: the
append-only Postgres login_attempts table remains the system of record for
the "at most 10000 rows" invariant, while this package answers "should this
attempt be rejected" without a hot Postgres read on every login.

Failures are tracked independently under the attempting username and the
source IP, keyed as Redis sorted sets so pruning the window is a single
ZREMRANGEBYSCORE.
*/
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
)

// LoginWindow tracks failed login attempts within a sliding window.
type LoginWindow struct {
	client *redis.Client
	window time.Duration
	max    int
}

// NewLoginWindow constructs a [LoginWindow] from the configured window
// duration and per-window failure threshold.
func NewLoginWindow(client *redis.Client, window time.Duration, max int) *LoginWindow {
	return &LoginWindow{client: client, window: window, max: max}
}

// ShouldLimit reports whether the username or the source IP has reached
// the failure threshold within the current window. Either key tripping is
// sufficient to reject the attempt.
func (w *LoginWindow) ShouldLimit(ctx context.Context, username, ip string) (bool, error) {
	usernameCount, err := w.count(ctx, usernameKey(username))
	if err != nil {
		return false, err
	}
	if usernameCount >= w.max {
		return true, nil
	}

	ipCount, err := w.count(ctx, ipKey(ip))
	if err != nil {
		return false, err
	}
	return ipCount >= w.max, nil
}

// RecordFailure adds a failed-attempt marker to both the username and IP
// windows. Only failed attempts count toward the threshold.
func (w *LoginWindow) RecordFailure(ctx context.Context, username, ip string) error {
	now := float64(time.Now().UnixNano())
	member := uuid.NewString()

	pipe := w.client.Pipeline()
	for _, key := range []string{usernameKey(username), ipKey(ip)} {
		pipe.ZAdd(ctx, key, redis.Z{Score: now, Member: member})
		pipe.Expire(ctx, key, w.window)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ratelimit: record failure: %w", err)
	}
	return nil
}

func (w *LoginWindow) count(ctx context.Context, key string) (int, error) {
	cutoff := time.Now().Add(-w.window).UnixNano()
	if err := w.client.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", cutoff)).Err(); err != nil {
		return 0, fmt.Errorf("ratelimit: prune %s: %w", key, err)
	}
	count, err := w.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: count %s: %w", key, err)
	}
	return int(count), nil
}

func usernameKey(username string) string {
	return constants.RedisPrefixLoginAttempt + username
}

func ipKey(ip string) string {
	return constants.RedisPrefixLoginAttempt + "ip:" + ip
}
