// Package lock provides a Redis-backed mutex so that only one worker
// instance runs a job at a time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"stockpulse/internal/core/apperror"
)

// Locker guards a named job.
type Locker interface {
	// Obtain returns a release function, or a LOCKED AppError when another
	// holder owns the key.
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// RedisLocker implements Locker with redislock.
type RedisLocker struct {
	client *redis.Client
	locker *redislock.Client
	prefix string
}

// NewRedisLocker connects to Redis at addr and verifies the connection.
func NewRedisLocker(ctx context.Context, addr string) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 4,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisLocker{
		client: client,
		locker: redislock.New(client),
		prefix: "stockpulse:lock:",
	}, nil
}

// Obtain implements Locker.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lk, err := l.locker.Obtain(ctx, l.prefix+key, ttl, nil)
	if err != nil {
		return nil, obtainError(key, err)
	}
	return func(ctx context.Context) error {
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

// Close closes the Redis client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func obtainError(key string, err error) error {
	if errors.Is(err, redislock.ErrNotObtained) {
		return apperror.NewLocked(key).WithCause(err)
	}
	return fmt.Errorf("obtain lock %s: %w", key, err)
}

// Noop is a Locker for single-instance deployments.
type Noop struct{}

// Obtain implements Locker.
func (Noop) Obtain(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
