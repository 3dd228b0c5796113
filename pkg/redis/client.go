// Package redis owns the process-wide Redis connection. Redis is optional:
// callers get a nil client when it is not configured and fall back to their
// non-shared path.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	shared   *redis.Client
	initOnce sync.Once
	initErr  error
)

type Config struct {
	URL      string // redis://[:password@]host:port/db, rediss:// for TLS
	Password string // overrides the URL password when set
}

// Client returns the shared client, or nil if Initialize did not succeed.
func Client() *redis.Client {
	return shared
}

// Initialize connects the shared client. Only the first call has any effect.
func Initialize(cfg Config) error {
	initOnce.Do(func() {
		shared, initErr = connect(cfg)
	})
	return initErr
}

func connect(cfg Config) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis: REDIS_URL not configured")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	c := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: connection failed: %w", err)
	}
	return c, nil
}

func Close() error {
	if shared != nil {
		return shared.Close()
	}
	return nil
}

// HealthCheck reports whether the shared client answers PING.
func HealthCheck(ctx context.Context) error {
	if shared == nil {
		return errors.New("redis: client not initialized")
	}
	return shared.Ping(ctx).Err()
}
