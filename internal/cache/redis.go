package cache

import (
	"context"
	"fmt"
	"strings"

	"alert-strategist/pkg/logger"

	"github.com/redis/go-redis/v9"
)

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// InitRedis connects to addr, which may be host:port or a redis:// URL.
// Redis is optional: an empty addr returns a nil client.
func InitRedis(ctx context.Context, addr string, log *logger.Logger) (*redis.Client, error) {
	if log == nil {
		log = logger.L()
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		log.Warn("REDIS_URL not set, running without score cache or distributed locks")
		return nil, nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info("Connected to Redis", logger.String("addr", opts.Addr))
	return client, nil
}
