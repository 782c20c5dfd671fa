package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// NewRedis returns a client and its close func. An empty addr returns a nil client
// so callers can run without Redis.
func NewRedis(addr, user, password string) (*redis.Client, func() error, error) {
	if addr == "" {
		return nil, func() error { return nil }, nil
	}
	if !strings.Contains(addr, ":") {
		addr = addr + ":6379"
	}

	opts := &redis.Options{
		Addr:     addr,
		Username: user,
		Password: password,
	}

	r := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, nil, err
	}

	return r, r.Close, nil
}
