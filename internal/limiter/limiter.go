package limiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "limiter:bundle_request:"

const redisTimeout = 300 * time.Millisecond

// Limiter counts bundle rental requests per renter in hourly buckets.
type Limiter struct {
	Redis *redis.Client
	Limit int
	now   func() time.Time
}

func New(rdb *redis.Client, limit int) *Limiter {
	return &Limiter{Redis: rdb, Limit: limit, now: time.Now}
}

// Allow records one request and reports whether the renter is still within the limit.
// A nil client or a non-positive limit allows everything.
func (l *Limiter) Allow(ctx context.Context, userID int32) (bool, error) {
	if l == nil || l.Redis == nil || l.Limit <= 0 {
		return true, nil
	}
	n, err := l.increment(ctx, userID)
	if err != nil {
		return false, err
	}
	return n <= l.Limit, nil
}

func (l *Limiter) increment(ctx context.Context, userID int32) (int, error) {
	key := l.userCounterKey(userID)

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val, err := l.Redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("can't increment user's counter: %w", err)
	}

	if val == 1 {
		if err := l.Redis.Expire(ctx, key, time.Hour).Err(); err != nil {
			return 0, fmt.Errorf("can't set counter expiration: %w", err)
		}
	}

	return int(val), nil
}

// userCounterKey is the user's ID joined with the current hour, so each bucket
// starts fresh on the hour.
func (l *Limiter) userCounterKey(userID int32) string {
	now := l.now().Truncate(time.Hour).Unix()
	return cacheKeyPrefix + strconv.Itoa(int(userID)) + ":" + strconv.FormatInt(now, 10)
}
