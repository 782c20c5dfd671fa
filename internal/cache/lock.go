package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "lock:"

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock is a single-holder lease on a Redis key.
type Lock struct {
	rdb   *redis.Client
	key   string
	token string
}

// TryLock takes the named lease for ttl. ok is false when someone else holds it.
func TryLock(ctx context.Context, rdb *redis.Client, name string, ttl time.Duration) (*Lock, bool, error) {
	l := &Lock{rdb: rdb, key: lockKeyPrefix + name, token: uuid.NewString()}

	ok, err := rdb.SetNX(ctx, l.key, l.token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("can't acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}
	return l, true, nil
}

func (l *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("can't release lock %s: %w", l.key, err)
	}
	return nil
}
