package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// syncLockKey is the Redis key guarding user sync runs.
const syncLockKey = "lock:user-sync"

// ErrLockHeld is returned when another holder owns the sync lock.
var ErrLockHeld = errors.New("sync lock held")

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// AcquireSyncLock takes the sync lock for token, expiring after ttl.
// It returns ErrLockHeld when another run owns it.
func (c *Cache) AcquireSyncLock(ctx context.Context, token string, ttl time.Duration) error {
	ok, err := c.client.SetNX(ctx, syncLockKey, token, ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// ReleaseSyncLock releases the sync lock if token still owns it.
func (c *Cache) ReleaseSyncLock(ctx context.Context, token string) error {
	if err := releaseScript.Run(ctx, c.client, []string{syncLockKey}, token).Err(); err != nil {
		return fmt.Errorf("release sync lock: %w", err)
	}
	return nil
}
