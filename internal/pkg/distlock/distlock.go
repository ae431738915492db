// Package distlock provides a redis-backed run lock using SET NX with TTL.
// The external scheduler already enforces a single active run; the lock is
// a second line of defense against an operator manually launching a run
// while a scheduled one is still writing the same day partition.
package distlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a distributed lock with a random ownership value; release and
// extend go through Lua so a lock held by another process is never touched.
type Lock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// New creates a lock for the given key.
func New(client *redis.Client, key string, ttl time.Duration) *Lock {
	b := make([]byte, 16)
	rand.Read(b)
	return &Lock{
		client: client,
		key:    fmt.Sprintf("lock:%s", key),
		value:  hex.EncodeToString(b),
		ttl:    ttl,
	}
}

// Acquire tries to acquire the lock. Returns true if successful.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring lock %s: %w", l.key, err)
	}
	return ok, nil
}

// Release releases the lock only if this instance still owns it.
func (l *Lock) Release(ctx context.Context) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
	_, err := script.Run(ctx, l.client, []string{l.key}, l.value).Result()
	return err
}

// Extend extends the lock TTL for a long-running load.
func (l *Lock) Extend(ctx context.Context, ttl time.Duration) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
	_, err := script.Run(ctx, l.client, []string{l.key}, l.value, ttl.Milliseconds()).Result()
	return err
}
