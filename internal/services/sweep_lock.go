package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// SweepLock lets one process claim a sweep run when several share the database.
type SweepLock interface {
	TryAcquire(ctx context.Context) (bool, error)
	// Release gives up a claim after a failed run so another process may retry.
	Release(ctx context.Context) error
}

// releaseScript deletes the key only while it still holds our owner value.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisSweepLock claims the run with SETNX. After a successful sweep the key is left to
// expire so a second process starting within ttl skips the already-completed sweep.
type RedisSweepLock struct {
	redis *redis.Client
	key   string
	owner string
	ttl   time.Duration
}

func NewRedisSweepLock(client *redis.Client, key, owner string, ttl time.Duration) *RedisSweepLock {
	return &RedisSweepLock{redis: client, key: key, owner: owner, ttl: ttl}
}

func (l *RedisSweepLock) TryAcquire(ctx context.Context) (bool, error) {
	return l.redis.SetNX(ctx, l.key, l.owner, l.ttl).Result()
}

func (l *RedisSweepLock) Release(ctx context.Context) error {
	return l.redis.Eval(ctx, releaseScript, []string{l.key}, l.owner).Err()
}
