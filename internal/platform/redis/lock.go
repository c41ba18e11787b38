package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Locker hands out a named lock. ok is false when somebody else holds it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type redisLocker struct {
	rdb    *goredis.Client
	prefix string
}

// NewLocker uses SET NX PX on rdb, or an in-process lock when rdb is nil.
func NewLocker(rdb *goredis.Client) Locker {
	if rdb == nil {
		return NewLocalLocker()
	}
	return &redisLocker{rdb: rdb, prefix: "mentalgym:lock:"}
}

// Only the holder's token may delete the key.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	k := l.prefix + key
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{k}, token).Err()
	}
	return release, true, nil
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLocker() Locker {
	return &localLocker{held: map[string]bool{}}
}

// TryLock ignores ttl; the lock lives until released.
func (l *localLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
