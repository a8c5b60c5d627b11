package photos

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type RedisCache struct {
	c *redis.Client
}

func NewRedisCache(c *redis.Client) *RedisCache { return &RedisCache{c: c} }

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

type memEntry struct {
	value   string
	expires time.Time
	added   time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// MemoryCache は Redis 無しで動かすとき用。
// 期限切れは読むときと、件数が sweepAt を超えた書き込みのときに消す。上限を超えたら古いものから捨てる。
type MemoryCache struct {
	mu      sync.Mutex
	m       map[string]memEntry
	now     func() time.Time
	max     int
	sweepAt int
}

const (
	memCacheMax      = 4096
	memCacheMinSweep = 64
)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]memEntry), now: time.Now, max: memCacheMax, sweepAt: memCacheMinSweep}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return "", ErrMiss
	}
	if e.expired(c.now()) {
		delete(c.m, key)
		return "", ErrMiss
	}
	return e.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	if _, ok := c.m[key]; !ok && len(c.m) >= c.sweepAt {
		c.sweep(now)
	}
	c.m[key] = memEntry{value: value, expires: exp, added: now}
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// sweep は期限切れを消し、まだ多ければ追加が古い順に捨てて1件分の空きを作る。
func (c *MemoryCache) sweep(now time.Time) {
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
		}
	}
	for len(c.m) >= c.max {
		var oldest string
		var at time.Time
		first := true
		for k, e := range c.m {
			if first || e.added.Before(at) {
				oldest, at, first = k, e.added, false
			}
		}
		delete(c.m, oldest)
	}
	c.sweepAt = max(2*len(c.m), memCacheMinSweep)
	if c.sweepAt > c.max {
		c.sweepAt = c.max
	}
}
