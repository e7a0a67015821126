package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Limiter admits at most a fixed number of events per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// MemoryLimiter keeps one token bucket per key in process memory. A bucket
// left idle for a whole window has refilled and is dropped on the next sweep.
type MemoryLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*bucket
	every     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		limiters: make(map[string]*bucket),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	b, ok := l.limiters[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, b := range l.limiters {
		if now.Sub(b.lastSeen) >= l.window {
			delete(l.limiters, key)
		}
	}
}

const windowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter counts events in a fixed window shared by every replica.
// Redis errors fail open.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	prefix string
	limit  int
	window time.Duration
	log    *logrus.Logger
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration, log *logrus.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(windowScript),
		prefix: prefix,
		limit:  limit,
		window: window,
		log:    log,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" || l.limit <= 0 || l.window <= 0 {
		return true
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, l.limit).Int64()
	if err != nil {
		l.log.WithError(err).Warn("rate limiter unavailable")
		return true
	}
	return allowed == 1
}
