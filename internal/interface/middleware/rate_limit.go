package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath returns a key function that limits by client IP and request path
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits authenticated callers by user and anonymous ones by IP.
// It must run after OptionalAuth or Auth.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		p, ok := PrincipalFrom(c)
		if !ok {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + strconv.FormatInt(p.ID, 10)
	}
}

// Lua script: atomic INCR + set EXPIRE on first hit
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Rate-limit backends reported to OnLimited.
const (
	BackendRedis = "redis"
	BackendLocal = "local"
)

// RateLimitConfig configures RateLimit. Max requests are allowed per Window;
// the local fallback refills at Max/Window with Burst capacity.
type RateLimitConfig struct {
	Redis     *redis.Client
	Max       int
	Window    time.Duration
	Burst     int
	Key       KeyFunc
	Allow     AllowFunc
	OnLimited func(backend string)
	// LocalKeys bounds how many keys the in-process limiter tracks.
	LocalKeys int
}

// RateLimit with:
// - atomic redis (lua) fixed window
// - in-process token bucket when Redis is absent or failing
// - standard headers (limit/remaining/reset)
// - optional allowlist bypass & method skip
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Key == nil {
		cfg.Key = KeyByIP()
	}
	local := newLocalLimiter(cfg)
	return func(c *gin.Context) {
		if cfg.Allow != nil && cfg.Allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		key := cfg.Key(c)
		var allowed bool
		backend := BackendLocal
		if cfg.Redis != nil {
			if ok, err := redisAllow(c, cfg, key); err == nil {
				allowed, backend = ok, BackendRedis
			} else {
				allowed = local.allow(c, key)
			}
		} else {
			allowed = local.allow(c, key)
		}

		if !allowed {
			if cfg.OnLimited != nil {
				cfg.OnLimited(backend)
			}
			response.Error[any](c, http.StatusTooManyRequests, i18n.MsgTooManyRequests, nil)
			return
		}
		c.Next()
	}
}

func redisAllow(c *gin.Context, cfg RateLimitConfig, key string) (bool, error) {
	ctx := c.Request.Context()
	countI, err := incrExpireScript.Run(ctx, cfg.Redis, []string{key}, cfg.Window.Milliseconds()).Result()
	if err != nil {
		return false, err
	}
	count := toInt(countI)

	ttl, _ := cfg.Redis.PTTL(ctx, key).Result()
	resetSec := 0
	if ttl > 0 {
		resetSec = int((ttl + time.Second - 1) / time.Second)
	}
	remaining := cfg.Max - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

	if count > cfg.Max {
		if resetSec > 0 {
			c.Header("Retry-After", strconv.Itoa(resetSec))
		}
		return false, nil
	}
	return true, nil
}

// localLimiter keeps one token bucket per key in an expiring LRU, so idle
// clients are forgotten.
type localLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	max     int
	buckets *expirable.LRU[string, *rate.Limiter]
}

func newLocalLimiter(cfg RateLimitConfig) *localLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Max
	}
	size := cfg.LocalKeys
	if size <= 0 {
		size = 10000
	}
	ttl := 10 * cfg.Window
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &localLimiter{
		limit:   rate.Limit(float64(cfg.Max) / cfg.Window.Seconds()),
		burst:   burst,
		max:     cfg.Max,
		buckets: expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
	}
}

func (l *localLimiter) allow(c *gin.Context, key string) bool {
	l.mu.Lock()
	lim, ok := l.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.buckets.Add(key, lim)
	}
	l.mu.Unlock()
	ok = lim.Allow()
	c.Header("X-RateLimit-Limit", strconv.Itoa(l.max))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
	if !ok {
		c.Header("Retry-After", "1")
	}
	return ok
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
