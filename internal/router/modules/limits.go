package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
)

// Limiter builds per-route rate limiters sharing one Redis client and one
// rejection hook.
type Limiter struct {
	Redis     *redis.Client
	OnLimited func(backend string)
}

// PerMinute allows max requests per minute for each key.
func (l Limiter) PerMinute(max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(middleware.RateLimitConfig{
		Redis:     l.Redis,
		Max:       max,
		Window:    time.Minute,
		Burst:     max,
		Key:       key,
		OnLimited: l.OnLimited,
	})
}
