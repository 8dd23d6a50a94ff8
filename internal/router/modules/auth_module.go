package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-crud/internal/interface/http"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

// AuthModule wires registration and the token lifecycle.
// Public: POST /api/auth/register, /api/auth/login, /api/auth/refresh
// Protected: POST /api/auth/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
	Limiter Limiter
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, jwt *helpers.JWTManager, l Limiter) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, JWT: jwt, Limiter: l}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := m.Limiter.PerMinute(5, middleware.KeyByIPAndPath())
	loginLimiter := m.Limiter.PerMinute(10, middleware.KeyByIP())
	refreshLimiter := m.Limiter.PerMinute(60, middleware.KeyByIP())

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
