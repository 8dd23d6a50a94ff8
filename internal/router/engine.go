package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-crud/internal/container"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

// NewEngine builds the Gin engine with global middleware and every module
// mounted under /api.
func NewEngine(c *container.Container) (*gin.Engine, error) {
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(middleware.I18n(i18n.Parse(cfg.DefaultLocale)))
	if c.Metrics != nil {
		r.Use(c.Metrics.Middleware())
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r)
	global := middleware.RateLimitConfig{
		Redis:  c.Redis,
		Max:    cfg.RateLimitRPS,
		Window: time.Second,
		Burst:  cfg.RateLimitBurst,
		Key:    middleware.KeyByIP(),
		Allow:  middleware.AllowPaths("/api/healthz", "/api/metrics"),
	}
	if c.Metrics != nil {
		global.OnLimited = c.Metrics.ObserveRateLimited
	}
	reg.Use(middleware.RateLimit(global), middleware.OptionalAuth(c.Redis, c.JWT))
	if err := InitModules(reg, c); err != nil {
		return nil, err
	}
	reg.RegisterAll()
	reg.LogRoutes(c.Logger)

	r.NoRoute(func(ctx *gin.Context) {
		response.Error[any](ctx, http.StatusNotFound, i18n.MsgNotFound, "route not found")
	})
	return r, nil
}
