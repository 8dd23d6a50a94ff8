package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-crud/internal/interface/http"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

// UserModule wires the signed-in user's profile and user search.
// Protected: GET/PUT /api/profile, PUT /api/profile/password, GET /api/users/search
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
	Limiter Limiter
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, jwt *helpers.JWTManager, l Limiter) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, JWT: jwt, Limiter: l}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(m.Limiter.PerMinute(120, middleware.KeyByUserID()))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.PUT("/profile/password", m.Limiter.PerMinute(5, middleware.KeyByUserID()), m.Handler.UpdatePassword)
		auth.GET("/users/search", m.Handler.Search)
	}
}
