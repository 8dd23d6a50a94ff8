package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-crud/internal/interface/http"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

type NotificationModule struct {
	Handler *handlers.NotificationHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewNotificationModule(h *handlers.NotificationHandler, rdb *redis.Client, jwt *helpers.JWTManager) *NotificationModule {
	return &NotificationModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	{
		auth.GET("/notifications/mine", m.Handler.Mine)
		auth.POST("/notifications/:id/read", m.Handler.MarkRead)
	}
}
