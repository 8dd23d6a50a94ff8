package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-crud/internal/interface/http"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

// SocialModule wires follows, likes, comments, direct messages and their
// event streams. Everything here needs a signed-in user except post search.
type SocialModule struct {
	Handler *handlers.SocialHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
	Limiter Limiter
}

func NewSocialModule(h *handlers.SocialHandler, rdb *redis.Client, jwt *helpers.JWTManager, l Limiter) *SocialModule {
	return &SocialModule{Handler: h, Redis: rdb, JWT: jwt, Limiter: l}
}

func (m *SocialModule) Register(rg *gin.RouterGroup) {
	rg.GET("/posts/search", m.Handler.SearchPosts)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	writes := m.Limiter.PerMinute(60, middleware.KeyByUserID())
	{
		auth.POST("/users/:id/follow", writes, m.Handler.Follow)
		auth.DELETE("/users/:id/follow", writes, m.Handler.Unfollow)
		auth.POST("/users/:id/follow-request", writes, m.Handler.RequestToFollow)
		auth.GET("/follow-requests", m.Handler.FollowRequests)
		auth.POST("/follow-requests/:id/accept", m.Handler.AcceptFollowRequest)
		auth.POST("/follow-requests/:id/decline", m.Handler.DeclineFollowRequest)

		auth.POST("/posts/:id/like", writes, m.Handler.LikePost)
		auth.POST("/posts/:id/comments", writes, m.Handler.AddComment)
		auth.POST("/messages", writes, m.Handler.SendMessage)

		auth.GET("/posts/:id/comments/stream", m.Handler.CommentStream)
		auth.GET("/messages/stream", m.Handler.MessageStream)
	}
}
