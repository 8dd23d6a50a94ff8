package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/events"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

type SocialHandler struct {
	Svc       *application.SocialService
	Logger    *logrus.Logger
	KeepAlive time.Duration
}

func NewSocialHandler(svc *application.SocialService, logger *logrus.Logger) *SocialHandler {
	return &SocialHandler{Svc: svc, Logger: logger, KeepAlive: 15 * time.Second}
}

type commentRequest struct {
	Content string `json:"content" binding:"required,body"`
}

type messageRequest struct {
	ReceiverID int64  `json:"receiverId" binding:"required,gt=0"`
	Content    string `json:"content" binding:"required,body"`
}

// Follow POST /api/users/:id/follow
func (h *SocialHandler) Follow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Follow(middleware.CrudContext(c, h.Logger), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"status": application.FollowAccepted}, i18n.MsgOK, nil)
}

// Unfollow DELETE /api/users/:id/follow
func (h *SocialHandler) Unfollow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Unfollow(middleware.CrudContext(c, h.Logger), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"following": false}, i18n.MsgOK, nil)
}

// RequestToFollow POST /api/users/:id/follow-request. Public users are
// followed at once; private users get a pending request.
func (h *SocialHandler) RequestToFollow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	status, err := h.Svc.RequestToFollow(middleware.CrudContext(c, h.Logger), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	code := http.StatusOK
	if status == application.FollowRequested {
		code = http.StatusAccepted
	}
	response.Success[any](c, code, gin.H{"status": status}, i18n.MsgOK, nil)
}

// FollowRequests GET /api/follow-requests
func (h *SocialHandler) FollowRequests(c *gin.Context) {
	users, err := h.Svc.FollowRequests(middleware.CrudContext(c, h.Logger))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, i18n.MsgOK, nil)
}

// AcceptFollowRequest POST /api/follow-requests/:id/accept, where :id is the requester.
func (h *SocialHandler) AcceptFollowRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.AcceptFollowRequest(middleware.CrudContext(c, h.Logger), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"accepted": true}, i18n.MsgOK, nil)
}

func (h *SocialHandler) DeclineFollowRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeclineFollowRequest(middleware.CrudContext(c, h.Logger), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"declined": true}, i18n.MsgOK, nil)
}

// LikePost POST /api/posts/:id/like
func (h *SocialHandler) LikePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	like, err := h.Svc.LikePost(middleware.CrudContext(c, h.Logger), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, like, i18n.MsgCreated, nil)
}

// AddComment POST /api/posts/:id/comments
func (h *SocialHandler) AddComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	comment, err := h.Svc.AddComment(middleware.CrudContext(c, h.Logger), id, req.Content)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, comment, i18n.MsgCreated, nil)
}

// SendMessage POST /api/messages
func (h *SocialHandler) SendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.Svc.SendMessage(middleware.CrudContext(c, h.Logger), req.ReceiverID, req.Content)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, msg, i18n.MsgCreated, nil)
}

// SearchPosts GET /api/posts/search?q=&size=
func (h *SocialHandler) SearchPosts(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, i18n.MsgInvalidRequest, map[string]string{"q": "is required"})
		return
	}
	posts, err := h.Svc.SearchPosts(middleware.CrudContext(c, h.Logger), q, searchSize(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, posts, i18n.MsgOK, map[string]any{"count": len(posts)})
}

// CommentStream GET /api/posts/:id/comments/stream (server-sent events)
func (h *SocialHandler) CommentStream(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ch, err := h.Svc.CommentStream(middleware.CrudContext(c, h.Logger), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.stream(c, ch)
}

// MessageStream GET /api/messages/stream (server-sent events)
func (h *SocialHandler) MessageStream(c *gin.Context) {
	ch, err := h.Svc.MessageStream(middleware.CrudContext(c, h.Logger))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.stream(c, ch)
}

// stream relays events as SSE until the client goes away or the
// subscription ends.
func (h *SocialHandler) stream(c *gin.Context, ch <-chan events.Event) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Topic, ev.Payload)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
