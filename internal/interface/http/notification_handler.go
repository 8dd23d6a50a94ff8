package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

type NotificationHandler struct {
	Svc    *application.NotificationService
	Logger *logrus.Logger
}

func NewNotificationHandler(svc *application.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Logger: logger}
}

// Mine GET /api/notifications/mine, newest first.
func (h *NotificationHandler) Mine(c *gin.Context) {
	list, err := h.Svc.Mine(middleware.CrudContext(c, h.Logger))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	response.Success(c, http.StatusOK, list, i18n.MsgOK, map[string]any{"count": len(list), "unread": unread})
}

// MarkRead POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	n, err := h.Svc.MarkRead(middleware.CrudContext(c, h.Logger), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, n, i18n.MsgOK, nil)
}
