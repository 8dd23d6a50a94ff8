package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

type UserHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,uname"`
	Email     *string `json:"email" binding:"omitempty,email"`
	IsPrivate *bool   `json:"isPrivate"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd,nefield=CurrentPassword"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.Profile(middleware.CrudContext(c, h.Logger))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, i18n.MsgOK, nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, i18n.MsgUnauthorized, nil)
		return
	}
	in := application.UpdateProfileInput{Username: req.Username, Email: req.Email, IsPrivate: req.IsPrivate}
	u, err := h.Svc.UpdateProfile(middleware.CrudContext(c, h.Logger), p.ID, in)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, i18n.MsgOK, nil)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Svc.UpdatePassword(middleware.CrudContext(c, h.Logger), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"updated": true}, i18n.MsgOK, nil)
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, i18n.MsgInvalidRequest, map[string]string{"q": "is required"})
		return
	}
	users, err := h.Svc.SearchUsers(middleware.CrudContext(c, h.Logger), q, searchSize(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, i18n.MsgOK, map[string]any{"count": len(users)})
}

func searchSize(c *gin.Context) int {
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultSearchSize)))
	if err != nil || size <= 0 {
		return defaultSearchSize
	}
	return min(size, maxSearchSize)
}
