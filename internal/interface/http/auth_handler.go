package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,uname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	// Login is a username or an email address.
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authPayload struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

func (h *AuthHandler) issue(c *gin.Context, status int, u *entity.User, pair application.TokenPair, msg string) {
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, status, authPayload{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, msg,
		map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	u, err := h.Svc.Register(ctx, application.RegisterInput{Username: req.Username, Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	pair, err := h.Svc.IssueTokens(ctx, u)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.issue(c, http.StatusCreated, u, pair, i18n.MsgCreated)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.issue(c, http.StatusOK, u, pair, i18n.MsgOK)
}

// Refresh POST /api/auth/refresh. The token comes from the refresh cookie or the body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookie)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, i18n.MsgUnauthorized, "missing refresh token")
		return
	}
	u, pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.issue(c, http.StatusOK, u, pair, i18n.MsgOK)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, i18n.MsgUnauthorized, nil)
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), p.ID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, i18n.MsgLoggedOut, nil)
}
