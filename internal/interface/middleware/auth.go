package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

const (
	PrincipalKey = "principal"
	// CtxUserIDKey holds the authenticated user id as int64.
	CtxUserIDKey = "userID"
)

// Auth requires a valid access token whose session is still active in Redis.
// The token is read from the Authorization Bearer header or the access_token
// cookie. On success the principal is stored in the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, i18n.MsgUnauthorized, "missing access token")
			return
		}
		p, reason := authenticate(c, rdb, jwt, token)
		if p == nil {
			response.Error[any](c, http.StatusUnauthorized, i18n.MsgUnauthorized, reason)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// OptionalAuth sets the principal when a valid token is present and lets
// anonymous requests through otherwise. An invalid token is treated as absent.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromRequest(c); token != "" {
			if p, _ := authenticate(c, rdb, jwt, token); p != nil {
				setPrincipal(c, p)
			}
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	token, err := c.Cookie(helpers.AccessCookie)
	if err != nil {
		return ""
	}
	return token
}

// authenticate returns the principal, or nil and the reason it was refused.
func authenticate(c *gin.Context, rdb *redis.Client, jwt *helpers.JWTManager, token string) (*crud.Principal, string) {
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return nil, "invalid access token"
	}
	p := &crud.Principal{ID: claims.UserID, Username: claims.Username, Role: claims.Role}
	if rdb == nil {
		return p, ""
	}
	sess, ok, err := helpers.LoadSession(c.Request.Context(), rdb, claims.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", claims.UserID).Warn("session lookup failed")
		return nil, "session unavailable"
	}
	if !ok || sess.SID != claims.SessionID {
		return nil, "session not found"
	}
	p.Username, p.Role = sess.Username, sess.Role
	return p, ""
}

func setPrincipal(c *gin.Context, p *crud.Principal) {
	c.Set(PrincipalKey, p)
	c.Set(CtxUserIDKey, p.ID)
}

// PrincipalFrom returns the principal set by Auth or OptionalAuth.
func PrincipalFrom(c *gin.Context) (*crud.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*crud.Principal)
	return p, ok && p != nil
}

// CrudContext builds the per-request crud scope from the Gin context.
func CrudContext(c *gin.Context, logger *logrus.Logger) *crud.Context {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entry := logger.WithField("request_id", c.GetString(RequestIDKey))
	p, _ := PrincipalFrom(c)
	return crud.NewContext(c.Request.Context(), p, entry)
}
