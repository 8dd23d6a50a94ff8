package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application"
	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
	"github.com/oksasatya/go-social-crud/pkg/validation"
)

// apiError is the "error" member of a failed response envelope.
type apiError struct {
	Code      string `json:"code"`
	Type      string `json:"type,omitempty"`
	Operation string `json:"operation,omitempty"`
	Path      string `json:"path,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// classify maps an error to an HTTP status, a message key and the error body.
func classify(c *gin.Context, err error) (int, string, any) {
	var (
		nf  *crud.NotFoundError
		ue  *crud.UnauthorizedError
		ve  validator.ValidationErrors
		ute *json.UnmarshalTypeError
		cfg *crud.ConfigurationError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ute):
		return http.StatusBadRequest, i18n.MsgInvalidRequest, validation.ToDetails(err)
	case errors.As(err, &nf):
		return http.StatusNotFound, i18n.MsgNotFound, apiError{Code: "not_found", Type: nf.Type}
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound, i18n.MsgNotFound, apiError{Code: "not_found"}
	case errors.As(err, &ue):
		return deniedStatus(c), i18n.MsgForbidden, apiError{Code: "unauthorized", Type: ue.Type, Operation: string(ue.Operation), Path: ue.Path}
	case errors.Is(err, crud.ErrObscured):
		return deniedStatus(c), i18n.MsgForbidden, apiError{Code: "unauthorized"}
	case errors.Is(err, application.ErrUserPrivate):
		return http.StatusForbidden, i18n.MsgUserPrivate, apiError{Code: "user_private"}
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, i18n.MsgInvalidCredentials, apiError{Code: "invalid_credentials"}
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, application.ErrUsernameTaken),
		errors.Is(err, application.ErrEmailTaken),
		errors.Is(err, application.ErrAlreadyFollowing),
		errors.Is(err, application.ErrAlreadyLiked):
		return http.StatusConflict, i18n.MsgConflict, apiError{Code: "conflict", Detail: err.Error()}
	case errors.Is(err, application.ErrSelfFollow), errors.Is(err, application.ErrNoFollowRequest):
		return http.StatusBadRequest, i18n.MsgInvalidRequest, apiError{Code: "invalid_request", Detail: err.Error()}
	case errors.Is(err, application.ErrStreamClosed):
		return http.StatusServiceUnavailable, i18n.MsgInternal, apiError{Code: "unavailable", Detail: err.Error()}
	case errors.As(err, &cfg):
		return http.StatusInternalServerError, i18n.MsgInternal, apiError{Code: "configuration"}
	}
	return http.StatusInternalServerError, i18n.MsgInternal, apiError{Code: "internal"}
}

// Permission failures are 401 for anonymous callers and 403 otherwise.
func deniedStatus(c *gin.Context) int {
	if _, ok := middleware.PrincipalFrom(c); ok {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

// respondError writes the envelope for err. Server-side failures are logged.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg, body := classify(c, err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, status, msg, body)
}

func badRequest(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, i18n.MsgInvalidRequest, validation.ToDetails(err))
}

// pathID parses the :id route parameter, answering 400 when it is malformed.
func pathID(c *gin.Context) (int64, bool) {
	id, err := helpers.ParseID(c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, i18n.MsgInvalidRequest, map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return id, true
}
