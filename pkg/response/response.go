package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/oksasatya/go-social-crud/pkg/i18n"
)

// LangKey is the gin context key holding the negotiated language.Tag.
const LangKey = "lang"

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// Lang returns the request language, English when none was negotiated.
func Lang(ctx *gin.Context) language.Tag {
	if v, ok := ctx.Get(LangKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return language.English
}

// Translate translates key into the request language.
func Translate(ctx *gin.Context, key string, args ...any) string {
	return i18n.Translate(Lang(ctx), key, args...)
}

// Success writes a successful envelope. The message is translated.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   Translate(ctx, message),
		Data:      data,
		Meta:      meta,
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes a failed envelope and aborts the handler chain.
func Error[T any](ctx *gin.Context, status int, message string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   Translate(ctx, message),
		Error:     err,
	}
	ctx.AbortWithStatusJSON(status, resp)
	return resp
}
