package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

// I18n negotiates the response language from the "lang" query parameter or
// the Accept-Language header, falling back to def.
func I18n(def language.Tag) gin.HandlerFunc {
	return func(c *gin.Context) {
		pref := c.Query("lang")
		if pref == "" {
			pref = c.GetHeader("Accept-Language")
		}
		tag := i18n.Match(pref, def)
		c.Set(response.LangKey, tag)
		c.Header("Content-Language", tag.String())
		c.Next()
	}
}
