package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

type langKey struct{}

// LangMiddleware picks the first Accept-Language entry, English by default,
// and exposes it as c.GetString("lang") and on the request context.
func LangMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if lang == "" {
			lang = "en"
		} else {
			lang = strings.TrimSpace(strings.Split(strings.Split(lang, ",")[0], ";")[0])
		}
		c.Set("lang", lang)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), langKey{}, lang))
		c.Next()
	}
}

// LangFromContext returns the language LangMiddleware stored, or "en".
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok {
		return lang
	}
	return "en"
}
