package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Cache lets browsers keep hashed frontend assets; the index page is always revalidated.
func Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		switch {
		case strings.HasPrefix(path, "/api/"):
		case path == "/" || strings.HasSuffix(path, ".html"):
			c.Header("Cache-Control", "no-cache")
		default:
			c.Header("Cache-Control", "max-age=604800")
		}
		c.Next()
	}
}
