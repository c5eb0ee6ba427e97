package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the separately served frontend to call the API with credentials.
func CORS() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOriginFunc = func(string) bool { return true }
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Content-Encoding", "Accept-Language", "Authorization"}
	config.ExposeHeaders = []string{"Content-Disposition"}
	config.MaxAge = 10 * time.Minute
	return cors.New(config)
}
