package route

import (
	"net/http"
	"path/filepath"
	"strings"

	"mealprep/backend/api/middleware"
	"mealprep/backend/common"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// setWebRouter serves the built frontend from FRONTEND_DIR when it is set and
// falls back to its index.html for client-side routes.
func setWebRouter(route *gin.Engine) {
	if common.FrontendDir != "" {
		route.Use(middleware.GlobalWebRateLimit())
		route.Use(middleware.Cache())
		route.Use(static.Serve("/", static.LocalFile(common.FrontendDir, false)))
	}
	route.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || common.FrontendDir == "" {
			common.RespErrorStr(c, http.StatusNotFound, "API route not found")
			return
		}
		c.File(filepath.Join(common.FrontendDir, "index.html"))
	})
}
