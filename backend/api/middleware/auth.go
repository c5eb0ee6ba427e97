package middleware

import (
	"net/http"
	"strings"

	"mealprep/backend/common"
	"mealprep/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func abortJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": msg,
	})
	c.Abort()
}

// sessionUser reads the identity stored by a cookie login. It is a no-op when
// no session store is mounted.
func sessionUser(c *gin.Context) bool {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return false
	}
	session := sessions.Default(c)
	id, ok := session.Get("id").(int64)
	if !ok || id == 0 {
		return false
	}
	if status, _ := session.Get("status").(int); status == common.UserStatusDisabled {
		return false
	}
	role, _ := session.Get("role").(int)
	username, _ := session.Get("username").(string)
	c.Set("user_id", id)
	c.Set("username", username)
	c.Set("role", role)
	c.Set("authByToken", false)
	return true
}

// JWTAuth accepts a Bearer access token, or a login session when the request
// carries no Authorization header.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if sessionUser(c) {
				c.Next()
				return
			}
			abortJSON(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortJSON(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		tokenString := parts[1]
		claims, err := service.ValidateToken(tokenString)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, err.Error())
			return
		}
		if service.IsTokenRevoked(c.Request.Context(), tokenString) {
			abortJSON(c, http.StatusUnauthorized, "Token has been invalidated")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("authByToken", true)
		c.Set("token", tokenString)
		c.Set("claims", claims)

		c.Next()
	}
}

func roleAuth(minRole int, denied string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			abortJSON(c, http.StatusInternalServerError, "Role information not found")
			return
		}
		roleInt, ok := role.(int)
		if !ok {
			abortJSON(c, http.StatusInternalServerError, "Invalid role format")
			return
		}
		if roleInt < minRole {
			abortJSON(c, http.StatusForbidden, denied)
			return
		}
		c.Next()
	}
}

// UserAuth lets any signed-in account through. It must follow JWTAuth.
func UserAuth() gin.HandlerFunc {
	return roleAuth(common.RoleCommonUser, "Login required")
}

// AdminAuth must follow JWTAuth.
func AdminAuth() gin.HandlerFunc {
	return roleAuth(common.RoleAdminUser, "Admin privileges required")
}

// RootAuth must follow JWTAuth.
func RootAuth() gin.HandlerFunc {
	return roleAuth(common.RoleRootUser, "Root privileges required")
}
