package route

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"mealprep/backend/common"
	"mealprep/backend/library/memstore"
	"mealprep/backend/model"
	"mealprep/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	common.RedisEnabled = false
	common.JWTSecret = "route-test-secret"
	common.JWTRefreshSecret = "route-test-refresh-secret"
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	originalSQLitePath := common.SQLitePath
	common.SQLitePath = filepath.Join(t.TempDir(), "route_test.db")
	require.NoError(t, model.InitDB())
	planner := service.NewPlanner(memstore.New(), 0)
	service.SetPlanner(planner)
	t.Cleanup(func() {
		_ = planner.Close(context.Background())
		common.SQLitePath = originalSQLitePath
	})

	server := gin.New()
	server.Use(sessions.Sessions("session", cookie.NewStore([]byte("route-test-session"))))
	SetRouter(server)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, server *gin.Engine, method, path, token string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp := httptest.NewRecorder()
	server.ServeHTTP(resp, req)
	var env envelope
	_ = json.Unmarshal(resp.Body.Bytes(), &env)
	return resp, env
}

func TestAuthFlow(t *testing.T) {
	server := newTestServer(t)

	resp, _ := call(t, server, http.MethodPost, "/api/auth/register", "", gin.H{"username": "cook", "password": "secret123"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp, _ = call(t, server, http.MethodPost, "/api/auth/register", "", gin.H{"username": "cook", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp, _ = call(t, server, http.MethodPost, "/api/auth/login", "", gin.H{"username": "cook", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp, env := call(t, server, http.MethodPost, "/api/auth/login", "", gin.H{"username": "cook", "password": "secret123"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var login struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)
	cookies := resp.Result().Cookies()

	resp, env = call(t, server, http.MethodGet, "/api/user/self", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(env.Data), `"username":"cook"`)

	// the session cookie alone is enough
	resp, _ = call(t, server, http.MethodGet, "/api/week?start=2024-01-01", "", nil, cookies...)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp, _ = call(t, server, http.MethodGet, "/api/user/", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code, "common users cannot list accounts")

	resp, env = call(t, server, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(env.Data), "token")
	resp, _ = call(t, server, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": login.Token})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "access tokens are signed with another secret")

	resp, _ = call(t, server, http.MethodPost, "/api/auth/logout", login.Token, nil, cookies...)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestProtectedAndUnknownRoutes(t *testing.T) {
	server := newTestServer(t)

	resp, _ := call(t, server, http.MethodGet, "/api/components", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp, env := call(t, server, http.MethodGet, "/api/status", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, env.Success)

	resp, env = call(t, server, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "API route not found", env.Message)
}

func TestRootCanListUsers(t *testing.T) {
	server := newTestServer(t)

	resp, env := call(t, server, http.MethodPost, "/api/auth/login", "", gin.H{"username": "root", "password": "123456"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))

	resp, env = call(t, server, http.MethodGet, "/api/user/", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var users []struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
}
