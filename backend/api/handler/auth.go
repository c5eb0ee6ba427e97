package handler

import (
	"net/http"
	"strings"

	"mealprep/backend/common"
	mperrors "mealprep/backend/common/errors"
	"mealprep/backend/common/i18n"
	"mealprep/backend/model"
	"mealprep/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=20"`
	Password    string `json:"password" validate:"required,min=6,max=64"`
	DisplayName string `json:"display_name" validate:"max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=50"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse is returned by Login; the session cookie is set as well.
type LoginResponse struct {
	User         *model.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
}

func Register(c *gin.Context) {
	lang := c.GetString("lang")
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if model.IsUsernameAlreadyTaken(req.Username) {
		common.RespError(c, http.StatusConflict, i18n.New(mperrors.ErrUsernameTaken, lang))
		return
	}
	if req.Email != "" && model.IsEmailAlreadyTaken(req.Email) {
		common.RespError(c, http.StatusConflict, i18n.New(mperrors.ErrEmailTaken, lang))
		return
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}
	user := model.User{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: displayName,
		Email:       req.Email,
		Role:        common.RoleCommonUser,
	}
	if err := user.Insert(); err != nil {
		common.SysError("failed to register user", zap.String("username", req.Username), zap.Error(err))
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
		return
	}
	common.RespSuccess(c, &user)
}

func Login(c *gin.Context) {
	lang := c.GetString("lang")
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.InvalidParamError(lang, err.Error()))
		return
	}
	user := model.User{Username: strings.TrimSpace(req.Username), Password: req.Password}
	if err := user.ValidateAndFill(lang); err != nil {
		common.RespError(c, http.StatusUnauthorized, err)
		return
	}

	session := sessions.Default(c)
	session.Set("id", user.ID)
	session.Set("username", user.Username)
	session.Set("role", user.Role)
	session.Set("status", user.Status)
	if err := session.Save(); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
		return
	}

	token, err := service.GenerateToken(&user)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
		return
	}
	refresh, err := service.GenerateRefreshToken(&user)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
		return
	}
	common.SysLog("user logged in", zap.Int64("user_id", user.ID))
	common.RespSuccess(c, LoginResponse{User: &user, Token: token, RefreshToken: refresh})
}

func RefreshToken(c *gin.Context) {
	lang := c.GetString("lang")
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := service.RefreshToken(req.RefreshToken)
	if err != nil {
		common.RespError(c, http.StatusUnauthorized, i18n.Wrap(err, mperrors.ErrUnauthorized, lang))
		return
	}
	common.RespSuccess(c, gin.H{"token": token})
}

// Logout clears the session and revokes the bearer token and, if sent, the
// refresh token.
func Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimPrefix(header, "Bearer ")
		if claims, err := service.ValidateToken(token); err == nil {
			if err := service.RevokeToken(ctx, token, claims); err != nil {
				common.SysError("failed to revoke access token", zap.Error(err))
			}
		}
	}
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		if claims, err := service.ValidateRefreshToken(req.RefreshToken); err == nil {
			if err := service.RevokeToken(ctx, req.RefreshToken, claims); err != nil {
				common.SysError("failed to revoke refresh token", zap.Error(err))
			}
		}
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, c.GetString("lang")))
		return
	}
	common.RespSuccessStr(c, "")
}
