package handler

import (
	"net/http"
	"strconv"

	"mealprep/backend/common"
	mperrors "mealprep/backend/common/errors"
	"mealprep/backend/common/i18n"
	"mealprep/backend/model"

	"github.com/gin-gonic/gin"
)

func GetSelf(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := model.GetUserById(id, c.GetString("lang"))
	if err != nil {
		common.RespError(c, http.StatusNotFound, err)
		return
	}
	common.RespSuccess(c, user)
}

// UpdateSelfRequest holds the fields a user may change on their own account.
// An empty display name or password keeps the current one.
type UpdateSelfRequest struct {
	DisplayName string `json:"display_name" validate:"max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=50"`
	Password    string `json:"password" validate:"omitempty,min=6,max=64"`
}

func UpdateSelf(c *gin.Context) {
	lang := c.GetString("lang")
	var req UpdateSelfRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := model.GetUserById(id, lang)
	if err != nil {
		common.RespError(c, http.StatusNotFound, err)
		return
	}
	if req.Email != "" && req.Email != user.Email && model.IsEmailAlreadyTaken(req.Email) {
		common.RespError(c, http.StatusConflict, i18n.New(mperrors.ErrEmailTaken, lang))
		return
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	user.Email = req.Email
	updatePassword := req.Password != ""
	if updatePassword {
		user.Password = req.Password
	}
	if err := user.Update(updatePassword); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
		return
	}
	common.RespSuccess(c, user)
}

// GetAllUsers lists accounts for admins, newest first, ItemsPerPage per page.
func GetAllUsers(c *gin.Context) {
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	users, err := model.GetAllUsers(p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, c.GetString("lang")))
		return
	}
	common.RespSuccess(c, users)
}

// DeleteUser removes an account with a lower role than the caller's.
func DeleteUser(c *gin.Context) {
	lang := c.GetString("lang")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.InvalidParamError(lang, "id"))
		return
	}
	target, err := model.GetUserById(id, lang)
	if err != nil {
		common.RespError(c, http.StatusNotFound, err)
		return
	}
	if c.GetInt("role") <= target.Role {
		common.RespErrorStr(c, http.StatusForbidden, "Cannot delete a user with the same or a higher role")
		return
	}
	if err := model.DeleteUserById(id, lang); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
		return
	}
	common.RespSuccessStr(c, "")
}
