package handler

import (
	"net/http"

	"mealprep/backend/common"
	mperrors "mealprep/backend/common/errors"
	"mealprep/backend/common/i18n"
	"mealprep/backend/model"

	"github.com/gin-gonic/gin"
)

var planLogActions = map[string]bool{
	string(model.PlanLogAssign):    true,
	string(model.PlanLogMove):      true,
	string(model.PlanLogRemove):    true,
	string(model.PlanLogFavorite):  true,
	string(model.PlanLogClear):     true,
	string(model.PlanLogComponent): true,
	string(model.PlanLogTemplate):  true,
	string(model.PlanLogConflict):  true,
}

// GetPlanLogs pages through the caller's planner activity, newest first.
// ?action= narrows it to one kind of change.
func GetPlanLogs(c *gin.Context) {
	lang := c.GetString("lang")
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	action := c.Query("action")
	if action != "" && !planLogActions[action] {
		common.RespError(c, http.StatusBadRequest, i18n.InvalidParamError(lang, "action"))
		return
	}
	page, pageSize := pageParams(c, 10)

	logs, total, err := model.GetPlanLogs(c.Request.Context(), userID, action, page, pageSize)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
		return
	}
	common.RespSuccess(c, gin.H{
		"logs":      logs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
