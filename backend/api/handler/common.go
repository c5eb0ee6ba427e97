package handler

import (
	"errors"
	"net/http"
	"strconv"

	"mealprep/backend/common"
	mperrors "mealprep/backend/common/errors"
	"mealprep/backend/common/i18n"
	"mealprep/backend/library/ledger"
	"mealprep/backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// currentUserID returns the id JWTAuth put in the context, replying with an
// error when it is missing.
func currentUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		common.RespError(c, http.StatusUnauthorized, i18n.New(mperrors.ErrUnauthorized, c.GetString("lang")))
		return 0, false
	}
	id, ok := userID.(int64)
	if !ok || id == 0 {
		common.RespError(c, http.StatusUnauthorized, i18n.New(mperrors.ErrUnauthorized, c.GetString("lang")))
		return 0, false
	}
	return id, true
}

// ownerKey is the current user id as the planner keys it.
func ownerKey(c *gin.Context) (string, bool) {
	id, ok := currentUserID(c)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(id, 10), true
}

// bindJSON decodes and validates the request body.
func bindJSON(c *gin.Context, req any) bool {
	lang := c.GetString("lang")
	if err := c.ShouldBindJSON(req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.InvalidParamError(lang, err.Error()))
		return false
	}
	if err := common.Validate.Struct(req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.InvalidParamError(lang, err.Error()))
		return false
	}
	return true
}

// planError maps planner and ledger errors to an i18n code and an HTTP status.
// subject names the component a capacity error is about.
func planError(c *gin.Context, err error, subject string) {
	lang := c.GetString("lang")
	switch {
	case errors.Is(err, service.ErrFavoriteNotFound):
		common.RespError(c, http.StatusNotFound, i18n.Wrap(err, mperrors.ErrFavoriteNotFound, lang))
	case errors.Is(err, ledger.ErrComponentNotFound):
		common.RespError(c, http.StatusNotFound, i18n.Wrap(err, mperrors.ErrComponentNotFound, lang))
	case errors.Is(err, ledger.ErrNotFound):
		common.RespError(c, http.StatusNotFound, i18n.Wrap(err, mperrors.ErrSlotNotFound, lang))
	case errors.Is(err, ledger.ErrCapacityExceeded):
		common.RespError(c, http.StatusConflict, i18n.Wrap(err, mperrors.ErrNoServings, lang, subject))
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		common.RespError(c, http.StatusConflict, i18n.Wrap(err, mperrors.ErrStaleIndex, lang))
	case errors.Is(err, ledger.ErrConcurrentModification):
		common.RespError(c, http.StatusConflict, i18n.Wrap(err, mperrors.ErrPlanConflict, lang))
	case errors.Is(err, ledger.ErrInvariantViolation):
		common.RespError(c, http.StatusUnprocessableEntity, i18n.Wrap(err, mperrors.ErrInvariantViolation, lang, err.Error()))
	case errors.Is(err, service.ErrInvalidDate):
		common.RespError(c, http.StatusBadRequest, i18n.Wrap(err, mperrors.ErrInvalidDate, lang))
	case errors.Is(err, service.ErrTemplateFormat):
		common.RespError(c, http.StatusBadRequest, i18n.Wrap(err, mperrors.ErrTemplateFormat, lang, err.Error()))
	default:
		common.SysError("planner request failed", zap.String("path", c.FullPath()), zap.Error(err))
		common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
	}
}

// pageParams reads page (from 1) and page_size (1..100).
func pageParams(c *gin.Context, defaultSize int) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := defaultSize
	if ps, err := strconv.Atoi(c.Query("page_size")); err == nil && ps > 0 && ps <= 100 {
		pageSize = ps
	}
	return page, pageSize
}
