package common

import (
	"errors"
	"net/http"
	"time"

	"mealprep/backend/common/i18n"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every API reply.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Code is the i18n error code of a failed request.
	Code string `json:"code,omitempty"`
	Data any    `json:"data,omitempty"`
}

const (
	RFC3339MilliZ = "2006-01-02T15:04:05.000Z07:00"
	DateLayout    = "2006-01-02"
)

func RespSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func RespSuccessStr(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: msg,
	})
}

func RespSuccessWithMsg(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func RespErrorStr(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Message: msg,
	})
}

// RespError replies with the translated message and code of an I18nError,
// or with the plain error text otherwise.
func RespError(c *gin.Context, statusCode int, err error) {
	resp := APIResponse{Success: false, Message: err.Error()}
	var i18nErr *i18n.I18nError
	if errors.As(err, &i18nErr) {
		resp.Code = i18nErr.Code
		resp.Message = i18nErr.Msg
	}
	c.JSON(statusCode, resp)
}

func RespErrorWithData(c *gin.Context, statusCode int, err error, data any) {
	resp := APIResponse{Success: false, Message: err.Error(), Data: data}
	var i18nErr *i18n.I18nError
	if errors.As(err, &i18nErr) {
		resp.Code = i18nErr.Code
		resp.Message = i18nErr.Msg
	}
	c.JSON(statusCode, resp)
}

func FormatTime(t time.Time) string {
	return t.Format(RFC3339MilliZ)
}
