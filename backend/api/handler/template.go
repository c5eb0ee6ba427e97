package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"mealprep/backend/common"
	mperrors "mealprep/backend/common/errors"
	"mealprep/backend/common/i18n"
	"mealprep/backend/service"

	"github.com/gin-gonic/gin"
)

const maxTemplateSize = 1 << 20

// templateFormat takes ?format= first, then the request content type.
func templateFormat(c *gin.Context) string {
	if f := c.Query("format"); f != "" {
		return strings.ToLower(f)
	}
	ct := c.ContentType()
	if strings.Contains(ct, "yaml") || strings.Contains(ct, "yml") {
		return service.TemplateFormatYAML
	}
	return service.TemplateFormatJSON
}

// ExportTemplate downloads the week at ?start= as a JSON or YAML template.
func ExportTemplate(c *gin.Context) {
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	format := templateFormat(c)
	name := c.Query("name")
	tpl, err := service.GetPlanner().ExportTemplate(c.Request.Context(), owner, c.Query("start"), name)
	if err != nil {
		planError(c, err, "")
		return
	}
	data, err := service.EncodeTemplate(tpl, format)
	if err != nil {
		planError(c, err, "")
		return
	}
	contentType := "application/json"
	if format == service.TemplateFormatYAML {
		contentType = "application/yaml"
	}
	if name == "" {
		name = "week-template"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	c.Data(http.StatusOK, contentType, data)
}

// ImportTemplate applies the template in the request body to the week at ?start=.
func ImportTemplate(c *gin.Context) {
	lang := c.GetString("lang")
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTemplateSize+1))
	if err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.InvalidParamError(lang, err.Error()))
		return
	}
	if len(data) > maxTemplateSize {
		common.RespError(c, http.StatusRequestEntityTooLarge, i18n.New(mperrors.ErrTemplateFormat, lang, "too large"))
		return
	}
	tpl, err := service.DecodeTemplate(data, templateFormat(c))
	if err != nil {
		planError(c, err, "")
		return
	}
	result, err := service.GetPlanner().ImportTemplate(c.Request.Context(), owner, c.Query("start"), tpl)
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, result)
}
