package handler

import (
	"net/http"

	"mealprep/backend/common"
	"mealprep/backend/service"

	"github.com/gin-gonic/gin"
)

type CreateComponentRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	TotalServings int    `json:"total_servings" validate:"min=0,max=1000"`
}

func GetComponents(c *gin.Context) {
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	components, err := service.GetPlanner().Components(c.Request.Context(), owner)
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, components)
}

func CreateComponent(c *gin.Context) {
	var req CreateComponentRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	created, err := service.GetPlanner().CreateComponent(c.Request.Context(), owner, req.Name, req.TotalServings)
	if err != nil {
		planError(c, err, req.Name)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Success: true, Data: created})
}

// UpdateComponent renames a component and/or changes its prepared servings.
// A rename follows the component into every slot that holds it.
func UpdateComponent(c *gin.Context) {
	var req service.ComponentUpdate
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	updated, err := service.GetPlanner().UpdateComponent(c.Request.Context(), owner, c.Param("id"), req)
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, updated)
}

func DeleteComponent(c *gin.Context) {
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	detached, err := service.GetPlanner().DeleteComponent(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, gin.H{"detached": detached})
}
