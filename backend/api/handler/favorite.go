package handler

import (
	"net/http"

	"mealprep/backend/common"
	"mealprep/backend/service"

	"github.com/gin-gonic/gin"
)

type SaveFavoriteRequest struct {
	SlotID string `json:"slot_id" validate:"required"`
	Name   string `json:"name" validate:"max=100"`
}

func GetFavorites(c *gin.Context) {
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	favs, err := service.GetPlanner().Favorites(c.Request.Context(), owner)
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, favs)
}

// SaveFavorite snapshots a slot's components and toppings as a favorite meal.
func SaveFavorite(c *gin.Context) {
	var req SaveFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	fav, err := service.GetPlanner().SaveFavorite(c.Request.Context(), owner, req.SlotID, req.Name)
	if err != nil {
		planError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Success: true, Data: fav})
}

func DeleteFavorite(c *gin.Context) {
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	if err := service.GetPlanner().DeleteFavorite(c.Request.Context(), owner, c.Param("id")); err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccessStr(c, "")
}
