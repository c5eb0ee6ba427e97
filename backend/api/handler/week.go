package handler

import (
	"net/http"
	"strconv"

	"mealprep/backend/common"
	"mealprep/backend/common/i18n"
	"mealprep/backend/service"

	"github.com/gin-gonic/gin"
)

// GetWeek returns the 7x3 grid starting at ?start=YYYY-MM-DD, this week's
// Monday when omitted, together with the user's components.
func GetWeek(c *gin.Context) {
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	view, err := service.GetPlanner().Week(c.Request.Context(), owner, c.Query("start"))
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, view)
}

// FlushPlan writes pending changes back now instead of after the quiet period.
func FlushPlan(c *gin.Context) {
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	if err := service.GetPlanner().Flush(c.Request.Context(), owner); err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccessStr(c, "")
}

type AssignRequest struct {
	Component string `json:"component" validate:"required"`
}

type MoveRequest struct {
	Index        int    `json:"index" validate:"min=0"`
	Component    string `json:"component" validate:"required"`
	TargetSlotID string `json:"target_slot_id" validate:"required"`
}

type RemoveRequest struct {
	Index     int    `json:"index" validate:"min=0"`
	Component string `json:"component" validate:"required"`
}

type DropFavoriteRequest struct {
	FavoriteID string `json:"favorite_id" validate:"required"`
}

type ToppingRequest struct {
	Topping string `json:"topping" validate:"required,max=100"`
}

func AssignComponent(c *gin.Context) {
	var req AssignRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	slot, component, err := service.GetPlanner().Assign(c.Request.Context(), owner, c.Param("id"), req.Component)
	if err != nil {
		planError(c, err, req.Component)
		return
	}
	common.RespSuccess(c, gin.H{"slot": slot, "component": component})
}

func MoveComponent(c *gin.Context) {
	var req MoveRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	result, err := service.GetPlanner().Move(c.Request.Context(), owner, c.Param("id"), req.Index, req.Component, req.TargetSlotID)
	if err != nil {
		planError(c, err, req.Component)
		return
	}
	common.RespSuccess(c, result)
}

func RemoveComponent(c *gin.Context) {
	var req RemoveRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	slot, restore, err := service.GetPlanner().Remove(c.Request.Context(), owner, c.Param("id"), req.Index, req.Component)
	if err != nil {
		planError(c, err, req.Component)
		return
	}
	common.RespSuccess(c, gin.H{"slot": slot, "restore": restore})
}

// DropFavorite applies a favorite meal to the slot. Components without
// servings are skipped and listed rather than failing the request.
func DropFavorite(c *gin.Context) {
	var req DropFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	slot, result, err := service.GetPlanner().DropFavorite(c.Request.Context(), owner, c.Param("id"), req.FavoriteID)
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, gin.H{"slot": slot, "assigned": result.Assigned, "skipped": result.Skipped})
}

func AddTopping(c *gin.Context) {
	var req ToppingRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	slot, err := service.GetPlanner().AddTopping(c.Request.Context(), owner, c.Param("id"), req.Topping)
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, slot)
}

func RemoveTopping(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		common.RespError(c, http.StatusBadRequest, i18n.InvalidParamError(c.GetString("lang"), "index"))
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	slot, err := service.GetPlanner().RemoveTopping(c.Request.Context(), owner, c.Param("id"), index)
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, slot)
}

func UpdateSlot(c *gin.Context) {
	var req service.SlotUpdate
	if !bindJSON(c, &req) {
		return
	}
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	slot, err := service.GetPlanner().UpdateSlot(c.Request.Context(), owner, c.Param("id"), req)
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, slot)
}

// ClearSlot empties the slot and returns every serving it held.
func ClearSlot(c *gin.Context) {
	owner, ok := ownerKey(c)
	if !ok {
		return
	}
	slot, restores, err := service.GetPlanner().ClearSlot(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		planError(c, err, "")
		return
	}
	common.RespSuccess(c, gin.H{"slot": slot, "restores": restores})
}
