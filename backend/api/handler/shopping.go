package handler

import (
	"errors"
	"net/http"
	"strconv"

	"mealprep/backend/common"
	mperrors "mealprep/backend/common/errors"
	"mealprep/backend/common/i18n"
	"mealprep/backend/model"

	"github.com/gin-gonic/gin"
)

type ShoppingItemRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Quantity string `json:"quantity" validate:"max=50"`
}

// ShoppingItemUpdate changes only the fields that are sent.
type ShoppingItemUpdate struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Quantity *string `json:"quantity" validate:"omitempty,max=50"`
	Checked  *bool   `json:"checked"`
}

func shoppingError(c *gin.Context, err error) {
	lang := c.GetString("lang")
	if errors.Is(err, model.ErrShoppingItemNotFound) {
		common.RespError(c, http.StatusNotFound, i18n.Wrap(err, mperrors.ErrShoppingItemNotFound, lang))
		return
	}
	common.RespError(c, http.StatusInternalServerError, i18n.Wrap(err, mperrors.ErrInternalServer, lang))
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		common.RespError(c, http.StatusBadRequest, i18n.InvalidParamError(c.GetString("lang"), "id"))
		return 0, false
	}
	return id, true
}

func GetShoppingList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := model.GetShoppingItems(userID)
	if err != nil {
		shoppingError(c, err)
		return
	}
	if items == nil {
		items = []*model.ShoppingItem{}
	}
	common.RespSuccess(c, items)
}

func CreateShoppingItem(c *gin.Context) {
	var req ShoppingItemRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	item := &model.ShoppingItem{UserID: userID, Name: req.Name, Quantity: req.Quantity}
	if err := item.Insert(); err != nil {
		shoppingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Success: true, Data: item})
}

func UpdateShoppingItem(c *gin.Context) {
	var req ShoppingItemUpdate
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := itemID(c)
	if !ok {
		return
	}
	item, err := model.GetShoppingItem(id, userID)
	if err != nil {
		shoppingError(c, err)
		return
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Checked != nil {
		item.Checked = *req.Checked
	}
	if err := item.Update(); err != nil {
		shoppingError(c, err)
		return
	}
	common.RespSuccess(c, item)
}

func DeleteShoppingItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := itemID(c)
	if !ok {
		return
	}
	if err := model.DeleteShoppingItem(id, userID); err != nil {
		shoppingError(c, err)
		return
	}
	common.RespSuccessStr(c, "")
}

// ClearCheckedShoppingItems drops everything already bought.
func ClearCheckedShoppingItems(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	n, err := model.ClearCheckedShoppingItems(userID)
	if err != nil {
		shoppingError(c, err)
		return
	}
	common.RespSuccess(c, gin.H{"removed": n})
}
