package model

import (
	"errors"
	"fmt"

	"github.com/burugo/thing"
)

type ShoppingItem struct {
	thing.BaseModel
	UserID   int64  `db:"user_id,index:idx_shopping_owner" json:"user_id"`
	Name     string `db:"name" json:"name" validate:"required,max=100"`
	Quantity string `db:"quantity" json:"quantity" validate:"max=50"`
	Checked  bool   `db:"checked" json:"checked"`
}

func (i *ShoppingItem) TableName() string {
	return "shopping_items"
}

var ShoppingItemDB *thing.Thing[*ShoppingItem]

func ShoppingItemInit() error {
	var err error
	ShoppingItemDB, err = thing.Use[*ShoppingItem]()
	if err != nil {
		return fmt.Errorf("failed to initialize ShoppingItemDB: %w", err)
	}
	return nil
}

// ErrShoppingItemNotFound is returned when the item is missing or owned by someone else.
var ErrShoppingItemNotFound = errors.New("shopping_item_not_found")

func GetShoppingItems(userID int64) ([]*ShoppingItem, error) {
	return ShoppingItemDB.Where("user_id = ?", userID).Order("id ASC").Fetch(0, 1000)
}

func GetShoppingItem(id, userID int64) (*ShoppingItem, error) {
	item, err := ShoppingItemDB.ByID(id)
	if err != nil || item == nil || item.UserID != userID {
		return nil, ErrShoppingItemNotFound
	}
	return item, nil
}

func (i *ShoppingItem) Insert() error {
	return ShoppingItemDB.Save(i)
}

func (i *ShoppingItem) Update() error {
	return ShoppingItemDB.Save(i)
}

func DeleteShoppingItem(id, userID int64) error {
	item, err := GetShoppingItem(id, userID)
	if err != nil {
		return err
	}
	return ShoppingItemDB.Delete(item)
}

// ClearCheckedShoppingItems deletes the user's checked items and returns how many went.
func ClearCheckedShoppingItems(userID int64) (int, error) {
	items, err := ShoppingItemDB.Where("user_id = ? AND checked = ?", userID, true).All()
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		if err := ShoppingItemDB.Delete(item); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}
