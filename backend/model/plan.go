package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"mealprep/backend/library/ledger"

	"github.com/burugo/thing"
)

// Component rows back ledger components. UID is the domain id; the thing
// primary key stays internal.
type Component struct {
	thing.BaseModel
	UID               string `db:"uid,index:idx_component_uid" json:"uid"`
	UserID            int64  `db:"user_id,index:idx_component_owner" json:"user_id"`
	Name              string `db:"name" json:"name"`
	TotalServings     int    `db:"total_servings" json:"total_servings"`
	AvailableServings int    `db:"available_servings" json:"available_servings"`
	Version           int64  `db:"version" json:"version"`
}

func (c *Component) TableName() string {
	return "components"
}

func (c *Component) toLedger() ledger.Component {
	return ledger.Component{
		ID:                c.UID,
		UserID:            strconv.FormatInt(c.UserID, 10),
		Name:              c.Name,
		TotalServings:     c.TotalServings,
		AvailableServings: c.AvailableServings,
		Version:           c.Version,
	}
}

type MealSlot struct {
	thing.BaseModel
	UID            string `db:"uid,index:idx_slot_uid" json:"uid"`
	UserID         int64  `db:"user_id,index:idx_slot_owner_date" json:"user_id"`
	Date           string `db:"slot_date,index:idx_slot_owner_date" json:"date"`
	MealType       string `db:"meal_type" json:"meal_type"`
	Name           string `db:"name" json:"name"`
	Notes          string `db:"notes" json:"notes"`
	Favorite       bool   `db:"favorite" json:"favorite"`
	ComponentsJSON string `db:"components_json" json:"components_json"`
	ToppingsJSON   string `db:"toppings_json" json:"toppings_json"`
	Version        int64  `db:"version" json:"version"`
}

func (s *MealSlot) TableName() string {
	return "meal_slots"
}

func (s *MealSlot) GetComponents() []string { return decodeList(s.ComponentsJSON) }

func (s *MealSlot) SetComponents(names []string) { s.ComponentsJSON = encodeList(names) }

func (s *MealSlot) GetToppings() []string { return decodeList(s.ToppingsJSON) }

func (s *MealSlot) SetToppings(toppings []string) { s.ToppingsJSON = encodeList(toppings) }

func (s *MealSlot) toLedger() ledger.MealSlot {
	return ledger.MealSlot{
		ID:         s.UID,
		UserID:     strconv.FormatInt(s.UserID, 10),
		Date:       s.Date,
		MealType:   s.MealType,
		Name:       s.Name,
		Notes:      s.Notes,
		Favorite:   s.Favorite,
		Components: s.GetComponents(),
		Toppings:   s.GetToppings(),
		Version:    s.Version,
	}
}

type FavoriteMeal struct {
	thing.BaseModel
	UID            string `db:"uid,index:idx_favorite_uid" json:"uid"`
	UserID         int64  `db:"user_id,index:idx_favorite_owner" json:"user_id"`
	Name           string `db:"name" json:"name"`
	Notes          string `db:"notes" json:"notes"`
	ComponentsJSON string `db:"components_json" json:"components_json"`
	ToppingsJSON   string `db:"toppings_json" json:"toppings_json"`
}

func (f *FavoriteMeal) TableName() string {
	return "favorite_meals"
}

func (f *FavoriteMeal) toLedger() ledger.FavoriteMeal {
	return ledger.FavoriteMeal{
		ID:         f.UID,
		UserID:     strconv.FormatInt(f.UserID, 10),
		Name:       f.Name,
		Notes:      f.Notes,
		Components: decodeList(f.ComponentsJSON),
		Toppings:   decodeList(f.ToppingsJSON),
	}
}

var (
	ComponentDB    *thing.Thing[*Component]
	MealSlotDB     *thing.Thing[*MealSlot]
	FavoriteMealDB *thing.Thing[*FavoriteMeal]
)

func PlanInit() error {
	var err error
	if ComponentDB, err = thing.Use[*Component](); err != nil {
		return fmt.Errorf("failed to initialize ComponentDB: %w", err)
	}
	if MealSlotDB, err = thing.Use[*MealSlot](); err != nil {
		return fmt.Errorf("failed to initialize MealSlotDB: %w", err)
	}
	if FavoriteMealDB, err = thing.Use[*FavoriteMeal](); err != nil {
		return fmt.Errorf("failed to initialize FavoriteMealDB: %w", err)
	}
	return nil
}

func decodeList(raw string) []string {
	list := []string{}
	if raw == "" {
		return list
	}
	_ = json.Unmarshal([]byte(raw), &list)
	return list
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	bytes, _ := json.Marshal(list)
	return string(bytes)
}

func parseOwner(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid owner %q: %w", userID, err)
	}
	return id, nil
}
