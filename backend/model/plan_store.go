package model

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mealprep/backend/library/ledger"
)

// PlanStore keeps components, meal slots and favorites in the thing tables.
// Version checks and writes run under one lock so a check cannot interleave
// with another writer in this process.
type PlanStore struct {
	mu sync.Mutex
}

func NewPlanStore() *PlanStore {
	return &PlanStore{}
}

func (p *PlanStore) ListComponents(ctx context.Context, userID string) ([]ledger.Component, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	rows, err := ComponentDB.Where("user_id = ?", owner).All()
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	out := make([]ledger.Component, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toLedger())
	}
	return out, nil
}

func (p *PlanStore) UpsertComponent(ctx context.Context, c ledger.Component) (ledger.Component, error) {
	owner, err := parseOwner(c.UserID)
	if err != nil {
		return ledger.Component{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := findComponent(owner, c.ID)
	if err != nil {
		return ledger.Component{}, err
	}
	if row == nil {
		if c.Version != 0 {
			return ledger.Component{}, fmt.Errorf("component %q was deleted: %w", c.ID, ledger.ErrConcurrentModification)
		}
		row = &Component{UID: c.ID, UserID: owner}
	} else if row.Version != c.Version {
		return ledger.Component{}, fmt.Errorf("component %q at version %d, have %d: %w",
			c.ID, row.Version, c.Version, ledger.ErrConcurrentModification)
	}
	row.Name = c.Name
	row.TotalServings = c.TotalServings
	row.AvailableServings = c.AvailableServings
	row.Version = c.Version + 1
	if err := ComponentDB.Save(row); err != nil {
		return ledger.Component{}, fmt.Errorf("failed to save component: %w", err)
	}
	return row.toLedger(), nil
}

func (p *PlanStore) DeleteComponent(ctx context.Context, userID, id string) error {
	owner, err := parseOwner(userID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := findComponent(owner, id)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%q: %w", id, ledger.ErrComponentNotFound)
	}
	return ComponentDB.Delete(row)
}

func findComponent(owner int64, uid string) (*Component, error) {
	rows, err := ComponentDB.Where("user_id = ? AND uid = ?", owner, uid).Fetch(0, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load component: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (p *PlanStore) ListMealSlots(ctx context.Context, userID, from, to string) ([]ledger.MealSlot, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	rows, err := MealSlotDB.Where("user_id = ? AND slot_date >= ? AND slot_date <= ?", owner, from, to).All()
	if err != nil {
		return nil, fmt.Errorf("failed to list meal slots: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	out := make([]ledger.MealSlot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toLedger())
	}
	return out, nil
}

func (p *PlanStore) UpsertMealSlot(ctx context.Context, s ledger.MealSlot) (ledger.MealSlot, error) {
	owner, err := parseOwner(s.UserID)
	if err != nil {
		return ledger.MealSlot{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := findMealSlot(owner, s.ID)
	if err != nil {
		return ledger.MealSlot{}, err
	}
	if row == nil {
		if s.Version != 0 {
			return ledger.MealSlot{}, fmt.Errorf("slot %q was deleted: %w", s.ID, ledger.ErrConcurrentModification)
		}
		row = &MealSlot{UID: s.ID, UserID: owner}
	} else if row.Version != s.Version {
		return ledger.MealSlot{}, fmt.Errorf("slot %q at version %d, have %d: %w",
			s.ID, row.Version, s.Version, ledger.ErrConcurrentModification)
	}
	row.Date = s.Date
	row.MealType = s.MealType
	row.Name = s.Name
	row.Notes = s.Notes
	row.Favorite = s.Favorite
	row.SetComponents(s.Components)
	row.SetToppings(s.Toppings)
	row.Version = s.Version + 1
	if err := MealSlotDB.Save(row); err != nil {
		return ledger.MealSlot{}, fmt.Errorf("failed to save meal slot: %w", err)
	}
	return row.toLedger(), nil
}

func (p *PlanStore) DeleteMealSlot(ctx context.Context, userID, id string) error {
	owner, err := parseOwner(userID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := findMealSlot(owner, id)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%q: %w", id, ledger.ErrSlotNotFound)
	}
	return MealSlotDB.Delete(row)
}

func findMealSlot(owner int64, uid string) (*MealSlot, error) {
	rows, err := MealSlotDB.Where("user_id = ? AND uid = ?", owner, uid).Fetch(0, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal slot: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (p *PlanStore) ListFavorites(ctx context.Context, userID string) ([]ledger.FavoriteMeal, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	rows, err := FavoriteMealDB.Where("user_id = ?", owner).Order("id DESC").Fetch(0, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	out := make([]ledger.FavoriteMeal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toLedger())
	}
	return out, nil
}

func (p *PlanStore) UpsertFavorite(ctx context.Context, f ledger.FavoriteMeal) (ledger.FavoriteMeal, error) {
	owner, err := parseOwner(f.UserID)
	if err != nil {
		return ledger.FavoriteMeal{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := findFavorite(owner, f.ID)
	if err != nil {
		return ledger.FavoriteMeal{}, err
	}
	if row == nil {
		row = &FavoriteMeal{UID: f.ID, UserID: owner}
	}
	row.Name = f.Name
	row.Notes = f.Notes
	row.ComponentsJSON = encodeList(f.Components)
	row.ToppingsJSON = encodeList(f.Toppings)
	if err := FavoriteMealDB.Save(row); err != nil {
		return ledger.FavoriteMeal{}, fmt.Errorf("failed to save favorite: %w", err)
	}
	return row.toLedger(), nil
}

func (p *PlanStore) DeleteFavorite(ctx context.Context, userID, id string) error {
	owner, err := parseOwner(userID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := findFavorite(owner, id)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("favorite %q: %w", id, ledger.ErrNotFound)
	}
	return FavoriteMealDB.Delete(row)
}

func findFavorite(owner int64, uid string) (*FavoriteMeal, error) {
	rows, err := FavoriteMealDB.Where("user_id = ? AND uid = ?", owner, uid).Fetch(0, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
