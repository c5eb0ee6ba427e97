package service

import (
	"context"
	"fmt"
	"strings"

	"mealprep/backend/library/ledger"

	"github.com/google/uuid"
)

// MoveResult holds both ends of a move; they are equal for a same-slot move.
type MoveResult struct {
	Source ledger.MealSlot `json:"source"`
	Target ledger.MealSlot `json:"target"`
}

// SlotUpdate carries the editable metadata of a slot.
type SlotUpdate struct {
	Name     string `json:"name" validate:"max=100"`
	Notes    string `json:"notes" validate:"max=1000"`
	Favorite bool   `json:"favorite"`
}

// ComponentUpdate changes the name and/or the prepared servings of a component.
type ComponentUpdate struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=100"`
	TotalServings *int    `json:"total_servings" validate:"omitempty,min=0,max=1000"`
}

func slotOf(s ledger.Snapshot, slotID string) ledger.MealSlot {
	slot, _ := s.Slot(slotID)
	return slot
}

func (p *Planner) Assign(ctx context.Context, userID, slotID, name string) (ledger.MealSlot, ledger.Component, error) {
	var slot ledger.MealSlot
	var component ledger.Component
	err := p.update(ctx, userID, func(ws *workingSet) error {
		next, err := ws.working.AssignComponent(name, slotID)
		if err != nil {
			return err
		}
		ws.working = next
		slot = slotOf(next, slotID)
		component, _ = next.Component(name)
		return nil
	})
	if err != nil {
		return ledger.MealSlot{}, ledger.Component{}, err
	}
	p.activity(ctx, userID, "assign", slotID, fmt.Sprintf("assigned %s, %d left", name, component.AvailableServings))
	return slot, component, nil
}

func (p *Planner) Move(ctx context.Context, userID, srcSlotID string, srcIndex int, name, dstSlotID string) (MoveResult, error) {
	var result MoveResult
	err := p.update(ctx, userID, func(ws *workingSet) error {
		next, err := ws.working.MoveComponent(srcSlotID, srcIndex, name, dstSlotID)
		if err != nil {
			return err
		}
		ws.working = next
		result = MoveResult{Source: slotOf(next, srcSlotID), Target: slotOf(next, dstSlotID)}
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}
	p.activity(ctx, userID, "move", dstSlotID, fmt.Sprintf("moved %s from %s", name, srcSlotID))
	return result, nil
}

func (p *Planner) Remove(ctx context.Context, userID, slotID string, index int, name string) (ledger.MealSlot, ledger.Restore, error) {
	var slot ledger.MealSlot
	var restore ledger.Restore
	err := p.update(ctx, userID, func(ws *workingSet) error {
		next, r, err := ws.working.RemoveComponent(slotID, index, name)
		if err != nil {
			return err
		}
		ws.working = next
		slot = slotOf(next, slotID)
		restore = r
		return nil
	})
	if err != nil {
		return ledger.MealSlot{}, ledger.Restore{}, err
	}
	msg := fmt.Sprintf("removed %s, %d available", name, restore.Available)
	if restore.Clamped {
		msg += " (already at total)"
	}
	p.activity(ctx, userID, "remove", slotID, msg)
	return slot, restore, nil
}

func (p *Planner) AddTopping(ctx context.Context, userID, slotID, topping string) (ledger.MealSlot, error) {
	return p.slotUpdate(ctx, userID, slotID, func(s ledger.Snapshot) (ledger.Snapshot, error) {
		return s.AddTopping(slotID, topping)
	})
}

func (p *Planner) RemoveTopping(ctx context.Context, userID, slotID string, index int) (ledger.MealSlot, error) {
	return p.slotUpdate(ctx, userID, slotID, func(s ledger.Snapshot) (ledger.Snapshot, error) {
		return s.RemoveTopping(slotID, index)
	})
}

func (p *Planner) UpdateSlot(ctx context.Context, userID, slotID string, u SlotUpdate) (ledger.MealSlot, error) {
	return p.slotUpdate(ctx, userID, slotID, func(s ledger.Snapshot) (ledger.Snapshot, error) {
		return s.Annotate(slotID, strings.TrimSpace(u.Name), u.Notes, u.Favorite)
	})
}

func (p *Planner) slotUpdate(ctx context.Context, userID, slotID string, op func(ledger.Snapshot) (ledger.Snapshot, error)) (ledger.MealSlot, error) {
	var slot ledger.MealSlot
	err := p.update(ctx, userID, func(ws *workingSet) error {
		next, err := op(ws.working)
		if err != nil {
			return err
		}
		ws.working = next
		slot = slotOf(next, slotID)
		return nil
	})
	return slot, err
}

func (p *Planner) ClearSlot(ctx context.Context, userID, slotID string) (ledger.MealSlot, []ledger.Restore, error) {
	var slot ledger.MealSlot
	var restores []ledger.Restore
	err := p.update(ctx, userID, func(ws *workingSet) error {
		next, r, err := ws.working.ClearSlot(slotID)
		if err != nil {
			return err
		}
		ws.working = next
		slot = slotOf(next, slotID)
		restores = r
		return nil
	})
	if err != nil {
		return ledger.MealSlot{}, nil, err
	}
	p.activity(ctx, userID, "clear", slotID, fmt.Sprintf("cleared, %d servings back", len(restores)))
	return slot, restores, nil
}

// Components lists the user's inventory.
func (p *Planner) Components(ctx context.Context, userID string) ([]ledger.Component, error) {
	ws, err := p.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	components := ws.working.Clone().Components
	if components == nil {
		components = []ledger.Component{}
	}
	return components, p.release(ws)
}

func (p *Planner) CreateComponent(ctx context.Context, userID, name string, total int) (ledger.Component, error) {
	id := uuid.NewString()
	var created ledger.Component
	err := p.update(ctx, userID, func(ws *workingSet) error {
		next, err := ws.working.AddComponent(ledger.Component{ID: id, UserID: userID, Name: name, TotalServings: total})
		if err != nil {
			return err
		}
		ws.working = next
		created, _ = next.ComponentByID(id)
		return nil
	})
	if err != nil {
		return ledger.Component{}, err
	}
	p.activity(ctx, userID, "component", "", fmt.Sprintf("prepped %s, %d servings", created.Name, created.TotalServings))
	return created, nil
}

func (p *Planner) UpdateComponent(ctx context.Context, userID, id string, u ComponentUpdate) (ledger.Component, error) {
	var updated ledger.Component
	err := p.update(ctx, userID, func(ws *workingSet) error {
		current, ok := ws.working.ComponentByID(id)
		if !ok {
			return fmt.Errorf("%q: %w", id, ledger.ErrComponentNotFound)
		}
		renaming := u.Name != nil && strings.TrimSpace(*u.Name) != current.Name
		// renames and availability both depend on references in every week
		if renaming || u.TotalServings != nil {
			if err := p.loadAllSlots(ctx, ws); err != nil {
				return err
			}
		}
		next := ws.working
		var err error
		if u.Name != nil {
			if next, err = next.RenameComponent(current.Name, *u.Name); err != nil {
				return err
			}
		}
		if u.TotalServings != nil {
			renamed, _ := next.ComponentByID(id)
			if next, err = next.AdjustTotal(renamed.Name, *u.TotalServings); err != nil {
				return err
			}
		}
		ws.working = next
		updated, _ = next.ComponentByID(id)
		return nil
	})
	if err != nil {
		return ledger.Component{}, err
	}
	p.activity(ctx, userID, "component", "", fmt.Sprintf("updated %s, %d of %d servings available",
		updated.Name, updated.AvailableServings, updated.TotalServings))
	return updated, nil
}

// DeleteComponent removes the component and detaches it from every slot
// without returning servings. It reports how many references were dropped.
func (p *Planner) DeleteComponent(ctx context.Context, userID, id string) (int, error) {
	var detached int
	var name string
	err := p.update(ctx, userID, func(ws *workingSet) error {
		current, ok := ws.working.ComponentByID(id)
		if !ok {
			return fmt.Errorf("%q: %w", id, ledger.ErrComponentNotFound)
		}
		if err := p.loadAllSlots(ctx, ws); err != nil {
			return err
		}
		next, _, n, err := ws.working.DeleteComponent(current.Name)
		if err != nil {
			return err
		}
		ws.working = next
		ws.deleted = append(ws.deleted, id)
		detached = n
		name = current.Name
		return nil
	})
	if err != nil {
		return 0, err
	}
	p.activity(ctx, userID, "component", "", fmt.Sprintf("deleted %s, detached from %d slots", name, detached))
	return detached, nil
}
