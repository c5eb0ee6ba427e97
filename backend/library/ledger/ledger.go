package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Restore describes what happened to the inventory counter on removal.
type Restore struct {
	Component string `json:"component"`
	Available int    `json:"available"`
	// Clamped is set when the restored serving would have exceeded TotalServings.
	Clamped bool `json:"clamped"`
}

// Skipped names a favorite component that could not be assigned.
type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// DropResult is the partial-success outcome of a favorite meal drop.
type DropResult struct {
	Assigned []string  `json:"assigned"`
	Skipped  []Skipped `json:"skipped"`
}

// AssignComponent appends name to the slot and takes one serving from inventory.
func (s Snapshot) AssignComponent(name, slotID string) (Snapshot, error) {
	out := s.Clone()
	if err := out.assign(name, slotID); err != nil {
		return s, err
	}
	return out, nil
}

func (s *Snapshot) assign(name, slotID string) error {
	ci := s.componentIndex(name)
	if ci < 0 {
		return fmt.Errorf("%q: %w", name, ErrComponentNotFound)
	}
	si := s.slotIndex(slotID)
	if si < 0 {
		return fmt.Errorf("%q: %w", slotID, ErrSlotNotFound)
	}
	c := &s.Components[ci]
	if err := c.checkBounds(); err != nil {
		return err
	}
	if c.AvailableServings == 0 {
		return fmt.Errorf("component %q: %w", name, ErrCapacityExceeded)
	}
	c.AvailableServings--
	s.Slots[si].Components = append(s.Slots[si].Components, name)
	return nil
}

// MoveComponent relocates the entry at srcIndex of the source slot to the end
// of the target slot. Inventory is untouched.
func (s Snapshot) MoveComponent(srcSlotID string, srcIndex int, name, dstSlotID string) (Snapshot, error) {
	out := s.Clone()
	src := out.slotIndex(srcSlotID)
	if src < 0 {
		return s, fmt.Errorf("%q: %w", srcSlotID, ErrSlotNotFound)
	}
	dst := out.slotIndex(dstSlotID)
	if dst < 0 {
		return s, fmt.Errorf("%q: %w", dstSlotID, ErrSlotNotFound)
	}
	if err := out.Slots[src].entryAt(srcIndex, name); err != nil {
		return s, err
	}
	out.Slots[src].Components = removeAt(out.Slots[src].Components, srcIndex)
	out.Slots[dst].Components = append(out.Slots[dst].Components, name)
	return out, nil
}

// RemoveComponent drops the entry at index and gives the serving back.
func (s Snapshot) RemoveComponent(slotID string, index int, name string) (Snapshot, Restore, error) {
	out := s.Clone()
	restore, err := out.remove(slotID, index, name)
	if err != nil {
		return s, Restore{}, err
	}
	return out, restore, nil
}

func (s *Snapshot) remove(slotID string, index int, name string) (Restore, error) {
	si := s.slotIndex(slotID)
	if si < 0 {
		return Restore{}, fmt.Errorf("%q: %w", slotID, ErrSlotNotFound)
	}
	if err := s.Slots[si].entryAt(index, name); err != nil {
		return Restore{}, err
	}
	ci := s.componentIndex(name)
	if ci < 0 {
		return Restore{}, fmt.Errorf("%q: %w", name, ErrComponentNotFound)
	}
	c := &s.Components[ci]
	if err := c.checkBounds(); err != nil {
		return Restore{}, err
	}
	s.Slots[si].Components = removeAt(s.Slots[si].Components, index)
	restore := Restore{Component: name}
	if c.AvailableServings < c.TotalServings {
		c.AvailableServings++
	} else {
		restore.Clamped = true
	}
	restore.Available = c.AvailableServings
	return restore, nil
}

// ApplyFavoriteMealDrop assigns every component of fav to the slot. Components
// that are unknown or out of servings are skipped and reported.
func (s Snapshot) ApplyFavoriteMealDrop(fav FavoriteMeal, slotID string) (Snapshot, DropResult, error) {
	out := s.Clone()
	si := out.slotIndex(slotID)
	if si < 0 {
		return s, DropResult{}, fmt.Errorf("%q: %w", slotID, ErrSlotNotFound)
	}
	result := DropResult{Assigned: []string{}, Skipped: []Skipped{}}
	for _, name := range fav.Components {
		err := out.assign(name, slotID)
		switch {
		case err == nil:
			result.Assigned = append(result.Assigned, name)
		case errors.Is(err, ErrCapacityExceeded):
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: "no servings available"})
		case errors.Is(err, ErrNotFound):
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: "unknown component"})
		default:
			return s, DropResult{}, err
		}
	}
	slot := &out.Slots[si]
	if fav.Name != "" {
		slot.Name = fav.Name
	}
	if fav.Notes != "" {
		slot.Notes = fav.Notes
	}
	for _, topping := range fav.Toppings {
		if !contains(slot.Toppings, topping) {
			slot.Toppings = append(slot.Toppings, topping)
		}
	}
	return out, result, nil
}

// AddTopping appends a free-text topping to the slot.
func (s Snapshot) AddTopping(slotID, topping string) (Snapshot, error) {
	topping = strings.TrimSpace(topping)
	out := s.Clone()
	si := out.slotIndex(slotID)
	if si < 0 {
		return s, fmt.Errorf("%q: %w", slotID, ErrSlotNotFound)
	}
	if topping == "" {
		return s, nil
	}
	out.Slots[si].Toppings = append(out.Slots[si].Toppings, topping)
	return out, nil
}

// RemoveTopping drops the topping at index.
func (s Snapshot) RemoveTopping(slotID string, index int) (Snapshot, error) {
	out := s.Clone()
	si := out.slotIndex(slotID)
	if si < 0 {
		return s, fmt.Errorf("%q: %w", slotID, ErrSlotNotFound)
	}
	toppings := out.Slots[si].Toppings
	if index < 0 || index >= len(toppings) {
		return s, fmt.Errorf("topping %d of slot %q: %w", index, slotID, ErrIndexOutOfRange)
	}
	out.Slots[si].Toppings = removeAt(toppings, index)
	return out, nil
}

// Annotate replaces the display fields of a slot.
func (s Snapshot) Annotate(slotID, name, notes string, favorite bool) (Snapshot, error) {
	out := s.Clone()
	si := out.slotIndex(slotID)
	if si < 0 {
		return s, fmt.Errorf("%q: %w", slotID, ErrSlotNotFound)
	}
	out.Slots[si].Name = name
	out.Slots[si].Notes = notes
	out.Slots[si].Favorite = favorite
	return out, nil
}

// ClearSlot empties the slot and restores a serving for every component it held.
func (s Snapshot) ClearSlot(slotID string) (Snapshot, []Restore, error) {
	out := s.Clone()
	si := out.slotIndex(slotID)
	if si < 0 {
		return s, nil, fmt.Errorf("%q: %w", slotID, ErrSlotNotFound)
	}
	restores := []Restore{}
	for i := len(out.Slots[si].Components) - 1; i >= 0; i-- {
		name := out.Slots[si].Components[i]
		if out.componentIndex(name) < 0 {
			// dangling reference, nothing to give back
			out.Slots[si].Components = removeAt(out.Slots[si].Components, i)
			continue
		}
		restore, err := out.remove(slotID, i, name)
		if err != nil {
			return s, nil, err
		}
		restores = append(restores, restore)
	}
	slot := &out.Slots[si]
	slot.Components = []string{}
	slot.Toppings = []string{}
	slot.Name = ""
	slot.Notes = ""
	slot.Favorite = false
	return out, restores, nil
}

// AddComponent registers a freshly prepped component with all servings available.
func (s Snapshot) AddComponent(c Component) (Snapshot, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return s, fmt.Errorf("component name is empty: %w", ErrInvariantViolation)
	}
	if s.componentIndex(c.Name) >= 0 {
		return s, fmt.Errorf("component %q already exists: %w", c.Name, ErrInvariantViolation)
	}
	if c.TotalServings < 0 {
		return s, fmt.Errorf("component %q: negative servings: %w", c.Name, ErrInvariantViolation)
	}
	c.AvailableServings = c.TotalServings
	out := s.Clone()
	out.Components = append(out.Components, c)
	return out, nil
}

// AdjustTotal changes the prepared amount of a component. Available servings
// become total minus the references in the snapshot, so the snapshot must hold
// every slot of the user. A total below the planned references is rejected.
func (s Snapshot) AdjustTotal(name string, total int) (Snapshot, error) {
	if total < 0 {
		return s, fmt.Errorf("component %q: negative servings: %w", name, ErrInvariantViolation)
	}
	out := s.Clone()
	ci := out.componentIndex(name)
	if ci < 0 {
		return s, fmt.Errorf("%q: %w", name, ErrComponentNotFound)
	}
	used := out.Usage(name)
	if total < used {
		return s, fmt.Errorf("component %q: %d servings are still planned, cannot prepare %d: %w",
			name, used, total, ErrInvariantViolation)
	}
	c := &out.Components[ci]
	c.TotalServings = total
	c.AvailableServings = total - used
	return out, nil
}

// RenameComponent renames a component and every slot reference to it.
func (s Snapshot) RenameComponent(oldName, newName string) (Snapshot, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return s, fmt.Errorf("component name is empty: %w", ErrInvariantViolation)
	}
	if oldName == newName {
		return s, nil
	}
	out := s.Clone()
	ci := out.componentIndex(oldName)
	if ci < 0 {
		return s, fmt.Errorf("%q: %w", oldName, ErrComponentNotFound)
	}
	if out.componentIndex(newName) >= 0 {
		return s, fmt.Errorf("component %q already exists: %w", newName, ErrInvariantViolation)
	}
	out.Components[ci].Name = newName
	for i := range out.Slots {
		for j, ref := range out.Slots[i].Components {
			if ref == oldName {
				out.Slots[i].Components[j] = newName
			}
		}
	}
	return out, nil
}

// DeleteComponent removes the component and detaches every reference to it.
// It returns the removed component and how many references were dropped.
func (s Snapshot) DeleteComponent(name string) (Snapshot, Component, int, error) {
	out := s.Clone()
	ci := out.componentIndex(name)
	if ci < 0 {
		return s, Component{}, 0, fmt.Errorf("%q: %w", name, ErrComponentNotFound)
	}
	removed := out.Components[ci]
	out.Components = append(out.Components[:ci], out.Components[ci+1:]...)
	detached := 0
	for i := range out.Slots {
		kept := out.Slots[i].Components[:0]
		for _, ref := range out.Slots[i].Components {
			if ref == name {
				detached++
				continue
			}
			kept = append(kept, ref)
		}
		out.Slots[i].Components = kept
	}
	return out, removed, detached, nil
}

func (slot MealSlot) entryAt(index int, name string) error {
	if index < 0 || index >= len(slot.Components) {
		return fmt.Errorf("entry %d of slot %q: %w", index, slot.ID, ErrIndexOutOfRange)
	}
	if slot.Components[index] != name {
		return fmt.Errorf("entry %d of slot %q is %q, not %q: %w",
			index, slot.ID, slot.Components[index], name, ErrIndexOutOfRange)
	}
	return nil
}

func removeAt(list []string, index int) []string {
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
