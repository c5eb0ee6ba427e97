package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"mealprep/backend/library/ledger"
	"mealprep/backend/library/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
const testMonday = "2024-01-01"

func newTestPlanner(t *testing.T, store *memstore.Store, delay time.Duration) *Planner {
	t.Helper()
	p := NewPlanner(store, delay)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestWeekDates(t *testing.T) {
	dates, err := WeekDates(testMonday)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06", "2024-01-07"}, dates)

	dates, err = WeekDates("")
	require.NoError(t, err)
	first, err := time.Parse("2006-01-02", dates[0])
	require.NoError(t, err)
	assert.Equal(t, time.Monday, first.Weekday())

	_, err = WeekDates("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestWeekCreatesMissingSlots(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := newTestPlanner(t, store, 0)

	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-07", view.End)
	require.Len(t, view.Slots, 21)
	assert.Equal(t, ledger.MealBreakfast, view.Slots[0].MealType)
	assert.Equal(t, ledger.MealDinner, view.Slots[20].MealType)
	assert.Equal(t, "2024-01-07", view.Slots[20].Date)

	stored, err := store.ListMealSlots(ctx, "1", "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.Len(t, stored, 21)

	again, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	assert.Equal(t, view.Slots[4].ID, again.Slots[4].ID)

	// a second planner sees the same slots instead of creating its own
	other := newTestPlanner(t, store, 0)
	fresh, err := other.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	assert.Equal(t, view.Slots[4].ID, fresh.Slots[4].ID)
	stored, err = store.ListMealSlots(ctx, "1", "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.Len(t, stored, 21)
}

func TestAssignMoveRemove(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := newTestPlanner(t, store, 0)

	_, err := p.CreateComponent(ctx, "1", "Chicken", 4)
	require.NoError(t, err)
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	slotA, slotB := view.Slots[0].ID, view.Slots[1].ID

	slot, component, err := p.Assign(ctx, "1", slotA, "Chicken")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chicken"}, slot.Components)
	assert.Equal(t, 3, component.AvailableServings)

	moved, err := p.Move(ctx, "1", slotA, 0, "Chicken", slotB)
	require.NoError(t, err)
	assert.Empty(t, moved.Source.Components)
	assert.Equal(t, []string{"Chicken"}, moved.Target.Components)

	slot, restore, err := p.Remove(ctx, "1", slotB, 0, "Chicken")
	require.NoError(t, err)
	assert.Empty(t, slot.Components)
	assert.Equal(t, 4, restore.Available)
	assert.False(t, restore.Clamped)

	components, err := store.ListComponents(ctx, "1")
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, 4, components[0].AvailableServings)

	_, _, err = p.Remove(ctx, "1", slotB, 0, "Chicken")
	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)
}

func TestAssignWithoutServings(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t, memstore.New(), 0)

	_, err := p.CreateComponent(ctx, "1", "Rice", 0)
	require.NoError(t, err)
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)

	_, _, err = p.Assign(ctx, "1", view.Slots[0].ID, "Rice")
	assert.ErrorIs(t, err, ledger.ErrCapacityExceeded)
	_, _, err = p.Assign(ctx, "1", view.Slots[0].ID, "Beans")
	assert.ErrorIs(t, err, ledger.ErrComponentNotFound)
	_, _, err = p.Assign(ctx, "1", "no-such-slot", "Rice")
	assert.ErrorIs(t, err, ledger.ErrSlotNotFound)
}

func TestWriteBackIsDebounced(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := newTestPlanner(t, store, time.Hour)

	_, err := p.CreateComponent(ctx, "1", "Chicken", 4)
	require.NoError(t, err)
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, _, err := p.Assign(ctx, "1", view.Slots[i].ID, "Chicken")
		require.NoError(t, err)
	}

	components, err := store.ListComponents(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, components)

	require.NoError(t, p.Flush(ctx, "1"))
	components, err = store.ListComponents(ctx, "1")
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, 1, components[0].AvailableServings)
	assert.Equal(t, int64(1), components[0].Version)

	// nothing left to write
	require.NoError(t, p.Flush(ctx, "1"))
	components, err = store.ListComponents(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), components[0].Version)
}

func TestConcurrentPlannersConflict(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	first := newTestPlanner(t, store, 0)
	second := newTestPlanner(t, store, 0)

	_, err := first.CreateComponent(ctx, "1", "Chicken", 4)
	require.NoError(t, err)
	view, err := first.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	_, err = second.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	slot := view.Slots[0].ID

	_, _, err = first.Assign(ctx, "1", slot, "Chicken")
	require.NoError(t, err)

	_, _, err = second.Assign(ctx, "1", slot, "Chicken")
	assert.ErrorIs(t, err, ledger.ErrConcurrentModification)

	// the second planner reloads and sees the first one's write
	reloaded, err := second.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chicken"}, reloaded.Slots[0].Components)
	require.Len(t, reloaded.Components, 1)
	assert.Equal(t, 3, reloaded.Components[0].AvailableServings)

	_, component, err := second.Assign(ctx, "1", slot, "Chicken")
	require.NoError(t, err)
	assert.Equal(t, 2, component.AvailableServings)
}

func TestDeleteComponentReachesUnopenedWeeks(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := newTestPlanner(t, store, 0)

	c, err := p.CreateComponent(ctx, "1", "Chicken", 4)
	require.NoError(t, err)
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	_, _, err = p.Assign(ctx, "1", view.Slots[0].ID, "Chicken")
	require.NoError(t, err)

	other := newTestPlanner(t, store, 0)
	_, err = other.Week(ctx, "1", "2024-01-08")
	require.NoError(t, err)
	detached, err := other.DeleteComponent(ctx, "1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detached)

	components, err := store.ListComponents(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, components)
	slots, err := store.ListMealSlots(ctx, "1", testMonday, testMonday)
	require.NoError(t, err)
	for _, slot := range slots {
		assert.Empty(t, slot.Components)
	}

	_, err = other.DeleteComponent(ctx, "1", c.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestAdjustTotalCountsUnopenedWeeks(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := newTestPlanner(t, store, 0)

	c, err := p.CreateComponent(ctx, "1", "Chicken", 4)
	require.NoError(t, err)
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	for _, slot := range view.Slots[:3] {
		_, _, err = p.Assign(ctx, "1", slot.ID, "Chicken")
		require.NoError(t, err)
	}

	// a second planner only ever opens the next week
	other := newTestPlanner(t, store, 0)
	_, err = other.Week(ctx, "1", "2024-01-08")
	require.NoError(t, err)

	shrink := 2
	_, err = other.UpdateComponent(ctx, "1", c.ID, ComponentUpdate{TotalServings: &shrink})
	assert.ErrorIs(t, err, ledger.ErrInvariantViolation)

	exact := 3
	updated, err := other.UpdateComponent(ctx, "1", c.ID, ComponentUpdate{TotalServings: &exact})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.AvailableServings)

	grow := 5
	updated, err = other.UpdateComponent(ctx, "1", c.ID, ComponentUpdate{TotalServings: &grow})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.AvailableServings)

	components, err := store.ListComponents(ctx, "1")
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, 5, components[0].TotalServings)
	assert.Equal(t, 2, components[0].AvailableServings)
}

func TestUpdateComponent(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t, memstore.New(), 0)

	c, err := p.CreateComponent(ctx, "1", "Rice", 2)
	require.NoError(t, err)
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	_, _, err = p.Assign(ctx, "1", view.Slots[0].ID, "Rice")
	require.NoError(t, err)

	name, total := "Brown rice", 5
	updated, err := p.UpdateComponent(ctx, "1", c.ID, ComponentUpdate{Name: &name, TotalServings: &total})
	require.NoError(t, err)
	assert.Equal(t, "Brown rice", updated.Name)
	assert.Equal(t, 5, updated.TotalServings)
	assert.Equal(t, 4, updated.AvailableServings)

	view, err = p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brown rice"}, view.Slots[0].Components)

	_, err = p.UpdateComponent(ctx, "1", "missing", ComponentUpdate{Name: &name})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDropFavoritePartial(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := newTestPlanner(t, store, 0)

	for name, total := range map[string]int{"Rice": 1, "Beans": 0, "Salsa verde": 2} {
		_, err := p.CreateComponent(ctx, "1", name, total)
		require.NoError(t, err)
	}
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	slotID := view.Slots[1].ID

	_, err = store.UpsertFavorite(ctx, ledger.FavoriteMeal{
		ID: "f1", UserID: "1", Name: "Burrito bowl",
		Components: []string{"Rice", "Beans", "Salsa verde"}, Toppings: []string{"Lime"},
	})
	require.NoError(t, err)

	slot, result, err := p.DropFavorite(ctx, "1", slotID, "f1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rice", "Salsa verde"}, result.Assigned)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "Beans", result.Skipped[0].Name)
	assert.Equal(t, "Burrito bowl", slot.Name)
	assert.Equal(t, []string{"Rice", "Salsa verde"}, slot.Components)
	assert.Equal(t, []string{"Lime"}, slot.Toppings)

	_, _, err = p.DropFavorite(ctx, "1", slotID, "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	saved, err := p.SaveFavorite(ctx, "1", slotID, "")
	require.NoError(t, err)
	assert.Equal(t, "Burrito bowl", saved.Name)
	assert.Equal(t, []string{"Rice", "Salsa verde"}, saved.Components)

	favs, err := p.Favorites(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, favs, 2)
	require.NoError(t, p.DeleteFavorite(ctx, "1", saved.ID))
}

func TestSlotEditsAndClear(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t, memstore.New(), 0)

	_, err := p.CreateComponent(ctx, "1", "Eggs", 3)
	require.NoError(t, err)
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	slotID := view.Slots[0].ID

	_, _, err = p.Assign(ctx, "1", slotID, "Eggs")
	require.NoError(t, err)
	_, _, err = p.Assign(ctx, "1", slotID, "Eggs")
	require.NoError(t, err)
	_, err = p.AddTopping(ctx, "1", slotID, "Hot sauce")
	require.NoError(t, err)
	slot, err := p.UpdateSlot(ctx, "1", slotID, SlotUpdate{Name: " Breakfast tacos ", Notes: "warm tortillas", Favorite: true})
	require.NoError(t, err)
	assert.Equal(t, "Breakfast tacos", slot.Name)
	assert.True(t, slot.Favorite)

	slot, err = p.RemoveTopping(ctx, "1", slotID, 0)
	require.NoError(t, err)
	assert.Empty(t, slot.Toppings)
	_, err = p.RemoveTopping(ctx, "1", slotID, 0)
	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)

	slot, restores, err := p.ClearSlot(ctx, "1", slotID)
	require.NoError(t, err)
	assert.Len(t, restores, 2)
	assert.True(t, slot.Empty())

	components, err := p.Components(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, components[0].AvailableServings)
}

func TestActivityIsReported(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t, memstore.New(), 0)
	var mu sync.Mutex
	var actions []string
	p.OnActivity = func(ctx context.Context, userID, action, slotID, message string) {
		mu.Lock()
		defer mu.Unlock()
		actions = append(actions, action)
	}

	_, err := p.CreateComponent(ctx, "1", "Tofu", 1)
	require.NoError(t, err)
	view, err := p.Week(ctx, "1", testMonday)
	require.NoError(t, err)
	_, _, err = p.Assign(ctx, "1", view.Slots[0].ID, "Tofu")
	require.NoError(t, err)
	_, _, err = p.Assign(ctx, "1", view.Slots[0].ID, "Tofu")
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"component", "assign"}, actions)
}
