package ledger

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshot() Snapshot {
	return Snapshot{
		UserID: "u1",
		Components: []Component{
			{ID: "c1", UserID: "u1", Name: "Chicken", TotalServings: 4, AvailableServings: 4},
			{ID: "c2", UserID: "u1", Name: "Rice", TotalServings: 2, AvailableServings: 2},
			{ID: "c3", UserID: "u1", Name: "Broccoli", TotalServings: 1, AvailableServings: 0},
		},
		Slots: []MealSlot{
			{ID: "slotA", UserID: "u1", Date: "2026-10-12", MealType: MealLunch},
			{ID: "slotB", UserID: "u1", Date: "2026-10-12", MealType: MealDinner},
		},
	}
}

func TestAssignMoveRemoveScenario(t *testing.T) {
	snap := newSnapshot()

	snap, err := snap.AssignComponent("Chicken", "slotA")
	require.NoError(t, err)
	chicken, _ := snap.Component("Chicken")
	assert.Equal(t, 3, chicken.AvailableServings)
	slotA, _ := snap.Slot("slotA")
	assert.Equal(t, []string{"Chicken"}, slotA.Components)

	snap, err = snap.MoveComponent("slotA", 0, "Chicken", "slotB")
	require.NoError(t, err)
	chicken, _ = snap.Component("Chicken")
	assert.Equal(t, 3, chicken.AvailableServings)
	slotA, _ = snap.Slot("slotA")
	slotB, _ := snap.Slot("slotB")
	assert.Empty(t, slotA.Components)
	assert.Equal(t, []string{"Chicken"}, slotB.Components)

	snap, restore, err := snap.RemoveComponent("slotB", 0, "Chicken")
	require.NoError(t, err)
	assert.False(t, restore.Clamped)
	assert.Equal(t, 4, restore.Available)
	chicken, _ = snap.Component("Chicken")
	assert.Equal(t, 4, chicken.AvailableServings)
	slotB, _ = snap.Slot("slotB")
	assert.Empty(t, slotB.Components)
	assert.NoError(t, snap.Check())
}

func TestAssignErrorsLeaveSnapshotUntouched(t *testing.T) {
	snap := newSnapshot()

	_, err := snap.AssignComponent("Broccoli", "slotA")
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = snap.AssignComponent("Tofu", "slotA")
	assert.ErrorIs(t, err, ErrComponentNotFound)
	assert.NotErrorIs(t, err, ErrSlotNotFound)

	_, err = snap.AssignComponent("Chicken", "missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	chicken, _ := snap.Component("Chicken")
	assert.Equal(t, 4, chicken.AvailableServings)
	slotA, _ := snap.Slot("slotA")
	assert.Empty(t, slotA.Components)
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	snap := newSnapshot()
	next, err := snap.AssignComponent("Rice", "slotA")
	require.NoError(t, err)

	rice, _ := snap.Component("Rice")
	assert.Equal(t, 2, rice.AvailableServings)
	slotA, _ := snap.Slot("slotA")
	assert.Empty(t, slotA.Components)

	rice, _ = next.Component("Rice")
	assert.Equal(t, 1, rice.AvailableServings)
}

func TestStaleIndex(t *testing.T) {
	snap := newSnapshot()
	snap, err := snap.AssignComponent("Chicken", "slotA")
	require.NoError(t, err)
	snap, err = snap.AssignComponent("Rice", "slotA")
	require.NoError(t, err)

	_, err = snap.MoveComponent("slotA", 5, "Chicken", "slotB")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	// index 1 holds Rice, not Chicken
	_, _, err = snap.RemoveComponent("slotA", 1, "Chicken")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, err = snap.RemoveComponent("slotA", -1, "Chicken")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = snap.MoveComponent("slotA", 0, "Chicken", "nowhere")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDuplicateNamesRemovedByIndex(t *testing.T) {
	snap := newSnapshot()
	var err error
	for i := 0; i < 2; i++ {
		snap, err = snap.AssignComponent("Chicken", "slotA")
		require.NoError(t, err)
	}
	snap, err = snap.AssignComponent("Rice", "slotA")
	require.NoError(t, err)

	snap, _, err = snap.RemoveComponent("slotA", 1, "Chicken")
	require.NoError(t, err)
	slotA, _ := snap.Slot("slotA")
	assert.Equal(t, []string{"Chicken", "Rice"}, slotA.Components)
}

func TestMoveWithinSameSlot(t *testing.T) {
	snap := newSnapshot()
	snap, _ = snap.AssignComponent("Chicken", "slotA")
	snap, _ = snap.AssignComponent("Rice", "slotA")

	snap, err := snap.MoveComponent("slotA", 0, "Chicken", "slotA")
	require.NoError(t, err)
	slotA, _ := snap.Slot("slotA")
	assert.ElementsMatch(t, []string{"Chicken", "Rice"}, slotA.Components)
	chicken, _ := snap.Component("Chicken")
	assert.Equal(t, 3, chicken.AvailableServings)
}

func TestRemoveClampsAndReports(t *testing.T) {
	snap := newSnapshot()
	snap, _ = snap.AssignComponent("Rice", "slotA")
	snap, _ = snap.AssignComponent("Rice", "slotA")

	// total shrinks below what is already assigned
	snap, err := snap.AdjustTotal("Rice", 1)
	require.NoError(t, err)
	rice, _ := snap.Component("Rice")
	assert.Equal(t, 0, rice.AvailableServings)
	slotA, _ := snap.Slot("slotA")
	assert.Len(t, slotA.Components, 2)

	snap, restore, err := snap.RemoveComponent("slotA", 0, "Rice")
	require.NoError(t, err)
	assert.False(t, restore.Clamped)
	snap, restore, err = snap.RemoveComponent("slotA", 0, "Rice")
	require.NoError(t, err)
	assert.True(t, restore.Clamped)
	rice, _ = snap.Component("Rice")
	assert.Equal(t, 1, rice.AvailableServings)
	assert.Equal(t, 1, rice.TotalServings)
}

func TestRemoveDeletedComponent(t *testing.T) {
	snap := newSnapshot()
	snap, _ = snap.AssignComponent("Rice", "slotA")
	snap.Components = snap.Components[:1]

	_, _, err := snap.RemoveComponent("slotA", 0, "Rice")
	assert.ErrorIs(t, err, ErrComponentNotFound)
}

func TestCorruptCounterIsInvariantViolation(t *testing.T) {
	snap := newSnapshot()
	snap.Components[0].AvailableServings = 9

	_, err := snap.AssignComponent("Chicken", "slotA")
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.ErrorIs(t, snap.Check(), ErrInvariantViolation)

	snap = newSnapshot()
	snap.Components[1].AvailableServings = -1
	assert.ErrorIs(t, snap.Check(), ErrInvariantViolation)
}

func TestFavoriteDropPartial(t *testing.T) {
	snap := newSnapshot()
	fav := FavoriteMeal{
		Name:       "Chicken bowl",
		Notes:      "extra sauce",
		Components: []string{"Chicken", "Broccoli", "Rice"},
		Toppings:   []string{"sesame"},
	}
	snap, err := snap.AddTopping("slotA", "sesame")
	require.NoError(t, err)

	snap, result, err := snap.ApplyFavoriteMealDrop(fav, "slotA")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chicken", "Rice"}, result.Assigned)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "Broccoli", result.Skipped[0].Name)

	slotA, _ := snap.Slot("slotA")
	assert.Equal(t, []string{"Chicken", "Rice"}, slotA.Components)
	assert.Equal(t, []string{"sesame"}, slotA.Toppings)
	assert.Equal(t, "Chicken bowl", slotA.Name)
	assert.Equal(t, "extra sauce", slotA.Notes)

	rice, _ := snap.Component("Rice")
	assert.Equal(t, 1, rice.AvailableServings)
}

func TestFavoriteDropUnknownSlot(t *testing.T) {
	snap := newSnapshot()
	_, _, err := snap.ApplyFavoriteMealDrop(FavoriteMeal{Components: []string{"Rice"}}, "nope")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestToppings(t *testing.T) {
	snap := newSnapshot()
	snap, _ = snap.AddTopping("slotA", "salsa")
	snap, _ = snap.AddTopping("slotA", "  ")
	snap, _ = snap.AddTopping("slotA", "cheese")

	snap, err := snap.RemoveTopping("slotA", 0)
	require.NoError(t, err)
	slotA, _ := snap.Slot("slotA")
	assert.Equal(t, []string{"cheese"}, slotA.Toppings)

	_, err = snap.RemoveTopping("slotA", 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestClearSlotRestoresInventory(t *testing.T) {
	snap := newSnapshot()
	snap, _ = snap.AssignComponent("Chicken", "slotA")
	snap, _ = snap.AssignComponent("Chicken", "slotA")
	snap, _ = snap.AddTopping("slotA", "lime")
	snap, _ = snap.Annotate("slotA", "Tacos", "friday", true)

	snap, restores, err := snap.ClearSlot("slotA")
	require.NoError(t, err)
	assert.Len(t, restores, 2)
	slotA, _ := snap.Slot("slotA")
	assert.True(t, slotA.Empty())
	assert.False(t, slotA.Favorite)
	chicken, _ := snap.Component("Chicken")
	assert.Equal(t, 4, chicken.AvailableServings)
}

func TestComponentLifecycle(t *testing.T) {
	snap := newSnapshot()
	snap, err := snap.AddComponent(Component{ID: "c4", Name: " Beans ", TotalServings: 3})
	require.NoError(t, err)
	beans, ok := snap.Component("Beans")
	require.True(t, ok)
	assert.Equal(t, 3, beans.AvailableServings)

	_, err = snap.AddComponent(Component{Name: "Beans"})
	assert.ErrorIs(t, err, ErrInvariantViolation)

	snap, _ = snap.AssignComponent("Beans", "slotA")
	snap, _ = snap.AssignComponent("Beans", "slotB")
	snap, err = snap.RenameComponent("Beans", "Black beans")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Usage("Black beans"))

	snap, err = snap.AdjustTotal("Black beans", 6)
	require.NoError(t, err)
	beans, _ = snap.Component("Black beans")
	assert.Equal(t, 4, beans.AvailableServings)

	snap, removed, detached, err := snap.DeleteComponent("Black beans")
	require.NoError(t, err)
	assert.Equal(t, "c4", removed.ID)
	assert.Equal(t, 2, detached)
	assert.Equal(t, 0, snap.Usage("Black beans"))
	assert.NoError(t, snap.Check())
}

func TestAdjustTotalShrinkThenGrow(t *testing.T) {
	snap := newSnapshot()
	for _, slotID := range []string{"slotA", "slotA", "slotB", "slotB"} {
		var err error
		snap, err = snap.AssignComponent("Chicken", slotID)
		require.NoError(t, err)
	}

	_, err := snap.AdjustTotal("Chicken", 2)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	chicken, _ := snap.Component("Chicken")
	assert.Equal(t, 4, chicken.TotalServings)
	assert.Equal(t, 0, chicken.AvailableServings)

	snap, err = snap.AdjustTotal("Chicken", 4)
	require.NoError(t, err)
	chicken, _ = snap.Component("Chicken")
	assert.Equal(t, 0, chicken.AvailableServings)
	_, err = snap.AssignComponent("Chicken", "slotA")
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	snap, err = snap.AdjustTotal("Chicken", 6)
	require.NoError(t, err)
	chicken, _ = snap.Component("Chicken")
	assert.Equal(t, 2, chicken.AvailableServings)
	snap, err = snap.AssignComponent("Chicken", "slotA")
	require.NoError(t, err)
	snap, err = snap.AssignComponent("Chicken", "slotB")
	require.NoError(t, err)
	_, err = snap.AssignComponent("Chicken", "slotB")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 6, snap.Usage("Chicken"))

	_, err = snap.AdjustTotal("Tofu", 3)
	assert.ErrorIs(t, err, ErrComponentNotFound)
	_, err = snap.AdjustTotal("Chicken", -1)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.NoError(t, snap.Check())
}

// A component whose counter drifted is repaired by re-logging its total.
func TestAdjustTotalRecountsAvailable(t *testing.T) {
	snap := newSnapshot()
	snap, err := snap.AdjustTotal("Broccoli", 1)
	require.NoError(t, err)
	broccoli, _ := snap.Component("Broccoli")
	assert.Equal(t, 1, broccoli.AvailableServings)
}

// Random assign/remove/move/adjust sequences keep available + usage == total.
func TestConservationProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	snap := newSnapshot()
	slots := []string{"slotA", "slotB"}
	names := []string{"Chicken", "Rice", "Broccoli"}
	totals := map[string]int{"Chicken": 4, "Rice": 2, "Broccoli": 1}
	// Broccoli starts with one serving already out of the ledger's view
	offset := map[string]int{"Broccoli": 1}

	for step := 0; step < 500; step++ {
		before := snap
		switch rng.Intn(4) {
		case 0:
			next, err := snap.AssignComponent(names[rng.Intn(len(names))], slots[rng.Intn(len(slots))])
			if err == nil {
				snap = next
			}
		case 1:
			slot, _ := snap.Slot(slots[rng.Intn(len(slots))])
			if len(slot.Components) > 0 {
				idx := rng.Intn(len(slot.Components))
				next, _, err := snap.RemoveComponent(slot.ID, idx, slot.Components[idx])
				require.NoError(t, err)
				snap = next
			}
		case 2:
			slot, _ := snap.Slot(slots[rng.Intn(len(slots))])
			if len(slot.Components) > 0 {
				idx := rng.Intn(len(slot.Components))
				next, err := snap.MoveComponent(slot.ID, idx, slot.Components[idx], slots[rng.Intn(len(slots))])
				require.NoError(t, err)
				for _, c := range before.Components {
					after, _ := next.Component(c.Name)
					assert.Equal(t, c.AvailableServings, after.AvailableServings)
				}
				snap = next
			}
		case 3:
			name := names[rng.Intn(len(names))]
			total := rng.Intn(7)
			next, err := snap.AdjustTotal(name, total)
			if err != nil {
				require.ErrorIs(t, err, ErrInvariantViolation)
				assert.Less(t, total, snap.Usage(name))
				break
			}
			snap = next
			totals[name] = total
			offset[name] = 0
		}
		for _, name := range names {
			c, _ := snap.Component(name)
			assert.GreaterOrEqual(t, c.AvailableServings, 0)
			assert.LessOrEqual(t, c.AvailableServings, c.TotalServings)
			assert.Equal(t, totals[name], c.AvailableServings+snap.Usage(name)+offset[name], "step %d %s", step, name)
		}
	}
	assert.NoError(t, snap.Check())
}
