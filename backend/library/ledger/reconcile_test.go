package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileOnlyChanged(t *testing.T) {
	original := newSnapshot()
	working, err := original.AssignComponent("Chicken", "slotA")
	require.NoError(t, err)

	changes := Reconcile(original, working)
	require.Len(t, changes.Components, 1)
	assert.Equal(t, "c1", changes.Components[0].ID)
	require.Len(t, changes.Slots, 1)
	assert.Equal(t, "slotA", changes.Slots[0].ID)
}

func TestReconcileIdempotent(t *testing.T) {
	original := newSnapshot()
	working, _ := original.AssignComponent("Rice", "slotB")

	first := Reconcile(original, working)
	assert.False(t, first.Empty())

	// once persisted, the working snapshot becomes the baseline
	second := Reconcile(working, working)
	assert.True(t, second.Empty())
}

func TestReconcileIgnoresVersionAndNilLists(t *testing.T) {
	original := newSnapshot()
	working := original.Clone()
	working.Components[0].Version = 7
	working.Slots[0].Components = []string{}
	working.Slots[0].Toppings = []string{}

	assert.True(t, Reconcile(original, working).Empty())
}

func TestReconcileNewEntities(t *testing.T) {
	original := newSnapshot()
	working, err := original.AddComponent(Component{ID: "c9", Name: "Eggs", TotalServings: 6})
	require.NoError(t, err)
	working.Slots = append(working.Slots, MealSlot{ID: "slotC", Date: "2026-10-13", MealType: MealBreakfast})

	changes := Reconcile(original, working)
	require.Len(t, changes.Components, 1)
	assert.Equal(t, "Eggs", changes.Components[0].Name)
	require.Len(t, changes.Slots, 1)
	assert.Equal(t, "slotC", changes.Slots[0].ID)
}

func TestReconcileKeepsLoadedVersion(t *testing.T) {
	original := newSnapshot()
	original.Components[0].Version = 3
	working, _ := original.AssignComponent("Chicken", "slotA")

	changes := Reconcile(original, working)
	require.Len(t, changes.Components, 1)
	assert.Equal(t, int64(3), changes.Components[0].Version)
}
