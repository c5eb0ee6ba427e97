package memstore

import (
	"context"
	"testing"

	"mealprep/backend/library/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentVersioning(t *testing.T) {
	ctx := context.Background()
	s := New()

	saved, err := s.UpsertComponent(ctx, ledger.Component{ID: "c1", UserID: "u1", Name: "Rice", TotalServings: 2, AvailableServings: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	_, err = s.UpsertComponent(ctx, ledger.Component{ID: "c1", UserID: "u1", Name: "Rice"})
	assert.ErrorIs(t, err, ledger.ErrConcurrentModification)

	saved.AvailableServings = 1
	saved, err = s.UpsertComponent(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	_, err = s.UpsertComponent(ctx, ledger.Component{ID: "c1", UserID: "u2", Version: 2})
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, s.DeleteComponent(ctx, "u1", "c1"))
	_, err = s.UpsertComponent(ctx, saved)
	assert.ErrorIs(t, err, ledger.ErrConcurrentModification)
}

func TestListsAreOrderedAndScoped(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"b", "a", "c"} {
		_, err := s.UpsertComponent(ctx, ledger.Component{ID: id, UserID: "u1", Name: id})
		require.NoError(t, err)
	}
	_, err := s.UpsertComponent(ctx, ledger.Component{ID: "x", UserID: "u2", Name: "x"})
	require.NoError(t, err)

	list, err := s.ListComponents(ctx, "u1")
	require.NoError(t, err)
	var names []string
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestSlotsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()
	slot := ledger.MealSlot{ID: "s1", UserID: "u1", Date: "2024-03-04", MealType: ledger.MealDinner, Components: []string{"Rice"}}
	_, err := s.UpsertMealSlot(ctx, slot)
	require.NoError(t, err)
	slot.Components[0] = "Beans"

	slots, err := s.ListMealSlots(ctx, "u1", "2024-03-04", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, []string{"Rice"}, slots[0].Components)
	slots[0].Components[0] = "Tofu"

	again, err := s.ListMealSlots(ctx, "u1", "2024-03-01", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rice"}, again[0].Components)

	none, err := s.ListMealSlots(ctx, "u1", "2024-03-05", "2024-03-10")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.UpsertFavorite(ctx, ledger.FavoriteMeal{ID: "f1", UserID: "u1", Name: "Bowl"})
	require.NoError(t, err)
	_, err = s.UpsertFavorite(ctx, ledger.FavoriteMeal{ID: "f1", UserID: "u1", Name: "Big bowl"})
	require.NoError(t, err)

	favs, err := s.ListFavorites(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Big bowl", favs[0].Name)

	assert.ErrorIs(t, s.DeleteFavorite(ctx, "u2", "f1"), ledger.ErrNotFound)
	require.NoError(t, s.DeleteFavorite(ctx, "u1", "f1"))
}
