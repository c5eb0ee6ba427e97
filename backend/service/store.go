package service

import (
	"context"

	"mealprep/backend/library/ledger"
)

// ComponentStore persists components. Upsert compares the stored version with
// the incoming one and fails with ledger.ErrConcurrentModification on mismatch;
// a new component carries version 0.
type ComponentStore interface {
	ListComponents(ctx context.Context, userID string) ([]ledger.Component, error)
	UpsertComponent(ctx context.Context, c ledger.Component) (ledger.Component, error)
	DeleteComponent(ctx context.Context, userID, id string) error
}

// MealSlotStore persists meal slots. from and to are inclusive YYYY-MM-DD dates.
type MealSlotStore interface {
	ListMealSlots(ctx context.Context, userID, from, to string) ([]ledger.MealSlot, error)
	UpsertMealSlot(ctx context.Context, s ledger.MealSlot) (ledger.MealSlot, error)
	DeleteMealSlot(ctx context.Context, userID, id string) error
}

// FavoriteStore persists favorite meals. Favorites are not versioned.
type FavoriteStore interface {
	ListFavorites(ctx context.Context, userID string) ([]ledger.FavoriteMeal, error)
	UpsertFavorite(ctx context.Context, f ledger.FavoriteMeal) (ledger.FavoriteMeal, error)
	DeleteFavorite(ctx context.Context, userID, id string) error
}

// PlanStore is everything the planner needs from a backend.
type PlanStore interface {
	ComponentStore
	MealSlotStore
	FavoriteStore
}
