package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mealprep/backend/library/ledger"

	"github.com/google/uuid"
)

// ErrFavoriteNotFound matches ledger.ErrNotFound too.
var ErrFavoriteNotFound = fmt.Errorf("favorite %w", ledger.ErrNotFound)

func (p *Planner) Favorites(ctx context.Context, userID string) ([]ledger.FavoriteMeal, error) {
	favs, err := p.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	if favs == nil {
		favs = []ledger.FavoriteMeal{}
	}
	return favs, nil
}

// SaveFavorite stores the content of a slot as a favorite meal. An empty
// name falls back to the slot name.
func (p *Planner) SaveFavorite(ctx context.Context, userID, slotID, name string) (ledger.FavoriteMeal, error) {
	ws, err := p.acquire(ctx, userID)
	if err != nil {
		return ledger.FavoriteMeal{}, err
	}
	slot, ok := ws.working.Clone().Slot(slotID)
	if rerr := p.release(ws); rerr != nil {
		return ledger.FavoriteMeal{}, rerr
	}
	if !ok {
		return ledger.FavoriteMeal{}, fmt.Errorf("%q: %w", slotID, ledger.ErrSlotNotFound)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = slot.Name
	}
	if name == "" {
		return ledger.FavoriteMeal{}, fmt.Errorf("favorite name is empty: %w", ledger.ErrInvariantViolation)
	}
	return p.store.UpsertFavorite(ctx, ledger.FavoriteMeal{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		Notes:      slot.Notes,
		Components: slot.Components,
		Toppings:   slot.Toppings,
	})
}

func (p *Planner) DeleteFavorite(ctx context.Context, userID, id string) error {
	if err := p.store.DeleteFavorite(ctx, userID, id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("%q: %w", id, ErrFavoriteNotFound)
		}
		return err
	}
	return nil
}

func (p *Planner) favorite(ctx context.Context, userID, id string) (ledger.FavoriteMeal, error) {
	favs, err := p.store.ListFavorites(ctx, userID)
	if err != nil {
		return ledger.FavoriteMeal{}, err
	}
	for _, fav := range favs {
		if fav.ID == id {
			return fav, nil
		}
	}
	return ledger.FavoriteMeal{}, fmt.Errorf("%q: %w", id, ErrFavoriteNotFound)
}

// DropFavorite assigns a favorite meal to a slot; components that cannot be
// assigned are reported in the result instead of failing the drop.
func (p *Planner) DropFavorite(ctx context.Context, userID, slotID, favoriteID string) (ledger.MealSlot, ledger.DropResult, error) {
	fav, err := p.favorite(ctx, userID, favoriteID)
	if err != nil {
		return ledger.MealSlot{}, ledger.DropResult{}, err
	}
	var slot ledger.MealSlot
	var result ledger.DropResult
	err = p.update(ctx, userID, func(ws *workingSet) error {
		next, r, err := ws.working.ApplyFavoriteMealDrop(fav, slotID)
		if err != nil {
			return err
		}
		ws.working = next
		slot = slotOf(next, slotID)
		result = r
		return nil
	})
	if err != nil {
		return ledger.MealSlot{}, ledger.DropResult{}, err
	}
	p.activity(ctx, userID, "favorite_drop", slotID,
		fmt.Sprintf("dropped %s: %d assigned, %d skipped", fav.Name, len(result.Assigned), len(result.Skipped)))
	return slot, result, nil
}
