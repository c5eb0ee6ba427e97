// Package memstore is an in-process plan store. It loses everything on exit
// and is meant for tests and STORE_DRIVER=memory.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mealprep/backend/library/ledger"
)

type Store struct {
	mu         sync.RWMutex
	seq        int64
	components map[string]record[ledger.Component]
	slots      map[string]record[ledger.MealSlot]
	favorites  map[string]record[ledger.FavoriteMeal]
}

// record keeps insertion order so lists come back stable.
type record[T any] struct {
	seq   int64
	value T
}

func New() *Store {
	return &Store{
		components: make(map[string]record[ledger.Component]),
		slots:      make(map[string]record[ledger.MealSlot]),
		favorites:  make(map[string]record[ledger.FavoriteMeal]),
	}
}

func (s *Store) ListComponents(ctx context.Context, userID string) ([]ledger.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.components, func(c ledger.Component) bool { return c.UserID == userID }), nil
}

func (s *Store) UpsertComponent(ctx context.Context, c ledger.Component) (ledger.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.components[c.ID]
	if err := checkVersion("component", c.ID, ok, rec.value.Version, c.Version); err != nil {
		return ledger.Component{}, err
	}
	if ok && rec.value.UserID != c.UserID {
		return ledger.Component{}, fmt.Errorf("%q: %w", c.ID, ledger.ErrComponentNotFound)
	}
	c.Version++
	s.components[c.ID] = nextRecord(&s.seq, rec, ok, c)
	return c, nil
}

func (s *Store) DeleteComponent(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.components[id]
	if !ok || rec.value.UserID != userID {
		return fmt.Errorf("%q: %w", id, ledger.ErrComponentNotFound)
	}
	delete(s.components, id)
	return nil
}

func (s *Store) ListMealSlots(ctx context.Context, userID, from, to string) ([]ledger.MealSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := collect(s.slots, func(m ledger.MealSlot) bool {
		return m.UserID == userID && m.Date >= from && m.Date <= to
	})
	for i := range slots {
		slots[i] = copySlot(slots[i])
	}
	return slots, nil
}

func (s *Store) UpsertMealSlot(ctx context.Context, m ledger.MealSlot) (ledger.MealSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.slots[m.ID]
	if err := checkVersion("slot", m.ID, ok, rec.value.Version, m.Version); err != nil {
		return ledger.MealSlot{}, err
	}
	if ok && rec.value.UserID != m.UserID {
		return ledger.MealSlot{}, fmt.Errorf("%q: %w", m.ID, ledger.ErrSlotNotFound)
	}
	m = copySlot(m)
	m.Version++
	s.slots[m.ID] = nextRecord(&s.seq, rec, ok, m)
	return copySlot(m), nil
}

func (s *Store) DeleteMealSlot(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.slots[id]
	if !ok || rec.value.UserID != userID {
		return fmt.Errorf("%q: %w", id, ledger.ErrSlotNotFound)
	}
	delete(s.slots, id)
	return nil
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]ledger.FavoriteMeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	favs := collect(s.favorites, func(f ledger.FavoriteMeal) bool { return f.UserID == userID })
	for i := range favs {
		favs[i] = copyFavorite(favs[i])
	}
	return favs, nil
}

func (s *Store) UpsertFavorite(ctx context.Context, f ledger.FavoriteMeal) (ledger.FavoriteMeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.favorites[f.ID]
	if ok && rec.value.UserID != f.UserID {
		return ledger.FavoriteMeal{}, fmt.Errorf("favorite %q: %w", f.ID, ledger.ErrNotFound)
	}
	f = copyFavorite(f)
	s.favorites[f.ID] = nextRecord(&s.seq, rec, ok, f)
	return copyFavorite(f), nil
}

func (s *Store) DeleteFavorite(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.favorites[id]
	if !ok || rec.value.UserID != userID {
		return fmt.Errorf("favorite %q: %w", id, ledger.ErrNotFound)
	}
	delete(s.favorites, id)
	return nil
}

func checkVersion(kind, id string, exists bool, stored, incoming int64) error {
	if !exists {
		if incoming != 0 {
			return fmt.Errorf("%s %q was deleted: %w", kind, id, ledger.ErrConcurrentModification)
		}
		return nil
	}
	if stored != incoming {
		return fmt.Errorf("%s %q at version %d, have %d: %w", kind, id, stored, incoming, ledger.ErrConcurrentModification)
	}
	return nil
}

func nextRecord[T any](seq *int64, rec record[T], exists bool, v T) record[T] {
	if !exists {
		*seq++
		rec.seq = *seq
	}
	rec.value = v
	return rec
}

func collect[T any](m map[string]record[T], keep func(T) bool) []T {
	recs := make([]record[T], 0, len(m))
	for _, rec := range m {
		if keep(rec.value) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.value)
	}
	return out
}

func copySlot(m ledger.MealSlot) ledger.MealSlot {
	m.Components = copyList(m.Components)
	m.Toppings = copyList(m.Toppings)
	return m
}

func copyFavorite(f ledger.FavoriteMeal) ledger.FavoriteMeal {
	f.Components = copyList(f.Components)
	f.Toppings = copyList(f.Toppings)
	return f
}

func copyList(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
