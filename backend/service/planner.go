package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mealprep/backend/common"
	"mealprep/backend/library/ledger"
	"mealprep/backend/library/writeback"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidDate is returned for a week start that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

const (
	allDatesFrom = "0000-01-01"
	allDatesTo   = "9999-12-31"
	flushWorkers = 8
)

// ActivityFunc receives a short description of every successful plan mutation.
type ActivityFunc func(ctx context.Context, userID, action, slotID, message string)

// WeekView is the 7x3 grid of a week plus the user's inventory.
type WeekView struct {
	Start      string             `json:"start"`
	End        string             `json:"end"`
	Dates      []string           `json:"dates"`
	MealTypes  []string           `json:"meal_types"`
	Components []ledger.Component `json:"components"`
	Slots      []ledger.MealSlot  `json:"slots"`
}

// workingSet is one user's loaded plan. baseline mirrors what the store holds,
// working carries the edits that are not written back yet.
type workingSet struct {
	mu      sync.Mutex
	flushMu sync.Mutex

	userID   string
	loaded   bool
	stale    bool
	gen      int64
	dirty    bool
	dates    map[string]bool
	baseline ledger.Snapshot
	working  ledger.Snapshot
	// component ids removed from working but not yet from the store
	deleted []string
}

// Planner applies ledger operations to per-user working sets and writes the
// differences back through a debounced flush.
type Planner struct {
	store      PlanStore
	writer     *writeback.Debouncer
	OnActivity ActivityFunc

	mu   sync.Mutex
	sets map[string]*workingSet
}

func NewPlanner(store PlanStore, flushDelay time.Duration) *Planner {
	p := &Planner{
		store: store,
		sets:  make(map[string]*workingSet),
	}
	p.writer = writeback.New(flushDelay, p.flush)
	p.writer.OnError = func(userID string, err error) {
		common.SysError("plan write-back failed", zap.String("user_id", userID), zap.Error(err))
	}
	return p
}

var (
	plannerMu      sync.RWMutex
	defaultPlanner *Planner
)

// SetPlanner installs the planner used by the HTTP handlers.
func SetPlanner(p *Planner) {
	plannerMu.Lock()
	defer plannerMu.Unlock()
	defaultPlanner = p
}

func GetPlanner() *Planner {
	plannerMu.RLock()
	defer plannerMu.RUnlock()
	return defaultPlanner
}

// SlotID derives the id of a user's slot from its date and meal type, so
// planners that create the same missing slot agree on its identity.
func SlotID(userID, date, mealType string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+"/"+date+"/"+mealType)).String()
}

// WeekDates returns the seven dates starting at start. An empty start means
// the Monday of the current week.
func WeekDates(start string) ([]string, error) {
	var day time.Time
	if start == "" {
		now := time.Now()
		offset := (int(now.Weekday()) + 6) % 7
		day = time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, time.UTC)
	} else {
		var err error
		day, err = time.Parse(common.DateLayout, start)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", start, ErrInvalidDate)
		}
	}
	dates := make([]string, common.DaysPerWeek)
	for i := range dates {
		dates[i] = day.AddDate(0, 0, i).Format(common.DateLayout)
	}
	return dates, nil
}

// Week loads the week starting at start, creating any missing slot.
func (p *Planner) Week(ctx context.Context, userID, start string) (*WeekView, error) {
	dates, err := WeekDates(start)
	if err != nil {
		return nil, err
	}
	ws, err := p.acquire(ctx, userID, dates...)
	if err != nil {
		return nil, err
	}
	view := &WeekView{
		Start:      dates[0],
		End:        dates[len(dates)-1],
		Dates:      dates,
		MealTypes:  ledger.MealTypes,
		Components: ws.working.Clone().Components,
		Slots:      weekSlots(ws.working, dates),
	}
	if view.Components == nil {
		view.Components = []ledger.Component{}
	}
	return view, p.release(ws)
}

func weekSlots(s ledger.Snapshot, dates []string) []ledger.MealSlot {
	out := make([]ledger.MealSlot, 0, len(dates)*len(ledger.MealTypes))
	for _, date := range dates {
		for _, mealType := range ledger.MealTypes {
			if slot, ok := findSlot(s, date, mealType); ok {
				out = append(out, slot)
			}
		}
	}
	return out
}

func findSlot(s ledger.Snapshot, date, mealType string) (ledger.MealSlot, bool) {
	for _, slot := range s.Slots {
		if slot.Date == date && slot.MealType == mealType {
			return slot, true
		}
	}
	return ledger.MealSlot{}, false
}

// acquire returns the user's working set locked, loaded and holding dates.
// Every acquire must be paired with release.
func (p *Planner) acquire(ctx context.Context, userID string, dates ...string) (*workingSet, error) {
	p.mu.Lock()
	ws, ok := p.sets[userID]
	if !ok {
		ws = &workingSet{userID: userID, dates: make(map[string]bool)}
		p.sets[userID] = ws
	}
	p.mu.Unlock()

	ws.mu.Lock()
	if !ws.loaded || ws.stale {
		if err := p.reload(ctx, ws); err != nil {
			ws.mu.Unlock()
			return nil, err
		}
	}
	if err := p.loadDates(ctx, ws, dates); err != nil {
		ws.mu.Unlock()
		return nil, err
	}
	return ws, nil
}

// release unlocks ws and schedules a write-back when it changed.
func (p *Planner) release(ws *workingSet) error {
	dirty := ws.dirty
	ws.dirty = false
	ws.mu.Unlock()
	if dirty {
		return p.writer.Mark(ws.userID)
	}
	return nil
}

// update runs fn on the locked working set. fn replaces ws.working on success.
func (p *Planner) update(ctx context.Context, userID string, fn func(ws *workingSet) error) error {
	ws, err := p.acquire(ctx, userID)
	if err != nil {
		return err
	}
	if err := fn(ws); err != nil {
		if rerr := p.release(ws); rerr != nil {
			common.SysError("plan write-back failed", zap.String("user_id", userID), zap.Error(rerr))
		}
		return err
	}
	ws.dirty = true
	return p.release(ws)
}

func (p *Planner) reload(ctx context.Context, ws *workingSet) error {
	components, err := p.store.ListComponents(ctx, ws.userID)
	if err != nil {
		return fmt.Errorf("load components: %w", err)
	}
	snap := ledger.Snapshot{UserID: ws.userID, Components: components, Slots: []ledger.MealSlot{}}
	previous := make([]string, 0, len(ws.dates))
	for date := range ws.dates {
		previous = append(previous, date)
	}
	ws.baseline = snap
	ws.working = snap.Clone()
	ws.deleted = nil
	ws.dates = make(map[string]bool)
	ws.gen++
	ws.loaded = true
	ws.stale = false
	return p.loadDates(ctx, ws, previous)
}

// loadDates pulls the stored slots of dates not loaded yet and creates the
// missing breakfast, lunch and dinner slots for them.
func (p *Planner) loadDates(ctx context.Context, ws *workingSet, dates []string) error {
	missing := make([]string, 0, len(dates))
	for _, date := range dates {
		if !ws.dates[date] {
			missing = append(missing, date)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	slots, err := p.store.ListMealSlots(ctx, ws.userID, missing[0], missing[len(missing)-1])
	if err != nil {
		return fmt.Errorf("load meal slots: %w", err)
	}
	wanted := make(map[string]bool, len(missing))
	for _, date := range missing {
		wanted[date] = true
	}
	p.adoptSlots(ws, slots, func(slot ledger.MealSlot) bool { return wanted[slot.Date] })

	working := ws.working.Clone()
	for _, date := range missing {
		for _, mealType := range ledger.MealTypes {
			if _, ok := findSlot(working, date, mealType); ok {
				continue
			}
			working.Slots = append(working.Slots, ledger.MealSlot{
				ID:         SlotID(ws.userID, date, mealType),
				UserID:     ws.userID,
				Date:       date,
				MealType:   mealType,
				Components: []string{},
				Toppings:   []string{},
			})
			ws.dirty = true
		}
		ws.dates[date] = true
	}
	ws.working = working
	return nil
}

// loadAllSlots makes every stored slot of the user part of the working set,
// so renames and deletions reach weeks that were never opened.
func (p *Planner) loadAllSlots(ctx context.Context, ws *workingSet) error {
	slots, err := p.store.ListMealSlots(ctx, ws.userID, allDatesFrom, allDatesTo)
	if err != nil {
		return fmt.Errorf("load meal slots: %w", err)
	}
	p.adoptSlots(ws, slots, func(ledger.MealSlot) bool { return true })
	return nil
}

// adoptSlots adds stored slots unknown to the working set to both snapshots.
func (p *Planner) adoptSlots(ws *workingSet, slots []ledger.MealSlot, keep func(ledger.MealSlot) bool) {
	baseline := ws.baseline.Clone()
	working := ws.working.Clone()
	for _, slot := range slots {
		if !keep(slot) {
			continue
		}
		if _, ok := working.Slot(slot.ID); ok {
			continue
		}
		if _, ok := baseline.Slot(slot.ID); ok {
			continue
		}
		baseline.Slots = append(baseline.Slots, slot)
		working.Slots = append(working.Slots, copySlot(slot))
	}
	ws.baseline = baseline
	ws.working = working
	if err := working.Check(); err != nil {
		common.SysError("loaded plan is inconsistent", zap.String("user_id", ws.userID), zap.Error(err))
	}
}

// Flush writes the user's pending changes right away.
func (p *Planner) Flush(ctx context.Context, userID string) error {
	return p.writer.Flush(ctx, userID)
}

// Close writes back every pending working set.
func (p *Planner) Close(ctx context.Context) error {
	return p.writer.Close(ctx)
}

func (p *Planner) flush(ctx context.Context, userID string) error {
	p.mu.Lock()
	ws, ok := p.sets[userID]
	p.mu.Unlock()
	if !ok {
		return nil
	}
	ws.flushMu.Lock()
	defer ws.flushMu.Unlock()

	ws.mu.Lock()
	if !ws.loaded || ws.stale {
		ws.mu.Unlock()
		return nil
	}
	gen := ws.gen
	changes := ledger.Reconcile(ws.baseline, ws.working)
	deletes := append([]string(nil), ws.deleted...)
	ws.mu.Unlock()

	if changes.Empty() && len(deletes) == 0 {
		return nil
	}

	savedComponents := make([]ledger.Component, len(changes.Components))
	savedSlots := make([]ledger.MealSlot, len(changes.Slots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(flushWorkers)
	for i, c := range changes.Components {
		g.Go(func() error {
			saved, err := p.store.UpsertComponent(gctx, c)
			if err != nil {
				return err
			}
			savedComponents[i] = saved
			return nil
		})
	}
	for i, slot := range changes.Slots {
		g.Go(func() error {
			saved, err := p.store.UpsertMealSlot(gctx, slot)
			if err != nil {
				return err
			}
			savedSlots[i] = saved
			return nil
		})
	}
	err := g.Wait()

	deletedCount := 0
	if err == nil {
		for _, id := range deletes {
			if derr := p.store.DeleteComponent(ctx, userID, id); derr != nil && !errors.Is(derr, ledger.ErrNotFound) {
				err = derr
				break
			}
			deletedCount++
		}
	}

	ws.mu.Lock()
	if ws.gen == gen {
		ws.applySaved(savedComponents, savedSlots, deletes[:deletedCount])
		if errors.Is(err, ledger.ErrConcurrentModification) {
			ws.stale = true
		}
	}
	ws.mu.Unlock()

	if errors.Is(err, ledger.ErrConcurrentModification) {
		common.SysLog("plan changed elsewhere, reloading", zap.String("user_id", userID), zap.Error(err))
		p.activity(ctx, userID, "conflict", "", err.Error())
	}
	if err != nil {
		return fmt.Errorf("flush plan of %s: %w", userID, err)
	}
	common.SysDebug("plan flushed", zap.String("user_id", userID),
		zap.Int("components", len(changes.Components)), zap.Int("slots", len(changes.Slots)), zap.Int("deleted", deletedCount))
	return nil
}

// applySaved moves stored entities into the baseline and hands their new
// versions to the working snapshot. Zero values mark writes that did not happen.
func (ws *workingSet) applySaved(components []ledger.Component, slots []ledger.MealSlot, deleted []string) {
	baseline := ws.baseline.Clone()
	working := ws.working.Clone()
	for _, saved := range components {
		if saved.ID == "" {
			continue
		}
		replaceComponent(&baseline, saved)
		for i := range working.Components {
			if working.Components[i].ID == saved.ID {
				working.Components[i].Version = saved.Version
			}
		}
	}
	for _, saved := range slots {
		if saved.ID == "" {
			continue
		}
		replaceSlot(&baseline, saved)
		for i := range working.Slots {
			if working.Slots[i].ID == saved.ID {
				working.Slots[i].Version = saved.Version
			}
		}
	}
	for _, id := range deleted {
		kept := baseline.Components[:0]
		for _, c := range baseline.Components {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		baseline.Components = kept
	}
	ws.deleted = ws.deleted[len(deleted):]
	ws.baseline = baseline
	ws.working = working
}

func replaceComponent(s *ledger.Snapshot, c ledger.Component) {
	for i := range s.Components {
		if s.Components[i].ID == c.ID {
			s.Components[i] = c
			return
		}
	}
	s.Components = append(s.Components, c)
}

func replaceSlot(s *ledger.Snapshot, slot ledger.MealSlot) {
	for i := range s.Slots {
		if s.Slots[i].ID == slot.ID {
			s.Slots[i] = slot
			return
		}
	}
	s.Slots = append(s.Slots, slot)
}

func copySlot(slot ledger.MealSlot) ledger.MealSlot {
	slot.Components = append([]string{}, slot.Components...)
	slot.Toppings = append([]string{}, slot.Toppings...)
	return slot
}

func (p *Planner) activity(ctx context.Context, userID, action, slotID, message string) {
	if p.OnActivity != nil {
		p.OnActivity(ctx, userID, action, slotID, message)
	}
}
