package ledger

// Meal types of a weekly grid row.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

// MealTypes lists the meal types in display order.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner}

// Component is a prepped food item with a tracked serving count.
type Component struct {
	ID                string `json:"id" yaml:"id"`
	UserID            string `json:"user_id" yaml:"user_id"`
	Name              string `json:"name" yaml:"name"`
	TotalServings     int    `json:"total_servings" yaml:"total_servings"`
	AvailableServings int    `json:"available_servings" yaml:"available_servings"`
	Version           int64  `json:"version" yaml:"version"`
}

// MealSlot is one (date, meal type) cell of a user's plan.
// Components holds component names; duplicates are allowed.
type MealSlot struct {
	ID         string   `json:"id" yaml:"id"`
	UserID     string   `json:"user_id" yaml:"user_id"`
	Date       string   `json:"date" yaml:"date"`
	MealType   string   `json:"meal_type" yaml:"meal_type"`
	Name       string   `json:"name" yaml:"name"`
	Notes      string   `json:"notes" yaml:"notes"`
	Favorite   bool     `json:"favorite" yaml:"favorite"`
	Components []string `json:"components" yaml:"components"`
	Toppings   []string `json:"toppings" yaml:"toppings"`
	Version    int64    `json:"version" yaml:"version"`
}

// Empty reports whether the slot holds nothing worth showing.
func (s MealSlot) Empty() bool {
	return len(s.Components) == 0 && len(s.Toppings) == 0 && s.Name == ""
}

// FavoriteMeal is a reusable bundle of component names and toppings.
type FavoriteMeal struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	Notes      string   `json:"notes"`
	Components []string `json:"components"`
	Toppings   []string `json:"toppings"`
}

// Snapshot is the working set the ledger operates on.
type Snapshot struct {
	UserID     string      `json:"user_id"`
	Components []Component `json:"components"`
	Slots      []MealSlot  `json:"slots"`
}

// Clone returns a deep copy so operations never touch the caller's data.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{UserID: s.UserID}
	if s.Components != nil {
		out.Components = make([]Component, len(s.Components))
		copy(out.Components, s.Components)
	}
	if s.Slots != nil {
		out.Slots = make([]MealSlot, len(s.Slots))
		for i, slot := range s.Slots {
			out.Slots[i] = slot.clone()
		}
	}
	return out
}

func (s MealSlot) clone() MealSlot {
	s.Components = cloneStrings(s.Components)
	s.Toppings = cloneStrings(s.Toppings)
	return s
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func (s *Snapshot) componentIndex(name string) int {
	for i := range s.Components {
		if s.Components[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *Snapshot) slotIndex(id string) int {
	for i := range s.Slots {
		if s.Slots[i].ID == id {
			return i
		}
	}
	return -1
}

// Component looks up a component by name.
func (s Snapshot) Component(name string) (Component, bool) {
	if i := s.componentIndex(name); i >= 0 {
		return s.Components[i], true
	}
	return Component{}, false
}

// ComponentByID looks up a component by id.
func (s Snapshot) ComponentByID(id string) (Component, bool) {
	for _, c := range s.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

// Slot looks up a slot by id.
func (s Snapshot) Slot(id string) (MealSlot, bool) {
	if i := s.slotIndex(id); i >= 0 {
		return s.Slots[i], true
	}
	return MealSlot{}, false
}
