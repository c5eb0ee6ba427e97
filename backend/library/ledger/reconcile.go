package ledger

import (
	"bytes"
	"encoding/json"
)

// Changes holds the entities a store must upsert after a batch of operations.
type Changes struct {
	Components []Component `json:"components"`
	Slots      []MealSlot  `json:"slots"`
}

// Empty reports whether nothing needs to be written.
func (c Changes) Empty() bool {
	return len(c.Components) == 0 && len(c.Slots) == 0
}

// Reconcile returns the components and slots of working whose serialized form
// differs from original, plus those original does not know. Versions are not
// compared; the entities keep the version they were loaded with so the store
// can detect stale writes.
func Reconcile(original, working Snapshot) Changes {
	changes := Changes{Components: []Component{}, Slots: []MealSlot{}}

	before := make(map[string][]byte, len(original.Components))
	for _, c := range original.Components {
		before[c.ID] = fingerprint(componentForm(c))
	}
	for _, c := range working.Components {
		prev, ok := before[c.ID]
		if c.ID == "" || !ok || !bytes.Equal(prev, fingerprint(componentForm(c))) {
			changes.Components = append(changes.Components, c)
		}
	}

	slots := make(map[string][]byte, len(original.Slots))
	for _, s := range original.Slots {
		slots[s.ID] = fingerprint(slotForm(s))
	}
	for _, s := range working.Slots {
		prev, ok := slots[s.ID]
		if s.ID == "" || !ok || !bytes.Equal(prev, fingerprint(slotForm(s))) {
			changes.Slots = append(changes.Slots, s.clone())
		}
	}
	return changes
}

func componentForm(c Component) Component {
	c.Version = 0
	return c
}

// slotForm normalizes nil and empty lists so they serialize alike.
func slotForm(s MealSlot) MealSlot {
	s.Version = 0
	if s.Components == nil {
		s.Components = []string{}
	}
	if s.Toppings == nil {
		s.Toppings = []string{}
	}
	return s
}

func fingerprint(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// plain structs of strings and ints always marshal
		panic(err)
	}
	return b
}
