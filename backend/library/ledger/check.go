package ledger

import "fmt"

func (c Component) checkBounds() error {
	if c.AvailableServings < 0 || c.TotalServings < 0 || c.AvailableServings > c.TotalServings {
		return fmt.Errorf("component %q has %d of %d servings available: %w",
			c.Name, c.AvailableServings, c.TotalServings, ErrInvariantViolation)
	}
	return nil
}

// Check verifies serving bounds, name uniqueness, ownership and that every
// slot reference resolves to a component of the same user.
func (s Snapshot) Check() error {
	names := make(map[string]struct{}, len(s.Components))
	for _, c := range s.Components {
		if err := c.checkBounds(); err != nil {
			return err
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("component %q listed twice: %w", c.Name, ErrInvariantViolation)
		}
		names[c.Name] = struct{}{}
		if s.UserID != "" && c.UserID != "" && c.UserID != s.UserID {
			return fmt.Errorf("component %q belongs to another user: %w", c.Name, ErrInvariantViolation)
		}
	}
	for _, slot := range s.Slots {
		if s.UserID != "" && slot.UserID != "" && slot.UserID != s.UserID {
			return fmt.Errorf("slot %q belongs to another user: %w", slot.ID, ErrInvariantViolation)
		}
		for _, ref := range slot.Components {
			if _, ok := names[ref]; !ok {
				return fmt.Errorf("slot %q references unknown component %q: %w", slot.ID, ref, ErrInvariantViolation)
			}
		}
	}
	return nil
}

// Usage counts the references to name across all slots of the snapshot.
func (s Snapshot) Usage(name string) int {
	n := 0
	for _, slot := range s.Slots {
		for _, ref := range slot.Components {
			if ref == name {
				n++
			}
		}
	}
	return n
}
