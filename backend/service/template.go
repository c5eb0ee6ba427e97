package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mealprep/backend/common"
	"mealprep/backend/library/ledger"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrTemplateFormat is returned for templates that cannot be decoded or applied.
var ErrTemplateFormat = errors.New("invalid template")

const (
	TemplateFormatJSON = "json"
	TemplateFormatYAML = "yaml"
)

// Template is a week plan detached from dates: slots are placed by day offset
// and components carry the servings the week needs.
type Template struct {
	Name       string              `json:"name" yaml:"name"`
	Components []TemplateComponent `json:"components" yaml:"components"`
	Slots      []TemplateSlot      `json:"slots" yaml:"slots"`
}

type TemplateComponent struct {
	Name     string `json:"name" yaml:"name"`
	Servings int    `json:"servings" yaml:"servings"`
}

type TemplateSlot struct {
	Day        int      `json:"day" yaml:"day"`
	MealType   string   `json:"meal_type" yaml:"meal_type"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Notes      string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Favorite   bool     `json:"favorite,omitempty" yaml:"favorite,omitempty"`
	Components []string `json:"components,omitempty" yaml:"components,omitempty"`
	Toppings   []string `json:"toppings,omitempty" yaml:"toppings,omitempty"`
}

// ImportResult tells what applying a template changed.
type ImportResult struct {
	Created  []string         `json:"created"`
	Extended []string         `json:"extended"`
	Assigned int              `json:"assigned"`
	Skipped  []ledger.Skipped `json:"skipped"`
}

// Validate checks day offsets, meal types and servings.
func (t *Template) Validate() error {
	mealTypes := make(map[string]bool, len(ledger.MealTypes))
	for _, mt := range ledger.MealTypes {
		mealTypes[mt] = true
	}
	for _, c := range t.Components {
		if strings.TrimSpace(c.Name) == "" || c.Servings < 0 {
			return fmt.Errorf("component %q: %w", c.Name, ErrTemplateFormat)
		}
	}
	for _, s := range t.Slots {
		if s.Day < 0 || s.Day >= common.DaysPerWeek {
			return fmt.Errorf("day %d out of range: %w", s.Day, ErrTemplateFormat)
		}
		if !mealTypes[s.MealType] {
			return fmt.Errorf("meal type %q: %w", s.MealType, ErrTemplateFormat)
		}
	}
	return nil
}

func EncodeTemplate(t *Template, format string) ([]byte, error) {
	switch format {
	case TemplateFormatYAML:
		return yaml.Marshal(t)
	case TemplateFormatJSON, "":
		return json.MarshalIndent(t, "", "  ")
	}
	return nil, fmt.Errorf("format %q: %w", format, ErrTemplateFormat)
}

func DecodeTemplate(data []byte, format string) (*Template, error) {
	var t Template
	var err error
	switch format {
	case TemplateFormatYAML:
		err = yaml.Unmarshal(data, &t)
	case TemplateFormatJSON, "":
		err = json.Unmarshal(data, &t)
	default:
		return nil, fmt.Errorf("format %q: %w", format, ErrTemplateFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrTemplateFormat)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// ExportTemplate turns the week starting at start into a template. Each
// component carries the number of servings the week uses.
func (p *Planner) ExportTemplate(ctx context.Context, userID, start, name string) (*Template, error) {
	view, err := p.Week(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	day := make(map[string]int, len(view.Dates))
	for i, date := range view.Dates {
		day[date] = i
	}
	t := &Template{Name: name, Components: []TemplateComponent{}, Slots: []TemplateSlot{}}
	uses := make(map[string]int)
	var order []string
	for _, slot := range view.Slots {
		if slot.Empty() && slot.Notes == "" {
			continue
		}
		for _, c := range slot.Components {
			if uses[c] == 0 {
				order = append(order, c)
			}
			uses[c]++
		}
		t.Slots = append(t.Slots, TemplateSlot{
			Day:        day[slot.Date],
			MealType:   slot.MealType,
			Name:       slot.Name,
			Notes:      slot.Notes,
			Favorite:   slot.Favorite,
			Components: append([]string(nil), slot.Components...),
			Toppings:   append([]string(nil), slot.Toppings...),
		})
	}
	for _, c := range order {
		t.Components = append(t.Components, TemplateComponent{Name: c, Servings: uses[c]})
	}
	return t, nil
}

// ImportTemplate lays t over the week starting at start. Missing components
// are created and short ones get their total raised to cover the template;
// slot assignments that still fail are reported as skipped.
func (p *Planner) ImportTemplate(ctx context.Context, userID, start string, t *Template) (ImportResult, error) {
	if err := t.Validate(); err != nil {
		return ImportResult{}, err
	}
	dates, err := WeekDates(start)
	if err != nil {
		return ImportResult{}, err
	}
	// load the week first so every target slot exists
	ws, err := p.acquire(ctx, userID, dates...)
	if err != nil {
		return ImportResult{}, err
	}
	if err := p.release(ws); err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Created: []string{}, Extended: []string{}, Skipped: []ledger.Skipped{}}
	err = p.update(ctx, userID, func(ws *workingSet) error {
		if len(t.Components) > 0 {
			if err := p.loadAllSlots(ctx, ws); err != nil {
				return err
			}
		}
		next := ws.working
		var err error
		for _, tc := range t.Components {
			name := strings.TrimSpace(tc.Name)
			current, ok := next.Component(name)
			switch {
			case !ok:
				next, err = next.AddComponent(ledger.Component{ID: uuid.NewString(), UserID: userID, Name: name, TotalServings: tc.Servings})
				result.Created = append(result.Created, name)
			case current.AvailableServings < tc.Servings:
				next, err = next.AdjustTotal(name, max(current.TotalServings, next.Usage(name)+tc.Servings))
				result.Extended = append(result.Extended, name)
			}
			if err != nil {
				return err
			}
		}
		for _, ts := range t.Slots {
			slot, ok := findSlot(next, dates[ts.Day], ts.MealType)
			if !ok {
				return fmt.Errorf("%s %s: %w", dates[ts.Day], ts.MealType, ledger.ErrSlotNotFound)
			}
			if ts.Name != "" || ts.Notes != "" || ts.Favorite {
				name, notes := slot.Name, slot.Notes
				if ts.Name != "" {
					name = ts.Name
				}
				if ts.Notes != "" {
					notes = ts.Notes
				}
				if next, err = next.Annotate(slot.ID, name, notes, ts.Favorite || slot.Favorite); err != nil {
					return err
				}
			}
			for _, topping := range ts.Toppings {
				if hasTopping(slotOf(next, slot.ID), topping) {
					continue
				}
				if next, err = next.AddTopping(slot.ID, topping); err != nil {
					return err
				}
			}
			for _, c := range ts.Components {
				assigned, aerr := next.AssignComponent(c, slot.ID)
				if aerr != nil {
					result.Skipped = append(result.Skipped, ledger.Skipped{Name: c, Reason: aerr.Error()})
					continue
				}
				next = assigned
				result.Assigned++
			}
		}
		ws.working = next
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	p.activity(ctx, userID, "template", "", fmt.Sprintf("imported %q into week of %s: %d assigned, %d skipped",
		t.Name, dates[0], result.Assigned, len(result.Skipped)))
	return result, nil
}

func hasTopping(slot ledger.MealSlot, topping string) bool {
	for _, t := range slot.Toppings {
		if t == strings.TrimSpace(topping) {
			return true
		}
	}
	return false
}
