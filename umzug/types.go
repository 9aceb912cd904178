package umzug

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Priority represents how soon an item is needed after the move
type Priority string

const (
	// PriorityImmediate items are needed right away
	PriorityImmediate Priority = "immediate"
	// PriorityStandard items are needed within the first days
	PriorityStandard Priority = "standard"
	// PriorityConvenience items are nice to have
	PriorityConvenience Priority = "convenience"
	// PriorityLongTerm items can stay packed
	PriorityLongTerm Priority = "long_term"
)

// Priorities lists all known priorities in urgency order
var Priorities = []Priority{PriorityImmediate, PriorityStandard, PriorityConvenience, PriorityLongTerm}

// ParsePriority parses a priority from its wire value or display label
func ParsePriority(s string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for _, p := range Priorities {
		if string(p) == normalized {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority: %q", s)
}

// String returns the display label of a Priority
func (p Priority) String() string {
	switch p {
	case PriorityImmediate:
		return "Immediate"
	case PriorityStandard:
		return "Standard"
	case PriorityConvenience:
		return "Convenience"
	case PriorityLongTerm:
		return "Long Term"
	default:
		return "None"
	}
}

// Box is a container holding zero or more packings
type Box struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Packings []Packing `json:"packings,omitempty"`
}

// Item is a trackable thing that can be packed into boxes
type Item struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Priority *Priority `json:"priority,omitempty"`
	Packings []Packing `json:"packings,omitempty"`
}

// PriorityLabel returns the item's priority label, or "None" when unset
func (i *Item) PriorityLabel() string {
	if i.Priority == nil {
		return Priority("").String()
	}
	return i.Priority.String()
}

// Packing records how many of an item are packed in a box
type Packing struct {
	ID     uuid.UUID `json:"id"`
	Item   Item      `json:"item"`
	Box    Box       `json:"box"`
	Amount int       `json:"amount"`
}

// TotalAmount sums the amounts of the given packings
func TotalAmount(packings []Packing) int {
	total := 0
	for _, p := range packings {
		total += p.Amount
	}
	return total
}

var errMissingField = errors.New("missing required field")

// UnmarshalJSON requires id and title to be present
func (b *Box) UnmarshalJSON(data []byte) error {
	type boxAlias Box
	var raw struct {
		boxAlias
		ID    *uuid.UUID `json:"id"`
		Title *string    `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == nil || raw.Title == nil {
		return fmt.Errorf("box: %w", errMissingField)
	}

	*b = Box(raw.boxAlias)
	b.ID, b.Title = *raw.ID, *raw.Title
	return nil
}

// UnmarshalJSON requires id and title to be present
func (i *Item) UnmarshalJSON(data []byte) error {
	type itemAlias Item
	var raw struct {
		itemAlias
		ID    *uuid.UUID `json:"id"`
		Title *string    `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == nil || raw.Title == nil {
		return fmt.Errorf("item: %w", errMissingField)
	}

	*i = Item(raw.itemAlias)
	i.ID, i.Title = *raw.ID, *raw.Title
	return nil
}

// UnmarshalJSON requires id, item, box and amount to be present
func (p *Packing) UnmarshalJSON(data []byte) error {
	type packingAlias Packing
	var raw struct {
		packingAlias
		ID     *uuid.UUID `json:"id"`
		Item   *Item      `json:"item"`
		Box    *Box       `json:"box"`
		Amount *int       `json:"amount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == nil || raw.Item == nil || raw.Box == nil || raw.Amount == nil {
		return fmt.Errorf("packing: %w", errMissingField)
	}

	*p = Packing(raw.packingAlias)
	p.ID, p.Item, p.Box, p.Amount = *raw.ID, *raw.Item, *raw.Box, *raw.Amount
	return nil
}
