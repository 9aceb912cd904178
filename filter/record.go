// Package filter selects inventory records with expr-language expressions.
//
// Every record exposes the same variables, so one expression can be used for
// boxes, items and packings:
//
//	Kind      "box", "item" or "packing"
//	Title     box or item title; the item title for packings
//	Priority  wire value of the item priority ("" when unset)
//	Amount    packed amount (sum of packings for boxes and items)
//	Box       box title (packings only)
//	Item      item title (packings only)
//	Packings  number of packings
//
// Helpers: contains, startsWith, endsWith, lower, upper (case-insensitive
// string matching) and urgent(priority), which is true when the record's
// priority is at least as urgent as the given one.
package filter

import (
	"github.com/s0up4200/umzug/umzug"
)

// Record is the flattened view of an inventory entity seen by expressions
type Record struct {
	Kind     string
	ID       string
	Title    string
	Priority string
	Amount   int
	Box      string
	Item     string
	Packings int
}

// BoxRecord flattens a box
func BoxRecord(b umzug.Box) Record {
	return Record{
		Kind:     "box",
		ID:       b.ID.String(),
		Title:    b.Title,
		Amount:   umzug.TotalAmount(b.Packings),
		Packings: len(b.Packings),
	}
}

// ItemRecord flattens an item
func ItemRecord(i umzug.Item) Record {
	r := Record{
		Kind:     "item",
		ID:       i.ID.String(),
		Title:    i.Title,
		Amount:   umzug.TotalAmount(i.Packings),
		Packings: len(i.Packings),
	}
	if i.Priority != nil {
		r.Priority = string(*i.Priority)
	}
	return r
}

// PackingRecord flattens a packing
func PackingRecord(p umzug.Packing) Record {
	r := Record{
		Kind:     "packing",
		ID:       p.ID.String(),
		Title:    p.Item.Title,
		Amount:   p.Amount,
		Box:      p.Box.Title,
		Item:     p.Item.Title,
		Packings: 1,
	}
	if p.Item.Priority != nil {
		r.Priority = string(*p.Item.Priority)
	}
	return r
}

// Select returns the values whose record matches f, preserving order
func Select[T any](f *Filter, values []T, record func(T) Record) []T {
	matches := make([]T, 0, len(values))
	for _, v := range values {
		if f.Match(record(v)) {
			matches = append(matches, v)
		}
	}
	return matches
}
