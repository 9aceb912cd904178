package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/s0up4200/umzug/umzug"
)

// resolve finds the entry referenced by an ID or a case-insensitive title
func resolve[T any](values []T, ref, kind string, id func(T) uuid.UUID, title func(T) string) (T, error) {
	var zero T

	if parsed, err := uuid.Parse(ref); err == nil {
		for _, v := range values {
			if id(v) == parsed {
				return v, nil
			}
		}
		return zero, fmt.Errorf("%s %s not found", kind, ref)
	}

	var matches []T
	for _, v := range values {
		if strings.EqualFold(title(v), ref) {
			matches = append(matches, v)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("%s %q not found", kind, ref)
	case 1:
		return matches[0], nil
	default:
		return zero, fmt.Errorf("%q matches %d %ss, use the ID instead", ref, len(matches), kind)
	}
}

func loadBoxes(ctx context.Context, api umzug.API) ([]umzug.Box, error) {
	result, err := api.FetchBoxes().Get(ctx)
	if err != nil {
		return nil, err
	}
	boxes, err := result.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to list boxes: %w", err)
	}
	return boxes, nil
}

func loadItems(ctx context.Context, api umzug.API) ([]umzug.Item, error) {
	result, err := api.FetchItems().Get(ctx)
	if err != nil {
		return nil, err
	}
	items, err := result.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func resolveBox(ctx context.Context, api umzug.API, ref string) (umzug.Box, error) {
	boxes, err := loadBoxes(ctx, api)
	if err != nil {
		return umzug.Box{}, err
	}
	return resolve(boxes, ref, "box",
		func(b umzug.Box) uuid.UUID { return b.ID },
		func(b umzug.Box) string { return b.Title })
}

func resolveItem(ctx context.Context, api umzug.API, ref string) (umzug.Item, error) {
	items, err := loadItems(ctx, api)
	if err != nil {
		return umzug.Item{}, err
	}
	return resolve(items, ref, "item",
		func(i umzug.Item) uuid.UUID { return i.ID },
		func(i umzug.Item) string { return i.Title })
}

// parseID parses a packing ID; packings have no title to resolve by
func parseID(ref, kind string) (uuid.UUID, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID %q: %w", kind, ref, err)
	}
	return id, nil
}
