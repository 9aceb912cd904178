package umzug

import (
	"context"

	"github.com/google/uuid"

	"github.com/s0up4200/umzug/fetched"
)

// API defines the inventory operations of the Umzug server
type API interface {
	// FetchBoxes returns a cell listing all boxes
	FetchBoxes() *fetched.Cell[Result[[]Box, ListFailure]]

	// FetchItems returns a cell listing all items
	FetchItems() *fetched.Cell[Result[[]Item, ListFailure]]

	// FetchPackings returns a cell listing packings
	FetchPackings(item, box *uuid.UUID) *fetched.Cell[Result[[]Packing, ListFailure]]

	CreateBox(ctx context.Context, title string) (Result[Box, BoxesCreateFailure], error)
	UpdateBox(ctx context.Context, id uuid.UUID, title string) (Result[Box, BoxesUpdateFailure], error)
	DeleteBox(ctx context.Context, id uuid.UUID) (Result[*Box, DeleteFailure], error)

	CreateItem(ctx context.Context, title string, priority Priority) (Result[Item, ItemsCreateFailure], error)
	UpdateItem(ctx context.Context, id uuid.UUID, title *string, priority *Priority) (Result[Item, ItemsUpdateFailure], error)
	DeleteItem(ctx context.Context, id uuid.UUID) (Result[*Item, DeleteFailure], error)

	CreatePacking(ctx context.Context, item, box uuid.UUID, amount int) (Result[Packing, PackingsCreateFailure], error)
	UpdatePacking(ctx context.Context, id uuid.UUID, item, box *uuid.UUID, amount *int) (Result[Packing, PackingsUpdateFailure], error)
	DeletePacking(ctx context.Context, id uuid.UUID) (Result[*Packing, DeleteFailure], error)
}

var _ API = (*Client)(nil)
