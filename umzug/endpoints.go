package umzug

import (
	"context"

	"github.com/google/uuid"

	"github.com/s0up4200/umzug/fetched"
)

// Fetch binds a fetched.Cell to req. Each reload performs the request and
// decodes it like MakeRequest.
func Fetch[S any, F FailureType[F]](c *Client, req Request, opts ...fetched.Option) *fetched.Cell[Result[S, F]] {
	req = req.Clone()
	opts = append([]fetched.Option{fetched.WithLogger(c.logger)}, opts...)
	return fetched.New(func(ctx context.Context) (Result[S, F], error) {
		return MakeRequest[S, F](ctx, c, req)
	}, opts...)
}

// FetchBoxes returns a cell listing all boxes
func (c *Client) FetchBoxes() *fetched.Cell[Result[[]Box, ListFailure]] {
	return Fetch[[]Box, ListFailure](c, ListBoxes(), fetched.WithName("boxes"))
}

// FetchItems returns a cell listing all items
func (c *Client) FetchItems() *fetched.Cell[Result[[]Item, ListFailure]] {
	return Fetch[[]Item, ListFailure](c, ListItems(), fetched.WithName("items"))
}

// FetchPackings returns a cell listing packings, optionally for one item and/or box
func (c *Client) FetchPackings(item, box *uuid.UUID) *fetched.Cell[Result[[]Packing, ListFailure]] {
	return Fetch[[]Packing, ListFailure](c, ListPackings(item, box), fetched.WithName("packings"))
}

// CreateBox creates a box
func (c *Client) CreateBox(ctx context.Context, title string) (Result[Box, BoxesCreateFailure], error) {
	return MakeRequest[Box, BoxesCreateFailure](ctx, c, CreateBox(title))
}

// UpdateBox renames a box
func (c *Client) UpdateBox(ctx context.Context, id uuid.UUID, title string) (Result[Box, BoxesUpdateFailure], error) {
	return MakeRequest[Box, BoxesUpdateFailure](ctx, c, UpdateBox(id, title))
}

// DeleteBox deletes a box. The deleted box is returned if the server sends it.
func (c *Client) DeleteBox(ctx context.Context, id uuid.UUID) (Result[*Box, DeleteFailure], error) {
	return MakeOptionalRequest[Box, DeleteFailure](ctx, c, DeleteBox(id))
}

// CreateItem creates an item
func (c *Client) CreateItem(ctx context.Context, title string, priority Priority) (Result[Item, ItemsCreateFailure], error) {
	return MakeRequest[Item, ItemsCreateFailure](ctx, c, CreateItem(title, priority))
}

// UpdateItem updates an item's title and/or priority
func (c *Client) UpdateItem(ctx context.Context, id uuid.UUID, title *string, priority *Priority) (Result[Item, ItemsUpdateFailure], error) {
	return MakeRequest[Item, ItemsUpdateFailure](ctx, c, UpdateItem(id, title, priority))
}

// DeleteItem deletes an item
func (c *Client) DeleteItem(ctx context.Context, id uuid.UUID) (Result[*Item, DeleteFailure], error) {
	return MakeOptionalRequest[Item, DeleteFailure](ctx, c, DeleteItem(id))
}

// CreatePacking packs amount of item into box
func (c *Client) CreatePacking(ctx context.Context, item, box uuid.UUID, amount int) (Result[Packing, PackingsCreateFailure], error) {
	return MakeRequest[Packing, PackingsCreateFailure](ctx, c, CreatePacking(item, box, amount))
}

// UpdatePacking updates a packing
func (c *Client) UpdatePacking(ctx context.Context, id uuid.UUID, item, box *uuid.UUID, amount *int) (Result[Packing, PackingsUpdateFailure], error) {
	return MakeRequest[Packing, PackingsUpdateFailure](ctx, c, UpdatePacking(id, item, box, amount))
}

// DeletePacking deletes a packing
func (c *Client) DeletePacking(ctx context.Context, id uuid.UUID) (Result[*Packing, DeleteFailure], error) {
	return MakeOptionalRequest[Packing, DeleteFailure](ctx, c, DeletePacking(id))
}
