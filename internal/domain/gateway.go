package domain

import (
	"context"
	"errors"
)

var (
	// ErrProductNotFound indicates the API has no product with the given ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateProductID indicates a create with an ID that is
	// already taken.
	ErrDuplicateProductID = errors.New("product id already exists")
)

// ProductGateway defines the contract with the products API. It is the
// sole writer of persisted state; the view layer only observes the
// products it returns.
type ProductGateway interface {
	// List returns the full catalog in the API's order.
	List(ctx context.Context) ([]Product, error)

	// Create stores a new product and returns it as persisted.
	Create(ctx context.Context, product Product) (Product, error)

	// Update replaces the editable attributes of the product with the
	// given ID. Returns ErrProductNotFound if the ID is unknown.
	Update(ctx context.Context, id string, data ProductData) (Product, error)

	// Delete removes the product with the given ID. Returns
	// ErrProductNotFound if the ID is unknown.
	Delete(ctx context.Context, id string) error

	// ExistsByID reports whether a product with the given ID already
	// exists. A transport failure here is non-fatal to callers.
	ExistsByID(ctx context.Context, id string) (bool, error)
}
