// Package navigation models the application's three destinations and
// the path table that maps onto them. Unmatched paths redirect to the
// catalog list.
package navigation

import (
	"log/slog"
	"strings"
	"sync"
)

// Destination is one logical screen of the application.
type Destination int

const (
	DestinationList Destination = iota
	DestinationNew
	DestinationEdit
)

// String returns the destination name for logging.
func (d Destination) String() string {
	switch d {
	case DestinationNew:
		return "product-new"
	case DestinationEdit:
		return "product-edit"
	default:
		return "product-list"
	}
}

// Route is a resolved destination, with the product ID for edit routes.
type Route struct {
	Destination Destination
	ProductID   string
}

// Resolve maps a path to a route. "/" is the list, "/product/new" the
// create form, "/product/edit/{id}" the edit form; anything else
// redirects to the list.
func Resolve(path string) Route {
	path = strings.Trim(path, "/")
	switch {
	case path == "":
		return Route{Destination: DestinationList}
	case path == "product/new":
		return Route{Destination: DestinationNew}
	case strings.HasPrefix(path, "product/edit/"):
		id := strings.TrimPrefix(path, "product/edit/")
		if id != "" && !strings.Contains(id, "/") {
			return Route{Destination: DestinationEdit, ProductID: id}
		}
	}
	return Route{Destination: DestinationList}
}

// Navigator tracks the current route.
type Navigator struct {
	mu      sync.Mutex
	logger  *slog.Logger
	current Route
}

// NewNavigator creates a navigator positioned on the catalog list.
func NewNavigator(logger *slog.Logger) *Navigator {
	return &Navigator{
		logger:  logger,
		current: Route{Destination: DestinationList},
	}
}

// Go moves to the given route.
func (n *Navigator) Go(route Route) {
	n.mu.Lock()
	n.current = route
	n.mu.Unlock()

	n.logger.Info("navigated",
		slog.String("destination", route.Destination.String()),
		slog.String("product_id", route.ProductID),
	)
}

// GoToPath resolves a path and navigates to it.
func (n *Navigator) GoToPath(path string) {
	n.Go(Resolve(path))
}

// GoToList navigates to the catalog list.
func (n *Navigator) GoToList() {
	n.Go(Route{Destination: DestinationList})
}

// GoToNew navigates to the create form.
func (n *Navigator) GoToNew() {
	n.Go(Route{Destination: DestinationNew})
}

// GoToEdit navigates to the edit form for the given product.
func (n *Navigator) GoToEdit(productID string) {
	n.Go(Route{Destination: DestinationEdit, ProductID: productID})
}

// Current returns the active route.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
