// Package catalog implements the list view state: the fetched product
// snapshot and the search/pagination pipeline derived from it, plus the
// delete confirmation flow.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/hernancr2000/products-catalog/internal/app/notification"
	"github.com/hernancr2000/products-catalog/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPageSize is the initial page size of the list view.
const DefaultPageSize = 5

const loadErrorMessage = "Could not load products. Please try again."

// State owns the catalog snapshot and everything derived from it. All
// exported methods are safe for concurrent use; derived values are
// consistent with their inputs the moment any setter returns.
type State struct {
	gateway    domain.ProductGateway
	notifier   *notification.Center
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter

	mu            sync.Mutex
	products      []domain.Product
	searchTerm    string
	pageSize      int
	currentPage   int
	isLoading     bool
	errorMessage  string
	pendingDelete *domain.Product
	isDeleting    bool
}

// NewState creates a catalog view state. A non-positive pageSize falls
// back to DefaultPageSize.
func NewState(
	gateway domain.ProductGateway,
	notifier *notification.Center,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
	pageSize int,
) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	operations, _ := meter.Int64Counter(
		"catalog.operations",
		metric.WithDescription("Total number of catalog view operations"),
	)

	return &State{
		gateway:     gateway,
		notifier:    notifier,
		tracer:      tracer,
		logger:      logger,
		operations:  operations,
		pageSize:    pageSize,
		currentPage: 1,
	}
}

// Load fetches the catalog and replaces the snapshot wholesale. On
// failure it stores a user-facing error message; retry is the caller
// invoking Load again.
func (s *State) Load(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "CatalogState.Load")
	defer span.End()

	s.mu.Lock()
	s.isLoading = true
	s.errorMessage = ""
	s.mu.Unlock()

	products, err := s.gateway.List(ctx)

	s.mu.Lock()
	s.isLoading = false
	if err != nil {
		s.errorMessage = loadErrorMessage
		s.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load products")
		s.logger.ErrorContext(ctx, "Failed to load products",
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "load", "failure")
		return
	}
	s.products = products
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.logger.InfoContext(ctx, "Products loaded",
		slog.Int("count", len(products)),
	)
	s.recordOperation(ctx, "load", "success")
	span.SetStatus(codes.Ok, "Products loaded")
}

// SetSearchTerm updates the search term and resets to the first page.
func (s *State) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
	s.currentPage = 1
}

// SetPageSize updates the page size and resets to the first page.
// Non-positive sizes are ignored.
func (s *State) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = size
	s.currentPage = 1
}

// FilteredProducts returns the products whose name or description
// contains the trimmed, case-folded search term, preserving the
// snapshot order. An empty term returns the whole snapshot.
func (s *State) FilteredProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredLocked()
}

// TotalPages returns ceil(filtered/pageSize); zero for an empty
// filtered set.
func (s *State) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPagesLocked()
}

// PaginatedProducts returns the slice of the filtered set visible on
// the current page.
func (s *State) PaginatedProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paginatedLocked()
}

// TotalResults returns the size of the filtered set.
func (s *State) TotalResults() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.filteredLocked())
}

// GoToPage moves to page n. Out-of-range pages are silently ignored.
func (s *State) GoToPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > s.totalPagesLocked() {
		return
	}
	s.currentPage = n
}

// NextPage advances one page; no-op on the last page.
func (s *State) NextPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPage < s.totalPagesLocked() {
		s.currentPage++
	}
}

// PreviousPage goes back one page; no-op on the first page.
func (s *State) PreviousPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPage > 1 {
		s.currentPage--
	}
}

// CanGoNext reports whether a further page exists.
func (s *State) CanGoNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage < s.totalPagesLocked()
}

// CanGoPrevious reports whether an earlier page exists.
func (s *State) CanGoPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage > 1
}

// RequestDelete stores the product as the pending delete target,
// opening the confirmation state.
func (s *State) RequestDelete(product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := product
	s.pendingDelete = &target
}

// CancelDelete clears the confirmation state unconditionally.
func (s *State) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingDelete = nil
}

// ConfirmDelete deletes the pending target through the gateway. Without
// a target it does nothing. On success it notifies, closes the
// confirmation, reloads the catalog, and steps back one page if the
// current page ended up empty and is beyond the first. On failure it
// notifies and leaves the confirmation open.
func (s *State) ConfirmDelete(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "CatalogState.ConfirmDelete")
	defer span.End()

	s.mu.Lock()
	if s.pendingDelete == nil {
		s.mu.Unlock()
		return
	}
	target := *s.pendingDelete
	s.isDeleting = true
	s.mu.Unlock()

	span.SetAttributes(attribute.String("product.id", target.ID))

	if err := s.gateway.Delete(ctx, target.ID); err != nil {
		s.mu.Lock()
		s.isDeleting = false
		s.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete product")
		s.logger.ErrorContext(ctx, "Failed to delete product",
			slog.String("product_id", target.ID),
			slog.String("error", err.Error()),
		)
		s.notifier.Show("Could not delete the product.", notification.SeverityError)
		s.recordOperation(ctx, "delete", "failure")
		return
	}

	s.mu.Lock()
	s.pendingDelete = nil
	s.isDeleting = false
	s.mu.Unlock()

	s.notifier.Show("Product removed successfully", notification.SeveritySuccess)
	s.logger.InfoContext(ctx, "Product deleted",
		slog.String("product_id", target.ID),
	)
	s.recordOperation(ctx, "delete", "success")
	span.SetStatus(codes.Ok, "Product deleted")

	s.Load(ctx)

	s.mu.Lock()
	if len(s.paginatedLocked()) == 0 && s.currentPage > 1 {
		s.currentPage--
	}
	s.mu.Unlock()
}

// DeleteConfirmationMessage returns the question shown in the
// confirmation modal, or "" without a pending target.
func (s *State) DeleteConfirmationMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete == nil {
		return ""
	}
	return "Are you sure you want to delete " + s.pendingDelete.Name + "?"
}

// Products returns a copy of the current snapshot.
func (s *State) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	return products
}

// SearchTerm returns the raw search term as entered.
func (s *State) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

// PageSize returns the current page size.
func (s *State) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

// CurrentPage returns the current 1-based page number.
func (s *State) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// IsLoading reports whether a list fetch is in flight.
func (s *State) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// IsDeleting reports whether a delete is in flight.
func (s *State) IsDeleting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDeleting
}

// Error returns the load error message, or "".
func (s *State) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorMessage
}

// PendingDeleteTarget returns a copy of the product awaiting delete
// confirmation, or nil.
func (s *State) PendingDeleteTarget() *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete == nil {
		return nil
	}
	copied := *s.pendingDelete
	return &copied
}

func (s *State) filteredLocked() []domain.Product {
	term := strings.ToLower(strings.TrimSpace(s.searchTerm))
	if term == "" {
		products := make([]domain.Product, len(s.products))
		copy(products, s.products)
		return products
	}

	filtered := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Matches(term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (s *State) totalPagesLocked() int {
	total := len(s.filteredLocked())
	if total == 0 {
		return 0
	}
	return (total + s.pageSize - 1) / s.pageSize
}

func (s *State) paginatedLocked() []domain.Product {
	filtered := s.filteredLocked()

	start := (s.currentPage - 1) * s.pageSize
	if start >= len(filtered) {
		return nil
	}
	end := start + s.pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

func (s *State) recordOperation(ctx context.Context, operation, result string) {
	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}
