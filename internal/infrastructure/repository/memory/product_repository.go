// Package memory provides an in-memory, order-preserving implementation
// of the product gateway. It backs the embedded stub API and tests.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hernancr2000/products-catalog/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository stores products in insertion order. It implements
// domain.ProductGateway.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		index:  make(map[string]int),
		tracer: tracer,
		logger: logger,
	}
}

// Seed replaces the stored products wholesale. Intended for demo data
// and test fixtures.
func (r *ProductRepository) Seed(products []domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make([]domain.Product, len(products))
	copy(r.products, products)
	r.index = make(map[string]int, len(products))
	for i, p := range r.products {
		r.index[p.ID] = i
	}
}

// List returns all products in insertion order.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, len(r.products))
	copy(products, r.products)

	span.SetAttributes(attribute.Int("product.count", len(products)))
	r.logger.DebugContext(ctx, "Products listed from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed")
	return products, nil
}

// Create appends a new product. A duplicate ID yields an error so the
// stub API can answer 400 the way the real backend does.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", product.ID))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[product.ID]; exists {
		err := domain.ErrDuplicateProductID
		span.RecordError(err)
		span.SetStatus(codes.Error, "Duplicate product ID")
		r.logger.WarnContext(ctx, "Duplicate product ID",
			slog.String("product_id", product.ID),
		)
		return domain.Product{}, err
	}

	r.index[product.ID] = len(r.products)
	r.products = append(r.products, product)

	r.logger.InfoContext(ctx, "Product created in repository",
		slog.String("product_id", product.ID),
	)
	span.SetStatus(codes.Ok, "Product created")
	return product, nil
}

// Update replaces the editable attributes of an existing product.
func (r *ProductRepository) Update(ctx context.Context, id string, data domain.ProductData) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	i, exists := r.index[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("product_id", id),
		)
		return domain.Product{}, domain.ErrProductNotFound
	}

	r.products[i].ProductData = data

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.String("product_id", id),
	)
	span.SetStatus(codes.Ok, "Product updated")
	return r.products[i], nil
}

// Delete removes the product with the given ID, preserving the order of
// the remaining products.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	i, exists := r.index[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("product_id", id),
		)
		return domain.ErrProductNotFound
	}

	r.products = append(r.products[:i], r.products[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.products); j++ {
		r.index[r.products[j].ID] = j
	}

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.String("product_id", id),
	)
	span.SetStatus(codes.Ok, "Product deleted")
	return nil
}

// ExistsByID reports whether the given ID is taken.
func (r *ProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.ExistsByID")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.index[id]
	span.SetAttributes(attribute.Bool("product.exists", exists))
	span.SetStatus(codes.Ok, "Existence checked")
	return exists, nil
}
