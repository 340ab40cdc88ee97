package dto

import (
	"github.com/hernancr2000/products-catalog/internal/domain"
)

// ProductPayload is the wire representation of a product.
type ProductPayload struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Logo         string      `json:"logo"`
	DateRelease  domain.Date `json:"date_release"`
	DateRevision domain.Date `json:"date_revision"`
}

// ProductDataPayload is the update request body: a product minus its ID.
type ProductDataPayload struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Logo         string      `json:"logo"`
	DateRelease  domain.Date `json:"date_release"`
	DateRevision domain.Date `json:"date_revision"`
}

// ListProductsResponse is the body of GET /bp/products.
type ListProductsResponse struct {
	Data []ProductPayload `json:"data"`
}

// MutationResponse is the body of a successful create or update.
type MutationResponse struct {
	Message string         `json:"message"`
	Data    ProductPayload `json:"data"`
}

// MessageResponse is the body of a successful delete, and of every
// error response.
type MessageResponse struct {
	Message string `json:"message"`
}

// FromProduct converts a domain product to its wire shape.
func FromProduct(p domain.Product) ProductPayload {
	return ProductPayload{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Logo:         p.Logo,
		DateRelease:  p.DateRelease,
		DateRevision: p.DateRevision,
	}
}

// ToProduct converts a wire payload to a domain product.
func (p ProductPayload) ToProduct() domain.Product {
	return domain.Product{
		ID: p.ID,
		ProductData: domain.ProductData{
			Name:         p.Name,
			Description:  p.Description,
			Logo:         p.Logo,
			DateRelease:  p.DateRelease,
			DateRevision: p.DateRevision,
		},
	}
}

// FromProductData converts editable attributes to the update body.
func FromProductData(d domain.ProductData) ProductDataPayload {
	return ProductDataPayload{
		Name:         d.Name,
		Description:  d.Description,
		Logo:         d.Logo,
		DateRelease:  d.DateRelease,
		DateRevision: d.DateRevision,
	}
}

// ToProductData converts the update body to domain attributes.
func (p ProductDataPayload) ToProductData() domain.ProductData {
	return domain.ProductData{
		Name:         p.Name,
		Description:  p.Description,
		Logo:         p.Logo,
		DateRelease:  p.DateRelease,
		DateRevision: p.DateRevision,
	}
}

// ToProductList converts a list of payloads preserving order.
func ToProductList(payloads []ProductPayload) []domain.Product {
	products := make([]domain.Product, len(payloads))
	for i, p := range payloads {
		products[i] = p.ToProduct()
	}
	return products
}

// FromProductList converts domain products to wire payloads.
func FromProductList(products []domain.Product) []ProductPayload {
	payloads := make([]ProductPayload, len(products))
	for i, p := range products {
		payloads[i] = FromProduct(p)
	}
	return payloads
}
