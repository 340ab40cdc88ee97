package domain

import "strings"

// Field length bounds enforced by the catalog API.
const (
	IDMinLength          = 3
	IDMaxLength          = 10
	NameMinLength        = 5
	NameMaxLength        = 100
	DescriptionMinLength = 10
	DescriptionMaxLength = 200
)

// ProductData holds the editable attributes of a product. The update
// operation sends exactly this shape: everything except the identifier.
type ProductData struct {
	Name         string
	Description  string
	Logo         string
	DateRelease  Date
	DateRevision Date
}

// Product represents a catalog product. The ID is chosen by the user at
// creation time and is immutable afterwards.
type Product struct {
	ID string
	ProductData
}

// Data returns the product's editable attributes.
func (p Product) Data() ProductData {
	return p.ProductData
}

// Matches reports whether the product's name or description contains the
// already-normalized (lower-cased, trimmed) search term. An empty term
// matches every product.
func (p Product) Matches(normalizedTerm string) bool {
	if normalizedTerm == "" {
		return true
	}
	return containsFold(p.Name, normalizedTerm) || containsFold(p.Description, normalizedTerm)
}

func containsFold(s, normalizedTerm string) bool {
	return strings.Contains(strings.ToLower(s), normalizedTerm)
}
