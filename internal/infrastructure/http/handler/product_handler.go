// Package handler contains the HTTP handlers of the embedded stub API.
// They mirror the real backend's contract so the application can run
// against an in-process catalog during local development.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hernancr2000/products-catalog/internal/app/dto"
	"github.com/hernancr2000/products-catalog/internal/domain"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/http/response"
)

// ProductHandler serves the /bp/products routes from a gateway-shaped
// store.
type ProductHandler struct {
	store  domain.ProductGateway
	logger *slog.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(store domain.ProductGateway, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		store:  store,
		logger: logger,
	}
}

// ListProducts handles GET /bp/products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, dto.ListProductsResponse{
		Data: dto.FromProductList(products),
	})
}

// CreateProduct handles POST /bp/products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload dto.ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, "Invalid body")
		return
	}

	created, err := h.store.Create(r.Context(), payload.ToProduct())
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateProductID) {
			response.Error(w, http.StatusBadRequest, "Duplicate identifier")
		} else {
			response.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.JSON(w, http.StatusCreated, dto.MutationResponse{
		Message: "Product added successfully",
		Data:    dto.FromProduct(created),
	})
}

// UpdateProduct handles PUT /bp/products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload dto.ProductDataPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, "Invalid body")
		return
	}

	updated, err := h.store.Update(r.Context(), id, payload.ToProductData())
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			response.Error(w, http.StatusNotFound, "Not found")
		} else {
			response.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.JSON(w, http.StatusOK, dto.MutationResponse{
		Message: "Product updated successfully",
		Data:    dto.FromProduct(updated),
	})
}

// DeleteProduct handles DELETE /bp/products/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			response.Error(w, http.StatusNotFound, "Not found")
		} else {
			response.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.JSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Product removed successfully",
	})
}

// VerifyProductID handles GET /bp/products/verification/{id}. The body
// is a bare JSON boolean.
func (h *ProductHandler) VerifyProductID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	exists, err := h.store.ExistsByID(r.Context(), id)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, exists)
}
