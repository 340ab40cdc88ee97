package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hernancr2000/products-catalog/internal/domain"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(
		config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
		otel.Tracer("test"),
		otel.Meter("test"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestListDecodesDataEnvelope(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bp/products", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[
			{"id":"prod-1","name":"Producto Uno","description":"Description of product one","logo":"https://example.com/1.png","date_release":"2027-01-21","date_revision":"2028-01-21"},
			{"id":"prod-2","name":"Producto Dos","description":"Description of product two","logo":"https://example.com/2.png","date_release":"2027-01-21","date_revision":"2028-01-21"}
		]}`)
	}))

	products, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "prod-1", products[0].ID)
	assert.Equal(t, "Producto Dos", products[1].Name)
	assert.Equal(t, "2027-01-21", products[0].DateRelease.String())
}

func TestCreateSendsFullProduct(t *testing.T) {
	t.Parallel()

	release := domain.NewDate(2027, time.March, 10)
	product := domain.Product{
		ID: "prod-9",
		ProductData: domain.ProductData{
			Name:         "Brand New Product",
			Description:  "A sufficiently long description",
			Logo:         "https://example.com/logo.png",
			DateRelease:  release,
			DateRevision: release.AddYears(1),
		},
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bp/products", r.URL.Path)

		var sent map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, "prod-9", sent["id"])
		assert.Equal(t, "2027-03-10", sent["date_release"])
		assert.Equal(t, "2028-03-10", sent["date_revision"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"message":"Product added successfully","data":{"id":"prod-9","name":"Brand New Product","description":"A sufficiently long description","logo":"https://example.com/logo.png","date_release":"2027-03-10","date_revision":"2028-03-10"}}`)
	}))

	created, err := c.Create(context.Background(), product)
	require.NoError(t, err)
	assert.Equal(t, product.ID, created.ID)
	assert.Equal(t, product.Name, created.Name)
}

func TestCreateDuplicateReturnsServerMessage(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"Duplicate identifier"}`)
	}))

	_, err := c.Create(context.Background(), domain.Product{ID: "prod-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Duplicate identifier")
}

func TestUpdateBodyExcludesID(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/bp/products/prod-1", r.URL.Path)

		var sent map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.NotContains(t, sent, "id")
		assert.Equal(t, "Renamed Product", sent["name"])

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"Product updated successfully","data":{"id":"prod-1","name":"Renamed Product","description":"An existing product description","logo":"https://example.com/logo.png","date_release":"2027-01-21","date_revision":"2028-01-21"}}`)
	}))

	release := domain.NewDate(2027, time.January, 21)
	updated, err := c.Update(context.Background(), "prod-1", domain.ProductData{
		Name:         "Renamed Product",
		Description:  "An existing product description",
		Logo:         "https://example.com/logo.png",
		DateRelease:  release,
		DateRevision: release.AddYears(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "prod-1", updated.ID)
	assert.Equal(t, "Renamed Product", updated.Name)
}

func TestUpdateMissingProduct(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Not found"}`)
	}))

	_, err := c.Update(context.Background(), "ghost", domain.ProductData{})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/bp/products/prod-1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"Product removed successfully"}`)
	}))

	assert.NoError(t, c.Delete(context.Background(), "prod-1"))
}

func TestDeleteMissingProduct(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Not found"}`)
	}))

	assert.ErrorIs(t, c.Delete(context.Background(), "ghost"), domain.ErrProductNotFound)
}

func TestExistsByIDDecodesBareBoolean(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bp/products/verification/prod-1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `true`)
	}))

	exists, err := c.ExistsByID(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExistsByIDEscapesPathSegment(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bp/products/verification/a%2Fb", r.URL.RawPath)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `false`)
	}))

	exists, err := c.ExistsByID(context.Background(), "a/b")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransportErrorIsReturned(t *testing.T) {
	t.Parallel()

	c := NewClient(
		config.APIConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		otel.Tracer("test"),
		otel.Meter("test"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	_, err := c.List(context.Background())
	assert.Error(t, err)
}
