// Package rest implements the products gateway over the catalog REST
// API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/hernancr2000/products-catalog/internal/app/dto"
	"github.com/hernancr2000/products-catalog/internal/domain"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const productsPath = "/bp/products"

// Client talks to the products API. It implements domain.ProductGateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
}

// NewClient creates a REST gateway client. Outgoing requests are
// instrumented with otelhttp and carry a UUID correlation header.
func NewClient(
	cfg config.APIConfig,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *Client {
	operations, _ := meter.Int64Counter(
		"gateway.requests",
		metric.WithDescription("Total number of gateway requests"),
	)

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer:     tracer,
		logger:     logger,
		operations: operations,
	}
}

// List returns the full catalog in the API's order.
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "GatewayClient.List")
	defer span.End()

	var body dto.ListProductsResponse
	if err := c.do(ctx, http.MethodGet, c.productsURL(), nil, &body); err != nil {
		return nil, c.fail(ctx, span, "list", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(body.Data)))
	c.recordRequest(ctx, "list", "success")
	span.SetStatus(codes.Ok, "Products listed")
	return dto.ToProductList(body.Data), nil
}

// Create stores a new product.
func (c *Client) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "GatewayClient.Create")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", product.ID))

	var body dto.MutationResponse
	if err := c.do(ctx, http.MethodPost, c.productsURL(), dto.FromProduct(product), &body); err != nil {
		return domain.Product{}, c.fail(ctx, span, "create", err)
	}

	c.recordRequest(ctx, "create", "success")
	span.SetStatus(codes.Ok, "Product created")
	return body.Data.ToProduct(), nil
}

// Update replaces the editable attributes of an existing product. The
// identifier travels in the path, never in the body.
func (c *Client) Update(ctx context.Context, id string, data domain.ProductData) (domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "GatewayClient.Update")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	var body dto.MutationResponse
	if err := c.do(ctx, http.MethodPut, c.productsURL(id), dto.FromProductData(data), &body); err != nil {
		return domain.Product{}, c.fail(ctx, span, "update", err)
	}

	c.recordRequest(ctx, "update", "success")
	span.SetStatus(codes.Ok, "Product updated")
	return body.Data.ToProduct(), nil
}

// Delete removes the product with the given ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "GatewayClient.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	var body dto.MessageResponse
	if err := c.do(ctx, http.MethodDelete, c.productsURL(id), nil, &body); err != nil {
		return c.fail(ctx, span, "delete", err)
	}

	c.recordRequest(ctx, "delete", "success")
	span.SetStatus(codes.Ok, "Product deleted")
	return nil
}

// ExistsByID reports whether the given ID is already taken.
func (c *Client) ExistsByID(ctx context.Context, id string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "GatewayClient.ExistsByID")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	var exists bool
	if err := c.do(ctx, http.MethodGet, c.productsURL("verification", id), nil, &exists); err != nil {
		return false, c.fail(ctx, span, "verify_id", err)
	}

	span.SetAttributes(attribute.Bool("product.exists", exists))
	c.recordRequest(ctx, "verify_id", "success")
	span.SetStatus(codes.Ok, "ID verified")
	return exists, nil
}

func (c *Client) productsURL(parts ...string) string {
	u := c.baseURL + productsPath
	for _, part := range parts {
		u += "/" + url.PathEscape(part)
	}
	return u
}

// do issues one JSON request and decodes the response into out. Error
// responses are decoded for their message; a 404 wraps
// domain.ErrProductNotFound.
func (c *Client) do(ctx context.Context, method, requestURL string, payload, out any) error {
	var reqBody *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, requestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errBody dto.MessageResponse
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s %s: %w", method, requestURL, domain.ErrProductNotFound)
		}
		return fmt.Errorf("%s %s: status %d: %s", method, requestURL, resp.StatusCode, errBody.Message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) fail(ctx context.Context, span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "Request failed")
	c.logger.ErrorContext(ctx, "Gateway request failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	c.recordRequest(ctx, operation, "failure")
	return err
}

func (c *Client) recordRequest(ctx context.Context, operation, result string) {
	c.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}
