// Package http hosts the embedded stub API server. It serves the same
// REST contract as the real products backend so the application can run
// self-contained when no backend is configured.
package http

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/config"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/http/handler"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/http/middleware"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// Server is the embedded stub API server.
type Server struct {
	router    *chi.Mux
	config    *config.StubConfig
	handler   *handler.ProductHandler
	logger    *slog.Logger
	telemetry *telemetry.Telemetry
}

// NewServer creates a stub server serving the products REST contract.
func NewServer(
	cfg *config.StubConfig,
	productHandler *handler.ProductHandler,
	telem *telemetry.Telemetry,
) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		handler:   productHandler,
		logger:    telem.Logger,
		telemetry: telem,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.HTTPRouteContext())

	meter := s.telemetry.MeterProvider.Meter("products-catalog")
	s.router.Use(middleware.ActiveRequests(meter))
}

func (s *Server) setupRoutes() {
	s.router.Route("/bp/products", func(r chi.Router) {
		r.Get("/", s.handler.ListProducts)
		r.Post("/", s.handler.CreateProduct)
		r.Put("/{id}", s.handler.UpdateProduct)
		r.Delete("/{id}", s.handler.DeleteProduct)
		r.Get("/verification/{id}", s.handler.VerifyProductID)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint, fed by the OpenTelemetry exporter.
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// Handler returns the server's handler wrapped with otelhttp for
// automatic HTTP metrics and tracing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "stub-api",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithMeterProvider(s.telemetry.MeterProvider),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			routePattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					routePattern = pattern
				}
			}
			return []attribute.KeyValue{
				attribute.String("http.route", routePattern),
			}
		}),
	)
}

// Serve runs the server on an existing listener, so the caller can bind
// an ephemeral port for embedded use.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting stub API server",
		slog.String("address", l.Addr().String()),
	)
	return http.Serve(l, s.Handler())
}

// Start binds the configured address and runs the server.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, s.config.Port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(l)
}
