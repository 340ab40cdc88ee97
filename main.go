package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hernancr2000/products-catalog/internal/app/catalog"
	"github.com/hernancr2000/products-catalog/internal/app/form"
	"github.com/hernancr2000/products-catalog/internal/app/navigation"
	"github.com/hernancr2000/products-catalog/internal/app/notification"
	"github.com/hernancr2000/products-catalog/internal/domain"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/config"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/gateway/rest"
	stubhttp "github.com/hernancr2000/products-catalog/internal/infrastructure/http"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/http/handler"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/repository/memory"
	"github.com/hernancr2000/products-catalog/internal/infrastructure/telemetry"
)

func main() {
	cfg := config.LoadConfig()

	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		var err error
		telem, err = telemetry.NewTelemetry(&cfg.OTLP)
		if err != nil {
			log.Fatalf("Failed to initialize telemetry: %v", err)
		}
	} else {
		telem = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer("products-catalog")
	meter := telem.MeterProvider.Meter("products-catalog")
	logger := telem.Logger

	logger.Info("Starting Products Catalog")

	apiCfg := cfg.API
	if apiCfg.BaseURL == "" {
		// No backend configured: run the embedded stub API and point
		// the gateway at it.
		repo := memory.NewProductRepository(tracer, logger)
		repo.Seed(demoProducts())

		server := stubhttp.NewServer(&cfg.Stub, handler.NewProductHandler(repo, logger), telem)
		l, err := net.Listen("tcp", net.JoinHostPort(cfg.Stub.Host, cfg.Stub.Port))
		if err != nil {
			log.Fatalf("Failed to start stub API: %v", err)
		}
		go func() {
			if err := server.Serve(l); err != nil {
				logger.Error("Stub API server error", "error", err.Error())
				cancel()
			}
		}()

		apiCfg.BaseURL = "http://" + l.Addr().String()
		logger.Info("Embedded stub API started", "base_url", apiCfg.BaseURL)
	}

	gateway := rest.NewClient(apiCfg, tracer, meter, logger)
	notifier := notification.NewCenter(cfg.UI.ToastDuration, logger)
	nav := navigation.NewNavigator(logger)

	catalogState := catalog.NewState(gateway, notifier, tracer, meter, logger, cfg.UI.PageSize)

	shell := &shell{
		gateway:  gateway,
		notifier: notifier,
		nav:      nav,
		catalog:  catalogState,
		telem:    telem,
		in:       bufio.NewScanner(os.Stdin),
	}

	done := make(chan struct{})
	go func() {
		shell.run(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down...")
	case <-done:
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	logger.Info("Stopped")
}

// shell is the minimal interactive front end driving the two view
// states. Rendering is plain text; all behavior lives in the states.
type shell struct {
	gateway  domain.ProductGateway
	notifier *notification.Center
	nav      *navigation.Navigator
	catalog  *catalog.State
	telem    *telemetry.Telemetry
	in       *bufio.Scanner
}

func (s *shell) run(ctx context.Context) {
	s.catalog.Load(ctx)
	s.printPage()

	for {
		fmt.Print("> ")
		if !s.in.Scan() {
			return
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "quit", "exit":
			return
		case "help":
			s.printHelp()
		case "list":
			s.catalog.Load(ctx)
			s.printPage()
		case "search":
			s.catalog.SetSearchTerm(arg)
			s.printPage()
		case "size":
			if n, err := strconv.Atoi(arg); err == nil {
				s.catalog.SetPageSize(n)
			}
			s.printPage()
		case "page":
			if n, err := strconv.Atoi(arg); err == nil {
				s.catalog.GoToPage(n)
			}
			s.printPage()
		case "next":
			s.catalog.NextPage()
			s.printPage()
		case "prev":
			s.catalog.PreviousPage()
			s.printPage()
		case "new":
			s.nav.GoToNew()
			s.runForm(ctx, "")
		case "edit":
			s.nav.GoToEdit(arg)
			s.runForm(ctx, arg)
		case "delete":
			s.deleteByID(ctx, arg)
		default:
			fmt.Println("unknown command; try 'help'")
		}
		s.printToast()
	}
}

func (s *shell) runForm(ctx context.Context, productID string) {
	tracer := s.telem.TracerProvider.Tracer("products-catalog")
	meter := s.telem.MeterProvider.Meter("products-catalog")

	f := form.NewState(s.gateway, s.notifier, s.nav, tracer, meter, s.telem.Logger, productID)
	f.Load(ctx)
	if s.nav.Current().Destination == navigation.DestinationList {
		// Load failed or the product was missing; the form navigated
		// itself back to the catalog.
		s.printToast()
		s.catalog.Load(ctx)
		s.printPage()
		return
	}

	editable := []string{form.FieldName, form.FieldDescription, form.FieldLogo, form.FieldDateRelease}
	if !f.IsEditMode() {
		editable = append([]string{form.FieldID}, editable...)
	}

	for _, name := range editable {
		fmt.Printf("%s [%s]: ", name, f.FieldValue(name))
		if !s.in.Scan() {
			return
		}
		if value := strings.TrimSpace(s.in.Text()); value != "" {
			f.SetField(name, value)
		} else {
			f.Touch(name)
		}
		if name == form.FieldID {
			f.OnIDBlur(ctx)
			s.waitForIDCheck(f)
		}
		if msg := f.FieldError(name); msg != "" {
			fmt.Println("  !", msg)
		}
	}
	fmt.Printf("%s (derived): %s\n", form.FieldDateRevision, f.FieldValue(form.FieldDateRevision))

	f.Submit(ctx)
	for _, name := range editable {
		if msg := f.FieldError(name); msg != "" {
			fmt.Printf("  ! %s: %s\n", name, msg)
		}
	}
	s.printToast()

	if s.nav.Current().Destination == navigation.DestinationList {
		s.catalog.Load(ctx)
		s.printPage()
	}
}

// waitForIDCheck blocks until the asynchronous uniqueness check
// resolves, so the prompt can show its outcome.
func (s *shell) waitForIDCheck(f *form.State) {
	for f.IsValidatingID() {
		time.Sleep(20 * time.Millisecond)
	}
}

func (s *shell) deleteByID(ctx context.Context, id string) {
	for _, p := range s.catalog.Products() {
		if p.ID == id {
			s.catalog.RequestDelete(p)
			fmt.Printf("%s [y/N]: ", s.catalog.DeleteConfirmationMessage())
			if s.in.Scan() && strings.EqualFold(strings.TrimSpace(s.in.Text()), "y") {
				s.catalog.ConfirmDelete(ctx)
			} else {
				s.catalog.CancelDelete()
			}
			s.printPage()
			return
		}
	}
	fmt.Println("no such product:", id)
}

func (s *shell) printPage() {
	if err := s.catalog.Error(); err != "" {
		fmt.Println("error:", err)
		return
	}
	for _, p := range s.catalog.PaginatedProducts() {
		fmt.Printf("%-10s  %-30s  %s  %s\n", p.ID, p.Name, p.DateRelease, p.DateRevision)
	}
	fmt.Printf("page %d/%d (%d results)\n",
		s.catalog.CurrentPage(), s.catalog.TotalPages(), s.catalog.TotalResults())
}

func (s *shell) printToast() {
	if n := s.notifier.Current(); n != nil {
		fmt.Printf("[%s] %s\n", n.Severity, n.Message)
	}
}

func (s *shell) printHelp() {
	fmt.Println(`commands:
  list                reload the catalog
  search <term>       filter by name or description
  size <n>            set page size
  page <n> | next | prev
  new                 create a product
  edit <id>           edit a product
  delete <id>         delete a product (with confirmation)
  quit`)
}

func demoProducts() []domain.Product {
	release := domain.Today().AddYears(1)
	mk := func(id, name, description string) domain.Product {
		return domain.Product{
			ID: id,
			ProductData: domain.ProductData{
				Name:         name,
				Description:  description,
				Logo:         "https://example.com/" + id + ".png",
				DateRelease:  release,
				DateRevision: release.AddYears(1),
			},
		}
	}
	return []domain.Product{
		mk("visa-cl", "Visa Classic", "Standard credit card for everyday purchases"),
		mk("visa-gold", "Visa Gold", "Credit card with extended benefits and insurance"),
		mk("master-pl", "Mastercard Platinum", "Premium credit card with concierge service"),
		mk("debit-std", "Debit Account Card", "Debit card linked to a checking account"),
		mk("prepaid", "Prepaid Card", "Rechargeable card for controlled spending"),
		mk("biz-corp", "Business Corporate", "Expense card for corporate employees"),
	}
}
