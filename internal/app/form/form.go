// Package form implements the product form state: per-field synchronous
// validation, the derived revision date, the asynchronous identifier
// uniqueness check, and create/update submission.
package form

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hernancr2000/products-catalog/internal/app/navigation"
	"github.com/hernancr2000/products-catalog/internal/app/notification"
	"github.com/hernancr2000/products-catalog/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Field names, matching the wire attribute names.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldDescription  = "description"
	FieldLogo         = "logo"
	FieldDateRelease  = "date_release"
	FieldDateRevision = "date_revision"
)

// fieldNames lists every field in display order.
var fieldNames = []string{
	FieldID, FieldName, FieldDescription, FieldLogo, FieldDateRelease, FieldDateRevision,
}

type field struct {
	value    string
	touched  bool
	failures []domain.FieldFailure
}

// State owns one product's editable representation. The mode is fixed at
// construction: a non-empty product ID selects edit mode, where the
// identifier is locked and initial values come from the gateway.
type State struct {
	gateway    domain.ProductGateway
	notifier   *notification.Center
	nav        *navigation.Navigator
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter

	editMode  bool
	productID string

	mu           sync.Mutex
	fields       map[string]*field
	isLoading    bool
	isSubmitting bool
	idChecks     int
}

// NewState creates a form state. An empty productID selects create mode
// with all fields blank; otherwise the state is in edit mode and the
// caller is expected to invoke Load to populate it.
func NewState(
	gateway domain.ProductGateway,
	notifier *notification.Center,
	nav *navigation.Navigator,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
	productID string,
) *State {
	operations, _ := meter.Int64Counter(
		"form.operations",
		metric.WithDescription("Total number of product form operations"),
	)

	s := &State{
		gateway:    gateway,
		notifier:   notifier,
		nav:        nav,
		tracer:     tracer,
		logger:     logger,
		operations: operations,
		editMode:   productID != "",
		productID:  productID,
	}
	s.fields = blankFields()
	s.validateAllLocked()
	return s
}

// validateAllLocked re-runs the synchronous validators on every field,
// keeping the failure sets consistent even before any interaction.
func (s *State) validateAllLocked() {
	for _, name := range fieldNames {
		s.validateLocked(name)
	}
}

func blankFields() map[string]*field {
	fields := make(map[string]*field, len(fieldNames))
	for _, name := range fieldNames {
		fields[name] = &field{}
	}
	return fields
}

// IsEditMode reports whether the state edits an existing product.
func (s *State) IsEditMode() bool {
	return s.editMode
}

// ProductID returns the ID the form was opened for ("" in create mode).
func (s *State) ProductID() string {
	return s.productID
}

// Load populates an edit-mode form from the gateway's list, found by
// linear scan for the matching ID. A failed load or a missing product
// is fatal to this view: it notifies and navigates back to the catalog.
// In create mode Load does nothing.
func (s *State) Load(ctx context.Context) {
	if !s.editMode {
		return
	}

	ctx, span := s.tracer.Start(ctx, "FormState.Load")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", s.productID))

	s.mu.Lock()
	s.isLoading = true
	s.mu.Unlock()

	products, err := s.gateway.List(ctx)

	s.mu.Lock()
	s.isLoading = false
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load product")
		s.logger.ErrorContext(ctx, "Failed to load product",
			slog.String("product_id", s.productID),
			slog.String("error", err.Error()),
		)
		s.notifier.Show("Could not load the product.", notification.SeverityError)
		s.nav.GoToList()
		s.recordOperation(ctx, "load", "failure")
		return
	}

	for _, p := range products {
		if p.ID == s.productID {
			s.populate(p)
			s.recordOperation(ctx, "load", "success")
			span.SetStatus(codes.Ok, "Product loaded")
			return
		}
	}

	span.SetStatus(codes.Error, "Product not found")
	s.logger.WarnContext(ctx, "Product not found",
		slog.String("product_id", s.productID),
	)
	s.notifier.Show("Product not found.", notification.SeverityError)
	s.nav.GoToList()
	s.recordOperation(ctx, "load", "not_found")
}

func (s *State) populate(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fields = blankFields()
	s.fields[FieldID].value = p.ID
	s.fields[FieldName].value = p.Name
	s.fields[FieldDescription].value = p.Description
	s.fields[FieldLogo].value = p.Logo
	s.fields[FieldDateRelease].value = p.DateRelease.String()
	s.fields[FieldDateRevision].value = p.DateRevision.String()
	s.validateAllLocked()
}

// SetField updates a field's value, marks it as interacted with, and
// re-runs that field's synchronous validators. Setting the release date
// recomputes the derived revision date. The identifier is immutable in
// edit mode and the revision date is never directly settable.
func (s *State) SetField(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == FieldDateRevision {
		return
	}
	if name == FieldID && s.editMode {
		return
	}
	f, ok := s.fields[name]
	if !ok {
		return
	}

	f.value = value
	f.touched = true
	s.validateLocked(name)

	if name == FieldDateRelease {
		s.recomputeRevisionLocked()
	}
}

// Touch marks a field as interacted with without changing its value.
func (s *State) Touch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fields[name]; ok {
		f.touched = true
	}
}

// recomputeRevisionLocked derives date_revision = date_release + 1
// calendar year, or clears it when the release date is unusable.
func (s *State) recomputeRevisionLocked() {
	release := s.fields[FieldDateRelease].value
	revision := s.fields[FieldDateRevision]

	d, err := domain.ParseDate(release)
	if release == "" || err != nil {
		revision.value = ""
	} else {
		revision.value = d.AddYears(1).String()
	}
	s.validateLocked(FieldDateRevision)
}

func (s *State) validateLocked(name string) {
	f := s.fields[name]
	switch name {
	case FieldID:
		// Replacing the failure set also discards any stale idExists
		// result from a previous uniqueness check.
		f.failures = domain.ValidateID(f.value)
	case FieldName:
		f.failures = domain.ValidateName(f.value)
	case FieldDescription:
		f.failures = domain.ValidateDescription(f.value)
	case FieldLogo:
		f.failures = domain.ValidateLogo(f.value)
	case FieldDateRelease:
		f.failures = domain.ValidateReleaseDate(s.parseDateLocked(name), domain.Today())
	case FieldDateRevision:
		f.failures = domain.ValidateRevisionDate(s.parseDateLocked(name))
	}
}

// parseDateLocked reads a date field, yielding the zero Date for empty
// or malformed input.
func (s *State) parseDateLocked(name string) domain.Date {
	value := s.fields[name].value
	if value == "" {
		return domain.Date{}
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}
	}
	return d
}

// OnIDBlur triggers the asynchronous identifier uniqueness check. It
// runs only in create mode and only while the identifier passes its
// synchronous validators. The checked value is captured with the
// request; a response that arrives after the field changed again is
// discarded, so a late answer never flags the wrong value. A transport
// failure resolves as "could not confirm" and blocks nothing.
func (s *State) OnIDBlur(ctx context.Context) {
	if s.editMode {
		return
	}

	s.mu.Lock()
	f := s.fields[FieldID]
	f.touched = true
	if f.value == "" || len(f.failures) > 0 {
		s.mu.Unlock()
		return
	}
	checked := f.value
	s.idChecks++
	s.mu.Unlock()

	go s.verifyID(ctx, checked)
}

func (s *State) verifyID(ctx context.Context, checked string) {
	ctx, span := s.tracer.Start(ctx, "FormState.VerifyID")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", checked))

	exists, err := s.gateway.ExistsByID(ctx, checked)

	s.mu.Lock()
	s.idChecks--
	if err == nil && exists {
		f := s.fields[FieldID]
		if f.value == checked && !hasFailure(f.failures, domain.FailureIDExists) {
			f.failures = append(f.failures, domain.FieldFailure{Kind: domain.FailureIDExists})
		}
	}
	s.mu.Unlock()

	switch {
	case err != nil:
		span.RecordError(err)
		s.logger.WarnContext(ctx, "ID uniqueness check failed, allowing user to proceed",
			slog.String("product_id", checked),
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "verify_id", "unknown")
	case exists:
		s.recordOperation(ctx, "verify_id", "exists")
	default:
		s.recordOperation(ctx, "verify_id", "available")
	}
	span.SetStatus(codes.Ok, "ID check resolved")
}

func hasFailure(failures []domain.FieldFailure, kind domain.FailureKind) bool {
	for _, f := range failures {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// Submit validates the whole form and, when clean, sends a create or
// update through the gateway. A failing form only marks every field as
// interacted with so the errors become visible; no network call is
// made. On success the user is notified and navigated to the catalog;
// on failure the form stays populated for correction.
func (s *State) Submit(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "FormState.Submit")
	defer span.End()

	s.mu.Lock()
	if s.invalidLocked() {
		for _, name := range fieldNames {
			s.fields[name].touched = true
		}
		s.mu.Unlock()
		span.SetStatus(codes.Error, "Validation failed")
		s.recordOperation(ctx, "submit", "invalid")
		return
	}
	product := s.productLocked()
	s.isSubmitting = true
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.Bool("form.edit_mode", s.editMode),
	)

	var err error
	if s.editMode {
		_, err = s.gateway.Update(ctx, s.productID, product.Data())
	} else {
		_, err = s.gateway.Create(ctx, product)
	}

	s.mu.Lock()
	s.isSubmitting = false
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Submit failed")
		s.logger.ErrorContext(ctx, "Failed to save product",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		if s.editMode {
			s.notifier.Show("Could not update the product.", notification.SeverityError)
		} else {
			s.notifier.Show("Could not create the product.", notification.SeverityError)
		}
		s.recordOperation(ctx, "submit", "failure")
		return
	}

	if s.editMode {
		s.notifier.Show("Product updated successfully!", notification.SeveritySuccess)
	} else {
		s.notifier.Show("Product created successfully!", notification.SeveritySuccess)
	}
	s.logger.InfoContext(ctx, "Product saved",
		slog.String("product_id", product.ID),
	)
	s.recordOperation(ctx, "submit", "success")
	span.SetStatus(codes.Ok, "Product saved")
	s.nav.GoToList()
}

// Reset restores the form: edit mode reloads the original product,
// create mode clears every field back to blank and untouched.
func (s *State) Reset(ctx context.Context) {
	if s.editMode {
		s.Load(ctx)
		return
	}
	s.mu.Lock()
	s.fields = blankFields()
	s.validateAllLocked()
	s.mu.Unlock()
}

// FieldValue returns a field's current value.
func (s *State) FieldValue(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fields[name]; ok {
		return f.value
	}
	return ""
}

// FieldFailures returns a copy of a field's current failure set.
func (s *State) FieldFailures(name string) []domain.FieldFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fields[name]
	if !ok || len(f.failures) == 0 {
		return nil
	}
	out := make([]domain.FieldFailure, len(f.failures))
	copy(out, f.failures)
	return out
}

// FieldError returns the message to display for a field: non-empty only
// once the field has been interacted with and still fails validation.
func (s *State) FieldError(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fields[name]
	if !ok || !f.touched {
		return ""
	}
	return domain.FailureMessage(f.failures)
}

// IsValid reports whether every field passes validation.
func (s *State) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.invalidLocked()
}

// IsLoading reports whether an edit-mode load is in flight.
func (s *State) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// IsSubmitting reports whether a create or update is in flight.
func (s *State) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSubmitting
}

// IsValidatingID reports whether an identifier check is in flight.
func (s *State) IsValidatingID() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idChecks > 0
}

func (s *State) invalidLocked() bool {
	for _, name := range fieldNames {
		if len(s.fields[name].failures) > 0 {
			return true
		}
	}
	return false
}

// productLocked assembles the domain product from the field values.
// Only meaningful once the form validates.
func (s *State) productLocked() domain.Product {
	return domain.Product{
		ID: s.fields[FieldID].value,
		ProductData: domain.ProductData{
			Name:         s.fields[FieldName].value,
			Description:  s.fields[FieldDescription].value,
			Logo:         s.fields[FieldLogo].value,
			DateRelease:  s.parseDateLocked(FieldDateRelease),
			DateRevision: s.parseDateLocked(FieldDateRevision),
		},
	}
}

func (s *State) recordOperation(ctx context.Context, operation, result string) {
	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}
