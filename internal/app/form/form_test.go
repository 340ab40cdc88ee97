package form

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hernancr2000/products-catalog/internal/app/navigation"
	"github.com/hernancr2000/products-catalog/internal/app/notification"
	"github.com/hernancr2000/products-catalog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type fakeGateway struct {
	listFn     func(ctx context.Context) ([]domain.Product, error)
	createFn   func(ctx context.Context, p domain.Product) (domain.Product, error)
	updateFn   func(ctx context.Context, id string, d domain.ProductData) (domain.Product, error)
	existsByID func(ctx context.Context, id string) (bool, error)
}

func (f *fakeGateway) List(ctx context.Context) ([]domain.Product, error) {
	return f.listFn(ctx)
}

func (f *fakeGateway) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	return f.createFn(ctx, p)
}

func (f *fakeGateway) Update(ctx context.Context, id string, d domain.ProductData) (domain.Product, error) {
	return f.updateFn(ctx, id, d)
}

func (f *fakeGateway) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeGateway) ExistsByID(ctx context.Context, id string) (bool, error) {
	return f.existsByID(ctx, id)
}

func testEnv(t *testing.T) (*notification.Center, *navigation.Navigator, *slog.Logger) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return notification.NewCenter(time.Minute, logger), navigation.NewNavigator(logger), logger
}

func newFormState(t *testing.T, gw domain.ProductGateway, productID string) (*State, *notification.Center, *navigation.Navigator) {
	t.Helper()
	notifier, nav, logger := testEnv(t)
	s := NewState(gw, notifier, nav, otel.Tracer("test"), otel.Meter("test"), logger, productID)
	return s, notifier, nav
}

func fillValid(s *State) {
	release := domain.Today().AddYears(1).String()
	s.SetField(FieldID, "prod-9")
	s.SetField(FieldName, "Brand New Product")
	s.SetField(FieldDescription, "A sufficiently long description")
	s.SetField(FieldLogo, "https://example.com/logo.png")
	s.SetField(FieldDateRelease, release)
}

func waitForIDCheck(t *testing.T, s *State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.IsValidatingID() {
		if time.Now().After(deadline) {
			t.Fatal("ID check did not resolve")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewStateModes(t *testing.T) {
	t.Parallel()

	create, _, _ := newFormState(t, &fakeGateway{}, "")
	assert.False(t, create.IsEditMode())
	assert.False(t, create.IsValid())

	edit, _, _ := newFormState(t, &fakeGateway{}, "prod-1")
	assert.True(t, edit.IsEditMode())
	assert.Equal(t, "prod-1", edit.ProductID())
}

func TestFieldErrorsAreTouchGated(t *testing.T) {
	t.Parallel()

	s, _, _ := newFormState(t, &fakeGateway{}, "")

	// Untouched fields show nothing even though they fail validation.
	assert.Empty(t, s.FieldError(FieldName))

	s.Touch(FieldName)
	assert.Equal(t, "This field is required!", s.FieldError(FieldName))

	s.SetField(FieldName, "abc")
	assert.Equal(t, "Minimum 5 characters!", s.FieldError(FieldName))

	s.SetField(FieldName, "a valid product name")
	assert.Empty(t, s.FieldError(FieldName))
}

func TestLengthBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{name: "id below minimum", field: FieldID, value: "ab", want: "Minimum 3 characters!"},
		{name: "id at minimum", field: FieldID, value: "abc", want: ""},
		{name: "id at maximum", field: FieldID, value: "abcdefghij", want: ""},
		{name: "id above maximum", field: FieldID, value: "abcdefghijk", want: "Maximum 10 characters!"},
		{name: "description below minimum", field: FieldDescription, value: "too short", want: "Minimum 10 characters!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newFormState(t, &fakeGateway{}, "")
			s.SetField(tt.field, tt.value)
			assert.Equal(t, tt.want, s.FieldError(tt.field))
		})
	}
}

func TestReleaseDateMustBeTodayOrLater(t *testing.T) {
	t.Parallel()

	s, _, _ := newFormState(t, &fakeGateway{}, "")

	s.SetField(FieldDateRelease, "2020-01-01")
	assert.Equal(t, "Date must be today or later!", s.FieldError(FieldDateRelease))

	s.SetField(FieldDateRelease, domain.Today().String())
	assert.Empty(t, s.FieldError(FieldDateRelease))
}

func TestRevisionDateIsDerived(t *testing.T) {
	t.Parallel()

	s, _, _ := newFormState(t, &fakeGateway{}, "")

	s.SetField(FieldDateRelease, "2027-03-15")
	assert.Equal(t, "2028-03-15", s.FieldValue(FieldDateRevision))

	// Direct writes to the derived field are ignored.
	s.SetField(FieldDateRevision, "1999-01-01")
	assert.Equal(t, "2028-03-15", s.FieldValue(FieldDateRevision))

	s.SetField(FieldDateRelease, "")
	assert.Empty(t, s.FieldValue(FieldDateRevision))
}

func TestSubmitInvalidFormMakesNoNetworkCall(t *testing.T) {
	t.Parallel()

	created := false
	gw := &fakeGateway{
		createFn: func(ctx context.Context, p domain.Product) (domain.Product, error) {
			created = true
			return p, nil
		},
	}
	s, _, _ := newFormState(t, gw, "")

	s.Submit(context.Background())

	assert.False(t, created)
	for _, name := range fieldNames {
		assert.NotEmpty(t, s.FieldError(name), "field %s should surface its error after submit", name)
	}
}

func TestSubmitCreateSuccess(t *testing.T) {
	t.Parallel()

	var got domain.Product
	gw := &fakeGateway{
		createFn: func(ctx context.Context, p domain.Product) (domain.Product, error) {
			got = p
			return p, nil
		},
	}
	s, notifier, nav := newFormState(t, gw, "")
	fillValid(s)
	require.True(t, s.IsValid())

	s.Submit(context.Background())

	assert.Equal(t, "prod-9", got.ID)
	assert.Equal(t, got.DateRelease.AddYears(1), got.DateRevision)
	assert.Equal(t, navigation.DestinationList, nav.Current().Destination)

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Equal(t, notification.SeveritySuccess, n.Severity)
}

func TestSubmitCreateFailureKeepsForm(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		createFn: func(ctx context.Context, p domain.Product) (domain.Product, error) {
			return domain.Product{}, errors.New("boom")
		},
	}
	s, notifier, nav := newFormState(t, gw, "")
	nav.GoToNew()
	fillValid(s)

	s.Submit(context.Background())

	assert.Equal(t, navigation.DestinationNew, nav.Current().Destination)
	assert.Equal(t, "prod-9", s.FieldValue(FieldID))
	assert.False(t, s.IsSubmitting())

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Equal(t, notification.SeverityError, n.Severity)
}

func TestEditLoadAndUpdate(t *testing.T) {
	t.Parallel()

	release := domain.NewDate(2027, time.May, 1)
	existing := domain.Product{
		ID: "prod-1",
		ProductData: domain.ProductData{
			Name:         "Existing Product",
			Description:  "An existing product description",
			Logo:         "https://example.com/logo.png",
			DateRelease:  release,
			DateRevision: release.AddYears(1),
		},
	}

	var updatedID string
	var updated domain.ProductData
	gw := &fakeGateway{
		listFn: func(ctx context.Context) ([]domain.Product, error) {
			return []domain.Product{existing}, nil
		},
		updateFn: func(ctx context.Context, id string, d domain.ProductData) (domain.Product, error) {
			updatedID = id
			updated = d
			return domain.Product{ID: id, ProductData: d}, nil
		},
	}
	s, _, nav := newFormState(t, gw, "prod-1")

	s.Load(context.Background())
	assert.Equal(t, "Existing Product", s.FieldValue(FieldName))
	assert.Equal(t, "2027-05-01", s.FieldValue(FieldDateRelease))
	require.True(t, s.IsValid())

	// The identifier is locked in edit mode.
	s.SetField(FieldID, "other-id")
	assert.Equal(t, "prod-1", s.FieldValue(FieldID))

	s.SetField(FieldName, "Renamed Product")
	s.Submit(context.Background())

	assert.Equal(t, "prod-1", updatedID)
	assert.Equal(t, "Renamed Product", updated.Name)
	assert.Equal(t, navigation.DestinationList, nav.Current().Destination)
}

func TestEditLoadMissingProductNavigatesBack(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		listFn: func(ctx context.Context) ([]domain.Product, error) {
			return nil, nil
		},
	}
	s, notifier, nav := newFormState(t, gw, "ghost")
	nav.GoToEdit("ghost")

	s.Load(context.Background())

	assert.Equal(t, navigation.DestinationList, nav.Current().Destination)
	n := notifier.Current()
	require.NotNil(t, n)
	assert.Equal(t, notification.SeverityError, n.Severity)
}

func TestEditLoadErrorNavigatesBack(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		listFn: func(ctx context.Context) ([]domain.Product, error) {
			return nil, errors.New("boom")
		},
	}
	s, _, nav := newFormState(t, gw, "prod-1")
	nav.GoToEdit("prod-1")

	s.Load(context.Background())

	assert.Equal(t, navigation.DestinationList, nav.Current().Destination)
	assert.False(t, s.IsLoading())
}

func TestOnIDBlurFlagsTakenID(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		existsByID: func(ctx context.Context, id string) (bool, error) {
			return id == "taken-id", nil
		},
	}
	s, _, _ := newFormState(t, gw, "")

	s.SetField(FieldID, "taken-id")
	s.OnIDBlur(context.Background())
	waitForIDCheck(t, s)

	assert.Equal(t, "ID is not available!", s.FieldError(FieldID))
	assert.False(t, s.IsValid())

	// A free identifier clears the flag through normal revalidation.
	s.SetField(FieldID, "free-id")
	s.OnIDBlur(context.Background())
	waitForIDCheck(t, s)

	assert.Empty(t, s.FieldError(FieldID))
}

func TestOnIDBlurSkipsInvalidValue(t *testing.T) {
	t.Parallel()

	called := false
	gw := &fakeGateway{
		existsByID: func(ctx context.Context, id string) (bool, error) {
			called = true
			return false, nil
		},
	}
	s, _, _ := newFormState(t, gw, "")

	s.SetField(FieldID, "ab")
	s.OnIDBlur(context.Background())
	waitForIDCheck(t, s)
	assert.False(t, called)

	s.SetField(FieldID, "")
	s.OnIDBlur(context.Background())
	waitForIDCheck(t, s)
	assert.False(t, called)
}

func TestOnIDBlurIgnoredInEditMode(t *testing.T) {
	t.Parallel()

	called := false
	gw := &fakeGateway{
		listFn: func(ctx context.Context) ([]domain.Product, error) {
			return nil, nil
		},
		existsByID: func(ctx context.Context, id string) (bool, error) {
			called = true
			return true, nil
		},
	}
	s, _, _ := newFormState(t, gw, "prod-1")

	s.OnIDBlur(context.Background())
	waitForIDCheck(t, s)
	assert.False(t, called)
}

func TestLateIDCheckResponseIsDiscarded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	gw := &fakeGateway{
		existsByID: func(ctx context.Context, id string) (bool, error) {
			<-release
			return true, nil
		},
	}
	s, _, _ := newFormState(t, gw, "")

	s.SetField(FieldID, "old-value")
	s.OnIDBlur(context.Background())

	// The user keeps typing while the check is in flight.
	s.SetField(FieldID, "new-value")

	close(release)
	waitForIDCheck(t, s)

	// The stale "exists" answer must not flag the new value.
	assert.Empty(t, s.FieldError(FieldID))
}

func TestIDCheckTransportFailureIsNonBlocking(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		existsByID: func(ctx context.Context, id string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	s, _, _ := newFormState(t, gw, "")

	fillValid(s)
	s.OnIDBlur(context.Background())
	waitForIDCheck(t, s)

	assert.Empty(t, s.FieldError(FieldID))
	assert.True(t, s.IsValid())
}

func TestResetCreateMode(t *testing.T) {
	t.Parallel()

	s, _, _ := newFormState(t, &fakeGateway{}, "")
	fillValid(s)
	require.True(t, s.IsValid())

	s.Reset(context.Background())

	assert.Empty(t, s.FieldValue(FieldID))
	assert.Empty(t, s.FieldValue(FieldName))
	assert.Empty(t, s.FieldError(FieldName))
	assert.False(t, s.IsValid())
}

func TestResetEditModeReloads(t *testing.T) {
	t.Parallel()

	release := domain.NewDate(2027, time.May, 1)
	gw := &fakeGateway{
		listFn: func(ctx context.Context) ([]domain.Product, error) {
			return []domain.Product{{
				ID: "prod-1",
				ProductData: domain.ProductData{
					Name:         "Existing Product",
					Description:  "An existing product description",
					Logo:         "https://example.com/logo.png",
					DateRelease:  release,
					DateRevision: release.AddYears(1),
				},
			}}, nil
		},
	}
	s, _, _ := newFormState(t, gw, "prod-1")
	s.Load(context.Background())

	s.SetField(FieldName, "Scratch Name")
	s.Reset(context.Background())

	assert.Equal(t, "Existing Product", s.FieldValue(FieldName))
}
