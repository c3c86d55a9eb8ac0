package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"plek/internal/app/policies"
	domainbooking "plek/internal/domain/booking"
	"plek/internal/domain/pricing"
	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/daterange"
	"plek/internal/domain/shared/money"
	domainuser "plek/internal/domain/user"
	"plek/internal/infra/storage/memory"
)

type billingStub struct {
	mu       sync.Mutex
	paid     bool
	entitled bool
	failures int
	calls    int
}

func (b *billingStub) HasRecentNonRefundedTransaction(ctx context.Context, customerID string, within time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failures > 0 {
		b.failures--
		return false, policies.ErrBillingUnavailable
	}
	return b.paid, nil
}

func (b *billingStub) HasActiveEntitlement(ctx context.Context, customerID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entitled, nil
}

func (b *billingStub) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type eventsStub struct {
	mu    sync.Mutex
	names []string
}

func (e *eventsStub) Publish(ctx context.Context, name, key string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = append(e.names, name)
	return nil
}

type fixture struct {
	svc      *Service
	billing  *billingStub
	events   *eventsStub
	bookings *memory.BookingStore

	property *domainproperty.Property
	customer *domainuser.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	props := memory.NewPropertyRepository()
	bookings := memory.NewBookingStore()
	estimates := memory.NewEstimateStore()
	billing := &billingStub{paid: true}
	events := &eventsStub{}

	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:          "prop-1",
		HostID:      "host-1",
		Title:       "Canal House",
		NightlyRate: money.Must(10000, "EUR"),
	})
	require.NoError(t, err)
	require.NoError(t, props.Save(context.Background(), prop))

	customer, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           "cust-1",
		Email:        "cust-1@example.com",
		Name:         "Customer One",
		PasswordHash: "hash",
		Roles:        []domainuser.Role{domainuser.RoleCustomer},
	})
	require.NoError(t, err)

	return &fixture{
		svc: &Service{
			Properties:    props,
			Estimates:     estimates,
			Bookings:      bookings,
			Billing:       billing,
			Events:        events,
			BillingWindow: 24 * time.Hour,
		},
		billing:  billing,
		events:   events,
		bookings: bookings,
		property: prop,
		customer: customer,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) addBooking(t *testing.T, id string, from, to time.Time) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.New(from, to)
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: f.property.ID,
		CustomerID: "other-customer",
		Range:      dr,
		Package:    pricing.PackageStandard,
		Total:      money.Must(40000, "EUR"),
		Token:      "tok-" + id,
	})
	require.NoError(t, err)
	require.NoError(t, f.bookings.Insert(context.Background(), b))
	return b
}

func (f *fixture) addEstimate(t *testing.T, id string, from, to time.Time) *domainbooking.Estimate {
	t.Helper()
	dr, err := daterange.New(from, to)
	require.NoError(t, err)
	tier, total, err := pricing.Quote(pricing.DefaultTiers, f.property.NightlyRate, dr.Nights(), pricing.PackageStandard)
	require.NoError(t, err)
	e, err := domainbooking.NewEstimate(domainbooking.EstimateParams{
		ID:         domainbooking.EstimateID(id),
		PropertyID: f.property.ID,
		CustomerID: string(f.customer.ID),
		Guests:     []string{"friend-1"},
		Range:      dr,
		Package:    pricing.PackageStandard,
		TierID:     tier.ID,
		Total:      total,
		Token:      "tok-" + id,
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Estimates.Upsert(context.Background(), e))
	return e
}

func TestIsAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBooking(t, "b1", date(2024, 6, 1), date(2024, 6, 5))

	// checkout day is free, back-to-back stays work
	ok, err := f.svc.IsAvailable(ctx, "prop-1", date(2024, 6, 5), date(2024, 6, 8))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.svc.IsAvailable(ctx, "prop-1", date(2024, 6, 4), date(2024, 6, 6))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.svc.IsAvailable(ctx, "missing", date(2024, 6, 1), date(2024, 6, 2))
	require.ErrorIs(t, err, domainproperty.ErrNotFound)

	_, err = f.svc.IsAvailable(ctx, "prop-1", date(2024, 6, 5), date(2024, 6, 5))
	require.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestUnavailableDatesDedupedAndSorted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBooking(t, "b1", date(2024, 6, 3), date(2024, 6, 5))
	f.addBooking(t, "b2", date(2024, 6, 1), date(2024, 6, 3))

	days, err := f.svc.UnavailableDates(ctx, "prop-1")
	require.NoError(t, err)
	require.Equal(t, []time.Time{
		date(2024, 6, 1),
		date(2024, 6, 2),
		date(2024, 6, 3),
		date(2024, 6, 4),
	}, days)
}

func TestConfirmPromotesEstimate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	b, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.NoError(t, err)

	require.Equal(t, estimate.PropertyID, b.PropertyID)
	require.Equal(t, estimate.CustomerID, b.CustomerID)
	require.Equal(t, estimate.Guests, b.Guests)
	require.True(t, estimate.Range.Equal(b.Range))
	require.Equal(t, estimate.Package, b.Package)
	require.Equal(t, estimate.Total, b.Total)
	require.Equal(t, estimate.ID, b.EstimateID)
	require.Equal(t, domainbooking.PaymentPaid, b.PaymentStatus)

	stored, err := f.svc.Estimates.ByID(ctx, estimate.ID)
	require.NoError(t, err)
	require.True(t, stored.Paid())

	require.Equal(t, 1, f.billing.callCount())
	require.Equal(t, []string{policies.EventBookingConfirmed}, f.events.names)
}

func TestConfirmIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	first, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.NoError(t, err)

	second, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	// payment is not re-verified for an already-paid estimate
	require.Equal(t, 1, f.billing.callCount())
}

func TestConfirmRetriesInsertForPaidEstimate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	// simulate a crash after markPaid but before the booking insert
	require.NoError(t, f.svc.Estimates.MarkPaid(ctx, estimate.ID, time.Now()))

	b, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.NoError(t, err)
	require.Equal(t, estimate.ID, b.EstimateID)
	require.Equal(t, 0, f.billing.callCount())
}

func TestConfirmPaymentNotVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.billing.paid = false
	f.billing.entitled = false
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	_, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.ErrorIs(t, err, ErrPaymentNotVerified)

	// nothing was mutated
	stored, err := f.svc.Estimates.ByID(ctx, estimate.ID)
	require.NoError(t, err)
	require.False(t, stored.Paid())
	_, err = f.bookings.ByEstimateID(ctx, estimate.ID)
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestConfirmEntitlementCoversMissingTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.billing.paid = false
	f.billing.entitled = true
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	_, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.NoError(t, err)
}

func TestConfirmRetriesBillingOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.billing.failures = 1
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	_, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.NoError(t, err)
	require.Equal(t, 2, f.billing.callCount())
}

func TestConfirmSurfacesPersistentBillingFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.billing.failures = 2
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	_, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.ErrorIs(t, err, ErrPaymentNotVerified)
	require.ErrorIs(t, err, policies.ErrBillingUnavailable)
}

func TestConfirmDateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))
	f.addBooking(t, "b1", date(2024, 6, 4), date(2024, 6, 6))

	_, err := f.svc.Confirm(ctx, f.customer, estimate.ID)
	require.ErrorIs(t, err, domainbooking.ErrDateConflict)
}

func TestConfirmOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	estimate := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	stranger, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "cust-2", Email: "cust-2@example.com", Name: "Two", PasswordHash: "hash",
		Roles: []domainuser.Role{domainuser.RoleCustomer},
	})
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, stranger, estimate.ID)
	require.ErrorIs(t, err, domainbooking.ErrNotOwner)

	admin, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "admin-1", Email: "admin@example.com", Name: "Admin", PasswordHash: "hash",
		Roles: []domainuser.Role{domainuser.RoleAdmin},
	})
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, admin, estimate.ID)
	require.NoError(t, err)
}

func TestConfirmConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// two customers racing for the same nights
	other, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "cust-2", Email: "cust-2@example.com", Name: "Two", PasswordHash: "hash",
		Roles: []domainuser.Role{domainuser.RoleCustomer},
	})
	require.NoError(t, err)

	first := f.addEstimate(t, "e1", date(2024, 6, 1), date(2024, 6, 8))

	dr, err := daterange.New(date(2024, 6, 1), date(2024, 6, 8))
	require.NoError(t, err)
	second, err := domainbooking.NewEstimate(domainbooking.EstimateParams{
		ID:         "e2",
		PropertyID: f.property.ID,
		CustomerID: string(other.ID),
		Range:      dr,
		Package:    pricing.PackageStandard,
		TierID:     "week",
		Total:      money.Must(63000, "EUR"),
		Token:      "tok-e2",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Estimates.Upsert(ctx, second))

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = f.svc.Confirm(ctx, f.customer, first.ID)
	}()
	go func() {
		defer wg.Done()
		_, results[1] = f.svc.Confirm(ctx, other, second.ID)
	}()
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainbooking.ErrDateConflict):
			conflicts++
		default:
			t.Fatalf("unexpected confirm error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, conflicts)

	all, err := f.bookings.ListByProperty(ctx, f.property.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCreateDirect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "host-1", Email: "host@example.com", Name: "Host", PasswordHash: "hash",
		Roles: []domainuser.Role{domainuser.RoleHost},
	})
	require.NoError(t, err)

	_, err = f.svc.CreateDirect(ctx, f.customer, DirectBookingParams{
		PropertyID: "prop-1",
		From:       date(2024, 7, 1),
		To:         date(2024, 7, 3),
	})
	require.ErrorIs(t, err, ErrPermissionDenied)

	b, err := f.svc.CreateDirect(ctx, host, DirectBookingParams{
		PropertyID: "prop-1",
		CustomerID: "walk-in",
		From:       date(2024, 7, 1),
		To:         date(2024, 7, 3),
		TotalCents: 20000,
	})
	require.NoError(t, err)
	require.Equal(t, "walk-in", b.CustomerID)
	require.Empty(t, b.EstimateID)

	// a host cannot book someone else's property
	otherHost, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "host-2", Email: "host2@example.com", Name: "Host Two", PasswordHash: "hash",
		Roles: []domainuser.Role{domainuser.RoleHost},
	})
	require.NoError(t, err)
	_, err = f.svc.CreateDirect(ctx, otherHost, DirectBookingParams{
		PropertyID: "prop-1",
		From:       date(2024, 8, 1),
		To:         date(2024, 8, 3),
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBooking(t, "b1", date(2024, 6, 1), date(2024, 6, 5))

	require.ErrorIs(t, f.svc.Delete(ctx, f.customer, b.ID), ErrPermissionDenied)

	host, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "host-1", Email: "host@example.com", Name: "Host", PasswordHash: "hash",
		Roles: []domainuser.Role{domainuser.RoleHost},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, host, b.ID))

	// the freed nights are bookable again
	ok, err := f.svc.IsAvailable(ctx, "prop-1", date(2024, 6, 1), date(2024, 6, 5))
	require.NoError(t, err)
	require.True(t, ok)
}
