package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainbooking "plek/internal/domain/booking"
	"plek/internal/domain/pricing"
	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/daterange"
	"plek/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, from, to time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(from, to)
	require.NoError(t, err)
	return dr
}

func newBooking(t *testing.T, id, propertyID string, dr daterange.DateRange) *domainbooking.Booking {
	t.Helper()
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: domainproperty.ID(propertyID),
		CustomerID: "cust-" + id,
		Range:      dr,
		Package:    pricing.PackageStandard,
		Total:      money.Must(10000, "EUR"),
		Token:      "tok-" + id,
	})
	require.NoError(t, err)
	return b
}

func TestBookingStoreInsertRejectsOverlap(t *testing.T) {
	store := NewBookingStore()
	ctx := context.Background()
	dr := mustRange(t, date(2024, 6, 1), date(2024, 6, 5))
	require.NoError(t, store.Insert(ctx, newBooking(t, "b1", "prop-1", dr)))

	overlap := mustRange(t, date(2024, 6, 4), date(2024, 6, 6))
	err := store.Insert(ctx, newBooking(t, "b2", "prop-1", overlap))
	require.ErrorIs(t, err, domainbooking.ErrDateConflict)

	// same dates on another property are fine
	require.NoError(t, store.Insert(ctx, newBooking(t, "b3", "prop-2", overlap)))

	// back-to-back on the same property is fine
	next := mustRange(t, date(2024, 6, 5), date(2024, 6, 8))
	require.NoError(t, store.Insert(ctx, newBooking(t, "b4", "prop-1", next)))
}

func TestBookingStoreConcurrentInsertSingleWinner(t *testing.T) {
	store := NewBookingStore()
	ctx := context.Background()
	dr := mustRange(t, date(2024, 6, 1), date(2024, 6, 5))

	const writers = 8
	var wg sync.WaitGroup
	results := make([]error, writers)
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = store.Insert(ctx, newBooking(t, string(rune('a'+i)), "prop-1", dr))
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		require.True(t, errors.Is(err, domainbooking.ErrDateConflict), "unexpected error: %v", err)
	}
	require.Equal(t, 1, wins)

	all, err := store.ListByProperty(ctx, "prop-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestBookingStoreReturnsCopies(t *testing.T) {
	store := NewBookingStore()
	ctx := context.Background()
	dr := mustRange(t, date(2024, 6, 1), date(2024, 6, 5))
	require.NoError(t, store.Insert(ctx, newBooking(t, "b1", "prop-1", dr)))

	got, err := store.ByID(ctx, "b1")
	require.NoError(t, err)
	got.CustomerID = "mutated"

	again, err := store.ByID(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, "cust-b1", again.CustomerID)
}

func TestBookingStoreByEstimateID(t *testing.T) {
	store := NewBookingStore()
	ctx := context.Background()
	dr := mustRange(t, date(2024, 6, 1), date(2024, 6, 5))
	b := newBooking(t, "b1", "prop-1", dr)
	b.EstimateID = "e1"
	require.NoError(t, store.Insert(ctx, b))

	got, err := store.ByEstimateID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)

	_, err = store.ByEstimateID(ctx, "missing")
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestEstimateStoreUpsertAndMarkPaid(t *testing.T) {
	store := NewEstimateStore()
	ctx := context.Background()
	dr := mustRange(t, date(2024, 6, 1), date(2024, 6, 8))

	e, err := domainbooking.NewEstimate(domainbooking.EstimateParams{
		ID:         "e1",
		PropertyID: "prop-1",
		CustomerID: "cust-1",
		Range:      dr,
		Package:    pricing.PackageStandard,
		TierID:     "week",
		Total:      money.Must(63000, "EUR"),
		Token:      "tok-e1",
	})
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, e))

	got, err := store.ByPropertyCustomerRange(ctx, "prop-1", "cust-1", dr)
	require.NoError(t, err)
	require.Equal(t, e.ID, got.ID)

	other := mustRange(t, date(2024, 6, 1), date(2024, 6, 9))
	_, err = store.ByPropertyCustomerRange(ctx, "prop-1", "cust-1", other)
	require.ErrorIs(t, err, domainbooking.ErrEstimateNotFound)

	require.NoError(t, store.MarkPaid(ctx, "e1", time.Now()))
	got, err = store.ByID(ctx, "e1")
	require.NoError(t, err)
	require.True(t, got.Paid())

	require.ErrorIs(t, store.MarkPaid(ctx, "missing", time.Now()), domainbooking.ErrEstimateNotFound)
}

func TestPropertyRepository(t *testing.T) {
	repo := NewPropertyRepository()
	ctx := context.Background()

	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:          "prop-1",
		HostID:      "host-1",
		Title:       "Canal House",
		NightlyRate: money.Must(10000, "EUR"),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, prop))

	bySlug, err := repo.BySlug(ctx, "canal-house")
	require.NoError(t, err)
	require.Equal(t, prop.ID, bySlug.ID)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, repo.Delete(ctx, "prop-1"))
	_, err = repo.ByID(ctx, "prop-1")
	require.ErrorIs(t, err, domainproperty.ErrNotFound)
}
