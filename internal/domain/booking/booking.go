package booking

import (
	"context"
	"errors"
	"time"

	"plek/internal/domain/pricing"
	"plek/internal/domain/property"
	"plek/internal/domain/shared/daterange"
	"plek/internal/domain/shared/money"
)

var (
	ErrBookingNotFound = errors.New("booking: not found")
	// ErrDateConflict means an overlapping booking already holds part of the
	// requested range. Distinct from validation errors so the caller can
	// prompt for new dates instead of retrying blindly.
	ErrDateConflict    = errors.New("booking: dates no longer available")
	ErrCustomerMissing = errors.New("booking: customer is required")
)

type BookingID string

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Booking is the durable, authoritative reservation record. It is terminal:
// never transitioned further, only deleted.
type Booking struct {
	ID            BookingID
	PropertyID    property.ID
	CustomerID    string
	Guests        []string
	Range         daterange.DateRange
	Package       pricing.PackageType
	Total         money.Money
	PaymentStatus PaymentStatus
	// EstimateID links back to the estimate this booking was promoted from.
	// Empty for direct host/admin bookings. The idempotence of estimate
	// confirmation hangs on this link.
	EstimateID EstimateID
	Token      string
	CreatedAt  time.Time
}

// Store is the booking persistence port. Insert must enforce the property
// overlap invariant atomically: it fails with ErrDateConflict when any
// existing booking for the same property overlaps the new range, and under
// concurrent inserts exactly one writer wins.
type Store interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByEstimateID(ctx context.Context, id EstimateID) (*Booking, error)
	FindOverlapping(ctx context.Context, propertyID property.ID, dr daterange.DateRange) ([]*Booking, error)
	ListByProperty(ctx context.Context, propertyID property.ID) ([]*Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Booking, error)
	Insert(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id BookingID) error
}

type CreateParams struct {
	ID         BookingID
	PropertyID property.ID
	CustomerID string
	Guests     []string
	Range      daterange.DateRange
	Package    pricing.PackageType
	Total      money.Money
	EstimateID EstimateID
	Token      string
	CreatedAt  time.Time
}

func New(params CreateParams) (*Booking, error) {
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.CustomerID == "" {
		return nil, ErrCustomerMissing
	}
	if !pricing.ValidPackage(params.Package) {
		return nil, ErrInvalidPackage
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Booking{
		ID:            params.ID,
		PropertyID:    params.PropertyID,
		CustomerID:    params.CustomerID,
		Guests:        append([]string(nil), params.Guests...),
		Range:         params.Range,
		Package:       params.Package,
		Total:         params.Total,
		PaymentStatus: PaymentPaid,
		EstimateID:    params.EstimateID,
		Token:         params.Token,
		CreatedAt:     now.UTC(),
	}, nil
}

// FromEstimate copies the reservation fields of a paid estimate into a new
// booking. The one-way promotion keeps estimate and booking as two entities.
func FromEstimate(e *Estimate, id BookingID, now time.Time) (*Booking, error) {
	return New(CreateParams{
		ID:         id,
		PropertyID: e.PropertyID,
		CustomerID: e.CustomerID,
		Guests:     e.Guests,
		Range:      e.Range,
		Package:    e.Package,
		Total:      e.Total,
		EstimateID: e.ID,
		Token:      e.Token,
		CreatedAt:  now,
	})
}
