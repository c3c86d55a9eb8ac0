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
	ErrEstimateNotFound = errors.New("estimate: not found")
	ErrAlreadyPaid      = errors.New("estimate: already paid")
	ErrNotOwner         = errors.New("estimate: does not belong to requester")
	ErrInvalidPackage   = errors.New("estimate: unknown package type")
)

type EstimateID string

// Estimate is a non-final price quote tied to a property, customer and date
// range. It is ephemeral working state: re-quoting the same stay updates it
// in place, and once paid it becomes immutable and is promoted to a Booking.
type Estimate struct {
	ID            EstimateID
	PropertyID    property.ID
	CustomerID    string
	Guests        []string
	Range         daterange.DateRange
	Package       pricing.PackageType
	TierID        string
	Total         money.Money
	PaymentStatus PaymentStatus
	Token         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EstimateStore is the estimate persistence port. Upsert is keyed by
// (property, customer, range) so repeated quoting of the same stay mutates
// the existing record instead of stacking duplicates.
type EstimateStore interface {
	ByID(ctx context.Context, id EstimateID) (*Estimate, error)
	ByPropertyCustomerRange(ctx context.Context, propertyID property.ID, customerID string, dr daterange.DateRange) (*Estimate, error)
	Upsert(ctx context.Context, e *Estimate) error
	MarkPaid(ctx context.Context, id EstimateID, now time.Time) error
	ListByCustomer(ctx context.Context, customerID string) ([]*Estimate, error)
}

type EstimateParams struct {
	ID         EstimateID
	PropertyID property.ID
	CustomerID string
	Guests     []string
	Range      daterange.DateRange
	Package    pricing.PackageType
	TierID     string
	Total      money.Money
	Token      string
	CreatedAt  time.Time
}

func NewEstimate(params EstimateParams) (*Estimate, error) {
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
	now = now.UTC()
	return &Estimate{
		ID:            params.ID,
		PropertyID:    params.PropertyID,
		CustomerID:    params.CustomerID,
		Guests:        append([]string(nil), params.Guests...),
		Range:         params.Range,
		Package:       params.Package,
		TierID:        params.TierID,
		Total:         params.Total,
		PaymentStatus: PaymentUnpaid,
		Token:         params.Token,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Reprice updates the mutable quote fields. Paid estimates are immutable.
func (e *Estimate) Reprice(guests []string, pkg pricing.PackageType, tierID string, total money.Money, now time.Time) error {
	if e.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	if !pricing.ValidPackage(pkg) {
		return ErrInvalidPackage
	}
	e.Guests = append([]string(nil), guests...)
	e.Package = pkg
	e.TierID = tierID
	e.Total = total
	if now.IsZero() {
		now = time.Now()
	}
	e.UpdatedAt = now.UTC()
	return nil
}

func (e *Estimate) Paid() bool {
	return e.PaymentStatus == PaymentPaid
}

// OwnedBy reports whether the customer may confirm or re-quote the estimate.
// Invited guests may read it but never mutate it.
func (e *Estimate) OwnedBy(customerID string) bool {
	return e.CustomerID == customerID
}

func (e *Estimate) ReadableBy(userID string) bool {
	if e.CustomerID == userID {
		return true
	}
	for _, g := range e.Guests {
		if g == userID {
			return true
		}
	}
	return false
}
