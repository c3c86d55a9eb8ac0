package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"plek/internal/app/policies"
	domainbooking "plek/internal/domain/booking"
	"plek/internal/domain/pricing"
	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/daterange"
	"plek/internal/domain/shared/money"
	domainuser "plek/internal/domain/user"
)

var (
	ErrPermissionDenied = errors.New("reservation: operation not permitted for role")
	// ErrPaymentNotVerified means the billing collaborator could not confirm
	// a purchase. Surfaced after one retry; never swallowed into "paid".
	ErrPaymentNotVerified = errors.New("reservation: payment could not be verified")
)

// Service hosts the availability checker and the estimate-to-booking
// converter. Availability reads are advisory; the storage-level insert guard
// is what actually closes the double-booking race.
type Service struct {
	Properties domainproperty.Repository
	Estimates  domainbooking.EstimateStore
	Bookings   domainbooking.Store
	Billing    policies.BillingPort
	Events     policies.EventsPort
	// BillingWindow bounds how far back a qualifying transaction may lie.
	BillingWindow time.Duration
	Logger        *slog.Logger
}

// IsAvailable reports whether the half-open range [from, to) is free of
// overlapping bookings for the property.
func (s *Service) IsAvailable(ctx context.Context, propertyID string, from, to time.Time) (bool, error) {
	dr, err := daterange.New(from, to)
	if err != nil {
		return false, err
	}
	prop, err := s.Properties.ByID(ctx, domainproperty.ID(propertyID))
	if err != nil {
		return false, err
	}
	overlapping, err := s.Bookings.FindOverlapping(ctx, prop.ID, dr)
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// UnavailableDates expands the property's bookings day by day, for greying
// out a calendar. Checkout days are not occupied and do not appear.
func (s *Service) UnavailableDates(ctx context.Context, propertyID string) ([]time.Time, error) {
	prop, err := s.Properties.ByID(ctx, domainproperty.ID(propertyID))
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListByProperty(ctx, prop.ID)
	if err != nil {
		return nil, err
	}
	seen := make(map[time.Time]struct{})
	for _, b := range bookings {
		for _, day := range b.Range.Days() {
			seen[day] = struct{}{}
		}
	}
	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// Confirm promotes a paid-for estimate into a booking. The sequence is
// fixed: verify payment, re-check availability, mark the estimate paid,
// insert the booking under the storage uniqueness guard. Re-running a
// confirmation is always safe: an already-paid estimate with an existing
// booking returns that booking; a paid estimate whose booking insert
// previously failed retries only the insert.
func (s *Service) Confirm(ctx context.Context, actor *domainuser.User, estimateID domainbooking.EstimateID) (*domainbooking.Booking, error) {
	if actor == nil {
		return nil, ErrPermissionDenied
	}
	estimate, err := s.Estimates.ByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if !estimate.OwnedBy(string(actor.ID)) && !actor.HasRole(domainuser.RoleAdmin) {
		return nil, domainbooking.ErrNotOwner
	}

	now := time.Now().UTC()

	if estimate.Paid() {
		existing, err := s.Bookings.ByEstimateID(ctx, estimate.ID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domainbooking.ErrBookingNotFound) {
			return nil, err
		}
		// Paid estimate without a booking: the previous run died between
		// markPaid and the insert. Payment was already verified, so only
		// the insert is retried.
		if s.Logger != nil {
			s.Logger.Warn("retrying booking creation for paid estimate",
				"estimate_id", estimate.ID, "property_id", estimate.PropertyID, "customer_id", estimate.CustomerID)
		}
		return s.materialize(ctx, estimate, now)
	}

	if err := s.verifyPayment(ctx, estimate.CustomerID); err != nil {
		return nil, err
	}

	// Time-of-check/time-of-use: availability may have changed since the
	// quote, so it is re-checked here before any state change.
	overlapping, err := s.Bookings.FindOverlapping(ctx, estimate.PropertyID, estimate.Range)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, domainbooking.ErrDateConflict
	}

	if err := s.Estimates.MarkPaid(ctx, estimate.ID, now); err != nil {
		return nil, err
	}
	estimate.PaymentStatus = domainbooking.PaymentPaid

	return s.materialize(ctx, estimate, now)
}

func (s *Service) materialize(ctx context.Context, estimate *domainbooking.Estimate, now time.Time) (*domainbooking.Booking, error) {
	b, err := domainbooking.FromEstimate(estimate, domainbooking.BookingID(uuid.NewString()), now)
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.Insert(ctx, b); err != nil {
		if errors.Is(err, domainbooking.ErrDateConflict) {
			if s.Logger != nil {
				s.Logger.Warn("booking insert lost date race",
					"estimate_id", estimate.ID, "property_id", estimate.PropertyID,
					"customer_id", estimate.CustomerID, "from", estimate.Range.From, "to", estimate.Range.To)
			}
			return nil, domainbooking.ErrDateConflict
		}
		if s.Logger != nil {
			s.Logger.Error("booking insert failed after estimate marked paid",
				"estimate_id", estimate.ID, "property_id", estimate.PropertyID,
				"customer_id", estimate.CustomerID, "error", err)
		}
		return nil, fmt.Errorf("reservation: booking creation failed, confirmation can be retried: %w", err)
	}
	s.publish(ctx, policies.EventBookingConfirmed, b)
	return b, nil
}

// verifyPayment asks the billing collaborator for proof of purchase,
// retrying once on transient failure.
func (s *Service) verifyPayment(ctx context.Context, customerID string) error {
	if s.Billing == nil {
		return ErrPaymentNotVerified
	}
	paid, err := s.checkBilling(ctx, customerID)
	if err != nil {
		paid, err = s.checkBilling(ctx, customerID)
	}
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("billing verification failed", "customer_id", customerID, "error", err)
		}
		return fmt.Errorf("%w: %w", ErrPaymentNotVerified, err)
	}
	if !paid {
		return ErrPaymentNotVerified
	}
	return nil
}

func (s *Service) checkBilling(ctx context.Context, customerID string) (bool, error) {
	paid, err := s.Billing.HasRecentNonRefundedTransaction(ctx, customerID, s.BillingWindow)
	if err != nil {
		return false, err
	}
	if paid {
		return true, nil
	}
	return s.Billing.HasActiveEntitlement(ctx, customerID)
}

type DirectBookingParams struct {
	PropertyID string
	CustomerID string
	Guests     []string
	From       time.Time
	To         time.Time
	Package    pricing.PackageType
	TotalCents int64
	Currency   string
}

// CreateDirect creates a booking without the estimate flow; restricted to
// the owning host and admins.
func (s *Service) CreateDirect(ctx context.Context, actor *domainuser.User, params DirectBookingParams) (*domainbooking.Booking, error) {
	if actor == nil || !actor.CanCreateDirectBooking() {
		return nil, ErrPermissionDenied
	}
	dr, err := daterange.New(params.From, params.To)
	if err != nil {
		return nil, err
	}
	prop, err := s.Properties.ByID(ctx, domainproperty.ID(params.PropertyID))
	if err != nil {
		return nil, err
	}
	if !actor.CanManageProperty(prop.HostID) {
		return nil, ErrPermissionDenied
	}
	pkg := params.Package
	if pkg == "" {
		pkg = pricing.PackageStandard
	}
	customerID := params.CustomerID
	if customerID == "" {
		customerID = string(actor.ID)
	}
	currency := params.Currency
	if currency == "" {
		currency = prop.NightlyRate.Currency
	}
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(uuid.NewString()),
		PropertyID: prop.ID,
		CustomerID: customerID,
		Guests:     params.Guests,
		Range:      dr,
		Package:    pkg,
		Total:      moneyOrZero(params.TotalCents, currency),
		Token:      uuid.NewString(),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.Insert(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, policies.EventBookingConfirmed, b)
	return b, nil
}

// Delete removes a booking; allowed for the property's host and admins.
func (s *Service) Delete(ctx context.Context, actor *domainuser.User, id domainbooking.BookingID) error {
	if actor == nil {
		return ErrPermissionDenied
	}
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return err
	}
	prop, err := s.Properties.ByID(ctx, b.PropertyID)
	if err != nil {
		return err
	}
	if !actor.CanDeleteBooking(prop.HostID) {
		return ErrPermissionDenied
	}
	if err := s.Bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, policies.EventBookingDeleted, b)
	return nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]*domainbooking.Booking, error) {
	return s.Bookings.ListByCustomer(ctx, customerID)
}

// ListForProperty returns a property's bookings for its host or an admin.
func (s *Service) ListForProperty(ctx context.Context, actor *domainuser.User, propertyID string) ([]*domainbooking.Booking, error) {
	prop, err := s.Properties.ByID(ctx, domainproperty.ID(propertyID))
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.CanManageProperty(prop.HostID) {
		return nil, ErrPermissionDenied
	}
	return s.Bookings.ListByProperty(ctx, prop.ID)
}

func (s *Service) publish(ctx context.Context, name string, b *domainbooking.Booking) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, name, string(b.ID), map[string]any{
		"booking_id":  string(b.ID),
		"property_id": string(b.PropertyID),
		"customer_id": b.CustomerID,
		"from":        b.Range.From,
		"to":          b.Range.To,
		"total_cents": b.Total.Cents,
		"currency":    b.Total.Currency,
	})
	if err != nil && s.Logger != nil {
		s.Logger.Warn("booking event publish failed", "booking_id", b.ID, "event", name, "error", err)
	}
}

func moneyOrZero(cents int64, currency string) money.Money {
	if currency == "" {
		currency = "EUR"
	}
	return money.Money{Cents: cents, Currency: currency}
}
