package quote

import (
	"context"
	"errors"
	"log/slog"
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
	ErrPermissionDenied = errors.New("quote: operation not permitted for role")
	ErrCheckInInPast    = errors.New("quote: check-in date is in the past")
)

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service produces and maintains estimates: the priced, non-final quotes
// that precede a booking.
type Service struct {
	Properties domainproperty.Repository
	Estimates  domainbooking.EstimateStore
	Bookings   domainbooking.Store
	Tiers      []pricing.Tier
	Tokens     TokenGenerator
	Events     policies.EventsPort
	// DefaultRate replaces an absent or invalid property base rate so a
	// quote is always produced; every substitution is logged.
	DefaultRate money.Money
	Logger      *slog.Logger
}

type RequestParams struct {
	PropertyID string
	Guests     []string
	From       time.Time
	To         time.Time
	Package    pricing.PackageType
}

// Request quotes a stay and upserts the estimate keyed by
// (property, customer, range). Re-quoting the same stay with different
// guests or package mutates the existing estimate.
func (s *Service) Request(ctx context.Context, actor *domainuser.User, params RequestParams) (*domainbooking.Estimate, error) {
	if actor == nil || !actor.CanCreateEstimate() {
		return nil, ErrPermissionDenied
	}
	pkg := params.Package
	if pkg == "" {
		pkg = pricing.PackageStandard
	}
	if !pricing.ValidPackage(pkg) {
		return nil, domainbooking.ErrInvalidPackage
	}
	dr, err := daterange.New(params.From, params.To)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if dr.From.Before(daterange.Day(now)) {
		return nil, ErrCheckInInPast
	}

	prop, err := s.lookupProperty(ctx, params.PropertyID)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.Bookings.FindOverlapping(ctx, prop.ID, dr)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, domainbooking.ErrDateConflict
	}

	rate := prop.NightlyRate
	if !rate.IsPositive() || rate.Currency == "" {
		rate = s.DefaultRate
		if s.Logger != nil {
			s.Logger.Warn("substituting default nightly rate",
				"property_id", prop.ID, "host_id", prop.HostID, "default", rate.String())
		}
	}

	tier, total, err := pricing.Quote(s.Tiers, rate, dr.Nights(), pkg)
	if err != nil {
		return nil, err
	}

	customerID := string(actor.ID)
	existing, err := s.Estimates.ByPropertyCustomerRange(ctx, prop.ID, customerID, dr)
	switch {
	case err == nil:
		if err := existing.Reprice(params.Guests, pkg, tier.ID, total, now); err != nil {
			return nil, err
		}
		if err := s.Estimates.Upsert(ctx, existing); err != nil {
			return nil, err
		}
		s.publishQuoted(ctx, existing)
		return existing, nil
	case errors.Is(err, domainbooking.ErrEstimateNotFound):
	default:
		return nil, err
	}

	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	estimate, err := domainbooking.NewEstimate(domainbooking.EstimateParams{
		ID:         domainbooking.EstimateID(uuid.NewString()),
		PropertyID: prop.ID,
		CustomerID: customerID,
		Guests:     params.Guests,
		Range:      dr,
		Package:    pkg,
		TierID:     tier.ID,
		Total:      total,
		Token:      token,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Estimates.Upsert(ctx, estimate); err != nil {
		return nil, err
	}
	s.publishQuoted(ctx, estimate)
	return estimate, nil
}

// Get returns an estimate readable by the requester: the owning customer or
// an invited guest.
func (s *Service) Get(ctx context.Context, actor *domainuser.User, id domainbooking.EstimateID) (*domainbooking.Estimate, error) {
	estimate, err := s.Estimates.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || (!estimate.ReadableBy(string(actor.ID)) && !actor.HasRole(domainuser.RoleAdmin)) {
		return nil, domainbooking.ErrNotOwner
	}
	return estimate, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]*domainbooking.Estimate, error) {
	return s.Estimates.ListByCustomer(ctx, customerID)
}

func (s *Service) lookupProperty(ctx context.Context, idOrSlug string) (*domainproperty.Property, error) {
	prop, err := s.Properties.ByID(ctx, domainproperty.ID(idOrSlug))
	if err == nil {
		return prop, nil
	}
	if !errors.Is(err, domainproperty.ErrNotFound) {
		return nil, err
	}
	return s.Properties.BySlug(ctx, idOrSlug)
}

func (s *Service) publishQuoted(ctx context.Context, e *domainbooking.Estimate) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, policies.EventEstimateQuoted, string(e.ID), map[string]any{
		"estimate_id": string(e.ID),
		"property_id": string(e.PropertyID),
		"customer_id": e.CustomerID,
		"from":        e.Range.From,
		"to":          e.Range.To,
		"package":     string(e.Package),
		"total_cents": e.Total.Cents,
		"currency":    e.Total.Currency,
	})
	if err != nil && s.Logger != nil {
		s.Logger.Warn("estimate event publish failed", "estimate_id", e.ID, "error", err)
	}
}
