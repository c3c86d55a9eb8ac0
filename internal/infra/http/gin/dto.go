package ginserver

import (
	"fmt"
	"time"

	"plek/internal/domain/booking"
	"plek/internal/domain/property"
	domainuser "plek/internal/domain/user"
)

const dateLayout = "2006-01-02"

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

type userResponse struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func toUserResponse(u *domainuser.User) userResponse {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return userResponse{
		ID:    string(u.ID),
		Email: u.Email,
		Name:  u.Name,
		Roles: roles,
	}
}

type propertyResponse struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RateCents   int64     `json:"nightly_rate_cents"`
	Currency    string    `json:"currency"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPropertyResponse(p *property.Property) propertyResponse {
	return propertyResponse{
		ID:          string(p.ID),
		HostID:      p.HostID,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		RateCents:   p.NightlyRate.Cents,
		Currency:    p.NightlyRate.Currency,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPropertyResponses(props []*property.Property) []propertyResponse {
	out := make([]propertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, toPropertyResponse(p))
	}
	return out
}

type estimateResponse struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"property_id"`
	CustomerID    string    `json:"customer_id"`
	Guests        []string  `json:"guests"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Nights        int       `json:"nights"`
	Package       string    `json:"package"`
	TierID        string    `json:"tier"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toEstimateResponse(e *booking.Estimate) estimateResponse {
	return estimateResponse{
		ID:            string(e.ID),
		PropertyID:    string(e.PropertyID),
		CustomerID:    e.CustomerID,
		Guests:        e.Guests,
		From:          e.Range.From.Format(dateLayout),
		To:            e.Range.To.Format(dateLayout),
		Nights:        e.Range.Nights(),
		Package:       string(e.Package),
		TierID:        e.TierID,
		TotalCents:    e.Total.Cents,
		Currency:      e.Total.Currency,
		PaymentStatus: string(e.PaymentStatus),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toEstimateResponses(estimates []*booking.Estimate) []estimateResponse {
	out := make([]estimateResponse, 0, len(estimates))
	for _, e := range estimates {
		out = append(out, toEstimateResponse(e))
	}
	return out
}

type bookingResponse struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"property_id"`
	CustomerID    string    `json:"customer_id"`
	Guests        []string  `json:"guests"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Nights        int       `json:"nights"`
	Package       string    `json:"package"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	PaymentStatus string    `json:"payment_status"`
	EstimateID    string    `json:"estimate_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) bookingResponse {
	return bookingResponse{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		CustomerID:    b.CustomerID,
		Guests:        b.Guests,
		From:          b.Range.From.Format(dateLayout),
		To:            b.Range.To.Format(dateLayout),
		Nights:        b.Range.Nights(),
		Package:       string(b.Package),
		TotalCents:    b.Total.Cents,
		Currency:      b.Total.Currency,
		PaymentStatus: string(b.PaymentStatus),
		EstimateID:    string(b.EstimateID),
		CreatedAt:     b.CreatedAt,
	}
}

func toBookingResponses(bookings []*booking.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}
