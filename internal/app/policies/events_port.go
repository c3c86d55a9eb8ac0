package policies

import "context"

// Event names published on the booking lifecycle.
const (
	EventEstimateQuoted   = "estimate.quoted"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingDeleted   = "booking.deleted"
)

// EventsPort publishes lifecycle events to the broker. Publishing is
// best-effort from the caller's point of view: a failed publish is logged,
// never rolled into the request outcome.
type EventsPort interface {
	Publish(ctx context.Context, name, key string, payload any) error
}

// NopEvents discards events; used when no broker is configured.
type NopEvents struct{}

func (NopEvents) Publish(ctx context.Context, name, key string, payload any) error { return nil }
