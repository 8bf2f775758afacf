package provider

import (
	"context"

	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/search"
)

// Provider is the contract every platform integration implements for
// immediate search. Implementations return errors in the usual way; the
// callers (aggregator fan-out, monitor ticks) absorb them so one bad
// integration can never destabilize a batch.
//
// Enabled must be side-effect-free and cheap: it is consulted on every
// aggregation call and every monitor tick.
type Provider interface {
	Name() string
	Enabled() bool
	SearchAvailability(ctx context.Context, intent search.QueryIntent) ([]search.RestaurantOption, error)
}

// AvailabilityChecker is implemented by providers that can confirm real
// inventory. Only these participate in monitor ticks; slots they return with
// Verified=true are trusted for automatic booking.
type AvailabilityChecker interface {
	Provider
	GetAvailability(ctx context.Context, req monitor.AvailabilityRequest) ([]monitor.AvailabilitySlot, error)
}
