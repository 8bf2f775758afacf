package monitor

import "time"

// AvailabilityRequest is what the scheduler hands a verified-capable provider
// on each tick.
type AvailabilityRequest struct {
	PlaceID     string
	PlaceName   string
	PartySize   int
	WindowStart time.Time
	WindowEnd   time.Time
}

// AvailabilitySlot is a provider's answer for one bookable time. Verified is
// a hard guarantee that the provider confirmed real inventory; only verified
// slots may ever trigger an automatic booking.
type AvailabilitySlot struct {
	DateTime   time.Time
	Verified   bool
	Provider   string
	BookingURL string
	Metadata   map[string]string
}

// Qualifies reports whether a slot can complete the job: verified and inside
// the window, bounds inclusive.
func (s AvailabilitySlot) Qualifies(j Job) bool {
	return s.Verified && j.InWindow(s.DateTime)
}
