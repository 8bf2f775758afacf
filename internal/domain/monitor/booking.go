package monitor

import "time"

type BookingStatus string

const (
	// BookingAwaitingConfirmation is the status every scheduler-created
	// booking starts in; a later confirmation flow owns the transition out.
	BookingAwaitingConfirmation BookingStatus = "awaiting_confirmation"
	BookingConfirmed            BookingStatus = "confirmed"
	BookingFailed               BookingStatus = "failed"
)

// Booking records a provisional reservation, either taken directly from a
// confirmed search result or created by the scheduler on a monitoring match.
type Booking struct {
	ID         string
	UserID     string
	JobID      string
	PlaceID    string
	PlaceName  string
	Provider   string
	DateTime   time.Time
	PartySize  int
	BookingURL string
	Status     BookingStatus
	CreatedAt  time.Time
}
