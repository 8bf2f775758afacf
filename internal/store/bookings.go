package store

import (
	"context"

	"github.com/chateshreyas231/dineasy-sub000/internal/db"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
)

// Bookings is the postgres repository for provisional bookings.
type Bookings struct{ db *db.DB }

func NewBookings(d *db.DB) *Bookings { return &Bookings{db: d} }

func (r *Bookings) CreateBooking(ctx context.Context, b monitor.Booking) error {
	var jobID any
	if b.JobID != "" {
		jobID = b.JobID
	}
	return r.db.Exec(ctx, `
INSERT INTO bookings(id,user_id,job_id,place_id,place_name,provider,reservation_at,party_size,booking_url,status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		b.ID, b.UserID, jobID, b.PlaceID, b.PlaceName, b.Provider, b.DateTime, b.PartySize, b.BookingURL, string(b.Status),
	)
}

func (r *Bookings) ListBookingsByUser(ctx context.Context, userID string) ([]monitor.Booking, error) {
	rows, err := r.db.Query(ctx, `
SELECT id,user_id,COALESCE(job_id,''),place_id,place_name,provider,reservation_at,party_size,booking_url,status,created_at
FROM bookings
WHERE user_id=$1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []monitor.Booking
	for rows.Next() {
		var b monitor.Booking
		var status string
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.JobID, &b.PlaceID, &b.PlaceName, &b.Provider,
			&b.DateTime, &b.PartySize, &b.BookingURL, &status, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.Status = monitor.BookingStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}
