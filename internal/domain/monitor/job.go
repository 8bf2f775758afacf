package monitor

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	// StatusExpired is the terminal state for jobs whose tick budget ran out
	// without a match.
	StatusExpired Status = "EXPIRED"
)

// CanTransition encodes the monotonic state machine: ACTIVE is the only
// non-terminal state.
func CanTransition(from, to Status) bool {
	if from != StatusActive {
		return false
	}
	switch to {
	case StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Job is a persisted request to keep checking one restaurant/time-window.
// Rows are never deleted, only transitioned.
type Job struct {
	ID              string
	UserID          string
	PlaceID         string
	TimeWindowStart time.Time
	TimeWindowEnd   time.Time
	PartySize       int
	Status          Status
	LastCheckedAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (j Job) Validate() error {
	if j.UserID == "" {
		return fmt.Errorf("user id required")
	}
	if j.PlaceID == "" {
		return fmt.Errorf("place id required")
	}
	if j.PartySize < 1 {
		return fmt.Errorf("party size must be >= 1")
	}
	if j.TimeWindowStart.IsZero() || j.TimeWindowEnd.IsZero() {
		return fmt.Errorf("time window required")
	}
	if !j.TimeWindowEnd.After(j.TimeWindowStart) {
		return fmt.Errorf("time window end must be after start")
	}
	return nil
}

// InWindow reports whether t falls inside the job's window, bounds inclusive.
func (j Job) InWindow(t time.Time) bool {
	return !t.Before(j.TimeWindowStart) && !t.After(j.TimeWindowEnd)
}
