package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
	"github.com/chateshreyas231/dineasy-sub000/internal/notify"
	"github.com/chateshreyas231/dineasy-sub000/internal/provider"
)

// runTick executes one occurrence of a monitor job. Everything in here is
// absorbed: provider failures skip to the next provider, persistence failures
// are retried implicitly on the next tick, and a stale job is a silent no-op.
func (s *Service) runTick(ctx context.Context, jobID string) {
	n := s.bumpTicks(jobID)

	j, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		s.log.Warn().Str("job", jobID).Err(err).Msg("tick: job read failed")
		return
	}

	// The re-read is the cancellation checkpoint: a stop or completion that
	// raced this tick turns it into a no-op.
	if j.Status != monitor.StatusActive {
		s.log.Debug().Str("job", jobID).Str("status", string(j.Status)).Msg("tick: stale job, skipping")
		s.unschedule(jobID)
		return
	}

	detail, err := s.places.PlaceDetails(ctx, j.PlaceID)
	if err != nil {
		s.log.Warn().Str("job", jobID).Str("place", j.PlaceID).Err(err).Msg("tick: place lookup failed")
		s.finishTick(ctx, j, n)
		return
	}

	req := monitor.AvailabilityRequest{
		PlaceID:     j.PlaceID,
		PlaceName:   detail.Name,
		PartySize:   j.PartySize,
		WindowStart: j.TimeWindowStart,
		WindowEnd:   j.TimeWindowEnd,
	}

	// Providers are tried in registry priority order; the first one with a
	// qualifying slot wins, and its first such slot is taken.
	for _, c := range s.registry.Checkers() {
		slot, ok := s.checkOne(ctx, c, req, j)
		if !ok {
			continue
		}
		s.complete(ctx, j, detail.Name, slot)
		return
	}

	s.finishTick(ctx, j, n)
}

// checkOne is the fail-soft boundary around one provider's availability call.
func (s *Service) checkOne(ctx context.Context, c provider.AvailabilityChecker, req monitor.AvailabilityRequest, j monitor.Job) (slot monitor.AvailabilitySlot, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("provider", c.Name()).Any("panic", r).Msg("tick: provider panicked")
			ok = false
		}
	}()

	slots, err := c.GetAvailability(ctx, req)
	if err != nil {
		s.log.Warn().Str("job", j.ID).Str("provider", c.Name()).Err(err).Msg("tick: availability check failed")
		return monitor.AvailabilitySlot{}, false
	}
	for _, sl := range slots {
		if sl.Qualifies(j) {
			if sl.Provider == "" {
				sl.Provider = c.Name()
			}
			return sl, true
		}
	}
	return monitor.AvailabilitySlot{}, false
}

// complete claims the job via the conditional ACTIVE→COMPLETED update; only
// the winner books and notifies. A loser backs off silently.
func (s *Service) complete(ctx context.Context, j monitor.Job, placeName string, slot monitor.AvailabilitySlot) {
	won, err := s.jobs.TransitionJob(ctx, j.ID, monitor.StatusActive, monitor.StatusCompleted)
	if err != nil {
		s.log.Error().Str("job", j.ID).Err(err).Msg("tick: completion write failed")
		return
	}
	if !won {
		s.log.Debug().Str("job", j.ID).Msg("tick: lost completion race")
		s.unschedule(j.ID)
		return
	}
	s.unschedule(j.ID)

	b := monitor.Booking{
		ID:         uuid.NewString(),
		UserID:     j.UserID,
		JobID:      j.ID,
		PlaceID:    j.PlaceID,
		PlaceName:  placeName,
		Provider:   slot.Provider,
		DateTime:   slot.DateTime,
		PartySize:  j.PartySize,
		BookingURL: slot.BookingURL,
		Status:     monitor.BookingAwaitingConfirmation,
		CreatedAt:  time.Now(),
	}
	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		s.log.Error().Str("job", j.ID).Err(err).Msg("tick: booking write failed")
	} else {
		s.log.Info().Str("job", j.ID).Str("provider", slot.Provider).Time("slot", slot.DateTime).Msg("monitor matched, booking created")
	}

	s.notifyMatch(ctx, j, placeName, slot)
}

// notifyMatch is best-effort: a notification failure never rolls back the
// booking or the completed job.
func (s *Service) notifyMatch(ctx context.Context, j monitor.Job, placeName string, slot monitor.AvailabilitySlot) {
	token, err := s.tokens.PushToken(ctx, j.UserID)
	if err != nil {
		s.log.Warn().Str("job", j.ID).Err(err).Msg("push token lookup failed")
		return
	}
	name := placeName
	if name == "" {
		name = j.PlaceID
	}
	n := notify.Notification{
		Title: "Table found!",
		Body:  fmt.Sprintf("A table for %d at %s opened up at %s.", j.PartySize, name, slot.DateTime.Format("3:04 PM Mon Jan 2")),
		Data: map[string]string{
			"jobId":    j.ID,
			"placeId":  j.PlaceID,
			"provider": slot.Provider,
			"datetime": slot.DateTime.Format(time.RFC3339),
		},
	}
	if err := s.notifier.Send(ctx, token, n); err != nil {
		s.log.Warn().Str("job", j.ID).Err(err).Msg("notification send failed")
	}
}

// finishTick records the check and expires the job once the budget is spent.
func (s *Service) finishTick(ctx context.Context, j monitor.Job, ticksSoFar int) {
	if err := s.jobs.TouchJob(ctx, j.ID, time.Now()); err != nil {
		s.log.Warn().Str("job", j.ID).Err(err).Msg("tick: last-checked update failed")
	}
	if ticksSoFar < s.cfg.MaxTicks {
		return
	}
	won, err := s.jobs.TransitionJob(ctx, j.ID, monitor.StatusActive, monitor.StatusExpired)
	if err != nil {
		s.log.Error().Str("job", j.ID).Err(err).Msg("tick: expiry write failed")
		return
	}
	if won {
		s.log.Info().Str("job", j.ID).Int("ticks", ticksSoFar).Msg("monitor expired without a match")
	}
	s.unschedule(j.ID)
}

func (s *Service) bumpTicks(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks[jobID]++
	return s.ticks[jobID]
}
