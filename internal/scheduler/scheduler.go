package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/chateshreyas231/dineasy-sub000/internal/db"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
	"github.com/chateshreyas231/dineasy-sub000/internal/notify"
	"github.com/chateshreyas231/dineasy-sub000/internal/places"
	"github.com/chateshreyas231/dineasy-sub000/internal/provider"
)

// ErrMonitorExists rejects a start request when the user already has an
// ACTIVE monitor for the same place.
var ErrMonitorExists = errors.New("an active monitor already exists for this place")

// JobStore is the durable monitor-job table. It is the single source of truth
// for job state; every transition goes through TransitionJob's conditional
// update so concurrent writers cannot both win.
type JobStore interface {
	CreateJob(ctx context.Context, j monitor.Job) error
	GetJob(ctx context.Context, id string) (monitor.Job, error)
	FindActiveJob(ctx context.Context, userID, placeID string) (monitor.Job, error)
	ListJobsByUser(ctx context.Context, userID string) ([]monitor.Job, error)
	ListJobsByStatus(ctx context.Context, status monitor.Status) ([]monitor.Job, error)
	// TransitionJob performs `status=to WHERE id AND status=from` and reports
	// whether this caller's write took effect.
	TransitionJob(ctx context.Context, id string, from, to monitor.Status) (bool, error)
	TouchJob(ctx context.Context, id string, checkedAt time.Time) error
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b monitor.Booking) error
}

// TokenSource resolves the push token a completed job notifies.
type TokenSource interface {
	PushToken(ctx context.Context, userID string) (string, error)
}

type Config struct {
	// Interval between ticks of one job.
	Interval time.Duration
	// MaxTicks is the per-job tick budget; exhausting it expires the job.
	MaxTicks int
	// Workers bounds how many job ticks run at once across jobs.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 2 * time.Minute
	}
	if c.MaxTicks <= 0 {
		c.MaxTicks = 60
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// Service owns the recurring monitor jobs. Each job gets its own cron entry
// firing every Config.Interval; fired ticks are queued to a bounded worker
// pool, and an in-flight guard keeps ticks for the same job from overlapping.
type Service struct {
	cfg      Config
	jobs     JobStore
	bookings BookingStore
	tokens   TokenSource
	registry *provider.Registry
	places   places.Lookup
	notifier notify.Notifier
	log      zerolog.Logger

	baseCtx context.Context
	cron    *cron.Cron
	queue   chan string
	stopCh  chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	entries  map[string]cron.EntryID
	ticks    map[string]int
	inflight map[string]bool
}

func New(cfg Config, jobs JobStore, bookings BookingStore, tokens TokenSource, registry *provider.Registry, lookup places.Lookup, notifier notify.Notifier, log zerolog.Logger) *Service {
	return &Service{
		cfg:      cfg.withDefaults(),
		jobs:     jobs,
		bookings: bookings,
		tokens:   tokens,
		registry: registry,
		places:   lookup,
		notifier: notifier,
		log:      log.With().Str("component", "scheduler").Logger(),
		entries:  map[string]cron.EntryID{},
		ticks:    map[string]int{},
		inflight: map[string]bool{},
	}
}

// Start launches the worker pool and the cron runner, then re-registers every
// ACTIVE job from the store so schedules survive restarts.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return nil
	}
	s.baseCtx = ctx
	s.stopCh = make(chan struct{})
	s.queue = make(chan string, 256)
	s.cron = cron.New()
	s.mu.Unlock()

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	s.cron.Start()

	active, err := s.jobs.ListJobsByStatus(ctx, monitor.StatusActive)
	if err != nil {
		return fmt.Errorf("resume active jobs: %w", err)
	}
	for _, j := range active {
		s.schedule(j.ID)
	}

	// periodic sweep picks up ACTIVE rows created outside this process
	s.mu.Lock()
	if s.cron != nil {
		_, _ = s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.Interval), s.reconcile)
	}
	s.mu.Unlock()

	s.log.Info().Int("resumed", len(active)).Int("workers", s.cfg.Workers).Dur("interval", s.cfg.Interval).Msg("scheduler started")
	return nil
}

// reconcile schedules any ACTIVE job that has no cron entry yet, e.g. one
// inserted by the CLI while the server was already running.
func (s *Service) reconcile() {
	active, err := s.jobs.ListJobsByStatus(s.baseCtx, monitor.StatusActive)
	if err != nil {
		s.log.Warn().Err(err).Msg("reconcile: active job listing failed")
		return
	}
	for _, j := range active {
		if !s.Scheduled(j.ID) {
			s.schedule(j.ID)
		}
	}
}

func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	c := s.cron
	s.cron = nil
	s.entries = map[string]cron.EntryID{}
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// StartMonitorJob registers a new monitor and its recurring schedule. At most
// one ACTIVE job may exist per (user, place); a second request is rejected.
func (s *Service) StartMonitorJob(ctx context.Context, j monitor.Job) (monitor.Job, error) {
	if err := j.Validate(); err != nil {
		return monitor.Job{}, err
	}
	if _, err := s.jobs.FindActiveJob(ctx, j.UserID, j.PlaceID); err == nil {
		return monitor.Job{}, ErrMonitorExists
	} else if !db.IsNotFound(err) {
		return monitor.Job{}, err
	}

	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.Status = monitor.StatusActive
	j.CreatedAt = time.Now()
	j.UpdatedAt = j.CreatedAt
	if err := s.jobs.CreateJob(ctx, j); err != nil {
		return monitor.Job{}, err
	}

	s.schedule(j.ID)
	s.log.Info().Str("job", j.ID).Str("user", j.UserID).Str("place", j.PlaceID).Msg("monitor started")
	return j, nil
}

// StopMonitorJob cancels a monitor and removes its schedule. It is
// idempotent: stopping a job that already completed, expired, or was stopped
// before is a no-op.
func (s *Service) StopMonitorJob(ctx context.Context, jobID string) error {
	_, err := s.jobs.TransitionJob(ctx, jobID, monitor.StatusActive, monitor.StatusCancelled)
	if err != nil {
		return err
	}
	s.unschedule(jobID)
	s.log.Info().Str("job", jobID).Msg("monitor stopped")
	return nil
}

// ListMonitors returns every monitor job a user has, newest first.
func (s *Service) ListMonitors(ctx context.Context, userID string) ([]monitor.Job, error) {
	return s.jobs.ListJobsByUser(ctx, userID)
}

func (s *Service) GetMonitor(ctx context.Context, jobID string) (monitor.Job, error) {
	return s.jobs.GetJob(ctx, jobID)
}

func (s *Service) schedule(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	if _, ok := s.entries[jobID]; ok {
		return
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.Interval), func() {
		s.enqueue(jobID)
	})
	if err != nil {
		s.log.Error().Str("job", jobID).Err(err).Msg("cron registration failed")
		return
	}
	s.entries[jobID] = id
}

func (s *Service) unschedule(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[jobID]; ok {
		delete(s.entries, jobID)
		delete(s.ticks, jobID)
		if s.cron != nil {
			s.cron.Remove(id)
		}
	}
}

// Scheduled reports whether a recurring entry exists for the job.
func (s *Service) Scheduled(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[jobID]
	return ok
}

func (s *Service) enqueue(jobID string) {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		return
	}
	select {
	case q <- jobID:
	default:
		// next interval fires again anyway; dropping beats blocking cron
		s.log.Warn().Str("job", jobID).Msg("tick queue full, dropping tick")
	}
}

func (s *Service) worker() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		stop := s.stopCh
		q := s.queue
		s.mu.Unlock()
		if stop == nil || q == nil {
			return
		}
		select {
		case <-stop:
			return
		case jobID := <-q:
			if !s.beginTick(jobID) {
				continue
			}
			s.runTick(s.baseCtx, jobID)
			s.endTick(jobID)
		}
	}
}

// beginTick claims the per-job in-flight slot. Ticks for the same job never
// overlap; a fire that lands while the previous tick still runs is skipped.
func (s *Service) beginTick(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[jobID] {
		return false
	}
	s.inflight[jobID] = true
	return true
}

func (s *Service) endTick(jobID string) {
	s.mu.Lock()
	delete(s.inflight, jobID)
	s.mu.Unlock()
}
