package aggregator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chateshreyas231/dineasy-sub000/internal/domain/search"
	"github.com/chateshreyas231/dineasy-sub000/internal/provider"
)

const (
	// DefaultAdapterTimeout is the soft per-adapter deadline. A call that
	// overruns it has its result discarded; the call itself is not aborted.
	DefaultAdapterTimeout = 10 * time.Second
	// DefaultMaxResults caps the ranked list returned to callers.
	DefaultMaxResults = 5
)

// Engine fans an intent out to every enabled provider, merges and ranks the
// candidates, and returns the top few. Each search is fully stateless.
type Engine struct {
	registry       *provider.Registry
	log            zerolog.Logger
	adapterTimeout time.Duration
	maxResults     int
}

func NewEngine(registry *provider.Registry, log zerolog.Logger) *Engine {
	return &Engine{
		registry:       registry,
		log:            log.With().Str("component", "aggregator").Logger(),
		adapterTimeout: DefaultAdapterTimeout,
		maxResults:     DefaultMaxResults,
	}
}

// WithAdapterTimeout overrides the soft per-adapter deadline. Used by tests.
func (e *Engine) WithAdapterTimeout(d time.Duration) *Engine {
	e.adapterTimeout = d
	return e
}

// SearchReservations returns at most five ranked options. It never fails: an
// adapter error, panic, or timeout degrades that adapter to an empty result,
// and a search where everything degrades returns an empty list.
func (e *Engine) SearchReservations(ctx context.Context, intent search.QueryIntent) []search.RestaurantOption {
	providers := e.registry.Enabled()
	if len(providers) == 0 {
		return nil
	}

	// Buffered so a straggler past the deadline can still complete its send
	// and exit instead of leaking forever.
	results := make(chan []search.RestaurantOption, len(providers))
	for _, p := range providers {
		p := p
		go func() {
			results <- e.searchOne(ctx, p, intent)
		}()
	}

	deadline := time.NewTimer(e.adapterTimeout)
	defer deadline.Stop()

	var candidates []search.RestaurantOption
	for received := 0; received < len(providers); received++ {
		select {
		case opts := <-results:
			candidates = append(candidates, opts...)
		case <-deadline.C:
			e.log.Warn().
				Int("pending", len(providers)-received).
				Dur("timeout", e.adapterTimeout).
				Msg("adapter deadline hit, discarding late results")
			return search.Rank(intent, candidates, e.maxResults)
		case <-ctx.Done():
			return search.Rank(intent, candidates, e.maxResults)
		}
	}
	return search.Rank(intent, candidates, e.maxResults)
}

// searchOne is the fail-soft boundary around a single adapter call: errors
// and panics are logged and degrade to an empty list.
func (e *Engine) searchOne(ctx context.Context, p provider.Provider, intent search.QueryIntent) (opts []search.RestaurantOption) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("provider", p.Name()).Any("panic", r).Msg("adapter panicked")
			opts = nil
		}
	}()

	opts, err := p.SearchAvailability(ctx, intent)
	if err != nil {
		e.log.Warn().Str("provider", p.Name()).Err(err).Msg("adapter search failed")
		return nil
	}
	return opts
}
