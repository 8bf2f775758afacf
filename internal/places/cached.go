package places

import (
	"context"
	"time"

	"github.com/chateshreyas231/dineasy-sub000/internal/cache"
)

// Cached wraps a Lookup with a TTL cache. Place details change rarely; the
// monitor scheduler hits the lookup every tick, so this keeps it off the wire.
type Cached struct {
	next Lookup
	ttl  *cache.TTL
	d    time.Duration
}

func NewCached(next Lookup, ttl *cache.TTL, d time.Duration) *Cached {
	return &Cached{next: next, ttl: ttl, d: d}
}

func (c *Cached) PlaceDetails(ctx context.Context, placeID string) (Detail, error) {
	key := "place:" + placeID
	if v, ok := c.ttl.Get(key); ok {
		if d, ok := v.(Detail); ok {
			return d, nil
		}
	}
	d, err := c.next.PlaceDetails(ctx, placeID)
	if err != nil {
		return Detail{}, err
	}
	c.ttl.Set(key, d, c.d)
	return d, nil
}
