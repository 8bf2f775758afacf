package deeplink

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/chateshreyas231/dineasy-sub000/internal/domain/search"
	"github.com/chateshreyas231/dineasy-sub000/internal/places"
)

// Adapter is the always-enabled fallback. It turns place-directory hits into
// suggestions with platform deep links so a search never comes back with
// nothing bookable at all.
//
// It is deliberately search-only: it can never confirm inventory, so it does
// not implement the availability-checker side of the contract and never
// participates in monitor ticks.
type Adapter struct {
	search places.Searcher
}

func New(s places.Searcher) *Adapter { return &Adapter{search: s} }

func (a *Adapter) Name() string { return "deeplink" }

// Enabled is always true: the fallback has no credentials to lose.
func (a *Adapter) Enabled() bool { return true }

func (a *Adapter) SearchAvailability(ctx context.Context, intent search.QueryIntent) ([]search.RestaurantOption, error) {
	term := intent.Cuisine
	if term == "" {
		term = "restaurant"
	}
	hits, err := a.search.SearchPlaces(ctx, term, intent.Location)
	if err != nil {
		return nil, err
	}

	out := make([]search.RestaurantOption, 0, len(hits))
	for _, h := range hits {
		out = append(out, search.RestaurantOption{
			Name:         h.Name,
			Platform:     "Deeplink",
			DateTime:     intent.DateTime,
			PartySize:    intent.PartySize,
			Cuisine:      h.Cuisine,
			Location:     h.Location,
			Rating:       h.Rating,
			RestaurantID: h.PlaceID,
			BookingLink:  bookingSearchLink(h.Name, h.Location, intent),
		})
	}
	return out, nil
}

func bookingSearchLink(name, location string, intent search.QueryIntent) string {
	q := url.Values{}
	q.Set("term", name)
	q.Set("covers", strconv.Itoa(intent.PartySize))
	q.Set("dateTime", intent.DateTime.Format("2006-01-02T15:04"))
	if loc := strings.TrimSpace(location); loc != "" {
		q.Set("metroId", loc)
	}
	return "https://www.opentable.com/s?" + q.Encode()
}
