package search

import (
	"strings"
	"time"
)

// QueryIntent is the structured form of a reservation request. It is produced
// by the upstream parser and treated as read-only by everything below.
type QueryIntent struct {
	PartySize int
	DateTime  time.Time
	Cuisine   string
	Location  string
	Occasion  string
	Vibes     []string
}

// RestaurantOption is one candidate surfaced by a single platform adapter.
// Options are ephemeral: they exist for the duration of one search and may be
// merged with duplicates from other platforms before being returned.
type RestaurantOption struct {
	Name         string
	Platform     string
	DateTime     time.Time
	PartySize    int
	Cuisine      string
	Location     string
	Rating       *float64
	VibeTags     []string
	BookingLink  string
	RestaurantID string
	Distance     *float64
	PriceRange   string
	Description  string
}

// DedupKey is the normalized identity used to recognize the same restaurant
// surfaced by different platforms.
func (o RestaurantOption) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(o.Name)) + "-" + strings.ToLower(strings.TrimSpace(o.Location))
}

// Merge folds src into o. Both sides must share the same DedupKey; the caller
// enforces that. Field choices: highest rating wins, first non-empty value
// wins everywhere else, and distinct platforms accumulate comma-joined in the
// order duplicates arrived.
func (o *RestaurantOption) Merge(src RestaurantOption) {
	if src.Rating != nil && (o.Rating == nil || *src.Rating > *o.Rating) {
		o.Rating = src.Rating
	}
	if o.BookingLink == "" {
		o.BookingLink = src.BookingLink
	}
	if src.Platform != "" && !hasPlatform(o.Platform, src.Platform) {
		if o.Platform == "" {
			o.Platform = src.Platform
		} else {
			o.Platform = o.Platform + ", " + src.Platform
		}
	}
	if o.Cuisine == "" {
		o.Cuisine = src.Cuisine
	}
	if o.RestaurantID == "" {
		o.RestaurantID = src.RestaurantID
	}
	if o.PriceRange == "" {
		o.PriceRange = src.PriceRange
	}
	if o.Description == "" {
		o.Description = src.Description
	}
	if o.Distance == nil {
		o.Distance = src.Distance
	}
	o.VibeTags = unionTags(o.VibeTags, src.VibeTags)
}

func hasPlatform(joined, p string) bool {
	for _, part := range strings.Split(joined, ",") {
		if strings.EqualFold(strings.TrimSpace(part), strings.TrimSpace(p)) {
			return true
		}
	}
	return false
}

func unionTags(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := a
	for _, t := range b {
		found := false
		for _, e := range out {
			if strings.EqualFold(e, t) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, t)
		}
	}
	return out
}
