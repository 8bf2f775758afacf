package search

import (
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }

func TestDedupKeyNormalization(t *testing.T) {
	a := RestaurantOption{Name: "Sushi Nakazawa", Location: "Lincoln Park"}
	b := RestaurantOption{Name: "SUSHI NAKAZAWA", Location: "lincoln park"}
	if a.DedupKey() != b.DedupKey() {
		t.Fatalf("keys differ: %q vs %q", a.DedupKey(), b.DedupKey())
	}
	if a.DedupKey() != "sushi nakazawa-lincoln park" {
		t.Fatalf("unexpected key: %q", a.DedupKey())
	}
}

func TestMergeKeepsHigherRating(t *testing.T) {
	dst := RestaurantOption{Name: "Oriole", Location: "West Loop", Rating: f(4.6)}
	dst.Merge(RestaurantOption{Name: "Oriole", Location: "West Loop", Rating: f(4.8)})
	if dst.Rating == nil || *dst.Rating != 4.8 {
		t.Fatalf("rating = %v, want 4.8", dst.Rating)
	}

	dst.Merge(RestaurantOption{Name: "Oriole", Location: "West Loop", Rating: f(4.2)})
	if *dst.Rating != 4.8 {
		t.Fatalf("rating lowered to %v", *dst.Rating)
	}
}

func TestMergeFirstBookingLinkWins(t *testing.T) {
	dst := RestaurantOption{Name: "Oriole", Location: "West Loop"}
	dst.Merge(RestaurantOption{BookingLink: "https://a.example/book"})
	dst.Merge(RestaurantOption{BookingLink: "https://b.example/book"})
	if dst.BookingLink != "https://a.example/book" {
		t.Fatalf("booking link = %q", dst.BookingLink)
	}
}

func TestMergeJoinsDistinctPlatforms(t *testing.T) {
	dst := RestaurantOption{Name: "Oriole", Location: "West Loop", Platform: "OpenTable"}
	dst.Merge(RestaurantOption{Platform: "Resy"})
	if dst.Platform != "OpenTable, Resy" {
		t.Fatalf("platform = %q", dst.Platform)
	}

	// merging the same platform again must not duplicate it
	dst.Merge(RestaurantOption{Platform: "resy"})
	if dst.Platform != "OpenTable, Resy" {
		t.Fatalf("platform after re-merge = %q", dst.Platform)
	}
}

func TestMergeFillsEmptyFields(t *testing.T) {
	dst := RestaurantOption{Name: "Oriole", Location: "West Loop"}
	dst.Merge(RestaurantOption{
		Cuisine:      "american",
		RestaurantID: "r-1",
		PriceRange:   "$$$$",
		Description:  "tasting menu",
		Distance:     f(1.2),
		VibeTags:     []string{"romantic"},
		DateTime:     time.Now(),
	})
	if dst.Cuisine != "american" || dst.RestaurantID != "r-1" || dst.PriceRange != "$$$$" {
		t.Fatalf("fields not filled: %+v", dst)
	}
	if len(dst.VibeTags) != 1 || dst.VibeTags[0] != "romantic" {
		t.Fatalf("vibe tags = %v", dst.VibeTags)
	}

	// existing values are kept
	dst.Merge(RestaurantOption{Cuisine: "french", VibeTags: []string{"ROMANTIC", "lively"}})
	if dst.Cuisine != "american" {
		t.Fatalf("cuisine overwritten: %q", dst.Cuisine)
	}
	if len(dst.VibeTags) != 2 {
		t.Fatalf("vibe tags = %v", dst.VibeTags)
	}
}
