package search

import (
	"testing"
	"time"
)

var at = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func TestAdmissibleTimeDrift(t *testing.T) {
	intent := QueryIntent{DateTime: at}
	cases := []struct {
		name  string
		drift time.Duration
		want  bool
	}{
		{"exact", 0, true},
		{"fifteen early", -15 * time.Minute, true},
		{"thirty late", 30 * time.Minute, true},
		{"thirty early", -30 * time.Minute, true},
		{"thirty-one late", 31 * time.Minute, false},
		{"one hour early", -time.Hour, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := RestaurantOption{Name: "x", DateTime: at.Add(tc.drift)}
			if got := Admissible(intent, c); got != tc.want {
				t.Fatalf("Admissible(drift=%v) = %v, want %v", tc.drift, got, tc.want)
			}
		})
	}
}

func TestAdmissibleCuisine(t *testing.T) {
	cases := []struct {
		name    string
		want    string
		have    string
		keep    bool
	}{
		{"exact", "italian", "italian", true},
		{"candidate broader", "italian", "northern italian", true},
		{"query broader", "modern japanese", "japanese", true},
		{"unrelated", "italian", "thai", false},
		{"query unset", "", "thai", true},
		{"candidate unset", "italian", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent := QueryIntent{DateTime: at, Cuisine: tc.want}
			c := RestaurantOption{Name: "x", Cuisine: tc.have, DateTime: at}
			if got := Admissible(intent, c); got != tc.keep {
				t.Fatalf("Admissible(%q vs %q) = %v, want %v", tc.want, tc.have, got, tc.keep)
			}
		})
	}
}

func TestScoreLocation(t *testing.T) {
	intent := QueryIntent{DateTime: at, Location: "Lincoln Park"}
	in := RestaurantOption{Name: "a", Location: "lincoln park", DateTime: at}
	out := RestaurantOption{Name: "b", Location: "West Loop", DateTime: at}
	if d := Score(intent, in) - Score(intent, out); d != 20 {
		t.Fatalf("location bonus delta = %v, want 20", d)
	}
}

func TestScoreRatingMonotonic(t *testing.T) {
	intent := QueryIntent{DateTime: at}
	lo := RestaurantOption{Name: "a", Rating: f(4.0), DateTime: at}
	hi := RestaurantOption{Name: "b", Rating: f(4.5), DateTime: at}
	if Score(intent, hi) <= Score(intent, lo) {
		t.Fatalf("higher rating did not score higher: %v <= %v", Score(intent, hi), Score(intent, lo))
	}
	// 0.5 rating delta is worth 4 points
	if d := Score(intent, hi) - Score(intent, lo); d != 4 {
		t.Fatalf("rating delta = %v, want 4", d)
	}
}

func TestScoreTimeProximity(t *testing.T) {
	intent := QueryIntent{DateTime: at}
	exact := RestaurantOption{Name: "a", DateTime: at}
	edge := RestaurantOption{Name: "b", DateTime: at.Add(30 * time.Minute)}
	if d := Score(intent, exact) - Score(intent, edge); d != 10 {
		t.Fatalf("proximity delta = %v, want 10", d)
	}
}

func TestScoreVibes(t *testing.T) {
	intent := QueryIntent{DateTime: at, Vibes: []string{"romantic", "quiet"}}
	c := RestaurantOption{Name: "a", DateTime: at, VibeTags: []string{"Romantic", "lively", "QUIET"}}
	plain := RestaurantOption{Name: "b", DateTime: at}
	if d := Score(intent, c) - Score(intent, plain); d != 10 {
		t.Fatalf("vibe delta = %v, want 10 (two matches)", d)
	}
}

func TestDedupMergesAcrossPlatforms(t *testing.T) {
	got := Dedup([]RestaurantOption{
		{Name: "Sushi Nakazawa", Location: "Lincoln Park", Platform: "OpenTable", Rating: f(4.6), BookingLink: "https://ot.example/nakazawa", DateTime: at},
		{Name: "Monteverde", Location: "West Loop", Platform: "OpenTable", Rating: f(4.7), DateTime: at},
		{Name: "sushi nakazawa", Location: "LINCOLN PARK", Platform: "Resy", Rating: f(4.8), BookingLink: "https://resy.example/nakazawa", DateTime: at},
	})
	if len(got) != 2 {
		t.Fatalf("got %d options, want 2", len(got))
	}
	merged := got[0]
	if merged.Platform != "OpenTable, Resy" {
		t.Fatalf("platform = %q", merged.Platform)
	}
	if merged.Rating == nil || *merged.Rating != 4.8 {
		t.Fatalf("rating = %v, want 4.8", merged.Rating)
	}
	if merged.BookingLink != "https://ot.example/nakazawa" {
		t.Fatalf("booking link = %q, want the first one seen", merged.BookingLink)
	}
	if got[1].Name != "Monteverde" {
		t.Fatalf("arrival order not preserved: %q", got[1].Name)
	}
}

func TestRankOrdersFiltersAndTruncates(t *testing.T) {
	intent := QueryIntent{
		DateTime: at,
		Cuisine:  "italian",
		Location: "West Loop",
	}
	candidates := []RestaurantOption{
		{Name: "Late Door", Location: "West Loop", Cuisine: "italian", DateTime: at.Add(45 * time.Minute)},
		{Name: "Monteverde", Location: "West Loop", Cuisine: "italian", Rating: f(4.7), DateTime: at},
		{Name: "Thai Spot", Location: "West Loop", Cuisine: "thai", Rating: f(4.9), DateTime: at},
		{Name: "Piccolo", Location: "River North", Cuisine: "italian", Rating: f(4.4), DateTime: at},
		{Name: "Osteria", Location: "West Loop", Cuisine: "northern italian", Rating: f(4.2), DateTime: at},
		{Name: "Trattoria", Location: "West Loop", Cuisine: "italian", Rating: f(4.0), DateTime: at.Add(20 * time.Minute)},
		{Name: "Enoteca", Location: "West Loop", Cuisine: "italian", Rating: f(3.9), DateTime: at},
		{Name: "Cucina", Location: "West Loop", Cuisine: "italian", Rating: f(3.8), DateTime: at},
	}

	got := Rank(intent, candidates, 5)
	if len(got) != 5 {
		t.Fatalf("got %d results, want 5", len(got))
	}
	for _, o := range got {
		if o.Name == "Late Door" {
			t.Fatal("candidate outside the time window survived ranking")
		}
		if o.Name == "Thai Spot" {
			t.Fatal("unrelated cuisine survived ranking")
		}
	}
	if got[0].Name != "Monteverde" {
		t.Fatalf("top result = %q, want Monteverde", got[0].Name)
	}

	seen := map[string]bool{}
	for _, o := range got {
		if seen[o.DedupKey()] {
			t.Fatalf("duplicate key in results: %q", o.DedupKey())
		}
		seen[o.DedupKey()] = true
	}
}

func TestRankStableOnTies(t *testing.T) {
	intent := QueryIntent{DateTime: at}
	candidates := []RestaurantOption{
		{Name: "First", Location: "a", DateTime: at},
		{Name: "Second", Location: "b", DateTime: at},
		{Name: "Third", Location: "c", DateTime: at},
	}
	got := Rank(intent, candidates, 0)
	if len(got) != 3 {
		t.Fatalf("got %d results", len(got))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if got[i].Name != want {
			t.Fatalf("position %d = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestRankEmptyInput(t *testing.T) {
	got := Rank(QueryIntent{DateTime: at}, nil, 5)
	if len(got) != 0 {
		t.Fatalf("got %d results from empty input", len(got))
	}
}
