package resy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/search"
)

func TestEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"both credentials", Config{APIKey: "k", AuthToken: "t"}, true},
		{"key only", Config{APIKey: "k"}, false},
		{"token only", Config{AuthToken: "t"}, false},
		{"neither", Config{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := New(tc.cfg).Enabled(); got != tc.want {
				t.Fatalf("Enabled() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSearchAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/venuesearch/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("authorization"); got != `ResyAPI api_key="key"` {
			t.Errorf("authorization = %q", got)
		}
		if got := r.Header.Get("x-resy-auth-token"); got != "tok" {
			t.Errorf("auth token = %q", got)
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"search":{"hits":[
			{"id":{"resy":834},"name":"Oriole","neighborhood":"West Loop","cuisine":["American","Tasting"],"rating":4.9,"price_range":4,"url_slug":"oriole-chicago"},
			{"id":{"resy":991},"name":"Kyoten","locality":"Logan Square","cuisine":["Sushi"],"price_range":0}
		]}}`))
	}))
	defer srv.Close()

	a := New(Config{APIKey: "key", AuthToken: "tok", BaseURL: srv.URL})
	at := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	got, err := a.SearchAvailability(context.Background(), search.QueryIntent{
		Location:  "Chicago",
		Cuisine:   "american",
		PartySize: 2,
		DateTime:  at,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d options, want 2", len(got))
	}

	oriole := got[0]
	if oriole.Name != "Oriole" || oriole.Platform != "Resy" || oriole.RestaurantID != "834" {
		t.Fatalf("option = %+v", oriole)
	}
	if oriole.Cuisine != "American" {
		t.Fatalf("cuisine = %q, want the first listed", oriole.Cuisine)
	}
	if oriole.PriceRange != "$$$$" {
		t.Fatalf("price range = %q", oriole.PriceRange)
	}
	if oriole.BookingLink == "" {
		t.Fatal("booking link empty")
	}

	// locality backs up a missing neighborhood; price floors at one dollar sign
	kyoten := got[1]
	if kyoten.Location != "Logan Square" {
		t.Fatalf("location = %q", kyoten.Location)
	}
	if kyoten.PriceRange != "$" {
		t.Fatalf("price range = %q", kyoten.PriceRange)
	}
}

func TestGetAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/4/find" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("venue_id") != "834" || q.Get("party_size") != "2" || q.Get("day") != "2026-03-14" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"results":{"venues":[{"slots":[
			{"date":{"start":"2026-03-14 18:30:00"},"config":{"type":"Dining Room","token":"cfg-1"}},
			{"date":{"start":"bad"},"config":{"type":"Bar","token":"cfg-2"}}
		]}]}}`))
	}))
	defer srv.Close()

	a := New(Config{APIKey: "key", AuthToken: "tok", BaseURL: srv.URL})
	got, err := a.GetAvailability(context.Background(), monitor.AvailabilityRequest{
		PlaceID:     "834",
		PartySize:   2,
		WindowStart: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d slots, want the parseable one", len(got))
	}
	s := got[0]
	if !s.Verified || s.Provider != "resy" {
		t.Fatalf("slot = %+v", s)
	}
	if s.Metadata["configToken"] != "cfg-1" {
		t.Fatalf("metadata = %v", s.Metadata)
	}
}

func TestGetAvailabilityNoVenues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"venues":[]}}`))
	}))
	defer srv.Close()

	a := New(Config{APIKey: "key", AuthToken: "tok", BaseURL: srv.URL})
	got, err := a.GetAvailability(context.Background(), monitor.AvailabilityRequest{PlaceID: "834", PartySize: 2, WindowStart: time.Now()})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d slots from an empty venue list", len(got))
	}
}

func TestNon200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := New(Config{APIKey: "key", AuthToken: "tok", BaseURL: srv.URL})
	if _, err := a.SearchAvailability(context.Background(), search.QueryIntent{Location: "Chicago"}); err == nil {
		t.Fatal("expected error for 429 search")
	}
	if _, err := a.GetAvailability(context.Background(), monitor.AvailabilityRequest{PlaceID: "834", PartySize: 2, WindowStart: time.Now()}); err == nil {
		t.Fatal("expected error for 429 find")
	}
}
