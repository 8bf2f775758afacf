package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chateshreyas231/dineasy-sub000/internal/cache"
)

type countingLookup struct {
	mu     sync.Mutex
	calls  int
	detail Detail
	err    error
}

func (c *countingLookup) PlaceDetails(context.Context, string) (Detail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.detail, c.err
}

func (c *countingLookup) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestCachedLookupHitsOnce(t *testing.T) {
	ttl := cache.NewTTL()
	defer ttl.Close()
	next := &countingLookup{detail: Detail{PlaceID: "p-1", Name: "Oriole"}}
	cached := NewCached(next, ttl, time.Minute)

	for i := 0; i < 3; i++ {
		d, err := cached.PlaceDetails(context.Background(), "p-1")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if d.Name != "Oriole" {
			t.Fatalf("lookup %d: name = %q", i, d.Name)
		}
	}
	if next.callCount() != 1 {
		t.Fatalf("upstream called %d times, want 1", next.callCount())
	}
}

func TestCachedLookupErrorNotCached(t *testing.T) {
	ttl := cache.NewTTL()
	defer ttl.Close()
	next := &countingLookup{err: errors.New("upstream down")}
	cached := NewCached(next, ttl, time.Minute)

	if _, err := cached.PlaceDetails(context.Background(), "p-1"); err == nil {
		t.Fatal("expected error")
	}

	// upstream recovers; the failure must not have been cached
	next.mu.Lock()
	next.err = nil
	next.detail = Detail{PlaceID: "p-1", Name: "Oriole"}
	next.mu.Unlock()

	d, err := cached.PlaceDetails(context.Background(), "p-1")
	if err != nil || d.Name != "Oriole" {
		t.Fatalf("retry = %+v, %v", d, err)
	}
	if next.callCount() != 2 {
		t.Fatalf("upstream called %d times, want 2", next.callCount())
	}
}

func TestClientPlaceDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/places/p-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"name":"Oriole","location":"West Loop","cuisine":"american","rating":4.8}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	d, err := c.PlaceDetails(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if d.Name != "Oriole" || d.Location != "West Loop" {
		t.Fatalf("detail = %+v", d)
	}
	// the id is filled in when the service omits it
	if d.PlaceID != "p-1" {
		t.Fatalf("place id = %q", d.PlaceID)
	}
	if d.Rating == nil || *d.Rating != 4.8 {
		t.Fatalf("rating = %v", d.Rating)
	}
}

func TestClientPlaceDetailsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such place", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.PlaceDetails(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for 404")
	}
	if _, err := c.PlaceDetails(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestClientSearchPlaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/places/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("term") != "sushi" || q.Get("location") != "Lincoln Park" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"results":[{"placeId":"p-1","name":"Sushi Nakazawa"},{"placeId":"p-2","name":"Kyoten"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	got, err := c.SearchPlaces(context.Background(), "sushi", "Lincoln Park")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Sushi Nakazawa" {
		t.Fatalf("results = %+v", got)
	}
}
