package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewTTL()
	defer c.Close()

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get = %v, %v", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("hit on a missing key")
	}
}

func TestExpiry(t *testing.T) {
	c := NewTTL()
	defer c.Close()

	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry still returned")
	}
	// lazy expiry on Get also removes the entry
	if c.Len() != 0 {
		t.Fatalf("len = %d after expired Get", c.Len())
	}
}

func TestZeroTTLNotStored(t *testing.T) {
	c := NewTTL()
	defer c.Close()

	c.Set("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Fatal("zero-ttl entry stored")
	}
}

func TestDelete(t *testing.T) {
	c := NewTTL()
	defer c.Close()

	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("deleted entry still returned")
	}
}

func TestOverwriteRefreshes(t *testing.T) {
	c := NewTTL()
	defer c.Close()

	c.Set("k", "old", time.Minute)
	c.Set("k", "new", time.Minute)
	got, _ := c.Get("k")
	if got != "new" {
		t.Fatalf("Get = %v", got)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestJanitorSweeps(t *testing.T) {
	c := NewTTL()
	defer c.Close()
	c.StartJanitor(10 * time.Millisecond)

	c.Set("short", "v", 5*time.Millisecond)
	c.Set("long", "v", time.Minute)

	deadline := time.Now().Add(time.Second)
	for c.Len() > 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d after sweep, want 1", c.Len())
	}
	if _, ok := c.Get("long"); !ok {
		t.Fatal("janitor removed a live entry")
	}
}

func TestCloseIdempotent(t *testing.T) {
	c := NewTTL()
	c.Close()
	c.Close()
}
