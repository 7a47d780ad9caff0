package ttlcache

import (
	"testing"
	"time"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New[string]()
	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get(k) = %q, %v; want v, true", got, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	c := New[string]()
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unset key")
	}
}

func TestExpiry(t *testing.T) {
	c := New[string]()
	c.Set("k", "v", -time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	c := New[int]()
	c.Set("a", 1, -time.Second)
	c.Set("b", 2, time.Minute)
	removed := c.Sweep()
	if removed != 1 {
		t.Fatalf("Sweep() removed %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}
