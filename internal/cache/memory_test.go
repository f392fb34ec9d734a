package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}

	value := []byte("payload")
	if err := c.Set(ctx, "k", value, 0); err != nil {
		t.Fatal(err)
	}
	value[0] = 'X'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("got %q, stored value must not alias the caller's slice", got)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)

	now = now.Add(59 * time.Second)
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("entry expired early: %v", err)
	}

	now = now.Add(time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss at ttl, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted")
	}
}

func TestKey(t *testing.T) {
	if got := Key("tx", "wallet", "sig"); got != "tx:wallet:sig" {
		t.Errorf("Key = %q", got)
	}
	if got := Key("single"); got != "single" {
		t.Errorf("Key = %q", got)
	}
}

func TestMemoryExpiryKeepsConcurrentSet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	c := NewMemory()

	// once armed, the next clock read refreshes the key, which lands right
	// after Get has seen the stale entry
	refresh := false
	c.now = func() time.Time {
		if refresh {
			refresh = false
			_ = c.Set(ctx, "k", []byte("new"), time.Hour)
		}
		return now
	}

	_ = c.Set(ctx, "k", []byte("old"), time.Minute)
	now = now.Add(2 * time.Minute)
	refresh = true

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss for the stale read, got %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("refreshed entry was evicted: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("got %q, want new", got)
	}
}
