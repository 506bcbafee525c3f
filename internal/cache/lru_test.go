package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[string](10, time.Minute)

	if _, found := c.Get(ctx, "missing"); found {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Set(ctx, "2025-06", "payload")
	got, found := c.Get(ctx, "2025-06")
	if !found || got != "payload" {
		t.Fatalf("Get = %q, %v", got, found)
	}

	c.Set(ctx, "2025-06", "updated")
	if got, _ := c.Get(ctx, "2025-06"); got != "updated" {
		t.Fatalf("Get after update = %q", got)
	}
}

func TestLRUCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](2, time.Minute)

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Get(ctx, "a") // touch a so b is the eviction candidate
	c.Set(ctx, "c", 3)

	if _, found := c.Get(ctx, "b"); found {
		t.Fatal("b should have been evicted")
	}
	if _, found := c.Get(ctx, "a"); !found {
		t.Fatal("a should have survived")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d; want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](10, -time.Second) // everything born expired

	c.Set(ctx, "a", 1)
	if _, found := c.Get(ctx, "a"); found {
		t.Fatal("expired entry should miss")
	}

	c.Set(ctx, "b", 2)
	c.Set(ctx, "c", 3)
	if removed := c.CleanExpired(); removed != 2 {
		t.Fatalf("CleanExpired = %d; want 2", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d; want 0", c.Size())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](10, time.Minute)

	c.Set(ctx, "a", 1)
	c.Delete(ctx, "a")
	if _, found := c.Get(ctx, "a"); found {
		t.Fatal("deleted entry should miss")
	}
	c.Delete(ctx, "a") // deleting again is a no-op
}
