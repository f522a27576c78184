package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got map[string]int
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["a"] != 1 {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestMemoryMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	var got string
	err := c.Get(context.Background(), "absent", &got)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	var got string
	if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry miss, got %v", err)
	}
}

func TestMemoryEviction(t *testing.T) {
	c := NewMemoryCache(WithMemoryMaxSize(2))
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", 1, time.Minute)
	time.Sleep(2 * time.Millisecond)
	_ = c.Set(ctx, "b", 2, time.Minute)
	time.Sleep(2 * time.Millisecond)
	_ = c.Set(ctx, "c", 3, time.Minute)

	ok, _ := c.Exists(ctx, "a")
	if ok {
		t.Fatalf("oldest key should have been evicted")
	}
	ok, _ = c.Exists(ctx, "c")
	if !ok {
		t.Fatalf("newest key should remain")
	}
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "k", "v", time.Minute)
	if err := c.Delete(ctx, "k", "absent"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, _ := c.Exists(ctx, "k")
	if ok {
		t.Fatalf("key should be gone")
	}
}
