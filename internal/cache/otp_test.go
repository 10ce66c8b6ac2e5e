package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*CodeCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewCodeCache(rdb), mr
}

func TestSetGetDel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "+998901234567", "111111", 2*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "+998901234567")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "111111" {
		t.Fatalf("got %q, want 111111", got)
	}

	if err := c.Del(ctx, "+998901234567"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if _, err := c.Get(ctx, "+998901234567"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after delete, got %v", err)
	}
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestCache(t)
	if _, err := c.Get(context.Background(), "+998900000000"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestExpiryMakesCodeUnreachable(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "+998901234567", "222222", 120*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// Advance the fake clock past the TTL; the code must read as absent
	// even though its value would still match.
	mr.FastForward(121 * time.Second)

	if _, err := c.Get(ctx, "+998901234567"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after expiry, got %v", err)
	}
}

func TestNewRequestOverwritesPendingCode(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "user@example.com", "111111", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, "user@example.com", "333333", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "333333" {
		t.Fatalf("expected the newer code, got %q", got)
	}
}

func TestDelIsIdempotent(t *testing.T) {
	c, _ := newTestCache(t)
	if err := c.Del(context.Background(), "never-set"); err != nil {
		t.Fatalf("Del of absent key should not error: %v", err)
	}
}
