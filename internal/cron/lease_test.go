package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memRedis struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemRedis() *memRedis {
	return &memRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memRedis) LockKey(name string) string { return "bikurim:lock:" + name }

func TestWindowLeasesClaimOncePerWindow(t *testing.T) {
	store := newMemRedis()
	leases, err := NewWindowLeases(store, "test")
	if err != nil {
		t.Fatalf("NewWindowLeases: %v", err)
	}
	ctx := context.Background()
	window := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	claim, ok, err := leases.Claim(ctx, "retention", window, 24*time.Hour)
	if err != nil || !ok {
		t.Fatalf("first claim ok=%v err=%v", ok, err)
	}
	wantKey := "bikurim:lock:test:retention:" + "1772323200"
	if claim.Key != wantKey {
		t.Fatalf("key = %q, want %q", claim.Key, wantKey)
	}
	if store.ttls[wantKey] != 24*time.Hour {
		t.Fatalf("ttl = %v", store.ttls[wantKey])
	}

	if _, ok, _ := leases.Claim(ctx, "retention", window, 24*time.Hour); ok {
		t.Fatal("window claimed twice")
	}
	if _, ok, _ := leases.Claim(ctx, "retention", window.Add(24*time.Hour), 24*time.Hour); !ok {
		t.Fatal("next window should be free")
	}
	if _, ok, _ := leases.Claim(ctx, "forecast-snapshot", window, 24*time.Hour); !ok {
		t.Fatal("other jobs share no window")
	}
}

func TestWindowLeasesYieldChecksOwner(t *testing.T) {
	store := newMemRedis()
	leases, _ := NewWindowLeases(store, "")
	ctx := context.Background()
	window := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	claim, _, _ := leases.Claim(ctx, "retention", window, time.Hour)
	stranger := Claim{Key: claim.Key, Owner: "someone-else"}
	if err := leases.Yield(ctx, stranger); err != nil {
		t.Fatalf("Yield: %v", err)
	}
	if _, held := store.values[claim.Key]; !held {
		t.Fatal("claim yielded by non-owner")
	}

	if err := leases.Yield(ctx, claim); err != nil {
		t.Fatalf("Yield: %v", err)
	}
	if _, held := store.values[claim.Key]; held {
		t.Fatal("claim still held after owner yield")
	}
	// yielding an expired claim is a no-op
	if err := leases.Yield(ctx, claim); err != nil {
		t.Fatalf("Yield after expiry: %v", err)
	}
}

func TestWindowLeasesRejectsZeroTTL(t *testing.T) {
	leases, _ := NewWindowLeases(newMemRedis(), "test")
	if _, _, err := leases.Claim(context.Background(), "retention", time.Now(), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
	if _, err := NewWindowLeases(nil, "test"); err == nil {
		t.Fatal("expected error without a store")
	}
}
