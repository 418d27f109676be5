package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryServiceGetOrSet(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []string{"A1", "B2"}, nil
	}

	var first, second []string
	if err := svc.GetOrSet(ctx, "seats", time.Minute, fetch, &first); err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	if err := svc.GetOrSet(ctx, "seats", time.Minute, fetch, &second); err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetcher called %d times, want 1", calls)
	}
	if len(second) != 2 || second[1] != "B2" {
		t.Errorf("cached value = %v", second)
	}

	_ = svc.Delete(ctx, "seats")
	var miss []string
	if err := svc.Get(ctx, "seats", &miss); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryServiceExpiry(t *testing.T) {
	svc := NewMemoryService().(*memoryService)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_ = svc.Set(ctx, "k", 1, time.Second)
	now = now.Add(time.Second)

	var v int
	if err := svc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry still served: %v", err)
	}
}

func TestMemoryServiceLock(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	lock, err := svc.AcquireLock(ctx, "job", time.Minute)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := svc.AcquireLock(ctx, "job", time.Minute); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("second AcquireLock = %v, want ErrLockHeld", err)
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := svc.AcquireLock(ctx, "job", time.Minute)
	if err != nil {
		t.Fatalf("lock should be free after release: %v", err)
	}

	// a stale handle must not release the new owner's lock
	_ = lock.Release(ctx)
	if _, err := svc.AcquireLock(ctx, "job", time.Minute); !errors.Is(err, ErrLockHeld) {
		t.Errorf("stale release freed the lock: %v", err)
	}
	_ = again.Release(ctx)
}
