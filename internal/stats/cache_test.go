package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
)

type fakeCounter struct {
	calls int
	snap  models.Snapshot
	err   error
}

func (f *fakeCounter) StatsCounts(ctx context.Context) (models.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return models.Snapshot{}, f.err
	}
	return f.snap, nil
}

func TestGetServesCachedSnapshotInsideWindow(t *testing.T) {
	counter := &fakeCounter{snap: models.Snapshot{TotalProducts: 7, NewEnquiries: 2}}
	cache := NewCache(counter)

	first := cache.Get(context.Background(), false)
	second := cache.Get(context.Background(), false)

	if counter.calls != 1 {
		t.Fatalf("expected 1 backend count, got %d", counter.calls)
	}
	if !second.CachedAt.Equal(first.CachedAt) {
		t.Errorf("cached_at changed inside the window: %v vs %v", first.CachedAt, second.CachedAt)
	}
	if second != first {
		t.Errorf("snapshots differ inside the window: %+v vs %+v", first, second)
	}
	if first.TotalProducts != 7 || first.NewEnquiries != 2 {
		t.Errorf("unexpected counts: %+v", first)
	}
}

func TestGetForceRefreshAlwaysRecounts(t *testing.T) {
	counter := &fakeCounter{snap: models.Snapshot{TotalProducts: 1}}
	cache := NewCache(counter)

	cache.Get(context.Background(), false)
	counter.snap.TotalProducts = 5
	refreshed := cache.Get(context.Background(), true)

	if counter.calls != 2 {
		t.Fatalf("expected 2 backend counts, got %d", counter.calls)
	}
	if refreshed.TotalProducts != 5 {
		t.Errorf("force refresh returned stale count %d", refreshed.TotalProducts)
	}
}

func TestGetRecountsAfterWindowExpires(t *testing.T) {
	counter := &fakeCounter{snap: models.Snapshot{TotalProducts: 1}}
	cache := NewCache(counter)

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Get(context.Background(), false)
	current = current.Add(DefaultWindow + time.Second)
	cache.Get(context.Background(), false)

	if counter.calls != 2 {
		t.Fatalf("expected recount after window expiry, got %d calls", counter.calls)
	}
}

func TestGetFallsBackToStaleSnapshotOnError(t *testing.T) {
	counter := &fakeCounter{snap: models.Snapshot{TotalProducts: 3}}
	cache := NewCache(counter)

	first := cache.Get(context.Background(), false)

	counter.err = errors.New("store unreachable")
	fallback := cache.Get(context.Background(), true)

	if fallback != first {
		t.Errorf("expected stale snapshot on failure, got %+v", fallback)
	}
	if fallback.Error {
		t.Errorf("stale fallback should not carry the error flag")
	}
}

func TestGetReturnsZeroSnapshotWithErrorFlagWhenNeverCounted(t *testing.T) {
	counter := &fakeCounter{err: errors.New("store unreachable")}
	cache := NewCache(counter)

	snap := cache.Get(context.Background(), false)

	if !snap.Error {
		t.Errorf("expected error flag on zero snapshot")
	}
	if snap.TotalProducts != 0 || snap.TotalEnquiries != 0 {
		t.Errorf("expected zero-filled snapshot, got %+v", snap)
	}
}
