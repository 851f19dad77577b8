package cache

import (
	"testing"
	"time"
)

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	store := New(ttl)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	return store, &current
}

func TestGetHonorsTTL(t *testing.T) {
	store, clock := newTestStore(30 * time.Second)

	store.SetIfCurrent("k", 0, "v1")
	if v, ok := store.Get("k"); !ok || v != "v1" {
		t.Fatalf("fresh value not served: %v %v", v, ok)
	}

	*clock = clock.Add(31 * time.Second)
	if _, ok := store.Get("k"); ok {
		t.Fatalf("expired value served as fresh")
	}
	if v, ok := store.GetStale("k"); !ok || v != "v1" {
		t.Fatalf("stale value lost: %v %v", v, ok)
	}
}

func TestInvalidateDropsValueAndBumpsGeneration(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	store.SetIfCurrent("k", 0, "v1")
	before := store.Generation("k")
	store.Invalidate("k")

	if _, ok := store.GetStale("k"); ok {
		t.Fatalf("invalidated value still readable")
	}
	if store.Generation("k") != before+1 {
		t.Fatalf("generation not bumped")
	}
}

func TestSetIfCurrentDiscardsSupersededWrite(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	gen := store.Generation("k")
	store.Invalidate("k")
	store.SetIfCurrent("k", gen, "from-superseded-fetch")

	if _, ok := store.GetStale("k"); ok {
		t.Fatalf("write from a superseded fetch was stored")
	}

	store.SetIfCurrent("k", store.Generation("k"), "current")
	if v, _ := store.Get("k"); v != "current" {
		t.Fatalf("current write rejected: %v", v)
	}
}

func TestSetIfCurrentRejectsStaleGenerationOnNewKey(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	store.SetIfCurrent("fresh-key", 3, "v")
	if _, ok := store.GetStale("fresh-key"); ok {
		t.Fatalf("nonzero generation on an unseen key must be discarded")
	}
}
