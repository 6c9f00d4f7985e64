package metadata

import (
	"testing"
	"time"
)

func newTestCache(cfg CacheConfig) (*Cache[string], *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCache[string](cfg)
	cache.now = func() time.Time { return now }
	return cache, &now
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(CacheConfig{TTL: time.Minute, MaxItems: 100})

	cache.Set("key1", "value1")

	val, ok := cache.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != "value1" {
		t.Errorf("expected value1, got %v", val)
	}
}

func TestCache_GetMissing(t *testing.T) {
	cache, _ := newTestCache(CacheConfig{TTL: time.Minute, MaxItems: 100})

	_, ok := cache.Get("nonexistent")
	if ok {
		t.Error("expected key to not exist")
	}
}

func TestCache_Expiration(t *testing.T) {
	cache, now := newTestCache(CacheConfig{TTL: time.Minute, MaxItems: 100})

	cache.Set("key1", "value1")

	if _, ok := cache.Get("key1"); !ok {
		t.Error("expected key1 to exist immediately")
	}

	*now = now.Add(2 * time.Minute)

	if _, ok := cache.Get("key1"); ok {
		t.Error("expected key1 to be expired")
	}
	if cache.Len() != 0 {
		t.Errorf("expected expired item to be dropped, len = %d", cache.Len())
	}
}

func TestCache_EvictsOldestWhenFull(t *testing.T) {
	cache, now := newTestCache(CacheConfig{TTL: time.Hour, MaxItems: 3})

	cache.Set("a", "1")
	*now = now.Add(time.Second)
	cache.Set("b", "2")
	*now = now.Add(time.Second)
	cache.Set("c", "3")
	*now = now.Add(time.Second)
	cache.Set("d", "4")

	if cache.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("expected oldest item to be evicted")
	}
	for _, key := range []string{"b", "c", "d"} {
		if _, ok := cache.Get(key); !ok {
			t.Errorf("expected %s to remain", key)
		}
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	cache, _ := newTestCache(CacheConfig{TTL: time.Hour, MaxItems: 2})

	cache.Set("a", "1")
	cache.Set("b", "2")
	cache.Set("b", "3")

	if cache.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", cache.Len())
	}
	if val, _ := cache.Get("b"); val != "3" {
		t.Errorf("expected overwritten value 3, got %q", val)
	}
}
