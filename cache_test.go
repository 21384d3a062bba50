package melcloudhome

import (
	"testing"
	"time"
)

func TestCacheEmptyIsInvalid(t *testing.T) {
	cache := newProfileCache()
	if cache.isValid(time.Hour) {
		t.Fatalf("empty cache must be invalid")
	}
	if cache.get() != nil {
		t.Fatalf("empty cache must return nil profile")
	}
}

func TestCacheSetMakesValid(t *testing.T) {
	cache := newProfileCache()
	cache.set(&UserProfile{ID: "user"})

	if !cache.isValid(time.Minute) {
		t.Fatalf("fresh snapshot must be valid")
	}
	if cache.get() == nil || cache.get().ID != "user" {
		t.Fatalf("unexpected profile: %+v", cache.get())
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	now := time.Now()
	cache := newProfileCache()
	cache.now = func() time.Time { return now }
	cache.set(&UserProfile{})

	now = now.Add(5*time.Minute + time.Second)
	if cache.isValid(5 * time.Minute) {
		t.Fatalf("snapshot older than ttl must be invalid")
	}
	if !cache.isValid(10 * time.Minute) {
		t.Fatalf("snapshot within larger ttl must be valid")
	}
}

func TestCacheInvalidateKeepsSnapshot(t *testing.T) {
	cache := newProfileCache()
	cache.set(&UserProfile{ID: "user"})
	cache.invalidate()

	if cache.isValid(time.Hour) {
		t.Fatalf("invalidated cache must report invalid for any ttl")
	}
	if cache.get() == nil {
		t.Fatalf("stale snapshot must stay readable after invalidation")
	}

	cache.set(&UserProfile{ID: "user2"})
	if !cache.isValid(time.Hour) {
		t.Fatalf("set must clear the invalidated flag")
	}
}

func TestCacheZeroTTLNeverValid(t *testing.T) {
	cache := newProfileCache()
	cache.set(&UserProfile{})
	if cache.isValid(0) {
		t.Fatalf("zero ttl must never be valid")
	}
}
