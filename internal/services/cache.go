package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"
)

// BuildCacheKey joins the normalized filter tuple in a fixed order so that
// two logically identical requests always collide on one key.
func BuildCacheKey(kind, unitID string, window TimeRange, role, scope, regionalID string) string {
	if strings.TrimSpace(unitID) == "" {
		unitID = "all"
	}
	parts := []string{
		kind,
		unitID,
		window.Start.UTC().Format(time.RFC3339),
		window.End.UTC().Format(time.RFC3339),
		role,
		scope,
		regionalID,
	}
	return strings.ToLower(strings.Join(parts, ":"))
}

type cachedAggregate struct {
	Total      int            `json:"total"`
	ByUsername map[string]int `json:"byUsername"`
	PostCount  int            `json:"postCount"`
}

// GetCachedAggregate returns the aggregate stored under key, or false on any
// miss: absent key, unreachable store, or an unparsable value. The cache is
// advisory; none of those conditions is an error to the caller.
func GetCachedAggregate(ctx context.Context, store CacheStore, key string) (AggregateResult, bool) {
	if store == nil {
		return AggregateResult{}, false
	}
	raw, err := store.Get(ctx, key)
	if err != nil {
		log.Printf("cache: get %s failed: %v", key, err)
		return AggregateResult{}, false
	}
	if raw == "" {
		return AggregateResult{}, false
	}
	var cached cachedAggregate
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		log.Printf("cache: unparsable value for %s treated as miss: %v", key, err)
		return AggregateResult{}, false
	}
	byUsername := cached.ByUsername
	if byUsername == nil {
		byUsername = map[string]int{}
	}
	return AggregateResult{
		Total:      cached.Total,
		ByUsername: byUsername,
		PostCount:  cached.PostCount,
		FromCache:  true,
	}, true
}

// PutCachedAggregate stores the aggregate under key. Best effort: a set
// failure only costs the next caller a recompute.
func PutCachedAggregate(ctx context.Context, store CacheStore, key string, result AggregateResult, ttl time.Duration) {
	if store == nil || ttl <= 0 {
		return
	}
	payload, err := json.Marshal(cachedAggregate{
		Total:      result.Total,
		ByUsername: result.ByUsername,
		PostCount:  result.PostCount,
	})
	if err != nil {
		return
	}
	if err := store.Set(ctx, key, string(payload), ttl); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}

// MemoryCacheStore is an in-process CacheStore with per-entry TTL. It backs
// deployments without an external cache and all of the tests.
type MemoryCacheStore struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{entries: map[string]memoryCacheEntry{}}
}

func (s *MemoryCacheStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", nil
	}
	return entry.value, nil
}

func (s *MemoryCacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryCacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}
