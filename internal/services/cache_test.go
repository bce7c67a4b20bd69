package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow() TimeRange {
	return TimeRange{
		Start: date(2025, 7, 18),
		End:   dateEnd(2025, 7, 18),
	}
}

func TestBuildCacheKeyDeterministic(t *testing.T) {
	window := testWindow()
	a := BuildCacheKey("rekap-instagram", "DITBINMAS", window, "ditbinmas", "unitrole", "")
	b := BuildCacheKey("rekap-instagram", "DITBINMAS", window, "ditbinmas", "unitrole", "")
	assert.Equal(t, a, b)
	assert.Contains(t, a, "ditbinmas")
	assert.NotContains(t, a, "DITBINMAS", "key is lower-cased")

	// Any differing filter component must change the key.
	assert.NotEqual(t, a, BuildCacheKey("rekap-tiktok", "DITBINMAS", window, "ditbinmas", "unitrole", ""))
	assert.NotEqual(t, a, BuildCacheKey("rekap-instagram", "POLRES-A", window, "ditbinmas", "unitrole", ""))
	assert.NotEqual(t, a, BuildCacheKey("rekap-instagram", "DITBINMAS", window, "", "unitrole", ""))
	assert.NotEqual(t, a, BuildCacheKey("rekap-instagram", "DITBINMAS", window, "ditbinmas", "unit", ""))

	other := TimeRange{Start: date(2025, 7, 17), End: dateEnd(2025, 7, 18)}
	assert.NotEqual(t, a, BuildCacheKey("rekap-instagram", "DITBINMAS", other, "ditbinmas", "unitrole", ""))
}

func TestBuildCacheKeyEmptyUnitIsAll(t *testing.T) {
	key := BuildCacheKey("rekap-instagram", "", testWindow(), "ditbinmas", "role", "")
	assert.Contains(t, key, ":all:")
}

func TestCachedAggregateRoundTrip(t *testing.T) {
	store := NewMemoryCacheStore()
	ctx := context.Background()
	key := BuildCacheKey("rekap-instagram", "polres-a", testWindow(), "", "unit", "")

	original := AggregateResult{
		Total:      5,
		ByUsername: map[string]int{"budi": 2, "sari": 3},
		PostCount:  3,
	}
	PutCachedAggregate(ctx, store, key, original, time.Minute)

	got, ok := GetCachedAggregate(ctx, store, key)
	require.True(t, ok)
	assert.True(t, got.FromCache)
	assert.Equal(t, original.Total, got.Total)
	assert.Equal(t, original.PostCount, got.PostCount)
	assert.Equal(t, original.ByUsername, got.ByUsername)
}

func TestCachedAggregateMisses(t *testing.T) {
	ctx := context.Background()

	_, ok := GetCachedAggregate(ctx, NewMemoryCacheStore(), "absent")
	assert.False(t, ok, "absent key")

	_, ok = GetCachedAggregate(ctx, nil, "key")
	assert.False(t, ok, "nil store")

	_, ok = GetCachedAggregate(ctx, failingCacheStore{}, "key")
	assert.False(t, ok, "unreachable store degrades to a miss")

	store := NewMemoryCacheStore()
	require.NoError(t, store.Set(ctx, "bad", "{not json", time.Minute))
	_, ok = GetCachedAggregate(ctx, store, "bad")
	assert.False(t, ok, "unparsable value degrades to a miss")
}

func TestMemoryCacheStoreTTL(t *testing.T) {
	store := NewMemoryCacheStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", "v", 20*time.Millisecond))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	time.Sleep(40 * time.Millisecond)
	value, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, value, "expired entry reads as absent")
}

func TestPutCachedAggregateIgnoresZeroTTL(t *testing.T) {
	store := NewMemoryCacheStore()
	ctx := context.Background()
	PutCachedAggregate(ctx, store, "k", AggregateResult{Total: 1}, 0)
	_, ok := GetCachedAggregate(ctx, store, "k")
	assert.False(t, ok)
}
