package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medsosmon-backend-go/internal/models"
)

func post(id string) models.Post {
	return models.Post{ID: id, Platform: PlatformInstagram, UnitID: "ditbinmas"}
}

func TestAggregateCountsDistinctPostsPerUsername(t *testing.T) {
	posts := &fakePostStore{posts: map[QueryKind][]models.Post{
		ByUnit: {post("p1"), post("p2"), post("p3")},
	}}
	engagements := &fakeEngagementStore{sets: map[string][]interface{}{
		// budi appears twice in p1's raw set; still one post.
		"p1": {"@Budi", "budi", "sari"},
		"p2": {"budi"},
		"p3": {map[string]interface{}{"user": map[string]interface{}{"unique_id": "@Sari"}}},
	}}

	agg := &Aggregator{Posts: posts, Engagements: engagements, Workers: 4}
	scope := ResolvedScope{Spec: QuerySpec{Kind: ByUnit, UnitID: "ditbinmas"}, UnitType: UnitTypeOrg}

	result, err := agg.Aggregate(context.Background(), PlatformInstagram, scope, testWindow())
	require.NoError(t, err)
	assert.Equal(t, 3, result.PostCount)
	assert.Equal(t, 2, result.ByUsername["budi"])
	assert.Equal(t, 2, result.ByUsername["sari"])
	assert.Equal(t, 4, result.Total, "sum of per-post distinct set sizes")
	assert.Zero(t, result.Failed)
	assert.False(t, result.FellBack)
}

func TestAggregatePerPostFailuresAreNonFatal(t *testing.T) {
	posts := &fakePostStore{posts: map[QueryKind][]models.Post{
		ByUnit: {post("ok"), post("boom"), post("boom2")},
	}}
	engagements := &fakeEngagementStore{
		sets:    map[string][]interface{}{"ok": {"budi"}},
		failing: map[string]bool{"boom": true, "boom2": true},
	}

	agg := &Aggregator{Posts: posts, Engagements: engagements}
	scope := ResolvedScope{Spec: QuerySpec{Kind: ByUnit, UnitID: "ditbinmas"}}

	result, err := agg.Aggregate(context.Background(), PlatformInstagram, scope, testWindow())
	require.NoError(t, err)
	assert.Equal(t, 3, result.PostCount)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.ByUsername["budi"])
}

func TestAggregateListFailureIsFatal(t *testing.T) {
	posts := &fakePostStore{err: assert.AnError}
	agg := &Aggregator{Posts: posts, Engagements: &fakeEngagementStore{}}
	scope := ResolvedScope{Spec: QuerySpec{Kind: ByUnit, UnitID: "x"}}

	_, err := agg.Aggregate(context.Background(), PlatformInstagram, scope, testWindow())
	assert.Error(t, err)
}

func TestAggregateDirectorateFallback(t *testing.T) {
	// Role-filtered listing is empty, plain unit listing is not: the
	// directorate retry must fire exactly once and be flagged.
	posts := &fakePostStore{posts: map[QueryKind][]models.Post{
		ByUnitAndRole: {},
		ByUnit:        {post("p1")},
	}}
	engagements := &fakeEngagementStore{sets: map[string][]interface{}{
		"p1": {"budi"},
	}}

	agg := &Aggregator{Posts: posts, Engagements: engagements}
	scope := ResolvedScope{
		Spec:     QuerySpec{Kind: ByUnitAndRole, UnitID: "DITBINMAS", Role: "ditbinmas"},
		UnitType: UnitTypeDirektorat,
	}

	result, err := agg.Aggregate(context.Background(), PlatformInstagram, scope, testWindow())
	require.NoError(t, err)
	assert.True(t, result.FellBack)
	assert.Equal(t, 1, result.PostCount)
	assert.Equal(t, 1, result.ByUsername["budi"])

	require.Len(t, posts.specs, 2)
	assert.Equal(t, ByUnitAndRole, posts.specs[0].Kind)
	assert.Equal(t, ByUnit, posts.specs[1].Kind)
	assert.Empty(t, posts.specs[1].Role, "fallback drops the role filter")
}

func TestAggregateNoFallbackForOrgUnits(t *testing.T) {
	posts := &fakePostStore{posts: map[QueryKind][]models.Post{}}
	agg := &Aggregator{Posts: posts, Engagements: &fakeEngagementStore{}}
	scope := ResolvedScope{Spec: QuerySpec{Kind: ByUnit, UnitID: "polres-a"}, UnitType: UnitTypeOrg}

	result, err := agg.Aggregate(context.Background(), PlatformInstagram, scope, testWindow())
	require.NoError(t, err)
	assert.Zero(t, result.PostCount)
	assert.False(t, result.FellBack)
	assert.Len(t, posts.specs, 1, "no retry outside the directorate role case")
}

func TestAggregateNoFallbackWhenRoleScopeHadPosts(t *testing.T) {
	posts := &fakePostStore{posts: map[QueryKind][]models.Post{
		ByUnitAndRole: {post("p1")},
	}}
	engagements := &fakeEngagementStore{sets: map[string][]interface{}{"p1": {"budi"}}}
	agg := &Aggregator{Posts: posts, Engagements: engagements}
	scope := ResolvedScope{
		Spec:     QuerySpec{Kind: ByUnitAndRole, UnitID: "DITBINMAS", Role: "ditbinmas"},
		UnitType: UnitTypeDirektorat,
	}

	result, err := agg.Aggregate(context.Background(), PlatformInstagram, scope, testWindow())
	require.NoError(t, err)
	assert.False(t, result.FellBack)
	assert.Len(t, posts.specs, 1)
}

func TestAggregateCanceledContext(t *testing.T) {
	posts := &fakePostStore{posts: map[QueryKind][]models.Post{
		ByUnit: {post("p1"), post("p2")},
	}}
	engagements := &fakeEngagementStore{sets: map[string][]interface{}{}}
	agg := &Aggregator{Posts: posts, Engagements: engagements}
	scope := ResolvedScope{Spec: QuerySpec{Kind: ByUnit, UnitID: "x"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := agg.Aggregate(ctx, PlatformInstagram, scope, testWindow())
	assert.ErrorIs(t, err, context.Canceled)
}
