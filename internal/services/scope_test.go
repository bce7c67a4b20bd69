package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medsosmon-backend-go/internal/models"
)

func unitDir(units ...models.Unit) *fakeUnitDirectory {
	byID := map[string]models.Unit{}
	for _, unit := range units {
		byID[unit.ID] = unit
	}
	return &fakeUnitDirectory{units: byID}
}

func TestResolveScopeByUnit(t *testing.T) {
	dir := unitDir(models.Unit{ID: "POLRES-A", Type: "org", Active: true})
	scope, err := ResolveScope(context.Background(), ScopeRequest{ClientID: "POLRES-A"}, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, ByUnit, scope.Spec.Kind)
	assert.Equal(t, "POLRES-A", scope.Spec.UnitID)
	assert.Equal(t, UnitTypeOrg, scope.UnitType)
	assert.False(t, scope.Degraded)
}

func TestResolveScopeRoleOnly(t *testing.T) {
	scope, err := ResolveScope(context.Background(), ScopeRequest{Role: "DITBINMAS"}, unitDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, ByRole, scope.Spec.Kind)
	assert.Equal(t, "ditbinmas", scope.Spec.Role)
	assert.Equal(t, UnitTypeDirektorat, scope.UnitType)
}

func TestResolveScopeDirectorateRoleFilter(t *testing.T) {
	dir := unitDir(models.Unit{ID: "DITBINMAS", Type: "direktorat", Active: true})
	scope, err := ResolveScope(context.Background(), ScopeRequest{
		ClientID: "DITBINMAS",
		Role:     "ditbinmas",
	}, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, ByUnitAndRole, scope.Spec.Kind)
	assert.Equal(t, "ditbinmas", scope.Spec.Role)
	assert.Equal(t, UnitTypeDirektorat, scope.UnitType)
}

func TestResolveScopeOrgUnitIgnoresRoleFilter(t *testing.T) {
	dir := unitDir(models.Unit{ID: "POLRES-A", Type: "org", Active: true})
	scope, err := ResolveScope(context.Background(), ScopeRequest{
		ClientID: "POLRES-A",
		Role:     "ditbinmas",
	}, dir, nil)
	require.NoError(t, err)
	// Role filters only apply within directorate scope.
	assert.Equal(t, ByUnit, scope.Spec.Kind)
	assert.Empty(t, scope.Spec.Role)
}

func TestResolveScopeExplicitDirektoratScope(t *testing.T) {
	// Explicit scope=direktorat forces the role filter even when the unit
	// lookup says org.
	dir := unitDir(models.Unit{ID: "POLRES-A", Type: "org", Active: true})
	scope, err := ResolveScope(context.Background(), ScopeRequest{
		ClientID: "POLRES-A",
		Role:     "ditbinmas",
		Scope:    "direktorat",
	}, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, ByUnitAndRole, scope.Spec.Kind)
}

func TestResolveScopeValidation(t *testing.T) {
	_, err := ResolveScope(context.Background(), ScopeRequest{}, unitDir(), nil)
	assert.True(t, IsValidation(err), "both empty: %v", err)

	_, err = ResolveScope(context.Background(), ScopeRequest{ClientID: "X", Scope: "galaksi"}, unitDir(), nil)
	assert.True(t, IsValidation(err), "unknown scope: %v", err)
}

func TestResolveScopeDegradesOnLookupFailure(t *testing.T) {
	dir := &fakeUnitDirectory{err: assert.AnError}
	scope, err := ResolveScope(context.Background(), ScopeRequest{
		ClientID: "DITBINMAS",
		Role:     "ditbinmas",
	}, dir, nil)
	require.NoError(t, err)
	assert.True(t, scope.Degraded)
	assert.Equal(t, UnitTypeOrg, scope.UnitType)
	// Degraded lookups assume org, so the role filter is skipped.
	assert.Equal(t, ByUnit, scope.Spec.Kind)
}

func TestResolveScopeMemoizesUnitType(t *testing.T) {
	dir := unitDir(models.Unit{ID: "DITBINMAS", Type: "direktorat", Active: true})
	memo := NewUnitTypeCache(10, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := ResolveScope(context.Background(), ScopeRequest{ClientID: "DITBINMAS"}, dir, memo)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, dir.calls)
}

func TestUnitTypeCacheExpiryAndEviction(t *testing.T) {
	memo := NewUnitTypeCache(2, 30*time.Millisecond)
	memo.Set("a", UnitTypeOrg)
	time.Sleep(time.Millisecond)
	memo.Set("b", UnitTypeDirektorat)

	got, ok := memo.Get("A")
	require.True(t, ok, "keys are case-insensitive")
	assert.Equal(t, UnitTypeOrg, got)

	// Third insert must evict the oldest entry.
	memo.Set("c", UnitTypeOrg)
	_, ok = memo.Get("a")
	assert.False(t, ok)
	_, ok = memo.Get("b")
	assert.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = memo.Get("b")
	assert.False(t, ok, "entries expire after ttl")
}
