package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

const (
	UnitTypeOrg        = "org"
	UnitTypeDirektorat = "direktorat"
)

// ScopeRequest is the raw filter set a caller supplies.
type ScopeRequest struct {
	ClientID   string
	Role       string
	Scope      string // org | direktorat, defaults to org
	RegionalID string
}

// ResolvedScope is what the aggregator interprets: a query spec plus the
// looked-up unit type that gates the directorate fallback.
type ResolvedScope struct {
	Spec     QuerySpec
	UnitType string
	// Degraded is set when the unit-type lookup failed and the resolver
	// proceeded with the conservative no-role-filter assumption.
	Degraded bool
}

// UnitTypeCache memoizes unit types keyed by lower-cased unit id. Advisory
// only: a miss or an expired entry just costs one directory lookup.
type UnitTypeCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]unitTypeEntry
}

type unitTypeEntry struct {
	unitType string
	storedAt time.Time
}

func NewUnitTypeCache(maxSize int, ttl time.Duration) *UnitTypeCache {
	if maxSize <= 0 {
		maxSize = 200
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &UnitTypeCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: map[string]unitTypeEntry{},
	}
}

func (c *UnitTypeCache) Get(unitID string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(unitID))
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return entry.unitType, true
}

func (c *UnitTypeCache) Set(unitID, unitType string) {
	key := strings.ToLower(strings.TrimSpace(unitID))
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = unitTypeEntry{unitType: unitType, storedAt: time.Now()}
}

func (c *UnitTypeCache) evictOldestLocked() {
	oldestKey := ""
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// ResolveScope turns the raw filter set into a concrete query scope. The
// only I/O is a single unit-type lookup, and a failure there degrades to
// "no role filter" instead of blocking report generation.
func ResolveScope(ctx context.Context, req ScopeRequest, units UnitDirectory, memo *UnitTypeCache) (ResolvedScope, error) {
	scope := strings.ToLower(strings.TrimSpace(req.Scope))
	if scope == "" {
		scope = UnitTypeOrg
	}
	if scope != UnitTypeOrg && scope != UnitTypeDirektorat {
		return ResolvedScope{}, ErrValidation("scope tidak dikenal: " + req.Scope)
	}

	clientID := strings.TrimSpace(req.ClientID)
	role := strings.ToLower(strings.TrimSpace(req.Role))
	regionalID := strings.ToUpper(strings.TrimSpace(req.RegionalID))

	if clientID == "" && role == "" {
		return ResolvedScope{}, ErrValidation("clientId atau role wajib diisi")
	}
	if clientID == "" {
		return ResolvedScope{
			Spec:     QuerySpec{Kind: ByRole, Role: role, RegionalID: regionalID},
			UnitType: UnitTypeDirektorat,
		}, nil
	}

	resolved := ResolvedScope{
		Spec: QuerySpec{Kind: ByUnit, UnitID: clientID, RegionalID: regionalID},
	}
	unitType, degraded := lookupUnitType(ctx, clientID, units, memo)
	resolved.UnitType = unitType
	resolved.Degraded = degraded

	if role != "" && (scope == UnitTypeDirektorat || unitType == UnitTypeDirektorat) {
		resolved.Spec.Kind = ByUnitAndRole
		resolved.Spec.Role = role
	}
	return resolved, nil
}

func lookupUnitType(ctx context.Context, unitID string, units UnitDirectory, memo *UnitTypeCache) (string, bool) {
	if memo != nil {
		if unitType, ok := memo.Get(unitID); ok {
			return unitType, false
		}
	}
	unit, err := units.FindUnitByID(ctx, unitID)
	if err != nil {
		log.Printf("scope: unit type lookup failed for %s, assuming org: %v", unitID, err)
		return UnitTypeOrg, true
	}
	unitType := strings.ToLower(strings.TrimSpace(unit.Type))
	if unitType == "" {
		unitType = UnitTypeOrg
	}
	if memo != nil {
		memo.Set(unitID, unitType)
	}
	return unitType, false
}
