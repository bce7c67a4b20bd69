package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"medsosmon-backend-go/internal/models"
)

// Engine wires the compliance pipeline: time-range and scope resolution,
// cached cross-platform aggregation, classification and rendering. Stateless
// per call except for the advisory unit-type memo and result cache.
type Engine struct {
	Units       UnitDirectory
	Persons     PersonDirectory
	Posts       PostStore
	Engagements EngagementStore
	Cache       CacheStore
	UnitTypes   *UnitTypeCache
	Workers     int
	CacheTTL    time.Duration
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// ComplianceFilters is the raw filter set of a summary request.
type ComplianceFilters struct {
	ClientID   string
	Role       string
	Scope      string
	RegionalID string
	TimeRange  string
	StartDate  string
	EndDate    string
}

const DefaultCacheTTL = 90 * time.Second

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) aggregator() *Aggregator {
	return &Aggregator{Posts: e.Posts, Engagements: e.Engagements, Workers: e.Workers}
}

// ComplianceSummary computes the structured dashboard summary for a filter
// set. Partial backend failures downgrade to warnings; the call only fails
// outright on bad input or when both the person directory and the post store
// are unreachable.
func (e *Engine) ComplianceSummary(ctx context.Context, filters ComplianceFilters) (StructuredSummary, error) {
	window, err := ResolveTimeRange(filters.TimeRange, filters.StartDate, filters.EndDate, e.now())
	if err != nil {
		return StructuredSummary{}, err
	}
	scope, err := ResolveScope(ctx, ScopeRequest{
		ClientID:   filters.ClientID,
		Role:       filters.Role,
		Scope:      filters.Scope,
		RegionalID: filters.RegionalID,
	}, e.Units, e.UnitTypes)
	if err != nil {
		return StructuredSummary{}, err
	}

	warnings := []string{}
	if scope.Degraded {
		warnings = append(warnings, "tipe satker tidak dapat diperiksa, filter role dilewati")
	}

	instagram, igErr := e.cachedAggregate(ctx, PlatformInstagram, scope, window)
	if canceled(igErr) {
		return StructuredSummary{}, igErr
	}
	tiktok, ttErr := e.cachedAggregate(ctx, PlatformTiktok, scope, window)
	if canceled(ttErr) {
		return StructuredSummary{}, ttErr
	}

	persons, personsErr := e.Persons.ListActivePersons(ctx, scope.Spec)
	if canceled(personsErr) {
		return StructuredSummary{}, personsErr
	}
	postsFailed := igErr != nil && ttErr != nil
	if personsErr != nil && postsFailed {
		return StructuredSummary{}, ErrDependency("direktori personil dan penyimpanan konten tidak dapat diakses")
	}
	if personsErr != nil {
		log.Printf("compliance: person directory failed: %v", personsErr)
		warnings = append(warnings, "direktori personil tidak dapat diakses")
		persons = nil
	}
	warnings = append(warnings, aggregateWarnings(PlatformInstagram, instagram, igErr)...)
	warnings = append(warnings, aggregateWarnings(PlatformTiktok, tiktok, ttErr)...)

	unitName := e.unitDisplayName(ctx, scope.Spec)
	return BuildStructuredSummary(persons, unitName, instagram, tiktok, warnings), nil
}

// ComplianceReportText renders the messaging text for one unit, platform and
// bucket variant over a symbolic window.
func (e *Engine) ComplianceReportText(ctx context.Context, unitID, platform, bucket, windowKind string) (string, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		platform = PlatformInstagram
	}
	if platform != PlatformInstagram && platform != PlatformTiktok {
		return "", ErrValidation("platform tidak dikenal: " + platform)
	}
	if strings.TrimSpace(unitID) == "" {
		return "", ErrValidation("clientId wajib diisi")
	}
	window, err := ResolveTimeRange(windowKind, "", "", e.now())
	if err != nil {
		return "", err
	}

	req := ScopeRequest{ClientID: unitID}
	unit, unitErr := e.Units.FindUnitByID(ctx, unitID)
	if unitErr == nil && strings.EqualFold(unit.Type, UnitTypeDirektorat) {
		// Directorate reports span role membership, tagged with the
		// lower-cased unit id.
		req.Role = strings.ToLower(strings.TrimSpace(unit.ID))
		req.Scope = UnitTypeDirektorat
	}
	scope, err := ResolveScope(ctx, req, e.Units, e.UnitTypes)
	if err != nil {
		return "", err
	}

	result, aggErr := e.cachedAggregate(ctx, platform, scope, window)
	if canceled(aggErr) {
		return "", aggErr
	}
	persons, personsErr := e.Persons.ListActivePersons(ctx, scope.Spec)
	if canceled(personsErr) {
		return "", personsErr
	}
	if personsErr != nil && aggErr != nil {
		return "", ErrDependency("direktori personil dan penyimpanan konten tidak dapat diakses")
	}

	warnings := []string{}
	if personsErr != nil {
		log.Printf("compliance: person directory failed: %v", personsErr)
		warnings = append(warnings, "direktori personil tidak dapat diakses")
		persons = nil
	}
	warnings = append(warnings, aggregateWarnings(platform, result, aggErr)...)

	class := Classify(persons, result.ByUsername, result.PostCount, ClassifyOptions{Platform: platform})
	meta := ReportMeta{
		UnitName:      e.displayNameOrID(unit, unitErr, unitID),
		PlatformLabel: platformLabel(platform),
		Window:        window,
		GeneratedAt:   e.now(),
		ContentCount:  result.PostCount,
		Threshold:     ComplianceThreshold(result.PostCount, DefaultThresholdRatio),
		Warnings:      warnings,
	}
	return RenderTextReport(class, meta, bucket)
}

func (e *Engine) cachedAggregate(ctx context.Context, platform string, scope ResolvedScope, window TimeRange) (AggregateResult, error) {
	key := BuildCacheKey("rekap-"+platform, scope.Spec.UnitID, window, scope.Spec.Role, scope.Spec.Kind.String(), scope.Spec.RegionalID)
	if cached, ok := GetCachedAggregate(ctx, e.Cache, key); ok {
		return cached, nil
	}
	result, err := e.aggregator().Aggregate(ctx, platform, scope, window)
	if err != nil {
		return result, err
	}
	ttl := e.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	PutCachedAggregate(ctx, e.Cache, key, result, ttl)
	return result, nil
}

func (e *Engine) unitDisplayName(ctx context.Context, spec QuerySpec) string {
	if spec.UnitID == "" {
		return strings.ToUpper(spec.Role)
	}
	unit, err := e.Units.FindUnitByID(ctx, spec.UnitID)
	return e.displayNameOrID(unit, err, spec.UnitID)
}

func (e *Engine) displayNameOrID(unit models.Unit, err error, unitID string) string {
	if err != nil || strings.TrimSpace(unit.Name) == "" {
		return strings.ToUpper(unitID)
	}
	return unit.Name
}

func aggregateWarnings(platform string, result AggregateResult, err error) []string {
	warnings := []string{}
	if err != nil {
		log.Printf("compliance: %s aggregation failed: %v", platform, err)
		warnings = append(warnings, fmt.Sprintf("agregasi %s tidak dapat diakses", platform))
		return warnings
	}
	if result.Failed > 0 {
		warnings = append(warnings, fmt.Sprintf("%d konten %s gagal diproses", result.Failed, platform))
	}
	return warnings
}

func platformLabel(platform string) string {
	if platform == PlatformTiktok {
		return "Komentar TikTok"
	}
	return "Likes Instagram"
}

func canceled(err error) bool {
	return err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func (k QueryKind) String() string {
	switch k {
	case ByRole:
		return "role"
	case ByUnitAndRole:
		return "unitrole"
	default:
		return "unit"
	}
}
