package services

import (
	"context"
	"time"

	"medsosmon-backend-go/internal/models"
)

const (
	PlatformInstagram = "instagram"
	PlatformTiktok    = "tiktok"
)

// QueryKind selects how a directory or post query is scoped.
type QueryKind int

const (
	// ByUnit matches rows belonging to a single unit id.
	ByUnit QueryKind = iota
	// ByRole matches rows tagged with a role name across all units.
	ByRole
	// ByUnitAndRole matches rows tagged with the role OR belonging to the
	// unit id. The directorate fallback transitions this to ByUnit.
	ByUnitAndRole
)

// QuerySpec is the tagged variant interpreted by the store layer instead of
// assembling filter SQL at call sites.
type QuerySpec struct {
	Kind       QueryKind
	UnitID     string
	Role       string
	RegionalID string
}

// UnitDirectory, PersonDirectory, PostStore and EngagementStore are the
// engine's read-only collaborators. The relational CRUD behind them is owned
// elsewhere; the engine never writes through these.
type UnitDirectory interface {
	FindUnitByID(ctx context.Context, id string) (models.Unit, error)
}

type PersonDirectory interface {
	ListActivePersons(ctx context.Context, spec QuerySpec) ([]models.Person, error)
}

type PostStore interface {
	ListPostsInWindow(ctx context.Context, platform string, spec QuerySpec, window TimeRange) ([]models.Post, error)
}

type EngagementStore interface {
	// GetEngagementSet returns the raw username set of a post. Elements may
	// be plain strings or legacy objects; see ExtractUsername.
	GetEngagementSet(ctx context.Context, platform, postID string) ([]interface{}, error)
}

// CacheStore is the advisory result cache. Losing it never changes an
// answer, only its latency.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
