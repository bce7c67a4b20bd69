// Package store implements the compliance engine's read-only collaborators
// over the Postgres schema.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"medsosmon-backend-go/internal/models"
	"medsosmon-backend-go/internal/services"

	"github.com/jmoiron/sqlx"
)

type Postgres struct {
	DB *sqlx.DB
}

func New(db *sqlx.DB) *Postgres {
	return &Postgres{DB: db}
}

func (s *Postgres) FindUnitByID(ctx context.Context, id string) (models.Unit, error) {
	var unit models.Unit
	err := s.DB.GetContext(ctx, &unit, `
SELECT id, name, type, regional_id, instagram_handle, tiktok_handle, active, created_at, updated_at
FROM units
WHERE lower(id) = lower($1)
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Unit{}, services.ErrNotFound("satker tidak ditemukan: " + id)
	}
	return unit, err
}

// ListActivePersons interprets the query spec: a single unit, a role across
// all units, or the directorate OR of both. The role arm goes through role
// memberships, not unit_id.
func (s *Postgres) ListActivePersons(ctx context.Context, spec services.QuerySpec) ([]models.Person, error) {
	query := `
SELECT p.id, p.unit_id, p.name, p.rank, p.division,
       p.instagram_username, p.tiktok_username, p.active, p.exception,
       p.created_at, p.updated_at
FROM personnel p
`
	args := []interface{}{}
	where := "WHERE p.active"

	switch spec.Kind {
	case services.ByRole:
		args = append(args, spec.Role)
		where += fmt.Sprintf(" AND %s", roleMembershipClause(len(args)))
	case services.ByUnitAndRole:
		args = append(args, spec.UnitID, spec.Role)
		where += fmt.Sprintf(" AND (lower(p.unit_id) = lower($%d) OR %s)", len(args)-1, roleMembershipClause(len(args)))
	default:
		args = append(args, spec.UnitID)
		where += fmt.Sprintf(" AND lower(p.unit_id) = lower($%d)", len(args))
	}
	if spec.RegionalID != "" {
		args = append(args, spec.RegionalID)
		where += fmt.Sprintf(` AND EXISTS(
  SELECT 1 FROM units u
  WHERE lower(u.id) = lower(p.unit_id) AND upper(u.regional_id) = upper($%d)
)`, len(args))
	}

	persons := []models.Person{}
	err := s.DB.SelectContext(ctx, &persons, query+where+`
ORDER BY p.division, p.name`, args...)
	return persons, err
}

func roleMembershipClause(arg int) string {
	return fmt.Sprintf(`EXISTS(
  SELECT 1 FROM role_memberships rm
  WHERE rm.person_id = p.id AND rm.active AND lower(rm.role_name) = lower($%d)
)`, arg)
}

func (s *Postgres) ListPostsInWindow(ctx context.Context, platform string, spec services.QuerySpec, window services.TimeRange) ([]models.Post, error) {
	query := `
SELECT id, platform, unit_id, role_name, caption, created_at, fetched_at
FROM posts
WHERE platform = $1 AND created_at >= $2 AND created_at <= $3
`
	args := []interface{}{platform, window.Start, window.End}

	switch spec.Kind {
	case services.ByRole:
		args = append(args, spec.Role)
		query += fmt.Sprintf("  AND lower(role_name) = lower($%d)\n", len(args))
	case services.ByUnitAndRole:
		args = append(args, spec.UnitID, spec.Role)
		query += fmt.Sprintf("  AND (lower(unit_id) = lower($%d) OR lower(role_name) = lower($%d))\n", len(args)-1, len(args))
	default:
		args = append(args, spec.UnitID)
		query += fmt.Sprintf("  AND lower(unit_id) = lower($%d)\n", len(args))
	}
	if spec.RegionalID != "" {
		args = append(args, spec.RegionalID)
		query += fmt.Sprintf(`  AND EXISTS(
  SELECT 1 FROM units u
  WHERE lower(u.id) = lower(posts.unit_id) AND upper(u.regional_id) = upper($%d)
)
`, len(args))
	}

	posts := []models.Post{}
	err := s.DB.SelectContext(ctx, &posts, query+"ORDER BY created_at", args...)
	return posts, err
}

// GetEngagementSet returns the raw stored username set for a post. A missing
// record means nobody engaged yet, not an error.
func (s *Postgres) GetEngagementSet(ctx context.Context, platform, postID string) ([]interface{}, error) {
	var raw []byte
	err := s.DB.GetContext(ctx, &raw, `
SELECT usernames FROM engagement_records
WHERE platform = $1 AND post_id = $2
`, platform, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return []interface{}{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := []interface{}{}
	if len(raw) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, services.WrapError(err, "decode engagement set")
	}
	return entries, nil
}
