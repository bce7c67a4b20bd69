package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var operatorRoleCodes = []string{"ADMIN", "OPERATOR"}

// EnsureOperatorRoles seeds the dashboard account roles at startup.
func EnsureOperatorRoles(db *sqlx.DB) error {
	for _, code := range operatorRoleCodes {
		var exists bool
		if err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM roles WHERE code = $1)`, code); err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(`INSERT INTO roles (id, code) VALUES ($1, $2)`, uuid.NewString(), code); err != nil {
			return err
		}
	}
	return nil
}

// EnsureRoleMembership tags a person with a directorate role. Memberships
// are what directorate scope resolution joins against, independent of the
// person's unit_id.
func EnsureRoleMembership(db *sqlx.DB, personID, roleName string) error {
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	var exists bool
	if err := db.Get(&exists, `
SELECT EXISTS(
  SELECT 1 FROM role_memberships WHERE person_id = $1 AND lower(role_name) = $2
)
`, personID, roleName); err != nil {
		return err
	}
	if exists {
		_, err := db.Exec(`
UPDATE role_memberships SET active = TRUE
WHERE person_id = $1 AND lower(role_name) = $2
`, personID, roleName)
		return err
	}
	_, err := db.Exec(`
INSERT INTO role_memberships (id, person_id, role_name, active, joined_at)
VALUES ($1,$2,$3,TRUE,$4)
`, uuid.NewString(), personID, roleName, time.Now().UTC())
	return err
}

func RemoveRoleMembership(db *sqlx.DB, personID, roleName string) error {
	_, err := db.Exec(`
UPDATE role_memberships SET active = FALSE
WHERE person_id = $1 AND lower(role_name) = lower($2)
`, personID, roleName)
	return err
}

func ListRoleMemberships(db *sqlx.DB, personID string) ([]string, error) {
	roles := []string{}
	err := db.Select(&roles, `
SELECT role_name FROM role_memberships
WHERE person_id = $1 AND active
ORDER BY role_name
`, personID)
	return roles, err
}
