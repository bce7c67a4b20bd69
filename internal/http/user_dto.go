package httpapi

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type UserDTO struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Status      string     `json:"status"`
	Role        string     `json:"role"`
	Roles       []string   `json:"roles"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func buildUserDTO(db *sqlx.DB, userID string) (*UserDTO, error) {
	row := struct {
		ID        string     `db:"id"`
		Email     string     `db:"email"`
		Status    string     `db:"status"`
		LastLogin *time.Time `db:"last_login_at"`
	}{}
	if err := db.Get(&row, `
SELECT id, email, status, last_login_at
FROM users
WHERE id = $1
`, userID); err != nil {
		return nil, err
	}
	roles := []string{}
	if err := db.Select(&roles, `
SELECT r.code FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = $1
ORDER BY r.code
`, userID); err != nil {
		return nil, err
	}
	primary := "OPERATOR"
	if len(roles) > 0 {
		primary = roles[0]
	}
	return &UserDTO{
		ID:          row.ID,
		Email:       row.Email,
		Status:      row.Status,
		Role:        primary,
		Roles:       roles,
		LastLoginAt: row.LastLogin,
	}, nil
}
