package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AdminUserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Status      string     `json:"status"`
	PrimaryRole string     `json:"primaryRole"`
	Roles       []string   `json:"roles"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `json:"lastSeenAt,omitempty"`
}

type PagedResponse struct {
	Items    []AdminUserResponse `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

type AdminUserCreateRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
	Status   *string  `json:"status"`
}

type AdminUserUpdateRequest struct {
	Roles  []string `json:"roles"`
	Status *string  `json:"status"`
}

type AssignRoleRequest struct {
	Role string `json:"role"`
}

type adminUserRow struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	Status    string     `db:"status"`
	CreatedAt *time.Time `db:"created_at"`
	LastLogin *time.Time `db:"last_login_at"`
	LastSeen  *time.Time `db:"last_seen_at"`
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	pageSize := parseInt(r.URL.Query().Get("pageSize"), 10)
	if pageSize > 100 {
		pageSize = 100
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	args := []interface{}{}
	where := ""
	if search != "" {
		where = "WHERE lower(email) LIKE $1"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	var total int
	if err := s.DB.Get(&total, "SELECT count(*) FROM users "+where, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	offset := (page - 1) * pageSize
	query := `
SELECT id, email, status, created_at, last_login_at, last_seen_at
FROM users
` + where + `
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`
	args = append(args, pageSize, offset)
	query = fmt.Sprintf(query, len(args)-1, len(args))
	rows := []adminUserRow{}
	if err := s.DB.Select(&rows, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]AdminUserResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.toAdminUser(row))
	}
	WriteJSON(w, http.StatusOK, PagedResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req AdminUserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`, email); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exists {
		WriteError(w, http.StatusBadRequest, "User already exists")
		return
	}
	hash, err := s.Tokens.HashPassword(req.Password)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	userID := uuid.NewString()
	status := "ACTIVE"
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status = strings.ToUpper(strings.TrimSpace(*req.Status))
	}
	now := time.Now().UTC()
	_, err = s.DB.Exec(`
INSERT INTO users (id, email, password_hash, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$5)
`, userID, email, hash, status, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{"OPERATOR"}
	}
	for _, role := range roles {
		s.grantRole(userID, role)
	}
	s.respondAdminUser(w, userID)
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req AdminUserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	var existing string
	if err := s.DB.Get(&existing, `SELECT email FROM users WHERE id = $1`, userID); err != nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	status := (*string)(nil)
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		value := strings.ToUpper(strings.TrimSpace(*req.Status))
		status = &value
	}
	_, _ = s.DB.Exec(`UPDATE users SET status = COALESCE($2, status), updated_at = $3 WHERE id = $1`, userID, status, time.Now().UTC())

	// Roles, when present, are a full replacement set.
	if len(req.Roles) > 0 {
		current := s.accountRoles(userID)
		currentSet := map[string]bool{}
		for _, role := range current {
			currentSet[role] = true
		}
		desiredSet := map[string]bool{}
		for _, role := range req.Roles {
			role = strings.ToUpper(strings.TrimSpace(role))
			if role != "" {
				desiredSet[role] = true
			}
		}
		for role := range desiredSet {
			if !currentSet[role] {
				s.grantRole(userID, role)
			}
		}
		for role := range currentSet {
			if !desiredSet[role] {
				s.revokeRole(userID, role)
			}
		}
	}
	s.respondAdminUser(w, userID)
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	_, _ = s.DB.Exec(`DELETE FROM users WHERE id = $1`, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if !s.grantRole(userID, req.Role) {
		WriteError(w, http.StatusNotFound, "Role not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RemoveRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !s.revokeRole(userID, chi.URLParam(r, "role")) {
		WriteError(w, http.StatusNotFound, "Role not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupRoleID(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return ""
	}
	var roleID string
	if err := s.DB.Get(&roleID, `SELECT id FROM roles WHERE code = $1`, role); err != nil {
		return ""
	}
	return roleID
}

func (s *Server) grantRole(userID, role string) bool {
	roleID := s.lookupRoleID(role)
	if roleID == "" {
		return false
	}
	_, _ = s.DB.Exec(`
INSERT INTO user_roles (id, user_id, role_id, assigned_at)
VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING
`, uuid.NewString(), userID, roleID, time.Now().UTC())
	return true
}

func (s *Server) revokeRole(userID, role string) bool {
	roleID := s.lookupRoleID(role)
	if roleID == "" {
		return false
	}
	_, _ = s.DB.Exec(`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return true
}

func (s *Server) accountRoles(userID string) []string {
	roles := []string{}
	_ = s.DB.Select(&roles, `
SELECT r.code FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = $1
ORDER BY r.code
`, userID)
	return roles
}

func (s *Server) toAdminUser(row adminUserRow) AdminUserResponse {
	roles := s.accountRoles(row.ID)
	primary := "OPERATOR"
	if len(roles) > 0 {
		primary = roles[0]
	}
	return AdminUserResponse{
		ID:          row.ID,
		Email:       row.Email,
		Status:      row.Status,
		PrimaryRole: primary,
		Roles:       roles,
		CreatedAt:   row.CreatedAt,
		LastLoginAt: row.LastLogin,
		LastSeenAt:  row.LastSeen,
	}
}

func (s *Server) respondAdminUser(w http.ResponseWriter, userID string) {
	var row adminUserRow
	if err := s.DB.Get(&row, `
SELECT id, email, status, created_at, last_login_at, last_seen_at
FROM users
WHERE id = $1
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.toAdminUser(row))
}
