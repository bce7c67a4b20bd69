package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"medsosmon-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type MembershipRequest struct {
	Role string `json:"role"`
}

type MembershipListResponse struct {
	PersonID string   `json:"personId"`
	Roles    []string `json:"roles"`
}

// ListPersonRoles returns the active directorate role tags of one person.
func (s *Server) ListPersonRoles(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")
	if err := s.requirePerson(personID); err != nil {
		writeServiceError(w, err)
		return
	}
	roles, err := services.ListRoleMemberships(s.DB, personID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, MembershipListResponse{PersonID: personID, Roles: roles})
}

func (s *Server) AssignPersonRole(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")
	var req MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		WriteError(w, http.StatusBadRequest, "role wajib diisi")
		return
	}
	if err := s.requirePerson(personID); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := services.EnsureRoleMembership(s.DB, personID, role); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RemovePersonRole(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")
	role := chi.URLParam(r, "role")
	if err := s.requirePerson(personID); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := services.RemoveRoleMembership(s.DB, personID, role); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requirePerson(personID string) error {
	var id string
	err := s.DB.Get(&id, `SELECT id FROM personnel WHERE id = $1`, personID)
	if errors.Is(err, sql.ErrNoRows) {
		return services.ErrNotFound("personil tidak ditemukan: " + personID)
	}
	return err
}
