package httpapi

import (
	"net/http"
	"time"

	"medsosmon-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type UnitDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	RegionalID      *string `json:"regionalId,omitempty"`
	InstagramHandle *string `json:"instagramHandle,omitempty"`
	TiktokHandle    *string `json:"tiktokHandle,omitempty"`
	Active          bool    `json:"active"`
}

type PersonDTO struct {
	ID                string    `json:"id"`
	UnitID            *string   `json:"unitId,omitempty"`
	Name              string    `json:"name"`
	Rank              *string   `json:"rank,omitempty"`
	Division          *string   `json:"division,omitempty"`
	InstagramUsername *string   `json:"instagramUsername,omitempty"`
	TiktokUsername    *string   `json:"tiktokUsername,omitempty"`
	Exception         bool      `json:"exception"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (s *Server) ListUnits(w http.ResponseWriter, r *http.Request) {
	rows := []UnitDTO{}
	err := s.DB.Select(&rows, `
SELECT id, name, type, regional_id AS regionalid, instagram_handle AS instagramhandle,
       tiktok_handle AS tiktokhandle, active
FROM units
WHERE active
ORDER BY id
`)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]UnitDTO{"items": rows})
}

func (s *Server) GetUnit(w http.ResponseWriter, r *http.Request) {
	unitID := chi.URLParam(r, "unitId")
	unit, err := s.Store.FindUnitByID(r.Context(), unitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, UnitDTO{
		ID:              unit.ID,
		Name:            unit.Name,
		Type:            unit.Type,
		RegionalID:      unit.RegionalID,
		InstagramHandle: unit.InstagramHandle,
		TiktokHandle:    unit.TiktokHandle,
		Active:          unit.Active,
	})
}

// ListPersonnel resolves the same scope filters the compliance engine uses,
// so the dashboard's directory view and the reports always agree on who is
// in scope.
func (s *Server) ListPersonnel(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	scope, err := services.ResolveScope(r.Context(), services.ScopeRequest{
		ClientID:   query.Get("clientId"),
		Role:       query.Get("role"),
		Scope:      query.Get("scope"),
		RegionalID: query.Get("regionalId"),
	}, s.Store, s.UnitTypes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	persons, err := s.Store.ListActivePersons(r.Context(), scope.Spec)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]PersonDTO, 0, len(persons))
	for _, person := range persons {
		items = append(items, PersonDTO{
			ID:                person.ID,
			UnitID:            person.UnitID,
			Name:              person.Name,
			Rank:              person.Rank,
			Division:          person.Division,
			InstagramUsername: person.InstagramUsername,
			TiktokUsername:    person.TiktokUsername,
			Exception:         person.Exception,
			CreatedAt:         person.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string][]PersonDTO{"items": items})
}
