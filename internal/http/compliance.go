package httpapi

import (
	"net/http"

	"medsosmon-backend-go/internal/services"
)

type ReportTextResponse struct {
	Report string `json:"report"`
}

// ComplianceSummary serves the structured dashboard summary. Invalid filters
// map to 400, a dead backend to 502; partial failures come back 200 with a
// warnings field.
func (s *Server) ComplianceSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := services.ComplianceFilters{
		ClientID:   query.Get("clientId"),
		Role:       query.Get("role"),
		Scope:      query.Get("scope"),
		RegionalID: query.Get("regionalId"),
		TimeRange:  query.Get("timeRange"),
		StartDate:  query.Get("startDate"),
		EndDate:    query.Get("endDate"),
	}
	summary, err := s.Engine.ComplianceSummary(r.Context(), filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// ComplianceReportText serves the rendered messaging text for one unit and
// bucket variant.
func (s *Server) ComplianceReportText(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	bucket := query.Get("bucket")
	if bucket == "" {
		bucket = services.BucketAkumulasi
	}
	report, err := s.Engine.ComplianceReportText(
		r.Context(),
		query.Get("clientId"),
		query.Get("platform"),
		bucket,
		query.Get("timeRange"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ReportTextResponse{Report: report})
}
