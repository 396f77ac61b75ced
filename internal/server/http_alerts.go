package server

import (
	"net/http"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// handleListAlerts handles GET /v1/alerts.
func (s *Server) handleListAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts := s.records.Alerts()
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "total": len(alerts)})
}

// handleGetAlert handles GET /v1/alerts/{id}.
func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.records.Alert(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

// handleDismissAlert handles DELETE /v1/alerts/{id}.
func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.DismissAlert(r.Context(), r.PathValue("id"), actor(r)); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
