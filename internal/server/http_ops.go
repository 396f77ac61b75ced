package server

import (
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/leadboard/internal/assistant"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/poll"
	"github.com/alfredjeanlab/leadboard/internal/store"
	"github.com/alfredjeanlab/leadboard/internal/ui"
)

// statusResponse is the GET /v1/status body.
type statusResponse struct {
	Poll       poll.Status `json:"poll"`
	Layout     ui.Layout   `json:"layout"`
	Loaded     bool        `json:"loaded"`
	LeadCount  int         `json:"lead_count"`
	AlertCount int         `json:"alert_count"`
	Pending    int         `json:"pending_edits"`
	Clients    int         `json:"stream_clients"`
}

// handleStatus handles GET /v1/status.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.records.Snapshot()
	resp := statusResponse{
		Layout:     s.viewport.Layout(),
		Loaded:     s.records.Loaded(),
		LeadCount:  len(snap.Rows),
		AlertCount: len(snap.Alerts),
		Pending:    len(s.records.Pending()),
		Clients:    s.hub.Clients(),
	}
	if s.poller != nil {
		resp.Poll = s.poller.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh handles POST /v1/refresh.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	resp := map[string]any{"lead_count": len(s.records.Snapshot().Rows)}
	if s.poller != nil {
		resp["poll"] = s.poller.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

type askInput struct {
	Question string `json:"question"`
}

// handleAsk handles POST /v1/ask.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var in askInput
	if err := decodeBody(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	answer, err := s.Ask(r.Context(), in.Question)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// handleSuggestions handles GET /v1/ask/suggestions.
func (s *Server) handleSuggestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":     s.assistant != nil,
		"suggestions": assistant.SuggestedQuestions,
	})
}

// handleListEdits handles GET /v1/edits.
func (s *Server) handleListEdits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter store.EditFilter
	if v := q.Get("row"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "row must be a non-negative integer")
			return
		}
		filter.RowIndex = &n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	edits, err := s.journal.ListEdits(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list edits")
		return
	}
	if edits == nil {
		edits = []*model.EditRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"edits": edits})
}

// handleGetLayout handles GET /v1/layout.
func (s *Server) handleGetLayout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.viewport.Layout())
}

type layoutInput struct {
	Mode string `json:"mode"`
}

// handleSetLayout handles PUT /v1/layout.
func (s *Server) handleSetLayout(w http.ResponseWriter, r *http.Request) {
	var in layoutInput
	if err := decodeBody(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	if in.Mode == "" {
		writeError(w, http.StatusBadRequest, "mode is required")
		return
	}
	mode, err := ui.ParseMode(in.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.viewport.SetMode(mode)
	writeJSON(w, http.StatusOK, s.viewport.Layout())
}
