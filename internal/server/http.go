package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/leadboard/internal/assistant"
	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/llm"
	"github.com/alfredjeanlab/leadboard/internal/store"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header. Every request is logged.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/leads", s.handleListLeads)
	mux.HandleFunc("GET /v1/leads/{index}", s.handleGetLead)
	mux.HandleFunc("PUT /v1/leads/{index}/cells/{column}", s.handleEditCell)
	mux.HandleFunc("POST /v1/leads/{index}/notes", s.handleSaveNotes)
	mux.HandleFunc("POST /v1/leads/{index}/trigger", s.handleTriggerLead)
	mux.HandleFunc("POST /v1/leads/{index}/call-form", s.handleCallForm)
	mux.HandleFunc("GET /v1/columns", s.handleColumns)
	mux.HandleFunc("GET /v1/stages", s.handleStages)
	mux.HandleFunc("GET /v1/search", s.handleSearch)
	mux.HandleFunc("GET /v1/alerts", s.handleListAlerts)
	mux.HandleFunc("GET /v1/alerts/{id}", s.handleGetAlert)
	mux.HandleFunc("DELETE /v1/alerts/{id}", s.handleDismissAlert)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)
	mux.HandleFunc("POST /v1/ask", s.handleAsk)
	mux.HandleFunc("GET /v1/ask/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /v1/edits", s.handleListEdits)
	mux.HandleFunc("GET /v1/layout", s.handleGetLayout)
	mux.HandleFunc("PUT /v1/layout", s.handleSetLayout)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	return AuthMiddleware(authToken, LoggingMiddleware(s.logger, mux))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "loaded": s.records.Loaded()})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeErr maps err onto a status code and writes it.
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		ie  inputError
		ae  *client.ActionError
		api *client.APIError
		de  *client.DecodeError
		pe  *llm.ProviderError
	)
	switch {
	case errors.As(err, &ie),
		errors.Is(err, store.ErrColumnOutOfRange),
		errors.Is(err, assistant.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrRowOutOfRange),
		errors.Is(err, store.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNoAssistant):
		return http.StatusServiceUnavailable
	case errors.As(err, &pe):
		if pe.IsRateLimited() {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	case errors.As(err, &ae), errors.As(err, &api), errors.As(err, &de):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// pathIndex parses a non-negative integer path value.
func pathIndex(r *http.Request, name string) (int, error) {
	v := r.PathValue(name)
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, inputError(name + " must be a non-negative integer")
	}
	return n, nil
}

// actor identifies who made a request, from the X-Actor header.
func actor(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return inputError("invalid JSON body")
	}
	return nil
}
