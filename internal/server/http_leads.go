package server

import (
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

// handleListLeads handles GET /v1/leads.
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := view.Query{
		Search: q.Get("q"),
		Filter: model.FilterState{
			DateStart: q.Get("from"),
			DateEnd:   q.Get("to"),
			LeadStage: q.Get("stage"),
		},
		Bucket: q.Get("bucket"),
	}
	for i := range query.Filter.LeadStatus {
		query.Filter.LeadStatus[i] = q.Get("status" + strconv.Itoa(i+1))
	}
	if v := q.Get("enriched"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "enriched must be a boolean")
			return
		}
		query.Filter.EnrichedOnly = b
	}
	order, err := view.ParseOrder(q.Get("order"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query.Order = order
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		query.Limit = n
	}

	res, err := view.Compose(s.records.Leads(), query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// leadDetail is the GET /v1/leads/{index} response.
type leadDetail struct {
	Lead    model.Lead         `json:"lead"`
	Values  []string           `json:"values"`
	Headers []string           `json:"headers"`
	Kinds   []model.ColumnKind `json:"kinds"`
}

// handleGetLead handles GET /v1/leads/{index}.
func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	lead, ok := s.records.Lead(index)
	row, _ := s.records.Row(index)
	if !ok {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	headers := s.records.Headers()
	cols := s.records.Columns()
	kinds := make([]model.ColumnKind, max(len(headers), len(row.Values)))
	for i := range kinds {
		kinds[i] = cols.Kind(i)
	}
	writeJSON(w, http.StatusOK, leadDetail{Lead: lead, Values: row.Values, Headers: headers, Kinds: kinds})
}

type cellInput struct {
	Value *string `json:"value"`
}

// handleEditCell handles PUT /v1/leads/{index}/cells/{column}. The column
// is a number or a field name.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	col, err := s.records.Schema().ResolveColumn(r.PathValue("column"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in cellInput
	if err := decodeBody(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	if in.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	s.writeCellResult(w, func() (*CellResult, error) {
		return s.EditCell(r.Context(), index, col, *in.Value, actor(r))
	})
}

type notesInput struct {
	Notes *string `json:"notes"`
}

// handleSaveNotes handles POST /v1/leads/{index}/notes.
func (s *Server) handleSaveNotes(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	var in notesInput
	if err := decodeBody(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	if in.Notes == nil {
		writeError(w, http.StatusBadRequest, "notes is required")
		return
	}
	s.writeCellResult(w, func() (*CellResult, error) {
		return s.SaveNotes(r.Context(), index, *in.Notes, actor(r))
	})
}

// writeCellResult runs an edit and writes the result. A rejected edit is
// reported with the upstream message and the edit record.
func (s *Server) writeCellResult(w http.ResponseWriter, edit func() (*CellResult, error)) {
	res, err := edit()
	if err != nil {
		if res != nil && res.Edit != nil {
			writeJSON(w, statusFor(err), map[string]any{"error": err.Error(), "edit": res.Edit})
			return
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleTriggerLead handles POST /v1/leads/{index}/trigger.
func (s *Server) handleTriggerLead(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	msg, err := s.TriggerLead(r.Context(), index, actor(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// handleCallForm handles POST /v1/leads/{index}/call-form.
func (s *Server) handleCallForm(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	u, err := s.CallFormURL(r.Context(), index)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

// handleColumns handles GET /v1/columns.
func (s *Server) handleColumns(w http.ResponseWriter, _ *http.Request) {
	cols := s.records.Columns()
	if cols == nil {
		cols = &model.ColumnDefs{EditableColumns: map[int]model.EditableColumn{}}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"headers":          s.records.Headers(),
		"editable_columns": cols.EditableColumns,
		"update_column":    cols.UpdateColumn,
		"call_form_column": model.CallFormColumn,
	})
}

// handleStages handles GET /v1/stages.
func (s *Server) handleStages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"buckets": view.Organize(s.records.Leads()).Counts(),
	})
}

// handleSearch handles GET /v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results := view.Search(r.URL.Query().Get("q"), s.records.Leads())
	if results == nil {
		results = []view.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
