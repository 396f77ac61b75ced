package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/ui"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

// doJSON issues a request against h and decodes the JSON response into out.
func doJSON(t *testing.T, h http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

func leadIndexes(leads []model.Lead) []int {
	out := make([]int, len(leads))
	for i, l := range leads {
		out[i] = l.Index
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHandleHealth(t *testing.T) {
	_, _, h := newTestServer()
	var body map[string]any
	rec := doJSON(t, h, "GET", "/v1/health", nil, &body)
	requireStatus(t, rec, http.StatusOK)
	if body["status"] != "ok" || body["loaded"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestHandleListLeads(t *testing.T) {
	_, _, h := newTestServer()

	for _, tc := range []struct {
		name    string
		path    string
		want    []int
		mode    view.Mode
		filters []string
	}{
		{"all newest first", "/v1/leads", []int{2, 1, 3, 0}, view.ModeBucket, nil},
		{"oldest first", "/v1/leads?order=oldest", []int{0, 3, 1, 2}, view.ModeBucket, nil},
		{"bucket", "/v1/leads?bucket=Hot", []int{2, 0}, view.ModeBucket, nil},
		{"uncategorized", "/v1/leads?bucket=Uncategorized", []int{3}, view.ModeBucket, nil},
		{"stage filter", "/v1/leads?stage=hot&order=asc", []int{0, 2}, view.ModeFilter, []string{"Lead Stage: hot"}},
		{"status filter", "/v1/leads?status2=tour+scheduled", []int{1}, view.ModeFilter, []string{"Status 2: tour scheduled"}},
		{"enriched", "/v1/leads?enriched=true", []int{2}, view.ModeFilter, []string{"Enriched Only"}},
		{"date range", "/v1/leads?from=2025-01-15&to=2025-02-28", []int{1, 3}, view.ModeFilter, []string{"Date Range"}},
		{"search", "/v1/leads?q=lee", []int{0, 1}, view.ModeSearch, nil},
		{"limit", "/v1/leads?limit=1", []int{2}, view.ModeBucket, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var res view.Result
			rec := doJSON(t, h, "GET", tc.path, nil, &res)
			requireStatus(t, rec, http.StatusOK)
			if got := leadIndexes(res.Leads); !equalInts(got, tc.want) {
				t.Fatalf("leads = %v, want %v", got, tc.want)
			}
			if res.Mode != tc.mode {
				t.Fatalf("mode = %q, want %q", res.Mode, tc.mode)
			}
			if len(res.Labels) != len(tc.filters) {
				t.Fatalf("filters = %v, want %v", res.Labels, tc.filters)
			}
			for i := range tc.filters {
				if res.Labels[i] != tc.filters[i] {
					t.Fatalf("filters = %v, want %v", res.Labels, tc.filters)
				}
			}
			if len(res.Buckets) == 0 || res.Buckets[0].Key != view.BucketAll || res.Buckets[0].Count != 4 {
				t.Fatalf("buckets = %+v", res.Buckets)
			}
		})
	}
}

func TestHandleListLeadsLimitKeepsTotal(t *testing.T) {
	_, _, h := newTestServer()
	var res view.Result
	requireStatus(t, doJSON(t, h, "GET", "/v1/leads?limit=2", nil, &res), http.StatusOK)
	if res.Total != 4 || len(res.Leads) != 2 {
		t.Fatalf("total = %d, leads = %d", res.Total, len(res.Leads))
	}
}

func TestHandleListLeadsBadInput(t *testing.T) {
	_, _, h := newTestServer()
	for _, path := range []string{
		"/v1/leads?order=sideways",
		"/v1/leads?limit=-1",
		"/v1/leads?enriched=maybe",
		"/v1/leads?from=not-a-date",
	} {
		t.Run(path, func(t *testing.T) {
			requireStatus(t, doJSON(t, h, "GET", path, nil, nil), http.StatusBadRequest)
		})
	}
}

func TestHandleGetLead(t *testing.T) {
	_, _, h := newTestServer()

	var detail leadDetail
	rec := doJSON(t, h, "GET", "/v1/leads/1", nil, &detail)
	requireStatus(t, rec, http.StatusOK)
	if detail.Lead.FirstName != "Bob" || detail.Lead.Index != 1 {
		t.Fatalf("lead = %+v", detail.Lead)
	}
	if len(detail.Values) != model.ReservedColumns || detail.Headers[13] != "Lead Stage" {
		t.Fatalf("values = %d, headers = %v", len(detail.Values), detail.Headers)
	}
	if detail.Kinds[13] != model.ColumnEnum || detail.Kinds[model.CallFormColumn] != model.ColumnAction || detail.Kinds[2] != model.ColumnPlain {
		t.Fatalf("kinds = %v", detail.Kinds)
	}

	requireStatus(t, doJSON(t, h, "GET", "/v1/leads/99", nil, nil), http.StatusNotFound)
	requireStatus(t, doJSON(t, h, "GET", "/v1/leads/abc", nil, nil), http.StatusBadRequest)
}

func TestHandleEditCell(t *testing.T) {
	srv, sheet, h := newTestServer()

	var res CellResult
	rec := doJSON(t, h, "PUT", "/v1/leads/1/cells/lead_stage", map[string]string{"value": "Hot"}, &res)
	requireStatus(t, rec, http.StatusOK)
	if res.Edit == nil || res.Edit.State != model.EditApplied || res.Edit.ColumnIndex != 13 {
		t.Fatalf("edit = %+v", res.Edit)
	}
	if lead, _ := srv.records.Lead(1); lead.LeadStage != "Hot" {
		t.Fatalf("stage = %q", lead.LeadStage)
	}

	rec = doJSON(t, h, "PUT", "/v1/leads/1/cells/16", map[string]string{"value": "Contacted"}, nil)
	requireStatus(t, rec, http.StatusOK)
	if sheet.updates[1].Col != 16 {
		t.Fatalf("updates = %+v", sheet.updates)
	}
}

func TestHandleEditCellRejected(t *testing.T) {
	srv, sheet, h := newTestServer()
	sheet.updateErr = &client.ActionError{Action: client.ActionUpdateRow, Message: "locked"}

	var body struct {
		Error string            `json:"error"`
		Edit  *model.EditRecord `json:"edit"`
	}
	rec := doJSON(t, h, "PUT", "/v1/leads/1/cells/13", map[string]string{"value": "Warm - no call"}, &body)
	requireStatus(t, rec, http.StatusBadGateway)
	if body.Error != "locked" {
		t.Fatalf("error = %q, want locked", body.Error)
	}
	if body.Edit == nil || body.Edit.State != model.EditRejected {
		t.Fatalf("edit = %+v", body.Edit)
	}
	if lead, _ := srv.records.Lead(1); lead.LeadStage != "Cold" {
		t.Fatalf("stage = %q, want unchanged", lead.LeadStage)
	}
}

func TestHandleEditCellBadInput(t *testing.T) {
	_, _, h := newTestServer()
	for _, tc := range []struct {
		name string
		path string
		body any
		want int
	}{
		{"unknown field", "/v1/leads/0/cells/shoe_size", map[string]string{"value": "x"}, http.StatusBadRequest},
		{"missing value", "/v1/leads/0/cells/13", map[string]string{}, http.StatusBadRequest},
		{"action column", "/v1/leads/0/cells/25", map[string]string{"value": "x"}, http.StatusBadRequest},
		{"unknown row", "/v1/leads/42/cells/13", map[string]string{"value": "Hot"}, http.StatusNotFound},
	} {
		t.Run(tc.name, func(t *testing.T) {
			requireStatus(t, doJSON(t, h, "PUT", tc.path, tc.body, nil), tc.want)
		})
	}
}

func TestHandleSaveNotes(t *testing.T) {
	srv, _, h := newTestServer()
	rec := doJSON(t, h, "POST", "/v1/leads/3/notes", map[string]string{"notes": "prefers email"}, nil)
	requireStatus(t, rec, http.StatusOK)
	if lead, _ := srv.records.Lead(3); lead.Notes != "prefers email" {
		t.Fatalf("notes = %q", lead.Notes)
	}
	requireStatus(t, doJSON(t, h, "POST", "/v1/leads/3/notes", map[string]string{}, nil), http.StatusBadRequest)
}

func TestHandleTriggerAndCallForm(t *testing.T) {
	_, sheet, h := newTestServer()

	var trig map[string]string
	requireStatus(t, doJSON(t, h, "POST", "/v1/leads/0/trigger", nil, &trig), http.StatusOK)
	if trig["message"] != "Lead updated" {
		t.Fatalf("trigger = %v", trig)
	}

	var form map[string]string
	requireStatus(t, doJSON(t, h, "POST", "/v1/leads/2/call-form", nil, &form), http.StatusOK)
	if form["url"] != "https://forms.example.com/call?row=2" {
		t.Fatalf("call form = %v", form)
	}

	sheet.callFormErr = &client.ActionError{Action: client.ActionOpenCallForm, Message: "Failed to generate call form URL"}
	var body map[string]string
	requireStatus(t, doJSON(t, h, "POST", "/v1/leads/2/call-form", nil, &body), http.StatusBadGateway)
	if body["error"] != "Failed to generate call form URL" {
		t.Fatalf("error = %v", body)
	}
}

func TestHandleColumnsAndStages(t *testing.T) {
	_, _, h := newTestServer()

	var cols struct {
		EditableColumns map[string]model.EditableColumn `json:"editable_columns"`
		UpdateColumn    *int                            `json:"update_column"`
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/columns", nil, &cols), http.StatusOK)
	if len(cols.EditableColumns["13"].Options) != 3 || cols.UpdateColumn == nil {
		t.Fatalf("columns = %+v", cols)
	}

	var stages struct {
		Buckets []view.BucketCount `json:"buckets"`
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/stages", nil, &stages), http.StatusOK)
	want := []view.BucketCount{
		{Key: "All", Count: 4},
		{Key: "Cold", Count: 1},
		{Key: "Hot", Count: 2},
		{Key: "Uncategorized", Count: 1},
	}
	if len(stages.Buckets) != len(want) {
		t.Fatalf("buckets = %+v, want %+v", stages.Buckets, want)
	}
	for i := range want {
		if stages.Buckets[i] != want[i] {
			t.Fatalf("buckets = %+v, want %+v", stages.Buckets, want)
		}
	}
}

func TestHandleSearch(t *testing.T) {
	_, _, h := newTestServer()

	var res struct {
		Results []view.SearchResult `json:"results"`
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/search?q=amy+lee", nil, &res), http.StatusOK)
	if len(res.Results) != 1 || res.Results[0].Index != 0 || res.Results[0].LeadStage != "Hot" {
		t.Fatalf("results = %+v", res.Results)
	}

	requireStatus(t, doJSON(t, h, "GET", "/v1/search?q=+++", nil, &res), http.StatusOK)
	if res.Results == nil || len(res.Results) != 0 {
		t.Fatalf("blank query results = %+v, want empty list", res.Results)
	}
}

func TestHandleAlerts(t *testing.T) {
	_, sheet, h := newTestServer()

	var list struct {
		Alerts []model.Alert `json:"alerts"`
		Total  int           `json:"total"`
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/alerts", nil, &list), http.StatusOK)
	if list.Total != 2 {
		t.Fatalf("total = %d", list.Total)
	}

	var alert model.Alert
	requireStatus(t, doJSON(t, h, "GET", "/v1/alerts/al-2", nil, &alert), http.StatusOK)
	if !alert.IsReport() || alert.FullContent != "1. Bob" {
		t.Fatalf("alert = %+v", alert)
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/alerts/nope", nil, nil), http.StatusNotFound)

	requireStatus(t, doJSON(t, h, "DELETE", "/v1/alerts/al-1", nil, nil), http.StatusNoContent)
	if len(sheet.dismissed) != 1 || sheet.dismissed[0] != "al-1" {
		t.Fatalf("dismissed = %v", sheet.dismissed)
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/alerts", nil, &list), http.StatusOK)
	if list.Total != 1 {
		t.Fatalf("total after dismiss = %d", list.Total)
	}
}

func TestHandleRefreshAndStatus(t *testing.T) {
	srv, _, h := newTestServer()

	requireStatus(t, doJSON(t, h, "POST", "/v1/refresh", nil, nil), http.StatusOK)
	if ref := srv.poller.(*fakeRefresher); ref.calls != 1 || !ref.notify[0] {
		t.Fatalf("refresh calls = %d", ref.calls)
	}

	var status statusResponse
	requireStatus(t, doJSON(t, h, "GET", "/v1/status", nil, &status), http.StatusOK)
	if !status.Loaded || status.LeadCount != 4 || status.AlertCount != 2 || status.Poll.Polls != 1 {
		t.Fatalf("status = %+v", status)
	}
	if status.Layout.Mode != ui.ModeNormal {
		t.Fatalf("layout = %+v", status.Layout)
	}
}

func TestHandleAsk(t *testing.T) {
	srv, _, h := newTestServer()

	var answer map[string]string
	requireStatus(t, doJSON(t, h, "POST", "/v1/ask", map[string]string{"question": "How many leads?"}, &answer), http.StatusOK)
	if answer["answer"] != "You asked: How many leads?" {
		t.Fatalf("answer = %v", answer)
	}
	requireStatus(t, doJSON(t, h, "POST", "/v1/ask", map[string]string{"question": ""}, nil), http.StatusBadRequest)

	srv.assistant = nil
	requireStatus(t, doJSON(t, h, "POST", "/v1/ask", map[string]string{"question": "hi"}, nil), http.StatusServiceUnavailable)

	var sugg struct {
		Enabled     bool  `json:"enabled"`
		Suggestions []any `json:"suggestions"`
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/ask/suggestions", nil, &sugg), http.StatusOK)
	if sugg.Enabled || len(sugg.Suggestions) != 6 {
		t.Fatalf("suggestions = %+v", sugg)
	}
}

func TestHandleListEdits(t *testing.T) {
	_, _, h := newTestServer()
	doJSON(t, h, "PUT", "/v1/leads/0/cells/13", map[string]string{"value": "Cold"}, nil)
	doJSON(t, h, "PUT", "/v1/leads/1/cells/13", map[string]string{"value": "Hot"}, nil)
	doJSON(t, h, "PUT", "/v1/leads/1/cells/16", map[string]string{"value": "Contacted"}, nil)

	var body struct {
		Edits []*model.EditRecord `json:"edits"`
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/edits", nil, &body), http.StatusOK)
	if len(body.Edits) != 3 || body.Edits[0].ColumnIndex != 16 {
		t.Fatalf("edits = %+v", body.Edits)
	}

	requireStatus(t, doJSON(t, h, "GET", "/v1/edits?row=1&limit=1", nil, &body), http.StatusOK)
	if len(body.Edits) != 1 || body.Edits[0].RowIndex != 1 {
		t.Fatalf("filtered edits = %+v", body.Edits)
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/edits?row=x", nil, nil), http.StatusBadRequest)
}

func TestHandleLayout(t *testing.T) {
	_, _, h := newTestServer()

	var layout ui.Layout
	requireStatus(t, doJSON(t, h, "PUT", "/v1/layout", map[string]string{"mode": "kiosk"}, &layout), http.StatusOK)
	if layout.Mode != ui.ModeKiosk || layout.ShowHelp {
		t.Fatalf("layout = %+v", layout)
	}
	requireStatus(t, doJSON(t, h, "GET", "/v1/layout", nil, &layout), http.StatusOK)
	if layout.Mode != ui.ModeKiosk {
		t.Fatalf("layout after set = %+v", layout)
	}
	requireStatus(t, doJSON(t, h, "PUT", "/v1/layout", map[string]string{"mode": "disco"}, nil), http.StatusBadRequest)
	requireStatus(t, doJSON(t, h, "PUT", "/v1/layout", map[string]string{}, nil), http.StatusBadRequest)
}

func TestHTTPAuth(t *testing.T) {
	srv, _, _ := newTestServer()
	h := srv.NewHTTPHandler("s3cret")

	requireStatus(t, doJSON(t, h, "GET", "/v1/health", nil, nil), http.StatusOK)
	requireStatus(t, doJSON(t, h, "GET", "/v1/leads", nil, nil), http.StatusUnauthorized)

	req := httptest.NewRequest("GET", "/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusOK)
}
