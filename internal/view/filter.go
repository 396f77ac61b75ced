package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// Filter labels.
const (
	LabelDateRange    = "Date Range"
	LabelEnrichedOnly = "Enriched Only"
)

// Filter is a compiled FilterState.
type Filter struct {
	state    model.FilterState
	start    time.Time
	end      time.Time // exclusive when endExcl
	hasStart bool
	hasEnd   bool
	endExcl  bool
}

// FilterResult is the outcome of applying a Filter.
type FilterResult struct {
	Leads   []model.Lead `json:"leads"`
	Labels  []string     `json:"labels"`
	Applied bool         `json:"applied"`
}

// CompileFilter parses the date bounds of state. An unparseable bound is an
// error. A date-only end bound covers the whole end day. Predicates are
// trimmed first; a blank one is unset.
func CompileFilter(state model.FilterState) (*Filter, error) {
	state = state.Normalized()
	f := &Filter{state: state}
	if s := state.DateStart; s != "" {
		t, ok := model.ParseDate(s)
		if !ok {
			return nil, fmt.Errorf("invalid start date %q", state.DateStart)
		}
		f.start, f.hasStart = t, true
	}
	if s := state.DateEnd; s != "" {
		t, dateOnly, ok := model.ParseDateBound(s)
		if !ok {
			return nil, fmt.Errorf("invalid end date %q", state.DateEnd)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
			f.endExcl = true
		}
		f.end, f.hasEnd = t, true
	}
	return f, nil
}

// Labels returns one label per set predicate, in predicate order.
func (f *Filter) Labels() []string {
	var labels []string
	if f.hasStart || f.hasEnd {
		labels = append(labels, LabelDateRange)
	}
	if f.state.LeadStage != "" {
		labels = append(labels, "Lead Stage: "+f.state.LeadStage)
	}
	for i, s := range f.state.LeadStatus {
		if s != "" {
			labels = append(labels, fmt.Sprintf("Status %d: %s", i+1, s))
		}
	}
	if f.state.EnrichedOnly {
		labels = append(labels, LabelEnrichedOnly)
	}
	return labels
}

// Match reports whether l satisfies every set predicate.
func (f *Filter) Match(l model.Lead) bool {
	if f.hasStart || f.hasEnd {
		t, ok := model.ParseDate(l.SubmissionDate)
		if !ok {
			return false
		}
		if f.hasStart && t.Before(f.start) {
			return false
		}
		if f.hasEnd {
			if f.endExcl && !t.Before(f.end) {
				return false
			}
			if !f.endExcl && t.After(f.end) {
				return false
			}
		}
	}
	if f.state.LeadStage != "" && !strings.EqualFold(l.LeadStage, f.state.LeadStage) {
		return false
	}
	for i, s := range f.state.LeadStatus {
		if s != "" && !strings.EqualFold(l.LeadStatus[i], s) {
			return false
		}
	}
	if f.state.EnrichedOnly && !l.IsEnriched {
		return false
	}
	return true
}

// Apply filters leads. An empty state yields Applied=false and no leads so
// callers fall back to the unfiltered view.
func (f *Filter) Apply(leads []model.Lead) FilterResult {
	if f.state.IsEmpty() {
		return FilterResult{}
	}
	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return FilterResult{Leads: out, Labels: f.Labels(), Applied: true}
}
