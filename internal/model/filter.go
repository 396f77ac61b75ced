package model

import "strings"

// FilterState is the set of advanced filter predicates a user has chosen.
// Blank strings and false mean "not set".
type FilterState struct {
	DateStart    string    `json:"date_start,omitempty"`
	DateEnd      string    `json:"date_end,omitempty"`
	LeadStage    string    `json:"lead_stage,omitempty"`
	LeadStatus   [4]string `json:"lead_status"`
	EnrichedOnly bool      `json:"enriched_only,omitempty"`
}

// Normalized returns f with surrounding whitespace trimmed from every string
// predicate, so a whitespace-only value reads as unset.
func (f FilterState) Normalized() FilterState {
	f.DateStart = strings.TrimSpace(f.DateStart)
	f.DateEnd = strings.TrimSpace(f.DateEnd)
	f.LeadStage = strings.TrimSpace(f.LeadStage)
	for i := range f.LeadStatus {
		f.LeadStatus[i] = strings.TrimSpace(f.LeadStatus[i])
	}
	return f
}

// IsEmpty reports whether no predicate is set.
func (f FilterState) IsEmpty() bool {
	f = f.Normalized()
	if f.DateStart != "" || f.DateEnd != "" || f.LeadStage != "" || f.EnrichedOnly {
		return false
	}
	for _, s := range f.LeadStatus {
		if s != "" {
			return false
		}
	}
	return true
}
