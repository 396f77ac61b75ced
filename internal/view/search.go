package view

import (
	"sort"
	"strings"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// MaxSearchResults caps the search panel.
const MaxSearchResults = 10

// Match types reported on a SearchResult.
const (
	MatchName  = "name"
	MatchEmail = "email"
)

// SearchResult is one row in the search panel.
type SearchResult struct {
	Index          int    `json:"index"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	SubmissionDate string `json:"submission_date"`
	LeadStage      string `json:"lead_stage"`
	MatchType      string `json:"match_type"`
}

// Search returns up to MaxSearchResults leads whose first name, last name,
// full name or email contains query, case-insensitively. Exact full-name
// matches rank first, then exact email matches, then the rest in store order.
// A blank query returns nil.
func Search(query string, leads []model.Lead) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type hit struct {
		result SearchResult
		rank   int
	}
	var hits []hit
	for _, l := range leads {
		first := strings.ToLower(l.FirstName)
		last := strings.ToLower(l.LastName)
		full := strings.ToLower(l.FullName())
		email := strings.ToLower(l.Email)

		nameMatch := strings.Contains(first, q) || strings.Contains(last, q) || strings.Contains(full, q)
		emailMatch := strings.Contains(email, q)
		if !nameMatch && !emailMatch {
			continue
		}

		matchType := MatchEmail
		if nameMatch {
			matchType = MatchName
		}
		rank := 2
		switch {
		case full == q:
			rank = 0
		case email == q:
			rank = 1
		}
		hits = append(hits, hit{
			result: SearchResult{
				Index:          l.Index,
				FirstName:      l.FirstName,
				LastName:       l.LastName,
				Email:          l.Email,
				SubmissionDate: l.SubmissionDate,
				LeadStage:      l.LeadStage,
				MatchType:      matchType,
			},
			rank: rank,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })

	n := min(len(hits), MaxSearchResults)
	out := make([]SearchResult, n)
	for i := range n {
		out[i] = hits[i].result
	}
	return out
}
