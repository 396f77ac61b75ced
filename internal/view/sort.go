package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// Order is a submission-date ordering.
type Order string

const (
	OrderNewest Order = "newest"
	OrderOldest Order = "oldest"
)

// String returns the string representation of the order.
func (o Order) String() string {
	return string(o)
}

// ParseOrder accepts newest|desc|oldest|asc. Empty means newest.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest", "desc":
		return OrderNewest, nil
	case "oldest", "asc":
		return OrderOldest, nil
	}
	return "", fmt.Errorf("invalid order %q (want newest or oldest)", s)
}

// Sort returns a copy of leads ordered by submission date. Ties break by
// Index in the same direction, and unparseable dates count as oldest.
func Sort(leads []model.Lead, order Order) []model.Lead {
	type keyed struct {
		lead model.Lead
		t    time.Time
		ok   bool
	}
	ks := make([]keyed, len(leads))
	for i, l := range leads {
		t, ok := model.ParseDate(l.SubmissionDate)
		ks[i] = keyed{lead: l, t: t, ok: ok}
	}

	asc := func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return 1
		case !a.ok && b.ok:
			return -1
		case a.ok && b.ok:
			if c := a.t.Compare(b.t); c != 0 {
				return c
			}
		}
		return a.lead.Index - b.lead.Index
	}
	if order == OrderOldest {
		slices.SortFunc(ks, asc)
	} else {
		slices.SortFunc(ks, func(a, b keyed) int { return asc(b, a) })
	}

	out := make([]model.Lead, len(ks))
	for i, k := range ks {
		out[i] = k.lead
	}
	return out
}
