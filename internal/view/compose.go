package view

import (
	"strings"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// Query selects one of the three lead views and how to present it.
type Query struct {
	Search string
	Filter model.FilterState
	Bucket string
	Order  Order
	Limit  int
}

// Mode names the view a Query resolved to.
type Mode string

const (
	ModeSearch Mode = "search"
	ModeFilter Mode = "filter"
	ModeBucket Mode = "bucket"
)

// Result is a composed lead view.
type Result struct {
	Mode    Mode          `json:"mode"`
	Leads   []model.Lead  `json:"leads"`
	Total   int           `json:"total"`
	Labels  []string      `json:"filters"`
	Buckets []BucketCount `json:"buckets"`
}

// Compose resolves q against leads. A search query takes priority and keeps
// its ranking; otherwise an applied filter wins over the stage bucket, and
// the chosen leads are sorted by submission date. Bucket counts always
// cover every lead. Limit trims the output after Total is taken.
func Compose(leads []model.Lead, q Query) (*Result, error) {
	buckets := Organize(leads)
	res := &Result{Buckets: buckets.Counts(), Labels: []string{}}

	switch {
	case strings.TrimSpace(q.Search) != "":
		res.Mode = ModeSearch
		byIndex := make(map[int]model.Lead, len(leads))
		for _, l := range leads {
			byIndex[l.Index] = l
		}
		for _, hit := range Search(q.Search, leads) {
			res.Leads = append(res.Leads, byIndex[hit.Index])
		}
	default:
		f, err := CompileFilter(q.Filter)
		if err != nil {
			return nil, err
		}
		if fr := f.Apply(leads); fr.Applied {
			res.Mode = ModeFilter
			res.Leads = fr.Leads
			res.Labels = fr.Labels
		} else {
			res.Mode = ModeBucket
			key := q.Bucket
			if key == "" {
				key = BucketAll
			}
			res.Leads = buckets.Get(key)
		}
		order := q.Order
		if order == "" {
			order = OrderNewest
		}
		res.Leads = Sort(res.Leads, order)
	}

	if res.Leads == nil {
		res.Leads = []model.Lead{}
	}
	res.Total = len(res.Leads)
	if q.Limit > 0 && len(res.Leads) > q.Limit {
		res.Leads = res.Leads[:q.Limit]
	}
	return res, nil
}
