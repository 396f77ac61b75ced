package assistant

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

// DefaultMaxRows is the number of per-lead lines included in the context.
const DefaultMaxRows = 50

// rangeLayout renders the dataset date range.
const rangeLayout = "1/2/2006"

// Budget bounds the size of the generated context.
type Budget struct {
	// MaxRows caps the per-lead lines. Aggregates always cover every lead.
	MaxRows int
}

func (b Budget) maxRows() int {
	if b.MaxRows <= 0 {
		return DefaultMaxRows
	}
	return b.MaxRows
}

const businessRules = `This is wedding venue CRM data for Milea Estate Vineyard. The lead stages typically progress from "Hot" -> various warm stages -> "Closed-Won" or "Closed-Lost".
Lead statuses track the communication and sales process: "Contacted" -> "Contacted & Communicated" -> "Tour Scheduled" -> "Proposal Sent" -> "Closed-Won/Closed-Lost".

Please analyze this data to answer the user's question about their wedding venue business metrics.`

// ColumnLetter returns the spreadsheet letter for a zero-based column:
// 0 is A, 25 is Z, 26 is AA.
func ColumnLetter(col int) string {
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

type tally struct {
	name  string
	count int
}

// countBy tallies values, ordered by count descending then name.
func countBy(leads []model.Lead, key func(model.Lead) (string, bool)) []tally {
	counts := make(map[string]int)
	for _, l := range leads {
		if k, ok := key(l); ok {
			counts[k]++
		}
	}
	out := make([]tally, 0, len(counts))
	for k, n := range counts {
		out = append(out, tally{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

// FormatContext renders the snapshot as the textual data summary sent with
// every question.
func FormatContext(snap *client.Snapshot, schema *model.Schema, budget Budget) string {
	if snap == nil || len(snap.Headers) == 0 {
		return "No CRM data available for analysis."
	}
	leads := schema.Leads(snap.Rows)

	var b strings.Builder
	b.WriteString("CRM DATA ANALYSIS CONTEXT:\n\nHEADERS:\n")
	for i, h := range snap.Headers {
		fmt.Fprintf(&b, "%s: %s\n", ColumnLetter(i), h)
	}

	b.WriteString("\nDATASET OVERVIEW:\n")
	fmt.Fprintf(&b, "- Total Leads: %d\n", len(leads))
	fmt.Fprintf(&b, "- Date Range: %s\n", dateRange(leads))

	b.WriteString("\nLEAD STAGES BREAKDOWN:\n")
	stages := countBy(leads, func(l model.Lead) (string, bool) {
		if s := strings.TrimSpace(l.LeadStage); s != "" {
			return s, true
		}
		return "Unknown", true
	})
	for _, t := range stages {
		fmt.Fprintf(&b, "- %s: %d leads\n", t.name, t.count)
	}

	b.WriteString("\nLEAD STATUS BREAKDOWNS:\n")
	for i, f := range model.StatusFields {
		title := ""
		if p, ok := schema.Position(f); ok && p < len(snap.Headers) {
			title = snap.Headers[p]
		}
		fmt.Fprintf(&b, "Status %d (%s):\n", i+1, title)
		statuses := countBy(leads, func(l model.Lead) (string, bool) {
			s := strings.TrimSpace(l.LeadStatus[i])
			return s, s != ""
		})
		for _, t := range statuses {
			fmt.Fprintf(&b, "  - %s: %d\n", t.name, t.count)
		}
		b.WriteString("\n")
	}

	shown := view.Sort(leads, view.OrderNewest)
	limit := budget.maxRows()
	hidden := 0
	if len(shown) > limit {
		hidden = len(shown) - limit
		shown = shown[:limit]
	}
	fmt.Fprintf(&b, "LEADS (newest first, %d of %d):\n", len(shown), len(leads))
	for n, l := range shown {
		if n > 0 {
			b.WriteString("\n")
		}
		writeLead(&b, n+1, l)
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "\n... %d more leads not shown\n", hidden)
	}

	b.WriteString("\n")
	b.WriteString(businessRules)
	b.WriteString("\n")
	return b.String()
}

func writeLead(b *strings.Builder, n int, l model.Lead) {
	fmt.Fprintf(b, "Lead %d:\n", n)
	fmt.Fprintf(b, "  - Submission: %s at %s\n", l.SubmissionDate, l.SubmissionTime)
	fmt.Fprintf(b, "  - Name: %s %s\n", l.FirstName, l.LastName)
	fmt.Fprintf(b, "  - Email: %s\n", l.Email)
	fmt.Fprintf(b, "  - Phone: %s\n", l.Phone)
	fmt.Fprintf(b, "  - Event Type: %s\n", l.EventType)
	fmt.Fprintf(b, "  - Event Date: %s\n", l.EventDate)
	fmt.Fprintf(b, "  - Guest Count: %s\n", l.GuestCount)
	fmt.Fprintf(b, "  - Lead Stage: %s\n", l.LeadStage)
	for i, s := range l.LeadStatus {
		fmt.Fprintf(b, "  - Lead Status %d: %s\n", i+1, s)
	}
}

func dateRange(leads []model.Lead) string {
	var earliest, latest time.Time
	for _, l := range leads {
		t, ok := model.ParseDate(l.SubmissionDate)
		if !ok {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
		if latest.IsZero() || t.After(latest) {
			latest = t
		}
	}
	if earliest.IsZero() {
		return "unknown"
	}
	return earliest.Format(rangeLayout) + " to " + latest.Format(rangeLayout)
}
