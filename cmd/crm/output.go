package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/ui"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func printLeadTable(w io.Writer, leads []model.Lead, total int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tSUBMITTED\tNAME\tEMAIL\tSTAGE\tSTATUS\tEVENT DATE")
	for _, l := range leads {
		name := l.FullName()
		if l.IsEnriched {
			name += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Index,
			model.FormatDate(l.SubmissionDate),
			truncate(name, 30),
			truncate(l.Email, 32),
			ui.RenderStage(l.LeadStage),
			truncate(latestStatus(l), 24),
			model.FormatDate(l.EventDate),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d leads (%d total)\n", len(leads), total)
}

// latestStatus returns the highest-numbered status slot that is set.
func latestStatus(l model.Lead) string {
	for i := len(l.LeadStatus) - 1; i >= 0; i-- {
		if l.LeadStatus[i] != "" {
			return l.LeadStatus[i]
		}
	}
	return ""
}

func printFilterLabels(w io.Writer, labels []string) {
	if len(labels) == 0 {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.RenderMuted("Filters:"), strings.Join(labels, ", "))
}

func printSearchResults(w io.Writer, results []view.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No leads found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tNAME\tEMAIL\tSUBMITTED\tSTAGE")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%s %s\t%s\t%s\t%s\n",
			r.Index, r.FirstName, r.LastName, r.Email, model.FormatDate(r.SubmissionDate), r.LeadStage)
	}
	tw.Flush()
}

type profileField struct {
	label string
	value string
}

// printLeadProfile prints the detail view of a lead grouped into sections.
func printLeadProfile(w io.Writer, l model.Lead) {
	sections := []struct {
		title  string
		fields []profileField
	}{
		{"Basic Info", []profileField{
			{"Name", l.FullName()},
			{"Email", l.Email},
			{"Phone", l.Phone},
			{"Submitted", strings.TrimSpace(model.FormatDate(l.SubmissionDate) + " " + l.SubmissionTime)},
			{"Contact Via", l.ContactPreference},
		}},
		{"Event Details", []profileField{
			{"Event Type", l.EventType},
			{"Event Date", model.FormatDate(l.EventDate)},
			{"Guests", l.GuestCount},
			{"Ceremony", l.CeremonyType},
			{"Style", l.Style},
			{"Also Planning", l.AssociatedEvents},
		}},
		{"Lead Status", []profileField{
			{"Stage", l.LeadStage},
			{"Status 1", l.LeadStatus[0]},
			{"Status 2", l.LeadStatus[1]},
			{"Status 3", l.LeadStatus[2]},
			{"Status 4", l.LeadStatus[3]},
		}},
		{"Additional", []profileField{
			{"Source", l.Source},
			{"Partner", l.Partner},
			{"Planning", l.Planning},
			{"Message", l.Message},
			{"Notes", l.Notes},
		}},
	}

	title := fmt.Sprintf("Row %d: %s", l.Index, l.FullName())
	if l.IsEnriched {
		title += " " + ui.RenderWarn("(enriched)")
	}
	fmt.Fprintln(w, title)
	for _, sec := range sections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.RenderAccent(sec.title))
		for _, f := range sec.fields {
			if f.value == "" {
				continue
			}
			fmt.Fprintf(w, "  %-14s%s\n", f.label+":", f.value)
		}
	}
}

func printAlertTable(w io.Writer, alerts []model.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tTYPE\tTITLE\tWHEN")
	for _, a := range alerts {
		title := a.Title
		if a.IsReport() {
			title += " [report]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.ID, ui.RenderPriority(a.Priority), a.Type, truncate(title, 50), model.FormatDate(a.Timestamp))
	}
	tw.Flush()
}

func printAlert(w io.Writer, a model.Alert) {
	fmt.Fprintf(w, "%s %s\n", ui.RenderPriority(a.Priority), a.Title)
	fmt.Fprintf(w, "%-11s%s\n", "ID:", a.ID)
	fmt.Fprintf(w, "%-11s%s\n", "Type:", a.Type)
	if a.Timestamp != "" {
		fmt.Fprintf(w, "%-11s%s\n", "When:", a.Timestamp)
	}
	if a.Message != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, a.Message)
	}
	if a.IsReport() && a.FullContent != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.RenderAccent("Report"))
		fmt.Fprintln(w, a.FullContent)
	}
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, ui.RenderWarn("Warning: ")+format+"\n", args...)
}
