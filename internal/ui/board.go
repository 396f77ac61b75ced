package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

// cardWidth is the outer width of one lead card including its border.
const cardWidth = 32

// BoardOptions selects what the board shows.
type BoardOptions struct {
	// Bucket limits the board to one stage. Empty or view.BucketAll shows
	// every stage.
	Bucket string
	// MaxCards caps cards per stage. Zero shows all.
	MaxCards int
	// Status is an optional line shown under the title, such as the last
	// update time.
	Status string
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(colorMuted)))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	enrichedMark = "★ enriched"
)

// RenderBoard renders leads grouped by stage as rows of cards sized to the
// layout width.
func RenderBoard(b *view.Buckets, layout Layout, opts BoardOptions) string {
	var sections []string

	total := b.Count(view.BucketAll)
	title := titleStyle.Render(fmt.Sprintf("Leadboard · %d leads", total))
	sections = append(sections, title)
	if opts.Status != "" {
		sections = append(sections, mutedStyle.Render(opts.Status))
	}

	perRow := max(1, layout.Width/(cardWidth+1))

	for _, key := range b.Keys() {
		if key == view.BucketAll {
			continue
		}
		if opts.Bucket != "" && opts.Bucket != view.BucketAll && opts.Bucket != key {
			continue
		}
		leads := b.Get(key)
		shown := leads
		if opts.MaxCards > 0 && len(shown) > opts.MaxCards {
			shown = shown[:opts.MaxCards]
		}

		color := lipgloss.Color(strconv.Itoa(StageColor(key)))
		header := lipgloss.NewStyle().Bold(true).Foreground(color).
			Render(fmt.Sprintf("%s (%d)", key, len(leads)))
		sections = append(sections, "", header)

		cards := make([]string, len(shown))
		for i, l := range shown {
			cards[i] = renderCard(l, color)
		}
		for start := 0; start < len(cards); start += perRow {
			end := min(start+perRow, len(cards))
			sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, spaced(cards[start:end])...))
		}
		if hidden := len(leads) - len(shown); hidden > 0 {
			sections = append(sections, mutedStyle.Render(fmt.Sprintf("+%d more", hidden)))
		}
	}

	if layout.ShowHelp {
		sections = append(sections, "", mutedStyle.Render(
			"crm show <index> · crm set <index> <field> <value> · crm board --kiosk"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func spaced(cards []string) []string {
	out := make([]string, 0, len(cards)*2)
	for i, c := range cards {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, c)
	}
	return out
}

func renderCard(l model.Lead, border lipgloss.Color) string {
	inner := cardWidth - 4 // border and padding
	lines := []string{
		nameStyle.Render(truncate(fmt.Sprintf("#%d %s", l.Index, l.FullName()), inner)),
	}
	if l.Email != "" {
		lines = append(lines, truncate(l.Email, inner))
	}
	var event []string
	if l.EventDate != "" {
		event = append(event, model.FormatDate(l.EventDate))
	}
	if l.GuestCount != "" {
		event = append(event, l.GuestCount+" guests")
	}
	if len(event) > 0 {
		lines = append(lines, truncate(strings.Join(event, " · "), inner))
	}
	var statuses []string
	for _, s := range l.LeadStatus {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, s)
		}
	}
	if len(statuses) > 0 {
		lines = append(lines, mutedStyle.Render(truncate(strings.Join(statuses, ", "), inner)))
	}
	if l.IsEnriched {
		lines = append(lines, enrichedMark)
	}

	style := cardStyle.Width(cardWidth - 2).BorderForeground(border)
	return style.Render(strings.Join(lines, "\n"))
}

// truncate shortens s to n display cells, ending with an ellipsis.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)+"…") > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
