package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/llm"
	"github.com/alfredjeanlab/leadboard/internal/model"
)

type fakeProvider struct {
	got  llm.Request
	resp *llm.Response
	err  error
}

func (f *fakeProvider) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.got = req
	return f.resp, f.err
}

func testHeaders() []string {
	h := make([]string, model.ReservedColumns)
	for i := range h {
		h[i] = fmt.Sprintf("Col%d", i)
	}
	h[0] = "Submission Date"
	h[13] = "Lead Stage"
	h[15] = "Contacted"
	h[16] = "Toured"
	h[17] = "Proposal"
	h[18] = "Booked"
	return h
}

func lead(date, first, last, stage, status1 string) model.Row {
	v := make([]string, model.ReservedColumns)
	v[0] = date
	v[2] = first
	v[3] = last
	v[4] = strings.ToLower(first) + "@example.com"
	v[13] = stage
	v[15] = status1
	return model.Row{Values: v}
}

func testSnapshot() *client.Snapshot {
	return &client.Snapshot{
		Headers: testHeaders(),
		Rows: []model.Row{
			lead("2024-03-01", "Amy", "Adams", "Hot", "Contacted"),
			lead("2024-01-15", "Bob", "Brown", "Warm", ""),
			lead("2024-05-20", "Cal", "Cole", "Hot", "Contacted"),
			lead("not a date", "Dee", "Dunn", "", "Tour Scheduled"),
		},
	}
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{0, "A"}, {1, "B"}, {25, "Z"}, {26, "AA"}, {27, "AB"}, {51, "AZ"}, {52, "BA"}, {701, "ZZ"}, {702, "AAA"},
	}
	for _, tt := range tests {
		if got := ColumnLetter(tt.col); got != tt.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestFormatContext(t *testing.T) {
	out := FormatContext(testSnapshot(), model.DefaultSchema(), Budget{})

	for _, want := range []string{
		"CRM DATA ANALYSIS CONTEXT:",
		"A: Submission Date\n",
		"N: Lead Stage\n",
		"Z: Col25\n",
		"- Total Leads: 4\n",
		"- Date Range: 1/15/2024 to 5/20/2024\n",
		"- Hot: 2 leads\n- Unknown: 1 leads\n- Warm: 1 leads\n",
		"Status 1 (Contacted):\n  - Contacted: 2\n  - Tour Scheduled: 1\n",
		"Status 4 (Booked):\n",
		"  - Name: Amy Adams\n",
		"Milea Estate Vineyard",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("context missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "more leads not shown") {
		t.Error("no truncation expected under the default budget")
	}

	// Newest first: Cal, Amy, Bob, then the unparseable date last.
	cal := strings.Index(out, "Cal Cole")
	amy := strings.Index(out, "Amy Adams")
	bob := strings.Index(out, "Bob Brown")
	dee := strings.Index(out, "Dee Dunn")
	if !(cal < amy && amy < bob && bob < dee) {
		t.Errorf("leads not newest first: cal=%d amy=%d bob=%d dee=%d", cal, amy, bob, dee)
	}
}

func TestFormatContextBudget(t *testing.T) {
	out := FormatContext(testSnapshot(), model.DefaultSchema(), Budget{MaxRows: 2})
	if !strings.Contains(out, "... 2 more leads not shown") {
		t.Errorf("expected truncation marker\n%s", out)
	}
	if strings.Contains(out, "Bob Brown") {
		t.Error("Bob should be cut by the budget")
	}
	// Aggregates still cover every lead.
	if !strings.Contains(out, "- Total Leads: 4") {
		t.Error("total should count all leads")
	}
}

func TestFormatContextEmpty(t *testing.T) {
	if got := FormatContext(nil, model.DefaultSchema(), Budget{}); got != "No CRM data available for analysis." {
		t.Errorf("nil snapshot: %q", got)
	}
	out := FormatContext(&client.Snapshot{Headers: []string{"A"}}, model.DefaultSchema(), Budget{})
	if !strings.Contains(out, "- Date Range: unknown") {
		t.Errorf("expected unknown range\n%s", out)
	}
}

func TestAsk(t *testing.T) {
	p := &fakeProvider{resp: &llm.Response{Content: []llm.ContentBlock{{Type: "text", Text: "About 50%."}}}}
	a := New(p, model.DefaultSchema())

	answer, err := a.Ask(context.Background(), "  What's my conversion rate?  ", testSnapshot())
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "About 50%." {
		t.Errorf("answer = %q", answer)
	}
	if p.got.Model != DefaultModel || p.got.MaxTokens != DefaultMaxTokens {
		t.Errorf("request = %+v", p.got)
	}
	if p.got.Temperature == nil || *p.got.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v", p.got.Temperature)
	}
	if !strings.Contains(p.got.System, "winery general manager") {
		t.Errorf("system prompt = %q", p.got.System)
	}
	if len(p.got.Messages) != 1 || !strings.HasSuffix(p.got.Messages[0].Content, "\n\nUser Question: What's my conversion rate?") {
		t.Errorf("messages = %+v", p.got.Messages)
	}
}

func TestAskErrors(t *testing.T) {
	p := &fakeProvider{err: &llm.ProviderError{StatusCode: 429, Message: "slow down"}}
	a := New(p, model.DefaultSchema(), WithModel("claude-test"))

	if _, err := a.Ask(context.Background(), "   ", testSnapshot()); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("blank question: %v", err)
	}

	_, err := a.Ask(context.Background(), "hello", testSnapshot())
	if err == nil || !strings.HasPrefix(err.Error(), "failed to analyze data: ") {
		t.Fatalf("err = %v", err)
	}
	var pe *llm.ProviderError
	if !errors.As(err, &pe) || !pe.IsRateLimited() {
		t.Errorf("provider error not wrapped: %v", err)
	}
	if p.got.Model != "claude-test" {
		t.Errorf("model = %q", p.got.Model)
	}
}

func TestSuggestedQuestions(t *testing.T) {
	if len(SuggestedQuestions) != 6 {
		t.Fatalf("got %d suggestions", len(SuggestedQuestions))
	}
	seen := make(map[string]bool)
	for _, s := range SuggestedQuestions {
		if s.Category == "" || s.Text == "" || seen[s.Category] {
			t.Errorf("bad suggestion %+v", s)
		}
		seen[s.Category] = true
	}
}
