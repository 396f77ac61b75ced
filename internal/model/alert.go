package model

// AlertType is the category an alert was raised for.
type AlertType string

const (
	AlertHotLead           AlertType = "hot_lead"
	AlertFollowUp          AlertType = "follow_up"
	AlertStaleNoCall       AlertType = "stale_no_call"
	AlertStaleNoTour       AlertType = "stale_no_tour"
	AlertDailyCallList     AlertType = "daily_call_list"
	AlertStaleNoCallReport AlertType = "stale_no_call_report"
	AlertStaleNoTourReport AlertType = "stale_no_tour_report"
)

// String returns the string representation of the alert type.
func (t AlertType) String() string {
	return string(t)
}

// IsReport reports whether alerts of this type carry a full report body.
func (t AlertType) IsReport() bool {
	switch t {
	case AlertDailyCallList, AlertStaleNoCallReport, AlertStaleNoTourReport:
		return true
	}
	return false
}

// Alert priorities.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

// Alert is a notification raised by the spreadsheet backend.
type Alert struct {
	ID          string    `json:"id"`
	Type        AlertType `json:"type"`
	Priority    string    `json:"priority"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Timestamp   string    `json:"timestamp"`
	FullContent string    `json:"fullContent,omitempty"`
}

// IsReport reports whether the alert opens a detailed report view.
func (a Alert) IsReport() bool {
	return a.Type.IsReport()
}
