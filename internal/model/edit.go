package model

import "time"

// EditState is the lifecycle position of a cell edit.
type EditState string

const (
	EditIdle     EditState = "idle"
	EditSending  EditState = "sending"
	EditApplied  EditState = "applied"
	EditRejected EditState = "rejected"
)

// String returns the string representation of the edit state.
func (s EditState) String() string {
	return string(s)
}

// IsFinal reports whether no further transition is possible.
func (s EditState) IsFinal() bool {
	return s == EditApplied || s == EditRejected
}

// EditRecord is the journaled form of one cell edit.
type EditRecord struct {
	ID          string     `json:"id"`
	RowIndex    int        `json:"row_index"`
	ColumnIndex int        `json:"column_index"`
	Field       string     `json:"field,omitempty"`
	OldValue    string     `json:"old_value"`
	NewValue    string     `json:"new_value"`
	State       EditState  `json:"state"`
	Error       string     `json:"error,omitempty"`
	Actor       string     `json:"actor,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}
