// Package events defines the change notifications emitted by the dashboard
// backend and the NATS transport that carries them.
package events

import (
	"context"
	"time"
)

// TopicPrefix is the subject root shared by every topic.
const TopicPrefix = "crm."

// TopicAll subscribes to every topic.
const TopicAll = TopicPrefix + ">"

// Event topic constants
const (
	TopicLeadsRefreshed = "crm.leads.refreshed"
	TopicLeadsChanged   = "crm.leads.changed"
	TopicCellUpdated    = "crm.cell.updated"
	TopicCellRejected   = "crm.cell.rejected"
	TopicLeadTriggered  = "crm.lead.triggered"
	TopicAlertDismissed = "crm.alert.dismissed"
)

// Event types

// LeadsRefreshed is published after every successful poll.
type LeadsRefreshed struct {
	LeadCount  int       `json:"lead_count"`
	AlertCount int       `json:"alert_count"`
	FetchedAt  time.Time `json:"fetched_at"`
	Changed    bool      `json:"changed"`
}

// LeadsChanged is published when a notifying poll saw different rows or alerts.
type LeadsChanged struct {
	LeadCount  int       `json:"lead_count"`
	AlertCount int       `json:"alert_count"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// CellUpdated is published when the sheet confirmed an edit.
type CellUpdated struct {
	EditID   string `json:"edit_id"`
	RowIndex int    `json:"row_index"`
	Column   int    `json:"column"`
	Field    string `json:"field,omitempty"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
	Actor    string `json:"actor,omitempty"`
}

// CellRejected is published when the sheet refused an edit.
type CellRejected struct {
	EditID   string `json:"edit_id"`
	RowIndex int    `json:"row_index"`
	Column   int    `json:"column"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value"`
	Error    string `json:"error"`
	Actor    string `json:"actor,omitempty"`
}

type LeadTriggered struct {
	RowIndex int    `json:"row_index"`
	Message  string `json:"message"`
	Actor    string `json:"actor,omitempty"`
}

type AlertDismissed struct {
	AlertID string `json:"alert_id"`
	Actor   string `json:"actor,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
