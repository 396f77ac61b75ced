// Package sync exports snapshots of the lead store to external
// destinations on a schedule.
package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/client"
)

// ExportVersion is written in the header record.
const ExportVersion = "1"

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	FetchedAt  time.Time `json:"fetched_at,omitzero"`
	Headers    []string  `json:"headers"`
	LeadCount  int       `json:"lead_count"`
	AlertCount int       `json:"alert_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type leadRecord struct {
	Index      int      `json:"index"`
	Values     []string `json:"values"`
	IsEnriched bool     `json:"is_enriched"`
}

// ExportJSONL writes the snapshot as JSONL to w: a header, then one lead
// record per row in store order, then one alert record per alert.
func ExportJSONL(snap *client.Snapshot, w io.Writer) error {
	if snap == nil {
		snap = &client.Snapshot{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    ExportVersion,
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		FetchedAt:  snap.FetchedAt.UTC(),
		Headers:    snap.Headers,
		LeadCount:  len(snap.Rows),
		AlertCount: len(snap.Alerts),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for i, row := range snap.Rows {
		values := row.Values
		if values == nil {
			values = []string{}
		}
		if err := enc.Encode(record{Type: "lead", Data: leadRecord{
			Index:      i,
			Values:     values,
			IsEnriched: row.IsEnriched,
		}}); err != nil {
			return fmt.Errorf("encode lead %d: %w", i, err)
		}
	}

	for _, a := range snap.Alerts {
		if err := enc.Encode(record{Type: "alert", Data: a}); err != nil {
			return fmt.Errorf("encode alert %s: %w", a.ID, err)
		}
	}

	return nil
}
