// Package client provides a transport-agnostic interface for the lead
// spreadsheet API and an HTTP implementation of its GET-only protocol.
package client

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// SheetClient is the interface that CLI commands and the dashboard server use
// to talk to the spreadsheet backend. It is implemented by HTTPClient.
type SheetClient interface {
	// Reads
	FetchData(ctx context.Context) (*model.SheetData, error)
	FetchColumns(ctx context.Context) (*model.ColumnDefs, error)
	FetchAlerts(ctx context.Context) ([]model.Alert, error)
	FetchSnapshot(ctx context.Context) (*Snapshot, error)

	// Actions
	UpdateCell(ctx context.Context, row, col int, value string) error
	TriggerLeadUpdate(ctx context.Context, row int) (string, error)
	DismissAlert(ctx context.Context, id string) error
	OpenCallForm(ctx context.Context, row int) (string, error)

	// Lifecycle
	Close() error
}

// Snapshot is the result of one complete fetch of data, columns and alerts.
type Snapshot struct {
	Headers   []string          `json:"headers"`
	Rows      []model.Row       `json:"rows"`
	Columns   *model.ColumnDefs `json:"columns"`
	Alerts    []model.Alert     `json:"alerts"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// fetchSnapshot runs the three reads concurrently. All must succeed.
func fetchSnapshot(ctx context.Context, c SheetClient) (*Snapshot, error) {
	var (
		data    *model.SheetData
		columns *model.ColumnDefs
		alerts  []model.Alert
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = c.FetchData(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		columns, err = c.FetchColumns(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		alerts, err = c.FetchAlerts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Snapshot{
		Headers:   data.Headers,
		Rows:      data.Data,
		Columns:   columns,
		Alerts:    alerts,
		FetchedAt: time.Now(),
	}, nil
}
