// Package server is the dashboard backend: an HTTP JSON API over the record
// store, an SSE event stream and a gRPC health listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/health"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/events"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/poll"
	"github.com/alfredjeanlab/leadboard/internal/store"
	"github.com/alfredjeanlab/leadboard/internal/ui"
)

// refreshTimeout bounds the background refresh that follows a lead trigger.
const refreshTimeout = time.Minute

// errNoAssistant is returned by Ask when no provider is configured.
var errNoAssistant = errors.New("assistant is not configured")

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// Refresher is the part of *poll.Poller the server drives.
type Refresher interface {
	Refresh(ctx context.Context, notify bool) error
	Status() poll.Status
}

// Asker answers questions about a snapshot. *assistant.Assistant
// implements it.
type Asker interface {
	Ask(ctx context.Context, question string, snap *client.Snapshot) (string, error)
}

// Options wires a Server. Records and Client are required.
type Options struct {
	Records   *store.Records
	Client    client.SheetClient
	Poller    Refresher
	Journal   store.Journal
	Publisher events.Publisher
	Hub       *Hub
	Assistant Asker
	Viewport  *ui.Viewport
	Logger    *slog.Logger
}

// Server implements the dashboard operations shared by every transport.
type Server struct {
	records   *store.Records
	client    client.SheetClient
	poller    Refresher
	journal   store.Journal
	publisher events.Publisher
	hub       *Hub
	assistant Asker
	viewport  *ui.Viewport
	logger    *slog.Logger
	health    *health.Server

	// background runs post-action work; tests replace it to run inline.
	background func(func())
}

// New creates a Server. Events reach the hub and the configured publisher;
// pass the same hub to the poller's publisher so poll events stream too.
func New(opts Options) *Server {
	s := &Server{
		records:   opts.Records,
		client:    opts.Client,
		poller:    opts.Poller,
		journal:   opts.Journal,
		hub:       opts.Hub,
		assistant: opts.Assistant,
		viewport:  opts.Viewport,
		logger:    opts.Logger,
		health:    health.NewServer(),
		background: func(fn func()) {
			go fn()
		},
	}
	if s.journal == nil {
		s.journal = store.NoopJournal{}
	}
	if s.hub == nil {
		s.hub = NewHub()
	}
	if s.viewport == nil {
		s.viewport = ui.NewViewport(ui.ModeNormal)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.Publisher == nil {
		s.publisher = s.hub
	} else {
		s.publisher = events.MultiPublisher{opts.Publisher, s.hub}
	}
	s.HandleLoad()
	return s
}

// Hub returns the SSE hub events are broadcast on.
func (s *Server) Hub() *Hub {
	return s.hub
}

// publish emits an event. Failures are logged but do not fail the caller.
func (s *Server) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "err", err)
	}
}

// CellResult is the outcome of an edit.
type CellResult struct {
	Edit    *model.EditRecord `json:"edit"`
	Warning string            `json:"warning,omitempty"`
}

// EditCell writes value to (row, col) through the sheet API. The store is
// patched only once the sheet confirms; a refusal leaves it unchanged and
// returns the upstream error along with the rejected edit.
func (s *Server) EditCell(ctx context.Context, row, col int, value, actor string) (*CellResult, error) {
	cols := s.records.Columns()
	if cols.Kind(col) == model.ColumnAction {
		return nil, inputError(fmt.Sprintf("column %d is an action column", col))
	}

	e, err := s.records.BeginEdit(row, col, value, store.WithActor(actor))
	if err != nil {
		if errors.Is(err, store.ErrColumnOutOfRange) {
			return nil, inputError(err.Error())
		}
		return nil, err
	}

	res := &CellResult{}
	if !cols.Allows(col, value) {
		res.Warning = fmt.Sprintf("%q is not one of the options for column %d", value, col)
	}

	if uerr := s.client.UpdateCell(ctx, row, col, value); uerr != nil {
		_ = e.Reject(uerr)
		res.Edit = e.Record()
		s.recordEdit(ctx, res.Edit)
		s.publish(ctx, events.TopicCellRejected, events.CellRejected{
			EditID:   e.ID,
			RowIndex: row,
			Column:   col,
			Field:    string(e.Field),
			Value:    value,
			Error:    uerr.Error(),
			Actor:    actor,
		})
		s.logger.Warn("cell edit rejected", "row", row, "col", col, "err", uerr)
		return res, uerr
	}

	if err := e.Apply(); err != nil {
		return nil, err
	}
	res.Edit = e.Record()
	s.recordEdit(ctx, res.Edit)
	s.publish(ctx, events.TopicCellUpdated, events.CellUpdated{
		EditID:   e.ID,
		RowIndex: row,
		Column:   col,
		Field:    string(e.Field),
		OldValue: e.Old,
		NewValue: value,
		Actor:    actor,
	})
	s.logger.Info("cell edit applied", "row", row, "col", col, "edit_id", e.ID)
	return res, nil
}

func (s *Server) recordEdit(ctx context.Context, rec *model.EditRecord) {
	if err := s.journal.RecordEdit(ctx, rec); err != nil {
		s.logger.Warn("failed to journal edit", "edit_id", rec.ID, "err", err)
	}
}

// SaveNotes edits the notes column of row.
func (s *Server) SaveNotes(ctx context.Context, row int, notes, actor string) (*CellResult, error) {
	col := s.records.Schema().MustPosition(model.FieldNotes)
	if col < 0 {
		return nil, inputError("notes field is not mapped")
	}
	return s.EditCell(ctx, row, col, notes, actor)
}

// TriggerLead asks the sheet to recompute row, then refreshes in the
// background so the recomputed values show up.
func (s *Server) TriggerLead(ctx context.Context, row int, actor string) (string, error) {
	if _, ok := s.records.Row(row); !ok {
		return "", fmt.Errorf("%w: %d", store.ErrRowOutOfRange, row)
	}
	msg, err := s.client.TriggerLeadUpdate(ctx, row)
	if err != nil {
		return "", err
	}
	s.publish(ctx, events.TopicLeadTriggered, events.LeadTriggered{RowIndex: row, Message: msg, Actor: actor})

	if s.poller != nil {
		s.background(func() {
			rctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			if err := s.poller.Refresh(rctx, true); err != nil {
				s.logger.Warn("refresh after trigger failed", "row", row, "err", err)
			}
		})
	}
	return msg, nil
}

// CallFormURL returns the pre-filled call form link for row.
func (s *Server) CallFormURL(ctx context.Context, row int) (string, error) {
	if _, ok := s.records.Row(row); !ok {
		return "", fmt.Errorf("%w: %d", store.ErrRowOutOfRange, row)
	}
	return s.client.OpenCallForm(ctx, row)
}

// DismissAlert dismisses an alert upstream and drops it from the store.
func (s *Server) DismissAlert(ctx context.Context, id, actor string) error {
	if _, err := s.records.Alert(id); err != nil {
		return err
	}
	if err := s.client.DismissAlert(ctx, id); err != nil {
		return err
	}
	s.records.RemoveAlert(id)
	s.publish(ctx, events.TopicAlertDismissed, events.AlertDismissed{AlertID: id, Actor: actor})
	return nil
}

// Refresh runs a manual poll that drives the new-data indicator.
func (s *Server) Refresh(ctx context.Context) error {
	if s.poller == nil {
		return errors.New("poller is not configured")
	}
	return s.poller.Refresh(ctx, true)
}

// Ask answers a question about the current snapshot.
func (s *Server) Ask(ctx context.Context, question string) (string, error) {
	if s.assistant == nil {
		return "", errNoAssistant
	}
	if strings.TrimSpace(question) == "" {
		return "", inputError("question is required")
	}
	return s.assistant.Ask(ctx, question, s.records.Snapshot())
}
