package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/store"
)

var setCmd = &cobra.Command{
	Use:   "set <row> <field|column> <value>",
	Short: "Update one cell of a lead",
	Long: `Update one cell of a lead and write it back to the sheet.

The cell is named by field (lead_stage, lead_status_2, notes, ...) or by
column number. Choice columns warn when the value is not one of their
options but the write still goes through.`,
	GroupID: "leads",
	Args:    cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseRow(args[0])
		if err != nil {
			return err
		}
		schema := model.DefaultSchema()
		col, err := schema.ResolveColumn(args[1])
		if err != nil {
			return err
		}
		return runEdit(context.Background(), row, col, strings.Join(args[2:], " "))
	},
}

var notesCmd = &cobra.Command{
	Use:     "notes <row> <text>",
	Short:   "Replace a lead's notes",
	GroupID: "leads",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseRow(args[0])
		if err != nil {
			return err
		}
		col := model.DefaultSchema().MustPosition(model.FieldNotes)
		return runEdit(context.Background(), row, col, strings.Join(args[1:], " "))
	},
}

func runEdit(ctx context.Context, row, col int, value string) error {
	records, err := loadRecords(ctx)
	if err != nil {
		return err
	}
	rec, err := editCell(ctx, records, sheetClient, row, col, value)
	if rec != nil && jsonOutput {
		if perr := printJSON(rec); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if !jsonOutput {
		fmt.Fprintf(os.Stdout, "Updated row %d column %d: %q -> %q\n", row, col, rec.OldValue, rec.NewValue)
	}
	return nil
}

type cellWriter interface {
	UpdateCell(ctx context.Context, row, col int, value string) error
}

// editCell runs one edit through the store: it is Sending until the sheet
// answers, then Applied or Rejected. The returned record reflects the final
// state even when the write failed.
func editCell(ctx context.Context, records *store.Records, w cellWriter, row, col int, value string) (*model.EditRecord, error) {
	cols := records.Columns()
	if cols.Kind(col) == model.ColumnAction {
		return nil, fmt.Errorf("column %d is an action column", col)
	}
	if !cols.Allows(col, value) {
		warnf("%q is not one of the options for column %d (%s)", value, col, strings.Join(cols.Options(col), ", "))
	}

	e, err := records.BeginEdit(row, col, value, store.WithActor(actor))
	if err != nil {
		return nil, err
	}
	if uerr := w.UpdateCell(ctx, row, col, value); uerr != nil {
		_ = e.Reject(uerr)
		return e.Record(), fmt.Errorf("updating row %d: %w", row, uerr)
	}
	if err := e.Apply(); err != nil {
		return nil, err
	}
	return e.Record(), nil
}
