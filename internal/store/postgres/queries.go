package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/store"
)

// editColumns is the column list used for SELECT statements on lead_edits.
const editColumns = `id, row_index, column_index, field, old_value, new_value,
	state, error, actor, started_at, resolved_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryRecordEdit upserts on id, so a Sending record can later be
// overwritten with its final state.
func queryRecordEdit(ctx context.Context, db executor, rec *model.EditRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO lead_edits (
			id, row_index, column_index, field, old_value, new_value,
			state, error, actor, started_at, resolved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11
		)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			error = EXCLUDED.error,
			resolved_at = EXCLUDED.resolved_at`,
		rec.ID,
		rec.RowIndex,
		rec.ColumnIndex,
		nullString(rec.Field),
		rec.OldValue,
		rec.NewValue,
		string(rec.State),
		nullString(rec.Error),
		nullString(rec.Actor),
		rec.StartedAt,
		nullTimePtr(rec.ResolvedAt),
	)
	if err != nil {
		return fmt.Errorf("insert edit %s: %w", rec.ID, err)
	}
	return nil
}

func queryListEdits(ctx context.Context, db executor, filter store.EditFilter) ([]*model.EditRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.RowIndex != nil {
		args = append(args, *filter.RowIndex)
		where = append(where, fmt.Sprintf("row_index = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = store.DefaultEditLimit
	}

	q := `SELECT ` + editColumns + ` FROM lead_edits`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	q += fmt.Sprintf(` ORDER BY started_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list edits: %w", err)
	}
	defer rows.Close()

	var edits []*model.EditRecord
	for rows.Next() {
		rec, err := scanEdit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		edits = append(edits, rec)
	}
	return edits, rows.Err()
}

func queryPruneEdits(ctx context.Context, db executor, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM lead_edits WHERE resolved_at IS NOT NULL AND resolved_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune edits: %w", err)
	}
	return res.RowsAffected()
}
