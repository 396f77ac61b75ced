package postgres

import (
	"database/sql"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanEdit scans a single row into a model.EditRecord.
// The row must contain columns in the order defined by editColumns.
func scanEdit(row scannable) (*model.EditRecord, error) {
	var rec model.EditRecord
	var (
		field      sql.NullString
		errText    sql.NullString
		actor      sql.NullString
		resolvedAt sql.NullTime
	)

	err := row.Scan(
		&rec.ID,
		&rec.RowIndex,
		&rec.ColumnIndex,
		&field,
		&rec.OldValue,
		&rec.NewValue,
		&rec.State,
		&errText,
		&actor,
		&rec.StartedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Field = field.String
	rec.Error = errText.String
	rec.Actor = actor.String
	if resolvedAt.Valid {
		t := resolvedAt.Time
		rec.ResolvedAt = &t
	}
	return &rec, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTimePtr converts a nil *time.Time to a SQL NULL.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
