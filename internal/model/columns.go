package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// CallFormColumn is the column that opens the pre-filled call form.
const CallFormColumn = 25

// ColumnKind classifies how a column is presented and edited.
type ColumnKind string

const (
	ColumnPlain  ColumnKind = "plain"
	ColumnAction ColumnKind = "action"
	ColumnEnum   ColumnKind = "enum"
)

// String returns the string representation of the column kind.
func (k ColumnKind) String() string {
	return string(k)
}

// EditableColumn is a closed set of values offered as a choice control.
type EditableColumn struct {
	Options []string `json:"options"`
}

// ColumnDefs is the payload of GET ?type=columns.
type ColumnDefs struct {
	EditableColumns map[int]EditableColumn `json:"editableColumns"`
	UpdateColumn    *int                   `json:"updateColumn"`
}

// UnmarshalJSON accepts editableColumns keyed by stringified integers.
func (c *ColumnDefs) UnmarshalJSON(data []byte) error {
	var wire struct {
		EditableColumns map[string]EditableColumn `json:"editableColumns"`
		UpdateColumn    *int                      `json:"updateColumn"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.EditableColumns = make(map[int]EditableColumn, len(wire.EditableColumns))
	for k, v := range wire.EditableColumns {
		col, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("editableColumns: key %q is not a column index", k)
		}
		c.EditableColumns[col] = v
	}
	c.UpdateColumn = wire.UpdateColumn
	return nil
}

// Kind returns the presentation kind for column col.
func (c *ColumnDefs) Kind(col int) ColumnKind {
	if c == nil {
		return ColumnPlain
	}
	if (c.UpdateColumn != nil && *c.UpdateColumn == col) || col == CallFormColumn {
		return ColumnAction
	}
	if _, ok := c.EditableColumns[col]; ok {
		return ColumnEnum
	}
	return ColumnPlain
}

// Options returns the allowed values of an editable column.
func (c *ColumnDefs) Options(col int) []string {
	if c == nil {
		return nil
	}
	return c.EditableColumns[col].Options
}

// Allows reports whether value is one of the options of column col.
// Non-enum columns allow any value.
func (c *ColumnDefs) Allows(col int, value string) bool {
	if c.Kind(col) != ColumnEnum {
		return true
	}
	return slices.Contains(c.EditableColumns[col].Options, value)
}
