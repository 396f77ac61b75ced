package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Cell is a single spreadsheet value normalized to a string. The sheet API
// sends strings, numbers, booleans or null; all of them decode into a Cell.
type Cell string

// UnmarshalJSON normalizes any JSON scalar into its string form.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cell(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = Cell(strconv.FormatBool(b))
	case '{', '[':
		return fmt.Errorf("cell: unsupported JSON value %s", data)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*c = Cell(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// Row is one spreadsheet row. Position in Values is significant; see Schema.
type Row struct {
	Values     []string `json:"values"`
	IsEnriched bool     `json:"isEnriched,omitempty"`
}

// UnmarshalJSON decodes a row whose values may be mixed JSON scalars.
func (r *Row) UnmarshalJSON(data []byte) error {
	var wire struct {
		Values     []Cell `json:"values"`
		IsEnriched bool   `json:"isEnriched"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.Values = make([]string, len(wire.Values))
	for i, v := range wire.Values {
		r.Values[i] = string(v)
	}
	r.IsEnriched = wire.IsEnriched
	return nil
}

// Value returns the cell at col, or "" when the row is shorter.
func (r Row) Value(col int) string {
	if col < 0 || col >= len(r.Values) {
		return ""
	}
	return r.Values[col]
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	values := make([]string, len(r.Values))
	copy(values, r.Values)
	return Row{Values: values, IsEnriched: r.IsEnriched}
}

// Set writes value at col, growing the row with empty cells if needed.
func (r *Row) Set(col int, value string) {
	for len(r.Values) <= col {
		r.Values = append(r.Values, "")
	}
	r.Values[col] = value
}

// Equal reports whether two rows hold the same values and flags.
// Trailing empty cells are not significant.
func (r Row) Equal(o Row) bool {
	if r.IsEnriched != o.IsEnriched {
		return false
	}
	n := max(len(r.Values), len(o.Values))
	for i := range n {
		if r.Value(i) != o.Value(i) {
			return false
		}
	}
	return true
}

// SheetData is the payload of GET ?type=data.
type SheetData struct {
	Headers []string `json:"headers"`
	Data    []Row    `json:"data"`
}
