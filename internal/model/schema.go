package model

import (
	"fmt"
	"sort"
	"strings"
)

// ReservedColumns is the width of the fixed-semantics block at the start of
// every lead row.
const ReservedColumns = 26

// Field names a semantically meaningful lead column.
type Field string

const (
	FieldSubmissionDate    Field = "submission_date"
	FieldSubmissionTime    Field = "submission_time"
	FieldFirstName         Field = "first_name"
	FieldLastName          Field = "last_name"
	FieldEmail             Field = "email"
	FieldPhone             Field = "phone"
	FieldEventType         Field = "event_type"
	FieldEventDate         Field = "event_date"
	FieldGuestCount        Field = "guest_count"
	FieldMessage           Field = "message"
	FieldCeremonyType      Field = "ceremony_type"
	FieldStyle             Field = "style"
	FieldAssociatedEvents  Field = "associated_events"
	FieldLeadStage         Field = "lead_stage"
	FieldLeadStatus1       Field = "lead_status_1"
	FieldLeadStatus2       Field = "lead_status_2"
	FieldLeadStatus3       Field = "lead_status_3"
	FieldLeadStatus4       Field = "lead_status_4"
	FieldNotes             Field = "notes"
	FieldSource            Field = "source"
	FieldPartner           Field = "partner"
	FieldPlanning          Field = "planning"
	FieldContactPreference Field = "contact_preference"
	FieldCallForm          Field = "call_form"
)

// String returns the string representation of the field.
func (f Field) String() string {
	return string(f)
}

// StatusFields lists the four lead status slots in order.
var StatusFields = [4]Field{FieldLeadStatus1, FieldLeadStatus2, FieldLeadStatus3, FieldLeadStatus4}

// Schema maps named fields to spreadsheet column positions.
type Schema struct {
	positions map[Field]int
	fields    map[int]Field
}

// DefaultSchema returns the column layout used by the venue spreadsheet.
func DefaultSchema() *Schema {
	s, err := NewSchema(map[Field]int{
		FieldSubmissionDate:    0,
		FieldSubmissionTime:    1,
		FieldFirstName:         2,
		FieldLastName:          3,
		FieldEmail:             4,
		FieldPhone:             5,
		FieldEventType:         6,
		FieldEventDate:         7,
		FieldGuestCount:        8,
		FieldMessage:           9,
		FieldCeremonyType:      10,
		FieldStyle:             11,
		FieldAssociatedEvents:  12,
		FieldLeadStage:         13,
		FieldLeadStatus1:       15,
		FieldLeadStatus2:       16,
		FieldLeadStatus3:       17,
		FieldLeadStatus4:       18,
		FieldNotes:             19,
		FieldSource:            21,
		FieldPartner:           22,
		FieldPlanning:          23,
		FieldContactPreference: 24,
		FieldCallForm:          25,
	})
	if err != nil {
		panic(err)
	}
	return s
}

// NewSchema builds a schema from a field→position mapping and validates it.
func NewSchema(positions map[Field]int) (*Schema, error) {
	s := &Schema{
		positions: make(map[Field]int, len(positions)),
		fields:    make(map[int]Field, len(positions)),
	}
	for f, p := range positions {
		s.positions[f] = p
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for f, p := range s.positions {
		s.fields[p] = f
	}
	return s, nil
}

// Validate checks the mapping for negative, out-of-block, or shared positions.
// It returns a *ValidationError listing every problem, or nil.
func (s *Schema) Validate() error {
	var ve ValidationError

	names := make([]string, 0, len(s.positions))
	for f := range s.positions {
		names = append(names, string(f))
	}
	sort.Strings(names)

	owner := make(map[int]Field, len(s.positions))
	for _, name := range names {
		f := Field(name)
		p := s.positions[f]
		if p < 0 || p >= ReservedColumns {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   name,
				Message: fmt.Sprintf("position %d outside 0-%d", p, ReservedColumns-1),
			})
			continue
		}
		if prev, ok := owner[p]; ok {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   name,
				Message: fmt.Sprintf("position %d already used by %s", p, prev),
			})
			continue
		}
		owner[p] = f
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// Position returns the column position of f.
func (s *Schema) Position(f Field) (int, bool) {
	p, ok := s.positions[f]
	return p, ok
}

// MustPosition returns the column position of f or -1 when unmapped.
func (s *Schema) MustPosition(f Field) int {
	if p, ok := s.positions[f]; ok {
		return p
	}
	return -1
}

// Field returns the field stored at column col.
func (s *Schema) Field(col int) (Field, bool) {
	f, ok := s.fields[col]
	return f, ok
}

// ResolveColumn accepts a field name or a column number and returns the
// column position.
func (s *Schema) ResolveColumn(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := s.positions[Field(strings.ToLower(ref))]; ok {
		return p, nil
	}
	var col int
	if _, err := fmt.Sscanf(ref, "%d", &col); err == nil && fmt.Sprint(col) == ref {
		if col < 0 {
			return 0, fmt.Errorf("column %d is negative", col)
		}
		return col, nil
	}
	return 0, fmt.Errorf("unknown field or column %q", ref)
}

func (s *Schema) get(r Row, f Field) string {
	p, ok := s.positions[f]
	if !ok {
		return ""
	}
	return r.Value(p)
}

// Lead projects a row at the given store index into a named-field record.
func (s *Schema) Lead(index int, r Row) Lead {
	l := Lead{
		Index:             index,
		SubmissionDate:    s.get(r, FieldSubmissionDate),
		SubmissionTime:    s.get(r, FieldSubmissionTime),
		FirstName:         s.get(r, FieldFirstName),
		LastName:          s.get(r, FieldLastName),
		Email:             s.get(r, FieldEmail),
		Phone:             s.get(r, FieldPhone),
		EventType:         s.get(r, FieldEventType),
		EventDate:         s.get(r, FieldEventDate),
		GuestCount:        s.get(r, FieldGuestCount),
		Message:           s.get(r, FieldMessage),
		CeremonyType:      s.get(r, FieldCeremonyType),
		Style:             s.get(r, FieldStyle),
		AssociatedEvents:  s.get(r, FieldAssociatedEvents),
		LeadStage:         s.get(r, FieldLeadStage),
		Notes:             s.get(r, FieldNotes),
		Source:            s.get(r, FieldSource),
		Partner:           s.get(r, FieldPartner),
		Planning:          s.get(r, FieldPlanning),
		ContactPreference: s.get(r, FieldContactPreference),
		IsEnriched:        r.IsEnriched,
	}
	for i, f := range StatusFields {
		l.LeadStatus[i] = s.get(r, f)
	}
	return l
}

// Leads projects every row, tagging each with its position.
func (s *Schema) Leads(rows []Row) []Lead {
	leads := make([]Lead, len(rows))
	for i, r := range rows {
		leads[i] = s.Lead(i, r)
	}
	return leads
}

// Lead is one wedding inquiry with named fields. Index is the row's position
// in the Record Store and is the write-back key for edits.
type Lead struct {
	Index             int       `json:"index"`
	SubmissionDate    string    `json:"submission_date"`
	SubmissionTime    string    `json:"submission_time,omitempty"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	EventType         string    `json:"event_type,omitempty"`
	EventDate         string    `json:"event_date,omitempty"`
	GuestCount        string    `json:"guest_count,omitempty"`
	Message           string    `json:"message,omitempty"`
	CeremonyType      string    `json:"ceremony_type,omitempty"`
	Style             string    `json:"style,omitempty"`
	AssociatedEvents  string    `json:"associated_events,omitempty"`
	LeadStage         string    `json:"lead_stage"`
	LeadStatus        [4]string `json:"lead_status"`
	Notes             string    `json:"notes,omitempty"`
	Source            string    `json:"source,omitempty"`
	Partner           string    `json:"partner,omitempty"`
	Planning          string    `json:"planning,omitempty"`
	ContactPreference string    `json:"contact_preference,omitempty"`
	IsEnriched        bool      `json:"is_enriched,omitempty"`
}

// FullName returns "first last" with surrounding space trimmed.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}
