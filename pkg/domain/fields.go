package domain

import (
	"fmt"
	"strings"
)

// Field names, used in prompts, logs and extractor payloads.
const (
	FieldPartySize = "party_size"
	FieldCategory  = "category"
	FieldLocation  = "location"
	FieldDate      = "date"
	FieldTime      = "time"
)

// Fields holds the requested reservation parameters.
// Each field stays nil until some utterance populates it.
type Fields struct {
	PartySize *int    `json:"party_size,omitempty" mapstructure:"party_size"`
	Category  *string `json:"category,omitempty" mapstructure:"category"`
	Location  *string `json:"location,omitempty" mapstructure:"location"`
	Date      *string `json:"date,omitempty" mapstructure:"date"`
	Time      *string `json:"time,omitempty" mapstructure:"time"`
}

// Complete reports whether all five required fields are present.
func (f Fields) Complete() bool {
	return len(f.Missing()) == 0
}

// Missing lists the names of the fields that are still unset, in canonical order.
func (f Fields) Missing() []string {
	var missing []string
	if f.PartySize == nil {
		missing = append(missing, FieldPartySize)
	}
	if blank(f.Category) {
		missing = append(missing, FieldCategory)
	}
	if blank(f.Location) {
		missing = append(missing, FieldLocation)
	}
	if blank(f.Date) {
		missing = append(missing, FieldDate)
	}
	if blank(f.Time) {
		missing = append(missing, FieldTime)
	}
	return missing
}

// Merge applies a partial update with last-write-wins semantics.
// Only fields present in the update overwrite the receiver; it returns the
// names of the fields that were written.
func (f *Fields) Merge(u Fields) []string {
	var written []string
	if u.PartySize != nil {
		f.PartySize = Int(*u.PartySize)
		written = append(written, FieldPartySize)
	}
	if !blank(u.Category) {
		f.Category = String(*u.Category)
		written = append(written, FieldCategory)
	}
	if !blank(u.Location) {
		f.Location = String(*u.Location)
		written = append(written, FieldLocation)
	}
	if !blank(u.Date) {
		f.Date = String(*u.Date)
		written = append(written, FieldDate)
	}
	if !blank(u.Time) {
		f.Time = String(*u.Time)
		written = append(written, FieldTime)
	}
	return written
}

// Changes returns the fields of u that differ from the receiver.
func (f Fields) Changes(u Fields) Fields {
	var out Fields
	if u.PartySize != nil && (f.PartySize == nil || *f.PartySize != *u.PartySize) {
		out.PartySize = u.PartySize
	}
	if !blank(u.Category) && Deref(f.Category) != *u.Category {
		out.Category = u.Category
	}
	if !blank(u.Location) && Deref(f.Location) != *u.Location {
		out.Location = u.Location
	}
	if !blank(u.Date) && Deref(f.Date) != *u.Date {
		out.Date = u.Date
	}
	if !blank(u.Time) && Deref(f.Time) != *u.Time {
		out.Time = u.Time
	}
	return out
}

// Empty reports whether no field is present.
func (f Fields) Empty() bool {
	return f.PartySize == nil && blank(f.Category) && blank(f.Location) && blank(f.Date) && blank(f.Time)
}

// Summary renders the fields as a short spoken sentence.
func (f Fields) Summary() string {
	var parts []string
	if f.PartySize != nil {
		parts = append(parts, fmt.Sprintf("a table for %d", *f.PartySize))
	}
	if !blank(f.Category) {
		parts = append(parts, *f.Category)
	}
	if !blank(f.Location) {
		parts = append(parts, "near "+*f.Location)
	}
	if !blank(f.Date) {
		parts = append(parts, "on "+*f.Date)
	}
	if !blank(f.Time) {
		parts = append(parts, "at "+*f.Time)
	}
	return strings.Join(parts, ", ")
}

// Extraction is the partial update returned by a field extractor.
// Only non-nil fields indicate a correction.
type Extraction struct {
	Fields    `mapstructure:",squash"`
	Confirmed *bool  `json:"confirmed,omitempty" mapstructure:"confirmed"`
	Note      string `json:"note,omitempty" mapstructure:"note"`
}

// Declined reports whether the extraction carries an explicit "no".
func (e Extraction) Declined() bool {
	return e.Confirmed != nil && !*e.Confirmed
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
