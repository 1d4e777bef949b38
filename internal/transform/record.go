// Package transform is the transformation engine: it turns one raw,
// loosely typed source record into a canonical record, derives the
// deterministic property key, and fans the record out into the parent and
// child entity shapes ready for loading.
package transform

import (
	"property-etl/internal/fieldmap"
)

// Value is a canonical field value with a definite type or explicit null
// (all pointers nil). No raw textual artifacts survive into a Value.
type Value struct {
	Str  *string
	Int  *int
	Dec  *float64
	Bool *bool
}

// IsNull reports whether the value carries nothing.
func (v Value) IsNull() bool {
	return v.Str == nil && v.Int == nil && v.Dec == nil && v.Bool == nil
}

// Scenario is one coherent bundle of same-group canonical fields, in
// source order before rank assignment.
type Scenario map[string]Value

// IsNull reports whether every field of the scenario is null.
func (s Scenario) IsNull() bool {
	for _, v := range s {
		if !v.IsNull() {
			return false
		}
	}
	return true
}

// CanonicalRecord is the immutable, fully typed output of the Normalizer
// for one raw record. Repeated groups are already resolved into explicit
// scenario lists, so consumers never re-parse suffix conventions.
type CanonicalRecord struct {
	fields map[string]Value
	groups map[fieldmap.Table][]Scenario
}

// Str returns the string value of a flat canonical field, or nil.
func (r *CanonicalRecord) Str(field string) *string {
	return r.fields[field].Str
}

// IntVal returns the integer value of a flat canonical field, or nil.
func (r *CanonicalRecord) IntVal(field string) *int {
	return r.fields[field].Int
}

// Dec returns the decimal value of a flat canonical field, or nil.
func (r *CanonicalRecord) Dec(field string) *float64 {
	return r.fields[field].Dec
}

// BoolVal returns the boolean value of a flat canonical field, or nil.
func (r *CanonicalRecord) BoolVal(field string) *bool {
	return r.fields[field].Bool
}

// Scenarios returns the ordered scenario list for a repeatable group.
// All-null scenarios are still present here; the fan-out drops them.
func (r *CanonicalRecord) Scenarios(table fieldmap.Table) []Scenario {
	return r.groups[table]
}

func requiredString(r *CanonicalRecord, field string) string {
	if s := r.fields[field].Str; s != nil {
		return *s
	}
	return ""
}
