// Package record defines the immutable measurement record and the frame
// parser that produces it.
package record

import (
	"strconv"
	"time"

	"github.com/hupe1980/measgo/schema"
)

// Value is a single parsed field value. Its meaningful member is determined
// by the schema's declared field type.
type Value struct {
	Kind schema.FieldType
	Num  float64
	Str  string
}

// Number creates a numeric value.
func Number(f float64) Value {
	return Value{Kind: schema.TypeNumber, Num: f}
}

// String creates a string value.
func String(s string) Value {
	return Value{Kind: schema.TypeString, Str: s}
}

// Text returns the canonical text encoding of the value, as used by the
// flat-text export and the interchange document.
func (v Value) Text() string {
	if v.Kind == schema.TypeNumber {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}

// Equal reports exact equality. Numeric comparison is bitwise on the
// float64, so round-tripped values compare equal.
func (v Value) Equal(o Value) bool {
	return v == o
}

// Record is one admitted measurement: an ordered list of values matching the
// session schema, a sequence index assigned by the ledger, and the capture
// timestamp. Records are immutable once admitted; WithValues returns copies.
type Record struct {
	Seq    uint64
	Time   time.Time
	Values []Value
}

// WithValues returns a copy of the record with the given values. The input
// slice is copied so the original record stays untouched.
func (r Record) WithValues(values []Value) Record {
	out := r
	out.Values = make([]Value, len(values))
	copy(out.Values, values)
	return out
}

// Equal reports whether two records carry the same timestamp and values.
// Sequence indices are not compared; they are positional and reassigned on
// import.
func (r Record) Equal(o Record) bool {
	if !r.Time.Equal(o.Time) || len(r.Values) != len(o.Values) {
		return false
	}
	for i := range r.Values {
		if !r.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	return true
}
