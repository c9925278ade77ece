// Package schema describes the fixed per-session field layout of a
// measurement stream.
//
// A Schema is an ordered list of typed field names. It is validated once at
// session start; every frame, filter rule, projection, and interchange
// document is checked against it.
package schema

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of a schema field.
type FieldType uint8

const (
	// TypeNumber declares a field that must parse as a float64.
	TypeNumber FieldType = iota
	// TypeString declares a free-form text field.
	TypeString
)

// String returns the stable textual name of the field type, as used in
// schema specs and interchange documents.
func (t FieldType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	default:
		return fmt.Sprintf("fieldtype(%d)", uint8(t))
	}
}

// TypeByName returns a FieldType by its stable name.
func TypeByName(name string) (FieldType, bool) {
	switch name {
	case "number":
		return TypeNumber, true
	case "string":
		return TypeString, true
	default:
		return 0, false
	}
}

// Field is a single named, typed column of the measurement stream.
type Field struct {
	Name string
	Type FieldType
}

// Schema is an immutable ordered list of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// ErrInvalidSchema indicates a schema that cannot describe a session.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidSchema struct {
	Reason string
	cause  error
}

func (e *ErrInvalidSchema) Error() string {
	return fmt.Sprintf("invalid schema: %s", e.Reason)
}

func (e *ErrInvalidSchema) Unwrap() error { return e.cause }

// New creates a Schema from an ordered list of fields.
//
// The schema must contain at least one field, field names must be non-empty
// and unique, and names must not contain the spec separator characters
// (comma, colon).
func New(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, &ErrInvalidSchema{Reason: "no fields"}
	}

	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for i, f := range fields {
		if f.Name == "" {
			return nil, &ErrInvalidSchema{Reason: fmt.Sprintf("field %d has empty name", i)}
		}
		if strings.ContainsAny(f.Name, ",:") {
			return nil, &ErrInvalidSchema{Reason: fmt.Sprintf("field name %q contains reserved characters", f.Name)}
		}
		if _, exists := s.index[f.Name]; exists {
			return nil, &ErrInvalidSchema{Reason: fmt.Sprintf("duplicate field name %q", f.Name)}
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}

	return s, nil
}

// Parse builds a Schema from a compact spec string such as
// "temp:number,status:string". A field without a type suffix defaults to
// number.
func Parse(spec string) (*Schema, error) {
	parts := strings.Split(spec, ",")
	fields := make([]Field, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &ErrInvalidSchema{Reason: "empty field spec"}
		}

		name, typeName, hasType := strings.Cut(part, ":")
		ft := TypeNumber
		if hasType {
			t, ok := TypeByName(strings.TrimSpace(typeName))
			if !ok {
				return nil, &ErrInvalidSchema{Reason: fmt.Sprintf("unknown field type %q", typeName)}
			}
			ft = t
		}

		fields = append(fields, Field{Name: strings.TrimSpace(name), Type: ft})
	}

	return New(fields...)
}

// MustParse is like Parse but panics on error. Intended for tests and
// compile-time constant specs.
func MustParse(spec string) *Schema {
	s, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the field at position i.
func (s *Schema) Field(i int) Field { return s.fields[i] }

// Index returns the position of the named field, or -1 if absent.
func (s *Schema) Index(name string) int {
	i, ok := s.index[name]
	if !ok {
		return -1
	}
	return i
}

// Names returns the ordered field names.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// NumericNames returns the ordered names of all number-typed fields.
func (s *Schema) NumericNames() []string {
	out := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		if f.Type == TypeNumber {
			out = append(out, f.Name)
		}
	}
	return out
}

// Equal reports whether two schemas have identical field order, names and
// types.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}

// String returns the compact spec form of the schema.
func (s *Schema) String() string {
	var b strings.Builder
	for i, f := range s.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Name)
		b.WriteByte(':')
		b.WriteString(f.Type.String())
	}
	return b.String()
}
