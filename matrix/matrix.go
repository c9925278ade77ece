// Package matrix derives numeric matrix and vector views from ledger
// snapshots.
//
// Views are pure functions of (snapshot, projection): they hold their own
// copies of the projected data, never references into the ledger, and a
// repeated projection over an unchanged snapshot is bit-identical. The
// engine recomputes in full on every call; at the scale of a capture
// session this is cheaper than maintaining incremental aggregates and
// trivially correct.
package matrix

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/schema"
)

// ErrNonNumericField indicates a projection that names a string-typed
// field. Non-numeric fields are excluded from numeric views and signaled,
// never silently coerced to zero.
type ErrNonNumericField struct {
	Field string
}

func (e *ErrNonNumericField) Error() string {
	return fmt.Sprintf("non-numeric field: %q", e.Field)
}

// ErrUnknownField indicates a projection that names a field absent from the
// session schema.
type ErrUnknownField struct {
	Field string
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown field: %q", e.Field)
}

// MatrixView is a 2-D numeric projection of a ledger snapshot: one row per
// record in ledger order, one column per projected field.
type MatrixView struct {
	fields []string
	data   *mat.Dense      // nil when the snapshot is empty
	valid  *roaring.Bitmap // rows whose projected cells are all finite
}

// Project builds a MatrixView from snap restricted to the requested fields.
// An empty field list projects all number-typed fields in schema order.
//
// Rows containing NaN or Inf cells are kept in the matrix but excluded from
// the validity bitmap, so reductions skip them.
func Project(snap ledger.Snapshot, s *schema.Schema, fields ...string) (*MatrixView, error) {
	cols, err := resolveColumns(s, fields)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = s.Field(c).Name
	}

	rows := snap.Len()
	valid := roaring.New()

	if rows == 0 {
		return &MatrixView{fields: names, valid: valid}, nil
	}

	data := mat.NewDense(rows, len(cols), nil)
	for i := 0; i < rows; i++ {
		rec := snap.At(i)
		rowValid := true
		for j, c := range cols {
			v := rec.Values[c].Num
			if math.IsNaN(v) || math.IsInf(v, 0) {
				rowValid = false
			}
			data.Set(i, j, v)
		}
		if rowValid {
			valid.Add(uint32(i))
		}
	}

	return &MatrixView{fields: names, data: data, valid: valid}, nil
}

// resolveColumns maps the requested field names to schema positions,
// rejecting unknown and string-typed fields.
func resolveColumns(s *schema.Schema, fields []string) ([]int, error) {
	if s == nil {
		return nil, fmt.Errorf("matrix: schema is nil")
	}

	if len(fields) == 0 {
		fields = s.NumericNames()
		if len(fields) == 0 {
			return nil, &ErrNonNumericField{Field: "(no numeric fields in schema)"}
		}
	}

	cols := make([]int, len(fields))
	for i, name := range fields {
		c := s.Index(name)
		if c < 0 {
			return nil, &ErrUnknownField{Field: name}
		}
		if s.Field(c).Type != schema.TypeNumber {
			return nil, &ErrNonNumericField{Field: name}
		}
		cols[i] = c
	}

	return cols, nil
}

// Dims returns the row and column counts.
func (m *MatrixView) Dims() (rows, cols int) {
	if m.data == nil {
		return 0, len(m.fields)
	}
	return m.data.Dims()
}

// At returns the cell at row i, column j.
func (m *MatrixView) At(i, j int) float64 { return m.data.At(i, j) }

// Fields returns the projected field names in column order.
func (m *MatrixView) Fields() []string {
	out := make([]string, len(m.fields))
	copy(out, m.fields)
	return out
}

// Matrix exposes the view as a gonum matrix for further numeric work.
// Returns nil when the snapshot was empty.
func (m *MatrixView) Matrix() mat.Matrix {
	if m.data == nil {
		return nil
	}
	return m.data
}

// ValidRows returns the bitmap of rows whose projected cells are all
// finite. Callers must treat it as read-only.
func (m *MatrixView) ValidRows() *roaring.Bitmap { return m.valid }

// Col returns a copy of column j restricted to valid rows.
func (m *MatrixView) Col(j int) []float64 {
	out := make([]float64, 0, m.valid.GetCardinality())
	it := m.valid.Iterator()
	for it.HasNext() {
		out = append(out, m.data.At(int(it.Next()), j))
	}
	return out
}
