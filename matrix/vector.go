package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/schema"
)

// Reduction selects the per-field aggregate computed by Summarize.
type Reduction uint8

const (
	// Mean is the arithmetic mean over valid rows.
	Mean Reduction = iota
	// StdDev is the sample standard deviation over valid rows.
	StdDev
	// Sum is the total over valid rows.
	Sum
	// Min is the smallest value over valid rows.
	Min
	// Max is the largest value over valid rows.
	Max
	// First is the value of the earliest valid row.
	First
	// Last is the value of the latest valid row.
	Last
)

// String returns the stable textual name of the reduction.
func (r Reduction) String() string {
	switch r {
	case Mean:
		return "mean"
	case StdDev:
		return "stddev"
	case Sum:
		return "sum"
	case Min:
		return "min"
	case Max:
		return "max"
	case First:
		return "first"
	case Last:
		return "last"
	default:
		return fmt.Sprintf("reduction(%d)", uint8(r))
	}
}

// ReductionByName returns a Reduction by its stable name.
func ReductionByName(name string) (Reduction, bool) {
	switch name {
	case "mean":
		return Mean, true
	case "stddev":
		return StdDev, true
	case "sum":
		return Sum, true
	case "min":
		return Min, true
	case "max":
		return Max, true
	case "first":
		return First, true
	case "last":
		return Last, true
	default:
		return 0, false
	}
}

// VectorView is a 1-D reduction of a matrix projection: one value per
// projected field.
type VectorView struct {
	fields    []string
	values    []float64
	reduction Reduction
}

// Summarize projects the requested fields and reduces each column with the
// given reduction. Columns with no valid rows reduce to NaN.
func Summarize(snap ledger.Snapshot, s *schema.Schema, r Reduction, fields ...string) (*VectorView, error) {
	m, err := Project(snap, s, fields...)
	if err != nil {
		return nil, err
	}

	_, cols := m.Dims()
	values := make([]float64, cols)
	for j := 0; j < cols; j++ {
		values[j] = reduce(r, m.Col(j))
	}

	return &VectorView{fields: m.Fields(), values: values, reduction: r}, nil
}

func reduce(r Reduction, xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}

	switch r {
	case Mean:
		return stat.Mean(xs, nil)
	case StdDev:
		return stat.StdDev(xs, nil)
	case Sum:
		return floats.Sum(xs)
	case Min:
		return floats.Min(xs)
	case Max:
		return floats.Max(xs)
	case First:
		return xs[0]
	case Last:
		return xs[len(xs)-1]
	default:
		return math.NaN()
	}
}

// Fields returns the field names in vector order.
func (v *VectorView) Fields() []string {
	out := make([]string, len(v.fields))
	copy(out, v.fields)
	return out
}

// Values returns a copy of the reduced values.
func (v *VectorView) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// At returns the reduced value for field position i.
func (v *VectorView) At(i int) float64 { return v.values[i] }

// Reduction returns the reduction this vector was computed with.
func (v *VectorView) Reduction() Reduction { return v.reduction }
