package matrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/record"
	"github.com/hupe1980/measgo/schema"
)

func TestSummarize(t *testing.T) {
	s := schema.MustParse("temp:number")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(1)},
		[]record.Value{record.Number(2)},
		[]record.Value{record.Number(3)},
		[]record.Value{record.Number(6)},
	)

	tests := []struct {
		reduction Reduction
		want      float64
	}{
		{reduction: Mean, want: 3},
		{reduction: Sum, want: 12},
		{reduction: Min, want: 1},
		{reduction: Max, want: 6},
		{reduction: First, want: 1},
		{reduction: Last, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.reduction.String(), func(t *testing.T) {
			v, err := Summarize(snap, s, tt.reduction, "temp")
			require.NoError(t, err)

			require.Equal(t, []string{"temp"}, v.Fields())
			assert.Equal(t, tt.reduction, v.Reduction())
			assert.InDelta(t, tt.want, v.At(0), 1e-12)
		})
	}
}

func TestSummarize_StdDev(t *testing.T) {
	s := schema.MustParse("temp:number")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(2)},
		[]record.Value{record.Number(4)},
		[]record.Value{record.Number(4)},
		[]record.Value{record.Number(4)},
		[]record.Value{record.Number(5)},
		[]record.Value{record.Number(5)},
		[]record.Value{record.Number(7)},
		[]record.Value{record.Number(9)},
	)

	v, err := Summarize(snap, s, StdDev)
	require.NoError(t, err)

	// Sample standard deviation of the classic 8-value set.
	assert.InDelta(t, 2.138, v.At(0), 1e-3)
}

func TestSummarize_SkipsInvalidRows(t *testing.T) {
	s := schema.MustParse("temp:number")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(1)},
		[]record.Value{record.Number(math.NaN())},
		[]record.Value{record.Number(5)},
	)

	v, err := Summarize(snap, s, Mean)
	require.NoError(t, err)
	assert.InDelta(t, 3, v.At(0), 1e-12)
}

func TestSummarize_EmptySnapshot(t *testing.T) {
	s := schema.MustParse("temp:number")

	v, err := Summarize(ledger.New().Snapshot(), s, Mean)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.At(0)))
}

func TestSummarize_MultipleFields(t *testing.T) {
	s := schema.MustParse("temp:number,hum:number")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(1), record.Number(10)},
		[]record.Value{record.Number(3), record.Number(30)},
	)

	v, err := Summarize(snap, s, Mean)
	require.NoError(t, err)

	assert.Equal(t, []string{"temp", "hum"}, v.Fields())
	assert.Equal(t, []float64{2, 20}, v.Values())
}

func TestReductionByName(t *testing.T) {
	for _, r := range []Reduction{Mean, StdDev, Sum, Min, Max, First, Last} {
		got, ok := ReductionByName(r.String())
		require.True(t, ok)
		assert.Equal(t, r, got)
	}

	_, ok := ReductionByName("median")
	assert.False(t, ok)
}
