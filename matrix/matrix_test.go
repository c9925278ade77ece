package matrix

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/record"
	"github.com/hupe1980/measgo/schema"
)

func testSnapshot(t *testing.T, s *schema.Schema, rows ...[]record.Value) ledger.Snapshot {
	t.Helper()

	l := ledger.New()
	for _, values := range rows {
		_, err := l.Append(record.Record{
			Time:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Values: values,
		})
		require.NoError(t, err)
	}
	return l.Snapshot()
}

func TestProject_NumericColumn(t *testing.T) {
	s := schema.MustParse("temp:number,status:string")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(23.5), record.String("ok")},
		[]record.Value{record.Number(24.1), record.String("warn")},
	)

	m, err := Project(snap, s, "temp")
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, []string{"temp"}, m.Fields())

	assert.Equal(t, 23.5, m.At(0, 0))
	assert.Equal(t, 24.1, m.At(1, 0))
	assert.Equal(t, uint64(2), m.ValidRows().GetCardinality())
}

func TestProject_DefaultsToAllNumericFields(t *testing.T) {
	s := schema.MustParse("temp:number,status:string,hum:number")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(23.5), record.String("ok"), record.Number(40)},
	)

	m, err := Project(snap, s)
	require.NoError(t, err)

	assert.Equal(t, []string{"temp", "hum"}, m.Fields())
	assert.Equal(t, 23.5, m.At(0, 0))
	assert.Equal(t, 40.0, m.At(0, 1))
}

func TestProject_Errors(t *testing.T) {
	s := schema.MustParse("temp:number,status:string")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(23.5), record.String("ok")},
	)

	_, err := Project(snap, s, "missing")
	var uf *ErrUnknownField
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, "missing", uf.Field)

	_, err = Project(snap, s, "status")
	var nn *ErrNonNumericField
	require.ErrorAs(t, err, &nn)
	assert.Equal(t, "status", nn.Field)
}

func TestProject_EmptySnapshot(t *testing.T) {
	s := schema.MustParse("temp:number")

	m, err := Project(ledger.New().Snapshot(), s, "temp")
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 1, cols)
	assert.Nil(t, m.Matrix())
	assert.Empty(t, m.Col(0))
}

func TestProject_InvalidRowsExcluded(t *testing.T) {
	s := schema.MustParse("temp:number")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(1)},
		[]record.Value{record.Number(math.NaN())},
		[]record.Value{record.Number(math.Inf(1))},
		[]record.Value{record.Number(4)},
	)

	m, err := Project(snap, s)
	require.NoError(t, err)

	rows, _ := m.Dims()
	assert.Equal(t, 4, rows) // rows stay in the matrix
	assert.Equal(t, uint64(2), m.ValidRows().GetCardinality())
	assert.Equal(t, []float64{1, 4}, m.Col(0))
}

func TestProject_Idempotent(t *testing.T) {
	s := schema.MustParse("temp:number,hum:number")
	snap := testSnapshot(t, s,
		[]record.Value{record.Number(23.5), record.Number(40)},
		[]record.Value{record.Number(24.1), record.Number(41)},
	)

	a, err := Project(snap, s)
	require.NoError(t, err)
	b, err := Project(snap, s)
	require.NoError(t, err)

	ar, ac := a.Dims()
	br, bc := b.Dims()
	require.Equal(t, ar, br)
	require.Equal(t, ac, bc)

	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			assert.Equal(t, a.At(i, j), b.At(i, j))
		}
	}
	assert.True(t, a.ValidRows().Equals(b.ValidRows()))
}
