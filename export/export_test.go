package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/record"
	"github.com/hupe1980/measgo/schema"
)

func testSnapshot(t *testing.T) (ledger.Snapshot, *schema.Schema) {
	t.Helper()

	s := schema.MustParse("temp:number,status:string")
	l := ledger.New()

	for _, row := range []struct {
		temp   float64
		status string
	}{
		{temp: 23.5, status: "ok"},
		{temp: 24.1, status: "warn"},
	} {
		_, err := l.Append(record.Record{
			Time:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Values: []record.Value{record.Number(row.temp), record.String(row.status)},
		})
		require.NoError(t, err)
	}
	return l.Snapshot(), s
}

func TestWriteText(t *testing.T) {
	snap, s := testSnapshot(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, snap, s, ","))

	assert.Equal(t, "temp,status\n23.5,ok\n24.1,warn\n", buf.String())
}

func TestWriteText_CustomSeparator(t *testing.T) {
	snap, s := testSnapshot(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, snap, s, "\t"))

	assert.Equal(t, "temp\tstatus\n23.5\tok\n24.1\twarn\n", buf.String())
}

func TestWriteText_EmptySnapshot(t *testing.T) {
	s := schema.MustParse("temp:number,status:string")

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, ledger.New().Snapshot(), s, ","))

	// Header only.
	assert.Equal(t, "temp,status\n", buf.String())
}

func TestNewTable(t *testing.T) {
	snap, s := testSnapshot(t)

	table, err := NewTable(snap, s)
	require.NoError(t, err)

	assert.Equal(t, []string{"temp", "status"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"23.5", "ok"}, table.Rows[0])
	assert.Equal(t, []string{"24.1", "warn"}, table.Rows[1])
}

func TestNewTable_NilSchema(t *testing.T) {
	snap, _ := testSnapshot(t)

	_, err := NewTable(snap, nil)
	require.Error(t, err)
}
