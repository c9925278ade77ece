package measgo

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/measgo/archive"
	"github.com/hupe1980/measgo/filter"
	"github.com/hupe1980/measgo/interchange"
	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/link"
	"github.com/hupe1980/measgo/matrix"
	"github.com/hupe1980/measgo/schema"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEngine(t *testing.T, optFns ...Option) *Engine {
	t.Helper()

	s := schema.MustParse("temp:number,status:string")
	opts := append([]Option{withClock(func() time.Time { return testStart })}, optFns...)

	eng, err := New(s, opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_Ingest(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	admitted, err := eng.Ingest(ctx, []byte("23.5,ok"))
	require.NoError(t, err)
	assert.True(t, admitted)

	admitted, err = eng.Ingest(ctx, []byte("24.1,warn"))
	require.NoError(t, err)
	assert.True(t, admitted)

	require.Equal(t, 2, eng.Len())

	snap := eng.Snapshot()
	assert.Equal(t, uint64(0), snap.At(0).Seq)
	assert.Equal(t, 23.5, snap.At(0).Values[0].Num)
	assert.Equal(t, "warn", snap.At(1).Values[1].Str)
}

func TestEngine_Ingest_Malformed(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	admitted, err := eng.Ingest(ctx, []byte("not-a-number,ok"))
	assert.False(t, admitted)

	var mf *ErrMalformedFrame
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "not-a-number,ok", mf.Frame)

	// Malformed frames are counted but never stored.
	assert.Equal(t, 0, eng.Len())
	assert.Equal(t, Stats{Malformed: 1}, eng.Stats())
}

func TestEngine_Ingest_FilterRejection(t *testing.T) {
	ctx := context.Background()

	spec, err := filter.New(schema.MustParse("temp:number,status:string"),
		filter.Rule{Field: "temp", Predicate: filter.Max(100)},
	)
	require.NoError(t, err)

	eng := testEngine(t, WithFilter(spec))

	admitted, err := eng.Ingest(ctx, []byte("23.5,ok"))
	require.NoError(t, err)
	assert.True(t, admitted)

	// Rejection is a counted outcome, not an error.
	admitted, err = eng.Ingest(ctx, []byte("130,ok"))
	require.NoError(t, err)
	assert.False(t, admitted)

	// Rejected records never reach a snapshot.
	snap := eng.Snapshot()
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, 23.5, snap.At(0).Values[0].Num)

	assert.Equal(t, Stats{Admitted: 1, Rejected: 1}, eng.Stats())
	assert.Equal(t, uint64(1), eng.Rejections())
}

func TestEngine_Ingest_LedgerFull(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t, WithLedgerOptions(func(o *ledger.Options) {
		o.MaxRecords = 1
	}))

	_, err := eng.Ingest(ctx, []byte("23.5,ok"))
	require.NoError(t, err)

	_, err = eng.Ingest(ctx, []byte("24.1,ok"))
	require.ErrorIs(t, err, ErrLedgerFull)
}

func TestEngine_Run(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	stream := "23.5,ok\ngarbage\n24.1,warn\n\n25.0,ok\n"
	src, err := link.NewReplaySource(strings.NewReader(stream))
	require.NoError(t, err)

	require.NoError(t, eng.Run(ctx, src))

	assert.Equal(t, Stats{Admitted: 3, Malformed: 1}, eng.Stats())
	assert.Equal(t, 3, eng.Len())
}

func TestEngine_Run_MarkerChecksumCountedAsMalformed(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	good := link.EncodeFrame([]byte("23.5,ok"))
	corrupt := make([]byte, len(good))
	copy(corrupt, good)
	corrupt[5] ^= 0xff

	var stream bytes.Buffer
	stream.Write(corrupt)
	stream.Write(link.EncodeFrame([]byte("24.1,warn")))

	src, err := link.NewReplaySource(&stream, func(o *link.ReplaySourceOptions) {
		o.Framing = link.FramingMarker
	})
	require.NoError(t, err)

	require.NoError(t, eng.Run(ctx, src))

	assert.Equal(t, Stats{Admitted: 1, Malformed: 1}, eng.Stats())
}

func TestEngine_Run_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := testEngine(t)
	src, err := link.NewReplaySource(strings.NewReader("23.5,ok\n"))
	require.NoError(t, err)

	err = eng.Run(ctx, src)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Project(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	for _, frame := range []string{"23.5,ok", "24.1,warn"} {
		_, err := eng.Ingest(ctx, []byte(frame))
		require.NoError(t, err)
	}

	m, err := eng.Project("temp")
	require.NoError(t, err)

	rows, cols := m.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 1, cols)
	assert.Equal(t, 23.5, m.At(0, 0))
	assert.Equal(t, 24.1, m.At(1, 0))
}

func TestEngine_Project_ErrorTranslation(t *testing.T) {
	eng := testEngine(t)

	_, err := eng.Project("missing")
	var uf *ErrUnknownField
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, "missing", uf.Field)

	_, err = eng.Project("status")
	var nn *ErrNonNumericField
	require.ErrorAs(t, err, &nn)
	assert.Equal(t, "status", nn.Field)
}

func TestEngine_Summarize(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	for _, frame := range []string{"2,ok", "4,ok"} {
		_, err := eng.Ingest(ctx, []byte(frame))
		require.NoError(t, err)
	}

	v, err := eng.Summarize(matrix.Mean, "temp")
	require.NoError(t, err)
	assert.InDelta(t, 3, v.At(0), 1e-12)
}

func TestEngine_WriteText(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	for _, frame := range []string{"23.5,ok", "24.1,warn"} {
		_, err := eng.Ingest(ctx, []byte(frame))
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, eng.WriteText(&buf, ","))
	assert.Equal(t, "temp,status\n23.5,ok\n24.1,warn\n", buf.String())
}

func TestEngine_ExportFileLoadFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	for _, frame := range []string{"23.5,ok", "24.1,warn"} {
		_, err := eng.Ingest(ctx, []byte(frame))
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "session.xml.zst")
	require.NoError(t, eng.ExportFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, eng.Schema().Equal(loaded.Schema()))
	assert.Equal(t, eng.Meta().ID, loaded.Meta().ID)
	require.Equal(t, eng.Len(), loaded.Len())

	a, b := eng.Snapshot(), loaded.Snapshot()
	for i := 0; i < a.Len(); i++ {
		assert.True(t, a.At(i).Equal(b.At(i)), "record %d", i)
	}
}

func TestLoadFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xml")
	require.NoError(t, os.WriteFile(path, []byte("not an interchange document"), 0600))

	eng, err := LoadFile(path)
	assert.Nil(t, eng)

	var cd *ErrCorruptDocument
	require.ErrorAs(t, err, &cd)
}

func TestEngine_SaveLog(t *testing.T) {
	ctx := context.Background()
	store := archive.NewMemStore()
	eng := testEngine(t, WithArchive(store))

	for _, frame := range []string{"23.5,ok", "24.1,warn"} {
		_, err := eng.Ingest(ctx, []byte(frame))
		require.NoError(t, err)
	}

	name, err := eng.SaveLog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "log-20260301-120000.txt", name)

	// The archived artifact is the flat text export.
	data, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "temp,status\n23.5,ok\n24.1,warn\n", string(data))
}

func TestEngine_SaveRaw(t *testing.T) {
	ctx := context.Background()
	store := archive.NewMemStore()
	eng := testEngine(t, WithArchive(store))

	_, err := eng.Ingest(ctx, []byte("23.5,ok"))
	require.NoError(t, err)

	name, err := eng.SaveRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, "raw-20260301-120000.xml", name)

	// The archived artifact is a complete interchange document.
	data, err := store.Get(ctx, name)
	require.NoError(t, err)

	res, err := interchange.Import(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 23.5, res.Records[0].Values[0].Num)
	assert.Equal(t, eng.Meta().ID, res.Meta.ID)
}

func TestEngine_SaveWithoutArchive(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t)

	_, err := eng.SaveLog(ctx)
	require.ErrorIs(t, err, ErrNoArchive)

	_, err = eng.SaveRaw(ctx)
	require.ErrorIs(t, err, ErrNoArchive)
}

func TestEngine_Separator(t *testing.T) {
	ctx := context.Background()
	eng := testEngine(t, WithSeparator(";"))

	admitted, err := eng.Ingest(ctx, []byte("23.5;ok"))
	require.NoError(t, err)
	assert.True(t, admitted)
}

func TestNew_NilSchema(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestEngine_MetricsCollector(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	eng := testEngine(t, WithMetricsCollector(metrics))

	_, err := eng.Ingest(ctx, []byte("23.5,ok"))
	require.NoError(t, err)
	_, err = eng.Ingest(ctx, []byte("garbage"))
	require.Error(t, err)

	_, err = eng.Project()
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.AppendCount)
	assert.Equal(t, int64(1), stats.MalformedCount)
	assert.Equal(t, int64(1), stats.ProjectCount)
	assert.Equal(t, int64(1), stats.ProjectRows)
}
