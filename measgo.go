package measgo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/measgo/archive"
	"github.com/hupe1980/measgo/export"
	"github.com/hupe1980/measgo/filter"
	"github.com/hupe1980/measgo/interchange"
	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/link"
	"github.com/hupe1980/measgo/matrix"
	"github.com/hupe1980/measgo/record"
	"github.com/hupe1980/measgo/schema"
)

// archiveNameLayout is the timestamp embedded in archived artifact names.
const archiveNameLayout = "20060102-150405"

// Stats summarizes frame outcomes since the engine was created.
type Stats struct {
	// Admitted is the number of records appended to the ledger.
	Admitted uint64
	// Rejected is the number of records dropped by the filter stage.
	Rejected uint64
	// Malformed is the number of frames that failed to parse or failed
	// their checksum.
	Malformed uint64
}

// Engine ties the capture pipeline together: frames from a link source are
// parsed against the session schema, filtered, and appended to the ledger;
// snapshots of the ledger feed projections, text export, and the XML
// interchange codec.
type Engine struct {
	schema  *schema.Schema
	parser  *record.Parser
	filter  *filter.Spec
	ledger  *ledger.Ledger
	store   archive.Store
	meta    interchange.SessionMeta
	logger  *Logger
	metrics MetricsCollector
	limiter *rate.Limiter

	bufferSize int
	separator  string
	clock      func() time.Time

	admitted  atomic.Uint64
	rejected  atomic.Uint64
	malformed atomic.Uint64
}

// New creates an Engine for a fresh capture session against the given
// schema.
func New(s *schema.Schema, optFns ...Option) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("schema is nil")
	}

	o := applyOptions(optFns)

	parser, err := record.NewParser(s, func(po *record.ParserOptions) {
		po.Separator = o.separator
		po.Clock = o.clock
	})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		schema:     s,
		parser:     parser,
		filter:     o.filter,
		ledger:     ledger.New(o.ledgerOptions...),
		store:      o.store,
		meta:       interchange.NewSessionMeta(o.clock()),
		metrics:    o.metricsCollector,
		bufferSize: o.bufferSize,
		separator:  o.separator,
		clock:      o.clock,
	}
	e.logger = o.logger.WithSession(e.meta.ID)

	if o.ingestRate > 0 {
		burst := o.ingestBurst
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(o.ingestRate, burst)
	}

	return e, nil
}

// LoadFile reconstructs an Engine from an interchange document. The imported
// records keep their timestamps; sequence indices are rebuilt from document
// order.
func LoadFile(path string, optFns ...Option) (*Engine, error) {
	start := time.Now()

	res, err := interchange.ImportFile(path)
	if err != nil {
		terr := translateError(err)
		o := applyOptions(optFns)
		o.metricsCollector.RecordImport(0, time.Since(start), terr)
		o.logger.LogImport(context.Background(), path, 0, terr)
		return nil, terr
	}

	e, err := New(res.Schema, optFns...)
	if err != nil {
		return nil, err
	}

	for _, rec := range res.Records {
		if _, err := e.ledger.Append(rec); err != nil {
			return nil, translateError(err)
		}
	}
	e.admitted.Store(uint64(len(res.Records)))
	e.meta = res.Meta
	e.logger = e.logger.WithSession(e.meta.ID)

	e.metrics.RecordImport(len(res.Records), time.Since(start), nil)
	e.logger.LogImport(context.Background(), path, len(res.Records), nil)

	return e, nil
}

// Schema returns the session schema.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// Meta returns the session metadata.
func (e *Engine) Meta() interchange.SessionMeta { return e.meta }

// Len returns the number of admitted records.
func (e *Engine) Len() int { return e.ledger.Len() }

// Snapshot returns an immutable view of the ledger at this instant.
func (e *Engine) Snapshot() ledger.Snapshot { return e.ledger.Snapshot() }

// Stats returns frame outcome counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Admitted:  e.admitted.Load(),
		Rejected:  e.rejected.Load(),
		Malformed: e.malformed.Load(),
	}
}

// Ingest processes one raw frame through parse, filter, and append. It
// reports whether the record was admitted. A malformed frame returns an
// ErrMalformedFrame; a filter rejection returns (false, nil).
func (e *Engine) Ingest(ctx context.Context, frame []byte) (bool, error) {
	start := time.Now()

	rec, err := e.parser.Parse(frame)
	if err != nil {
		e.malformed.Add(1)
		e.metrics.RecordMalformed()
		terr := translateError(err)
		e.logger.LogMalformed(ctx, string(frame), terr)
		return false, terr
	}

	if e.filter != nil {
		out, ok := e.filter.Apply(rec)
		if !ok {
			e.rejected.Add(1)
			e.metrics.RecordReject()
			e.logger.LogReject(ctx)
			return false, nil
		}
		rec = out
	}

	seq, err := e.ledger.Append(rec)
	e.metrics.RecordAppend(time.Since(start), err)
	e.logger.LogAppend(ctx, seq, err)
	if err != nil {
		return false, translateError(err)
	}

	e.admitted.Add(1)
	return true, nil
}

// Run drains the source until EOF or context cancellation. A reader
// goroutine pulls frames from the source while the processor parses,
// filters, and appends them, so a slow append never stalls the device read.
// Malformed frames and checksum failures are counted and skipped; any other
// error stops the run.
func (e *Engine) Run(ctx context.Context, src link.Source) error {
	g, ctx := errgroup.WithContext(ctx)
	frames := make(chan []byte, e.bufferSize)

	g.Go(func() error {
		defer close(frames)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			frame, err := src.ReadFrame()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				var cs *link.ErrChecksum
				if errors.As(err, &cs) {
					e.malformed.Add(1)
					e.metrics.RecordMalformed()
					e.logger.LogMalformed(ctx, "", translateError(err))
					continue
				}
				return err
			}

			select {
			case frames <- frame:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		for frame := range frames {
			if err := ctx.Err(); err != nil {
				return err
			}

			if e.limiter != nil {
				if err := e.limiter.Wait(ctx); err != nil {
					return err
				}
			}

			if _, err := e.Ingest(ctx, frame); err != nil {
				var mf *ErrMalformedFrame
				if errors.As(err, &mf) {
					continue
				}
				return err
			}
		}
		return nil
	})

	err := g.Wait()
	e.logger.LogRun(ctx, e.Stats(), err)
	return err
}

// Project builds a 2-D numeric view of the current snapshot restricted to
// the requested fields. An empty field list projects all number-typed
// fields in schema order.
func (e *Engine) Project(fields ...string) (*matrix.MatrixView, error) {
	start := time.Now()

	m, err := matrix.Project(e.ledger.Snapshot(), e.schema, fields...)

	rows := 0
	if err == nil {
		rows, _ = m.Dims()
	}
	e.metrics.RecordProject(rows, time.Since(start), err)
	e.logger.LogProject(context.Background(), fields, rows, err)

	if err != nil {
		return nil, translateError(err)
	}
	return m, nil
}

// Summarize reduces each projected field to a single value.
func (e *Engine) Summarize(r matrix.Reduction, fields ...string) (*matrix.VectorView, error) {
	start := time.Now()

	v, err := matrix.Summarize(e.ledger.Snapshot(), e.schema, r, fields...)

	rows := 0
	if err == nil {
		rows = len(v.Fields())
	}
	e.metrics.RecordProject(rows, time.Since(start), err)
	e.logger.LogProject(context.Background(), fields, rows, err)

	if err != nil {
		return nil, translateError(err)
	}
	return v, nil
}

// Table renders the current snapshot as header and rows of cell strings.
func (e *Engine) Table() (*export.Table, error) {
	return export.NewTable(e.ledger.Snapshot(), e.schema)
}

// WriteText writes the current snapshot as separator-delimited text lines.
func (e *Engine) WriteText(w io.Writer, sep string) error {
	return export.WriteText(w, e.ledger.Snapshot(), e.schema, sep)
}

// ExportTo writes the current snapshot as an interchange document.
func (e *Engine) ExportTo(w io.Writer) error {
	start := time.Now()
	snap := e.ledger.Snapshot()

	err := interchange.Export(w, snap, e.schema, e.meta)
	e.metrics.RecordExport(snap.Len(), time.Since(start), err)
	e.logger.LogExport(context.Background(), "", snap.Len(), err)

	return err
}

// ExportFile writes the current snapshot to path atomically, compressing
// according to the path suffix (.zst, .lz4).
func (e *Engine) ExportFile(path string) error {
	start := time.Now()
	snap := e.ledger.Snapshot()

	err := interchange.ExportFile(path, snap, e.schema, e.meta)
	e.metrics.RecordExport(snap.Len(), time.Since(start), err)
	e.logger.LogExport(context.Background(), path, snap.Len(), err)

	return err
}

// SaveLog archives the current snapshot as a flat text log under a
// timestamped name and returns that name.
func (e *Engine) SaveLog(ctx context.Context) (string, error) {
	if e.store == nil {
		return "", ErrNoArchive
	}

	snap := e.ledger.Snapshot()
	name := "log-" + e.clock().UTC().Format(archiveNameLayout) + ".txt"

	var buf bytes.Buffer
	err := export.WriteText(&buf, snap, e.schema, e.separator)
	if err == nil {
		err = e.store.Put(ctx, name, buf.Bytes())
	}

	e.logger.LogExport(ctx, name, snap.Len(), err)

	if err != nil {
		return "", err
	}
	return name, nil
}

// SaveRaw archives the current snapshot as a full interchange document
// under a timestamped name and returns that name.
func (e *Engine) SaveRaw(ctx context.Context) (string, error) {
	if e.store == nil {
		return "", ErrNoArchive
	}

	start := time.Now()
	snap := e.ledger.Snapshot()
	name := "raw-" + e.clock().UTC().Format(archiveNameLayout) + ".xml"

	var buf bytes.Buffer
	err := interchange.Export(&buf, snap, e.schema, e.meta)
	if err == nil {
		err = e.store.Put(ctx, name, buf.Bytes())
	}

	e.metrics.RecordExport(snap.Len(), time.Since(start), err)
	e.logger.LogExport(ctx, name, snap.Len(), err)

	if err != nil {
		return "", err
	}
	return name, nil
}

// Rejections exposes the filter stage rejection counter.
func (e *Engine) Rejections() uint64 {
	if e.filter == nil {
		return 0
	}
	return e.filter.Rejections()
}
