package measgo

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/measgo/archive"
	"github.com/hupe1980/measgo/filter"
	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/record"
)

type options struct {
	separator        string
	filter           *filter.Spec
	store            archive.Store
	metricsCollector MetricsCollector
	logger           *Logger
	ingestRate       rate.Limit
	ingestBurst      int
	bufferSize       int
	ledgerOptions    []func(*ledger.Options)
	clock            func() time.Time
}

// Option configures Engine constructor/load behavior.
type Option func(*options)

// WithSeparator configures the field separator for incoming text frames.
//
// If the empty string is passed, the default comma is kept.
func WithSeparator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.separator = sep
		}
	}
}

// WithFilter configures the filter stage applied to every parsed record
// before it reaches the ledger. Pass nil to admit everything.
func WithFilter(spec *filter.Spec) Option {
	return func(o *options) {
		o.filter = spec
	}
}

// WithArchive configures the artifact store used by SaveLog and SaveRaw.
//
// Example:
//
//	store, _ := archive.NewDirStore("./captures")
//	eng, _ := measgo.New(s, measgo.WithArchive(store))
func WithArchive(store archive.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithIngestRate bounds the sustained record admission rate during Run.
// burst is the number of frames that may be processed back to back.
// A zero limit disables rate limiting (the default).
func WithIngestRate(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.ingestRate = limit
		o.ingestBurst = burst
	}
}

// WithBufferSize configures the frame buffer between the reader and the
// processor during Run. Larger buffers absorb device bursts at the cost of
// memory.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithLedgerOptions forwards options to the underlying ledger.
//
// Example:
//
//	measgo.WithLedgerOptions(func(o *ledger.Options) {
//	    o.MaxRecords = 100_000
//	})
func WithLedgerOptions(optFns ...func(*ledger.Options)) Option {
	return func(o *options) {
		o.ledgerOptions = append(o.ledgerOptions, optFns...)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &measgo.BasicMetricsCollector{}
//	eng, _ := measgo.New(s, measgo.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Appends: %d, Avg latency: %dns\n", stats.AppendCount, stats.AppendAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := measgo.NewJSONLogger(slog.LevelInfo)
//	eng, _ := measgo.New(s, measgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// withClock overrides the record timestamp source. Test hook.
func withClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		separator:        record.DefaultParserOptions.Separator,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		bufferSize:       1000,
		clock:            time.Now,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
