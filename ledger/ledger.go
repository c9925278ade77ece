// Package ledger provides the append-only ordered log of admitted records.
//
// The ledger is the single owner of record data; views and codecs hold only
// read-only derivations computed from snapshots. Sequence indices are
// strictly increasing and contiguous, and no record is removed or mutated
// after admission.
//
// Concurrency model: one producer appends, any number of readers take
// snapshots. Append is atomic per record; a snapshot taken during an
// in-flight append observes either the fully appended record or none of it.
package ledger

import (
	"errors"
	"sync"

	"github.com/hupe1980/measgo/record"
)

// ErrLedgerFull is returned when a configured record limit is reached.
// Resource exhaustion is reported, never silently truncated.
var ErrLedgerFull = errors.New("ledger full")

// Options contains configuration for the ledger.
type Options struct {
	// MaxRecords caps the number of admitted records. 0 means unbounded.
	MaxRecords int
}

// DefaultOptions returns default ledger options.
var DefaultOptions = Options{
	MaxRecords: 0,
}

// Ledger is the append-only record store.
type Ledger struct {
	mu         sync.RWMutex
	records    []record.Record
	maxRecords int
}

// New creates an empty ledger.
func New(optFns ...func(o *Options)) *Ledger {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Ledger{maxRecords: opts.MaxRecords}
}

// Append assigns the next sequence index to rec and stores it. O(1)
// amortized. The returned sequence index equals Len()-1 at the time of the
// append.
func (l *Ledger) Append(rec record.Record) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxRecords > 0 && len(l.records) >= l.maxRecords {
		return 0, ErrLedgerFull
	}

	rec.Seq = uint64(len(l.records))
	l.records = append(l.records, rec)
	return rec.Seq, nil
}

// Len returns the current record count.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Snapshot returns an immutable ordered view of all records at the time of
// the call. The view is a consistent prefix: records admitted after the
// call are not visible, and no partially written record can appear.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Full-slice expression caps capacity so a later in-place append by the
	// producer cannot alias into the snapshot.
	return Snapshot{records: l.records[:len(l.records):len(l.records)]}
}

// Snapshot is a read-only, ordered view of ledger records. The zero value
// is an empty snapshot.
type Snapshot struct {
	records []record.Record
}

// SnapshotOf builds a snapshot directly from a record slice. Used by the
// interchange importer; sequence indices must already be contiguous.
func SnapshotOf(records []record.Record) Snapshot {
	return Snapshot{records: records[:len(records):len(records)]}
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int { return len(s.records) }

// At returns the record at position i.
func (s Snapshot) At(i int) record.Record { return s.records[i] }

// Records returns the underlying record slice. Callers must treat it as
// read-only.
func (s Snapshot) Records() []record.Record { return s.records }
