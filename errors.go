package measgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/measgo/interchange"
	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/link"
	"github.com/hupe1980/measgo/matrix"
	"github.com/hupe1980/measgo/record"
)

var (
	// ErrLedgerFull is returned when the ledger's record capacity is reached.
	ErrLedgerFull = errors.New("ledger full")

	// ErrNoArchive is returned when an archive operation is requested but no
	// archive store was configured.
	ErrNoArchive = errors.New("no archive store configured")
)

// ErrMalformedFrame indicates an incoming frame that could not be parsed
// against the session schema.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrMalformedFrame struct {
	Reason string
	Frame  string
	cause  error
}

func (e *ErrMalformedFrame) Error() string {
	return fmt.Sprintf("malformed frame: %s", e.Reason)
}

func (e *ErrMalformedFrame) Unwrap() error { return e.cause }

// ErrCorruptDocument indicates an interchange document that could not be
// imported.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrCorruptDocument struct {
	Reason string
	cause  error
}

func (e *ErrCorruptDocument) Error() string {
	return fmt.Sprintf("corrupt document: %s", e.Reason)
}

func (e *ErrCorruptDocument) Unwrap() error { return e.cause }

// ErrNonNumericField indicates a projection that named a string-typed field.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrNonNumericField struct {
	Field string
	cause error
}

func (e *ErrNonNumericField) Error() string {
	return fmt.Sprintf("non-numeric field: %q", e.Field)
}

func (e *ErrNonNumericField) Unwrap() error { return e.cause }

// ErrUnknownField indicates a projection that named a field absent from the
// session schema.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnknownField struct {
	Field string
	cause error
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown field: %q", e.Field)
}

func (e *ErrUnknownField) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Capacity unification.
	if errors.Is(err, ledger.ErrLedgerFull) {
		return fmt.Errorf("%w: %w", ErrLedgerFull, err)
	}

	// Frame-level failures: parse errors and checksum mismatches both mean
	// the frame is lost.
	var mf *record.ErrMalformedFrame
	if errors.As(err, &mf) {
		return &ErrMalformedFrame{Reason: mf.Reason, Frame: mf.Frame, cause: err}
	}
	var cs *link.ErrChecksum
	if errors.As(err, &cs) {
		return &ErrMalformedFrame{Reason: "frame checksum mismatch", cause: err}
	}

	// Interchange normalization.
	var cd *interchange.ErrCorruptDocument
	if errors.As(err, &cd) {
		return &ErrCorruptDocument{Reason: cd.Reason, cause: err}
	}

	// Projection normalization.
	var nn *matrix.ErrNonNumericField
	if errors.As(err, &nn) {
		return &ErrNonNumericField{Field: nn.Field, cause: err}
	}
	var uf *matrix.ErrUnknownField
	if errors.As(err, &uf) {
		return &ErrUnknownField{Field: uf.Field, cause: err}
	}

	return err
}
