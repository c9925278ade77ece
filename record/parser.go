package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/measgo/schema"
)

// ErrMalformedFrame indicates a raw frame that cannot be parsed against the
// session schema. Malformed frames are reported to the caller and dropped;
// they never halt ingestion.
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

// ParserOptions contains configuration for the frame parser.
type ParserOptions struct {
	// Separator splits a text frame into field tokens.
	Separator string

	// Clock supplies capture timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultParserOptions returns default parser options.
var DefaultParserOptions = ParserOptions{
	Separator: ",",
}

// Parser turns one raw frame into a Record against a fixed schema.
// Parse is a pure function of (frame, schema, clock); the parser holds no
// mutable state and is safe for concurrent use.
type Parser struct {
	schema *schema.Schema
	sep    string
	clock  func() time.Time
}

// NewParser creates a frame parser for the given schema.
func NewParser(s *schema.Schema, optFns ...func(o *ParserOptions)) (*Parser, error) {
	if s == nil {
		return nil, fmt.Errorf("parser: schema is nil")
	}

	opts := DefaultParserOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Separator == "" {
		opts.Separator = DefaultParserOptions.Separator
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Parser{
		schema: s,
		sep:    opts.Separator,
		clock:  opts.Clock,
	}, nil
}

// Schema returns the schema the parser validates against.
func (p *Parser) Schema() *schema.Schema { return p.schema }

// Parse converts one raw frame into a Record.
//
// The frame is split on the configured separator; the token count must match
// the schema's field count, and every number-typed field must parse as a
// float64. The returned record carries no sequence index; the ledger assigns
// it on admission.
func (p *Parser) Parse(frame []byte) (Record, error) {
	line := strings.TrimRight(string(frame), "\r\n")
	if line == "" {
		return Record{}, &ErrMalformedFrame{Reason: "empty frame", Frame: line}
	}

	tokens := strings.Split(line, p.sep)
	if len(tokens) != p.schema.Len() {
		return Record{}, &ErrMalformedFrame{
			Reason: fmt.Sprintf("field count mismatch: expected %d, got %d", p.schema.Len(), len(tokens)),
			Frame:  line,
		}
	}

	values := make([]Value, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		f := p.schema.Field(i)

		switch f.Type {
		case schema.TypeNumber:
			n, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return Record{}, &ErrMalformedFrame{
					Reason: fmt.Sprintf("field %q: not a number: %q", f.Name, tok),
					Frame:  line,
					cause:  err,
				}
			}
			values[i] = Number(n)
		case schema.TypeString:
			values[i] = String(tok)
		}
	}

	return Record{Time: p.clock(), Values: values}, nil
}
