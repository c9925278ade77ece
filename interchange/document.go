// Package interchange serializes ledger snapshots to and from the durable
// XML interchange format.
//
// The document layout is hierarchical: the root element carries session
// metadata (schema, start timestamp), followed by one element per record in
// ledger order, each holding the record's sequence index, timestamp, and one
// sub-element per field value. Import is total-or-nothing: a corrupt
// document yields no partial ledger.
package interchange

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/record"
	"github.com/hupe1980/measgo/schema"
)

// formatVersion is the interchange document version this codec writes and
// accepts.
const formatVersion = 1

// timeLayout is the text encoding for all timestamps in the document.
const timeLayout = time.RFC3339Nano

// ErrCorruptDocument indicates an interchange document that cannot be
// imported: required elements are missing, field counts disagree with the
// declared schema, or a field declared numeric fails to parse.
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

// SessionMeta is the session metadata carried in the document root.
// Generation-time members (ID, Host, User) may differ across round-trips;
// Started and the schema must survive them.
type SessionMeta struct {
	ID      string
	Started time.Time
	Host    string
	User    string
}

// NewSessionMeta creates metadata for a fresh capture session.
func NewSessionMeta(started time.Time) SessionMeta {
	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}

	return SessionMeta{
		ID:      uuid.NewString(),
		Started: started,
		Host:    host,
		User:    user,
	}
}

// Wire representation. Field order inside <Record> follows the schema;
// sequence indices are informational on export and reconstructed from
// document order on import.

type xmlDocument struct {
	XMLName xml.Name    `xml:"MeasurementLog"`
	Version int         `xml:"version,attr"`
	Session xmlSession  `xml:"Session"`
	Records []xmlRecord `xml:"Records>Record"`
}

type xmlSession struct {
	ID         string     `xml:"id,attr"`
	Started    string     `xml:"started,attr"`
	Host       string     `xml:"host,attr,omitempty"`
	User       string     `xml:"user,attr,omitempty"`
	FieldCount int        `xml:"fieldCount,attr"`
	Fields     []xmlField `xml:"Schema>Field"`
}

type xmlField struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xmlRecord struct {
	Seq    uint64     `xml:"seq,attr"`
	Time   string     `xml:"ts,attr"`
	Values []xmlValue `xml:"F"`
}

type xmlValue struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Export serializes every record's fields and timestamp plus session
// metadata into the interchange format. The ledger snapshot is read-only;
// export failures leave ledger state untouched.
func Export(w io.Writer, snap ledger.Snapshot, s *schema.Schema, meta SessionMeta) error {
	if s == nil {
		return fmt.Errorf("interchange: schema is nil")
	}

	doc := xmlDocument{
		Version: formatVersion,
		Session: xmlSession{
			ID:         meta.ID,
			Started:    meta.Started.Format(timeLayout),
			Host:       meta.Host,
			User:       meta.User,
			FieldCount: s.Len(),
		},
	}

	for _, f := range s.Fields() {
		doc.Session.Fields = append(doc.Session.Fields, xmlField{Name: f.Name, Type: f.Type.String()})
	}

	doc.Records = make([]xmlRecord, 0, snap.Len())
	for i := 0; i < snap.Len(); i++ {
		rec := snap.At(i)
		xr := xmlRecord{
			Seq:    rec.Seq,
			Time:   rec.Time.Format(timeLayout),
			Values: make([]xmlValue, len(rec.Values)),
		}
		for j, v := range rec.Values {
			xr.Values[j] = xmlValue{Name: s.Field(j).Name, Value: v.Text()}
		}
		doc.Records = append(doc.Records, xr)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("interchange: write header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("interchange: encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("interchange: flush encoder: %w", err)
	}

	// Trailing newline keeps the file friendly to line-oriented tools.
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("interchange: write trailer: %w", err)
	}

	return nil
}

// Result is a fully reconstructed session: the declared schema, the ordered
// record sequence with indices rebuilt from document order, and the session
// metadata.
type Result struct {
	Schema  *schema.Schema
	Records []record.Record
	Meta    SessionMeta
}

// Snapshot returns the imported records as a ledger snapshot.
func (r *Result) Snapshot() ledger.Snapshot {
	return ledger.SnapshotOf(r.Records)
}

// Import parses an interchange document back into an ordered record
// sequence. All validation happens before anything is returned; a corrupt
// document yields no partial result.
func Import(r io.Reader) (*Result, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ErrCorruptDocument{Reason: "not a well-formed interchange document", cause: err}
	}

	if doc.Version != formatVersion {
		return nil, &ErrCorruptDocument{Reason: fmt.Sprintf("unsupported version %d", doc.Version)}
	}
	if len(doc.Session.Fields) == 0 {
		return nil, &ErrCorruptDocument{Reason: "missing schema"}
	}
	if doc.Session.FieldCount != len(doc.Session.Fields) {
		return nil, &ErrCorruptDocument{
			Reason: fmt.Sprintf("declared field count %d disagrees with schema length %d", doc.Session.FieldCount, len(doc.Session.Fields)),
		}
	}

	fields := make([]schema.Field, len(doc.Session.Fields))
	for i, xf := range doc.Session.Fields {
		ft, ok := schema.TypeByName(xf.Type)
		if !ok {
			return nil, &ErrCorruptDocument{Reason: fmt.Sprintf("field %q: unknown type %q", xf.Name, xf.Type)}
		}
		fields[i] = schema.Field{Name: xf.Name, Type: ft}
	}

	s, err := schema.New(fields...)
	if err != nil {
		return nil, &ErrCorruptDocument{Reason: "invalid schema", cause: err}
	}

	started, err := time.Parse(timeLayout, doc.Session.Started)
	if err != nil {
		return nil, &ErrCorruptDocument{Reason: "invalid session start timestamp", cause: err}
	}

	records := make([]record.Record, len(doc.Records))
	for i, xr := range doc.Records {
		if len(xr.Values) != s.Len() {
			return nil, &ErrCorruptDocument{
				Reason: fmt.Sprintf("record %d: field count %d disagrees with schema length %d", i, len(xr.Values), s.Len()),
			}
		}

		ts, err := time.Parse(timeLayout, xr.Time)
		if err != nil {
			return nil, &ErrCorruptDocument{Reason: fmt.Sprintf("record %d: invalid timestamp", i), cause: err}
		}

		values := make([]record.Value, s.Len())
		for j, xv := range xr.Values {
			f := s.Field(j)
			if xv.Name != "" && xv.Name != f.Name {
				return nil, &ErrCorruptDocument{
					Reason: fmt.Sprintf("record %d: field %d named %q, schema declares %q", i, j, xv.Name, f.Name),
				}
			}

			switch f.Type {
			case schema.TypeNumber:
				n, err := strconv.ParseFloat(xv.Value, 64)
				if err != nil {
					return nil, &ErrCorruptDocument{
						Reason: fmt.Sprintf("record %d: field %q: not a number: %q", i, f.Name, xv.Value),
						cause:  err,
					}
				}
				values[j] = record.Number(n)
			case schema.TypeString:
				values[j] = record.String(xv.Value)
			}
		}

		// Sequence indices come from document order, not the seq attribute.
		records[i] = record.Record{Seq: uint64(i), Time: ts, Values: values}
	}

	return &Result{
		Schema:  s,
		Records: records,
		Meta: SessionMeta{
			ID:      doc.Session.ID,
			Started: started,
			Host:    doc.Session.Host,
			User:    doc.Session.User,
		},
	}, nil
}
