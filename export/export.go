// Package export renders ledger snapshots as delimited text for external
// tools.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/schema"
)

// Table is a snapshot rendered to text: a header row of field names and one
// row of cell strings per record, in ledger order.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable renders every record of snap against the session schema. Numeric
// cells use the shortest representation that round-trips through a float64.
func NewTable(snap ledger.Snapshot, s *schema.Schema) (*Table, error) {
	if s == nil {
		return nil, fmt.Errorf("export: schema is nil")
	}

	t := &Table{
		Header: s.Names(),
		Rows:   make([][]string, 0, snap.Len()),
	}

	for i := 0; i < snap.Len(); i++ {
		rec := snap.At(i)
		row := make([]string, len(rec.Values))
		for j, v := range rec.Values {
			row[j] = v.Text()
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// WriteText writes the snapshot as separator-delimited lines: a header line
// of field names followed by one line per record, each terminated by a
// newline.
func WriteText(w io.Writer, snap ledger.Snapshot, s *schema.Schema, sep string) error {
	t, err := NewTable(snap, s)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, strings.Join(t.Header, sep)); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, sep)); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}

	return nil
}
