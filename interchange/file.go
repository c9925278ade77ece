package interchange

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/measgo/ledger"
	"github.com/hupe1980/measgo/schema"
)

// ExportFile writes a snapshot to path atomically: the document is written
// to a temporary file in the same directory and renamed into place, so an
// abandoned export never leaves a partial interchange file. Compression is
// inferred from the path suffix.
func ExportFile(path string, snap ledger.Snapshot, s *schema.Schema, meta SessionMeta) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("interchange: create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".measgo-export-*")
	if err != nil {
		return fmt.Errorf("interchange: create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw, err := newCompressedWriter(tmp, CompressionForPath(path))
	if err != nil {
		return err
	}

	if err = Export(cw, snap, s, meta); err != nil {
		return err
	}
	if err = cw.Close(); err != nil {
		return fmt.Errorf("interchange: flush compressor: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("interchange: sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("interchange: close temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("interchange: finalize export: %w", err)
	}

	return nil
}

// ImportFile reads an interchange document from path, decompressing
// according to the path suffix.
func ImportFile(path string) (*Result, error) {
	f, err := os.Open(path) //nolint:gosec // G304: Path is user supplied by design
	if err != nil {
		return nil, fmt.Errorf("interchange: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cr, err := newCompressedReader(f, CompressionForPath(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cr.Close() }()

	return Import(cr)
}
