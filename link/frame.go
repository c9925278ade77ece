package link

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Marker framing layout: start marker, payload, end marker, then the
// payload's CRC-32 (IEEE) as a little-endian uint32.
var (
	frameStart = []byte{0x04, 0x03, 0x02, 0x01}
	frameEnd   = []byte{0x08, 0x07, 0x06, 0x05}
)

// EncodeFrame wraps a payload in marker framing with a CRC-32 trailer.
func EncodeFrame(payload []byte) []byte {
	out := make([]byte, 0, len(frameStart)+len(payload)+len(frameEnd)+4)
	out = append(out, frameStart...)
	out = append(out, payload...)
	out = append(out, frameEnd...)
	out = binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(payload))
	return out
}

// lineDecoder yields one frame per non-empty line.
type lineDecoder struct {
	sc *bufio.Scanner
}

func newLineDecoder(r io.Reader) *lineDecoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	return &lineDecoder{sc: sc}
}

func (d *lineDecoder) ReadFrame() ([]byte, error) {
	for d.sc.Scan() {
		line := bytes.TrimRight(d.sc.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		out := make([]byte, len(line))
		copy(out, line)
		return out, nil
	}
	if err := d.sc.Err(); err != nil {
		return nil, fmt.Errorf("link: read line: %w", err)
	}
	return nil, io.EOF
}

// markerDecoder yields marker-delimited frames, verifying the CRC-32
// trailer. Bytes before a start marker are discarded, so the decoder
// resynchronizes after noise or a partial frame.
type markerDecoder struct {
	r *bufio.Reader
}

func newMarkerDecoder(r io.Reader) *markerDecoder {
	return &markerDecoder{r: bufio.NewReader(r)}
}

func (d *markerDecoder) ReadFrame() ([]byte, error) {
	if err := d.seek(frameStart); err != nil {
		return nil, err
	}

	payload, err := d.until(frameEnd)
	if err != nil {
		return nil, err
	}

	var trailer [4]byte
	if _, err := io.ReadFull(d.r, trailer[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("link: read checksum: %w", err)
	}

	want := binary.LittleEndian.Uint32(trailer[:])
	if got := crc32.ChecksumIEEE(payload); got != want {
		return nil, &ErrChecksum{Want: want, Got: got}
	}

	return payload, nil
}

// seek discards bytes until the marker has been consumed.
func (d *markerDecoder) seek(marker []byte) error {
	matched := 0
	for matched < len(marker) {
		b, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return io.EOF
			}
			return fmt.Errorf("link: read frame: %w", err)
		}
		switch {
		case b == marker[matched]:
			matched++
		case b == marker[0]:
			matched = 1
		default:
			matched = 0
		}
	}
	return nil
}

// until collects bytes up to (but not including) the marker, consuming it.
func (d *markerDecoder) until(marker []byte) ([]byte, error) {
	var buf []byte
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("link: read frame: %w", err)
		}
		buf = append(buf, b)
		if bytes.HasSuffix(buf, marker) {
			return buf[:len(buf)-len(marker)], nil
		}
	}
}

type frameDecoder interface {
	ReadFrame() ([]byte, error)
}

func newDecoder(r io.Reader, f Framing) (frameDecoder, error) {
	switch f {
	case FramingLine:
		return newLineDecoder(r), nil
	case FramingMarker:
		return newMarkerDecoder(r), nil
	default:
		return nil, fmt.Errorf("link: unknown framing %q", f)
	}
}
