// Package link reads measurement frames from an upstream device or a
// recorded stream.
//
// A Source yields one raw frame per call. Two framings are supported: line
// framing, where each newline-terminated line is a frame, and marker
// framing, where frames are delimited by fixed byte markers and carry a
// CRC-32 trailer. Checksum failures surface as ErrChecksum so callers can
// count the frame as malformed and keep reading.
package link

import (
	"fmt"
	"io"
)

// Source yields raw measurement frames in arrival order.
type Source interface {
	// ReadFrame returns the next frame payload. It returns io.EOF when the
	// stream is exhausted.
	ReadFrame() ([]byte, error)
	io.Closer
}

// Framing selects how the raw byte stream is split into frames.
type Framing uint8

const (
	// FramingLine treats each newline-terminated line as a frame.
	FramingLine Framing = iota
	// FramingMarker expects marker-delimited frames with a CRC-32 trailer.
	FramingMarker
)

// String returns the stable textual name of the framing.
func (f Framing) String() string {
	switch f {
	case FramingLine:
		return "line"
	case FramingMarker:
		return "marker"
	default:
		return fmt.Sprintf("framing(%d)", uint8(f))
	}
}

// FramingByName returns a Framing by its stable name.
func FramingByName(name string) (Framing, bool) {
	switch name {
	case "line":
		return FramingLine, true
	case "marker":
		return FramingMarker, true
	default:
		return 0, false
	}
}

// ErrChecksum indicates a marker frame whose CRC-32 trailer does not match
// its payload. The frame is lost but the stream stays readable.
type ErrChecksum struct {
	Want uint32
	Got  uint32
}

func (e *ErrChecksum) Error() string {
	return fmt.Sprintf("frame checksum mismatch: want %08x, got %08x", e.Want, e.Got)
}
