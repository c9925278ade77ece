package link

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// SerialSource reads frames from a serial measurement device.
type SerialSource struct {
	dec  frameDecoder
	port *serial.Port
}

// SerialSourceOptions configure a SerialSource.
type SerialSourceOptions struct {
	// Baud is the line rate of the device.
	Baud int

	// ReadTimeout bounds a single read from the port. Zero blocks forever.
	ReadTimeout time.Duration

	// Framing selects how the byte stream is split into frames.
	Framing Framing
}

// DefaultSerialSourceOptions are the recommended defaults.
var DefaultSerialSourceOptions = SerialSourceOptions{
	Baud:    115200,
	Framing: FramingLine,
}

// NewSerialSource opens the serial port at name and reads frames from it.
func NewSerialSource(name string, optFns ...func(o *SerialSourceOptions)) (*SerialSource, error) {
	opts := DefaultSerialSourceOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        opts.Baud,
		ReadTimeout: opts.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("link: open serial port %s: %w", name, err)
	}

	dec, err := newDecoder(port, opts.Framing)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	return &SerialSource{dec: dec, port: port}, nil
}

// ReadFrame returns the next frame payload from the device.
func (s *SerialSource) ReadFrame() ([]byte, error) {
	return s.dec.ReadFrame()
}

// Close closes the serial port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
