package link

import "io"

// ReplaySource reads frames from a recorded stream, typically a raw frame
// dump or any io.Reader supplying the device byte stream.
type ReplaySource struct {
	dec    frameDecoder
	closer io.Closer
}

// ReplaySourceOptions configure a ReplaySource.
type ReplaySourceOptions struct {
	// Framing selects how the stream is split into frames.
	Framing Framing
}

// DefaultReplaySourceOptions are the recommended defaults.
var DefaultReplaySourceOptions = ReplaySourceOptions{
	Framing: FramingLine,
}

// NewReplaySource creates a Source over r. If r is an io.Closer it is
// closed when the source is closed.
func NewReplaySource(r io.Reader, optFns ...func(o *ReplaySourceOptions)) (*ReplaySource, error) {
	opts := DefaultReplaySourceOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	dec, err := newDecoder(r, opts.Framing)
	if err != nil {
		return nil, err
	}

	src := &ReplaySource{dec: dec}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src, nil
}

// ReadFrame returns the next frame payload.
func (s *ReplaySource) ReadFrame() ([]byte, error) {
	return s.dec.ReadFrame()
}

// Close releases the underlying stream if it is closable.
func (s *ReplaySource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
