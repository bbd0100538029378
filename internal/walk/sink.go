package walk

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"golang.org/x/xerrors"
)

// Format selects the streaming compressor used for record bytes, on top of
// the boolean "compress" knob.
type Format int

const (
	// FormatNone writes record bytes raw (compress=false).
	FormatNone Format = iota
	// FormatZstd matches the reference's zstd-level-1 default-frame stream.
	FormatZstd
	// FormatGzip offers klauspost/pgzip as an alternative streaming
	// format.
	FormatGzip
)

// compressor is satisfied directly by both *zstd.Encoder and
// *pgzip.Writer, as created in newSink.
type compressor interface {
	io.Writer
	Close() error
}

// sink is the process-wide output singleton: a mutually exclusive writer
// optionally feeding a streaming compressor. All fields are touched only
// while mu is held, except for firstErr, which uses its own lock so a
// failed flush never blocks other workers from making forward progress.
type sink struct {
	mu   sync.Mutex
	w    io.Writer
	comp compressor

	errMu    sync.Mutex
	firstErr error
}

// newSink wraps w with the compressor selected by format. format must be
// FormatNone when compress is false.
func newSink(w io.Writer, format Format) (*sink, error) {
	s := &sink{w: w}
	switch format {
	case FormatNone:
		// raw writes, no compressor
	case FormatZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, xerrors.Errorf("newSink: zstd.NewWriter: %w", err)
		}
		s.comp = enc
	case FormatGzip:
		gz := pgzip.NewWriter(w)
		s.comp = gz
	default:
		return nil, xerrors.Errorf("newSink: unknown format %d", format)
	}
	return s, nil
}

// writeHeader writes bytes directly to the underlying sink, bypassing the
// compressor, before any worker starts. The header stays plain text even
// when the payload is compressed.
func (s *sink) writeHeader(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(b)
	if err != nil {
		s.recordErr(xerrors.Errorf("writeHeader: %w", err))
	}
	return err
}

// flush pushes cell's bytes through the compressor (if any) and into the
// underlying sink, then resets the cell. A write failure is recorded but
// does not panic or abort the calling worker.
func (s *sink) flush(c *cell) error {
	if c.len() == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.comp != nil {
		_, err = s.comp.Write(c.bytes())
	} else {
		_, err = s.w.Write(c.bytes())
	}
	c.reset()
	if err != nil {
		err = xerrors.Errorf("flush: %w", err)
		s.recordErr(err)
	}
	return err
}

// finalize flushes and releases the compressor (emitting the framing
// epilogue) and returns the first error observed over the sink's
// lifetime, if any.
func (s *sink) finalize() error {
	s.mu.Lock()
	if s.comp != nil {
		if err := s.comp.Close(); err != nil {
			s.recordErrLocked(xerrors.Errorf("finalize: %w", err))
		}
	}
	s.mu.Unlock()
	return s.err()
}

func (s *sink) recordErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.firstErr == nil {
		s.firstErr = err
	}
}

func (s *sink) recordErrLocked(err error) {
	// s.mu is already held by the caller; errMu is independent.
	s.recordErr(err)
}

func (s *sink) err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.firstErr
}
