package link

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const streamBufferSize = 256

// Stream turns a blocking io.ReadWriteCloser (e.g. a bridge connection)
// into a Port whose Read gives up after ReadTimeout.
type Stream struct {
	ReadTimeout time.Duration

	rwc     io.ReadWriteCloser
	dataCh  chan []byte
	errCh   chan error
	closeCh chan struct{}
	pending []byte
	err     error

	closeOnce sync.Once
	closeErr  error
}

// NewStream creates a Stream and starts reading from rwc in the background.
func NewStream(rwc io.ReadWriteCloser, readTimeout time.Duration) *Stream {
	s := &Stream{
		ReadTimeout: readTimeout,
		rwc:         rwc,
		dataCh:      make(chan []byte),
		errCh:       make(chan error, 1),
		closeCh:     make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Stream) readLoop() {
	for {
		buf := make([]byte, streamBufferSize)
		n, err := s.rwc.Read(buf)
		if n > 0 {
			select {
			case s.dataCh <- buf[:n]:
			case <-s.closeCh:
				return
			}
		}
		if err != nil {
			if err == io.EOF {
				err = errors.Wrap(io.ErrUnexpectedEOF, "link closed by peer")
			}
			s.errCh <- err
			return
		}
	}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	select {
	case <-s.closeCh:
		return 0, os.ErrClosed
	default:
	}
	if len(s.pending) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		timer := time.NewTimer(s.ReadTimeout)
		defer timer.Stop()
		select {
		case s.pending = <-s.dataCh:
		case s.err = <-s.errCh:
			return 0, s.err
		case <-s.closeCh:
			return 0, os.ErrClosed
		case <-timer.C:
			return 0, nil
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	return s.rwc.Write(p)
}

// Close implements io.Closer.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.closeErr = s.rwc.Close()
	})
	return s.closeErr
}
