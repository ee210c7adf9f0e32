package xmodem

import (
	"io"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Defaults of Sender.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxAttempts  = 10
)

// Channel is the link to the receiver. Read is expected to return quickly:
// 0 bytes with a nil error, io.EOF or a timeout error all mean nothing has
// arrived yet. Any other error is fatal to the transfer.
type Channel interface {
	io.ReadWriter
}

// Sender sends a file over a Channel. A Sender is used by one goroutine
// at a time.
type Sender struct {
	// Timeout bounds each wait for a response byte.
	Timeout time.Duration
	// PollInterval is the delay between reads while waiting.
	PollInterval time.Duration
	// MaxAttempts is the number of times a packet is written before
	// the transfer is aborted.
	MaxAttempts   int
	PadFinalBlock bool
	Observer      Observer
	Clock         clock.Clock

	ch  Channel
	buf [1]byte
}

// NewSender creates a Sender over ch with default settings.
func NewSender(ch Channel) *Sender {
	return &Sender{
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
		Clock:        clock.New(),
		ch:           ch,
	}
}

// Send transfers everything read from src. On success it returns the time
// elapsed since the receiver's initial NAK.
func (s *Sender) Send(src io.Reader) (time.Duration, error) {
	start, err := s.handshake()
	if err != nil {
		return 0, s.fail(err)
	}

	pz := NewPacketizer(src)
	pz.PadFinalBlock = s.PadFinalBlock
	for {
		pkt, err := pz.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, s.fail(err)
		}
		if err = s.transmit(pkt); err != nil {
			return 0, s.fail(err)
		}
	}

	elapsed := s.clock().Since(start)
	s.notify(Event{Type: EventDone, Elapsed: elapsed})
	return elapsed, nil
}

func (s *Sender) handshake() (time.Time, error) {
	// anything other than NAK/ACK is line noise or a request for a
	// protocol variant we don't speak, keep waiting.
	b, ok, err := s.wait(func(b byte) bool { return b != NAK && b != ACK })
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, errors.Wrap(ErrHandshake, "no NAK from receiver")
	}
	if b == ACK {
		return time.Time{}, errors.Wrap(ErrHandshake, "ACK received before NAK")
	}
	start := s.clock().Now()
	s.notify(Event{Type: EventHandshake})
	return start, nil
}

func (s *Sender) transmit(pkt *Packet) error {
	attempts := s.maxAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		s.notify(Event{Type: EventAttempt, Packet: pkt, Attempt: attempt})
		if _, err := pkt.WriteTo(s.ch); err != nil {
			return &LinkError{Op: "write", Err: err}
		}
		b, ok, err := s.wait(nil)
		if err != nil {
			return err
		}
		ev := Event{Type: EventRejected, Packet: pkt, Attempt: attempt}
		switch {
		case !ok:
			ev.Reason = ReasonTimeout
		case b == ACK:
			s.notify(Event{Type: EventAcknowledged, Packet: pkt, Attempt: attempt})
			return nil
		case b == NAK:
			ev.Reason = ReasonNAK
		default:
			ev.Reason, ev.Response = ReasonUnexpected, b
		}
		s.notify(ev)
	}
	return errors.Wrapf(ErrRetriesExhausted, "%s not acknowledged after %d attempts", pkt, attempts)
}

// wait polls the channel for a response byte until Timeout expires.
// Bytes for which skip returns true are discarded. ok is false on timeout.
func (s *Sender) wait(skip func(byte) bool) (b byte, ok bool, err error) {
	clk := s.clock()
	deadline := clk.Now().Add(s.timeout())
	for {
		if b, ok, err = s.readByte(); err != nil {
			return 0, false, err
		}
		if ok && (skip == nil || !skip(b)) {
			return b, true, nil
		}
		if !clk.Now().Before(deadline) {
			return 0, false, nil
		}
		if !ok {
			clk.Sleep(s.pollInterval())
		}
	}
}

func (s *Sender) readByte() (byte, bool, error) {
	n, err := s.ch.Read(s.buf[:])
	if n > 0 {
		return s.buf[0], true, nil
	}
	if err == nil || err == io.EOF || os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, false, nil
	}
	return 0, false, &LinkError{Op: "read", Err: err}
}

func (s *Sender) fail(err error) error {
	s.notify(Event{Type: EventFailed, Err: err})
	return err
}

func (s *Sender) notify(ev Event) {
	if o := s.Observer; o != nil {
		o.Observe(ev)
	}
}

func (s *Sender) clock() clock.Clock {
	if s.Clock == nil {
		return clock.New()
	}
	return s.Clock
}

func (s *Sender) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

func (s *Sender) pollInterval() time.Duration {
	if s.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return s.PollInterval
}

func (s *Sender) maxAttempts() int {
	if s.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return s.MaxAttempts
}
