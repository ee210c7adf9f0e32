// Package term ties a link, a file and the XMODEM sender together.
package term

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	fx "github.com/robotalks/xmodem.go/pkg/framework"
	"github.com/robotalks/xmodem.go/pkg/link"
	"github.com/robotalks/xmodem.go/pkg/progress"
	"github.com/robotalks/xmodem.go/pkg/xmodem"
)

// Options tunes the sender.
type Options struct {
	Timeout       time.Duration
	PollInterval  time.Duration
	MaxAttempts   int
	PadFinalBlock bool
	Quiet         bool
}

var defaultOptions = Options{
	Timeout:      xmodem.DefaultTimeout,
	PollInterval: xmodem.DefaultPollInterval,
	MaxAttempts:  xmodem.DefaultMaxAttempts,
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultOptions.Timeout, "timeout", defaultOptions.Timeout, "Time to wait for each response from the receiver.")
	flag.DurationVar(&defaultOptions.PollInterval, "poll", defaultOptions.PollInterval, "Delay between polls while waiting for a response.")
	flag.IntVar(&defaultOptions.MaxAttempts, "retries", defaultOptions.MaxAttempts, "Attempts per packet before giving up.")
	flag.BoolVar(&defaultOptions.PadFinalBlock, "pad", defaultOptions.PadFinalBlock, "Pad the final block to 128 bytes with SUB.")
	flag.BoolVar(&defaultOptions.Quiet, "quiet", defaultOptions.Quiet, "Don't print progress.")
}

// DefaultOptions gets the default options.
func DefaultOptions() Options {
	return defaultOptions
}

// Opener opens a link.
type Opener func() (link.Port, error)

// Session holds an opened link across transfers.
type Session struct {
	Config  *link.Config
	Options Options
	Out     io.Writer
	// Open overrides Config.Open when set.
	Opener Opener

	port link.Port
}

// NewSession creates a Session.
func NewSession(conf *link.Config, opts Options, out io.Writer) *Session {
	return &Session{Config: conf, Options: opts, Out: out}
}

// IsOpen indicates the link is opened.
func (s *Session) IsOpen() bool {
	return s.port != nil
}

// Open opens the link if not yet opened.
func (s *Session) Open() error {
	if s.port != nil {
		return nil
	}
	open := s.Opener
	if open == nil {
		open = s.Config.Open
	}
	port, err := open()
	if err != nil {
		return err
	}
	s.port = port
	return nil
}

// Close closes the link.
func (s *Session) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

// NewSender creates a Sender over the opened link.
func (s *Session) NewSender() *xmodem.Sender {
	sender := xmodem.NewSender(s.port)
	sender.Timeout = s.Options.Timeout
	sender.PollInterval = s.Options.PollInterval
	sender.MaxAttempts = s.Options.MaxAttempts
	sender.PadFinalBlock = s.Options.PadFinalBlock
	observers := xmodem.Observers{xmodem.LogObserver}
	if !s.Options.Quiet && s.Out != nil {
		observers = append(observers, progress.NewConsole(s.Out))
	}
	sender.Observer = observers
	return sender
}

// SendFile sends the file at path, opening the link if needed. Canceling
// ctx closes the link, which aborts the transfer.
func (s *Session) SendFile(ctx context.Context, path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open file")
	}
	defer f.Close()

	if err = s.Open(); err != nil {
		return 0, err
	}
	sender := s.NewSender()
	port := s.port
	glog.V(1).Infof("sending %s over %s", path, s.Config.Device)

	var elapsed time.Duration
	err = fx.RunWithContextCancel(ctx, func() {
		port.Close()
		s.port = nil
	}, func() (err error) {
		elapsed, err = sender.Send(f)
		return
	})
	return elapsed, err
}
