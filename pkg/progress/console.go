// Package progress prints human readable transfer progress.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/robotalks/xmodem.go/pkg/xmodem"
)

// Console prints one line per packet: a dot for every attempt followed by
// the outcome.
type Console struct {
	Out io.Writer

	lock   sync.Mutex
	inLine bool
	bytes  int
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{Out: out}
}

// Bytes returns the payload bytes acknowledged so far.
func (c *Console) Bytes() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.bytes
}

// Observe implements xmodem.Observer.
func (c *Console) Observe(ev xmodem.Event) {
	c.lock.Lock()
	defer c.lock.Unlock()
	switch ev.Type {
	case xmodem.EventHandshake:
		fmt.Fprintln(c.Out, "Receiver ready")
	case xmodem.EventAttempt:
		if ev.Attempt == 1 {
			fmt.Fprintf(c.Out, "Sending %s", ev.Packet)
			c.inLine = true
		}
		fmt.Fprint(c.Out, ".")
	case xmodem.EventAcknowledged:
		c.bytes += len(ev.Packet.Payload)
		fmt.Fprintln(c.Out, "Done")
		c.inLine = false
	case xmodem.EventFailed:
		if c.inLine {
			fmt.Fprintln(c.Out, "Failed")
			c.inLine = false
		}
	case xmodem.EventDone:
		fmt.Fprintf(c.Out, "Sent %d bytes, took %dms since first NAK.\n", c.bytes, ev.Elapsed.Milliseconds())
	}
}
