package xmodem

import (
	"fmt"
	"time"

	"github.com/golang/glog"
)

// EventType identifies a transfer state transition.
type EventType int

const (
	// EventHandshake is emitted when the receiver's initial NAK arrives.
	EventHandshake EventType = iota
	// EventAttempt is emitted before a packet is written.
	EventAttempt
	// EventRejected is emitted when an attempt is not acknowledged.
	EventRejected
	// EventAcknowledged is emitted when a packet is acknowledged.
	EventAcknowledged
	// EventDone is emitted when the transfer succeeds.
	EventDone
	// EventFailed is emitted when the transfer aborts.
	EventFailed
)

var eventNames = map[EventType]string{
	EventHandshake:    "handshake",
	EventAttempt:      "attempt",
	EventRejected:     "rejected",
	EventAcknowledged: "acknowledged",
	EventDone:         "done",
	EventFailed:       "failed",
}

// String implements fmt.Stringer.
func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Reason explains why an attempt was rejected.
type Reason int

const (
	// ReasonNone is used by events that are not rejections.
	ReasonNone Reason = iota
	// ReasonNAK means the receiver asked for retransmission.
	ReasonNAK
	// ReasonTimeout means no response arrived in time.
	ReasonTimeout
	// ReasonUnexpected means the response byte was not recognized.
	ReasonUnexpected
)

// String implements fmt.Stringer.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonNAK:
		return "nak"
	case ReasonTimeout:
		return "timeout"
	case ReasonUnexpected:
		return "unexpected"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Event describes a transfer state transition.
type Event struct {
	Type    EventType
	Packet  *Packet
	Attempt int
	Reason  Reason
	// Response is the byte received when Reason is ReasonUnexpected.
	Response byte
	Elapsed  time.Duration
	Err      error
}

// Observer is notified on transfer state transitions.
type Observer interface {
	Observe(Event)
}

// ObserverFunc is func type of Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}

// Observers fans out events to multiple observers.
type Observers []Observer

// Observe implements Observer.
func (o Observers) Observe(ev Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(ev)
		}
	}
}

// LogObserver logs events using glog.
var LogObserver = ObserverFunc(func(ev Event) {
	switch ev.Type {
	case EventFailed:
		glog.Warningf("xmodem: transfer failed: %v", ev.Err)
	case EventDone:
		glog.Infof("xmodem: transfer completed in %v", ev.Elapsed)
	case EventRejected:
		if ev.Reason == ReasonUnexpected {
			glog.V(2).Infof("xmodem: %s attempt %d rejected: unexpected 0x%02x", ev.Packet, ev.Attempt, ev.Response)
		} else {
			glog.V(2).Infof("xmodem: %s attempt %d rejected: %s", ev.Packet, ev.Attempt, ev.Reason)
		}
	case EventAttempt, EventAcknowledged:
		glog.V(3).Infof("xmodem: %s attempt %d %s", ev.Packet, ev.Attempt, ev.Type)
	default:
		glog.V(2).Infof("xmodem: %s", ev.Type)
	}
})
