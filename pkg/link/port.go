package link

import "io"

// Kind is the kind of link.
type Kind int

// Kinds of links.
const (
	KindUnknown Kind = iota
	KindSerial
	KindWebsocket
	KindMQTT
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindSerial:
		return "serial"
	case KindWebsocket:
		return "websocket"
	case KindMQTT:
		return "mqtt"
	}
	return "unknown"
}

// Port is an opened link. Read returns 0 bytes without error when nothing
// arrives within the configured read timeout.
type Port interface {
	io.ReadWriteCloser
}
