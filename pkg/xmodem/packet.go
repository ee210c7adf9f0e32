package xmodem

import (
	"fmt"
	"io"
)

// Control bytes.
const (
	SOH byte = 0x01
	EOT byte = 0x04
	ACK byte = 0x06
	NAK byte = 0x15
	// SUB is used to pad a short final block.
	SUB byte = 0x1a
)

// BlockSize is the payload size of a data packet.
const BlockSize = 128

// BlockNum defines the type of block sequence number.
type BlockNum byte

// Next calculates the next block number, wrapping from 255 to 0.
func (n BlockNum) Next() BlockNum {
	return n + 1
}

// Complement returns the check field sent after the block number.
func (n BlockNum) Complement() byte {
	return 255 - byte(n)
}

// PacketKind distinguishes data packets from the end-of-transmission marker.
type PacketKind int

const (
	// DataPacket carries a block of the file.
	DataPacket PacketKind = iota
	// TerminalPacket is the single EOT byte ending the transfer.
	TerminalPacket
)

// String implements fmt.Stringer.
func (k PacketKind) String() string {
	switch k {
	case DataPacket:
		return "data"
	case TerminalPacket:
		return "eot"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Packet is one protocol frame.
type Packet struct {
	Kind    PacketKind
	Block   BlockNum
	Payload []byte
}

// NewDataPacket creates a data packet. The payload must contain between
// 1 and BlockSize bytes.
func NewDataPacket(block BlockNum, payload []byte) *Packet {
	return &Packet{Kind: DataPacket, Block: block, Payload: payload}
}

// NewTerminalPacket creates the EOT packet.
func NewTerminalPacket() *Packet {
	return &Packet{Kind: TerminalPacket}
}

// IsTerminal indicates the packet ends the transfer.
func (p *Packet) IsTerminal() bool {
	return p.Kind == TerminalPacket
}

// Checksum sums the payload bytes modulo 256.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// Len returns the size of the encoded packet.
func (p *Packet) Len() int {
	if p.IsTerminal() {
		return 1
	}
	return len(p.Payload) + 4
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() []byte {
	if p.IsTerminal() {
		return []byte{EOT}
	}
	b := make([]byte, p.Len())
	b[0], b[1], b[2] = SOH, byte(p.Block), p.Block.Complement()
	copy(b[3:], p.Payload)
	b[len(b)-1] = Checksum(p.Payload)
	return b
}

// WriteTo writes encoded bytes.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// String implements fmt.Stringer.
func (p *Packet) String() string {
	if p.IsTerminal() {
		return "EOT"
	}
	return fmt.Sprintf("block %d (%d bytes)", p.Block, len(p.Payload))
}

// ParsePacket decodes a single encoded frame.
func ParsePacket(b []byte) (*Packet, error) {
	if len(b) == 0 {
		return nil, ErrShortFrame
	}
	switch b[0] {
	case EOT:
		if len(b) != 1 {
			return nil, ErrFrameTooLong
		}
		return NewTerminalPacket(), nil
	case SOH:
	default:
		return nil, ErrBadHeader
	}
	if len(b) < 5 {
		return nil, ErrShortFrame
	}
	if len(b) > BlockSize+4 {
		return nil, ErrFrameTooLong
	}
	block := BlockNum(b[1])
	if b[2] != block.Complement() {
		return nil, ErrBadComplement
	}
	payload := make([]byte, len(b)-4)
	copy(payload, b[3:len(b)-1])
	if Checksum(payload) != b[len(b)-1] {
		return nil, ErrBadChecksum
	}
	return NewDataPacket(block, payload), nil
}
