package xmodem

import "io"

// Packetizer splits a byte source into packets, ending with exactly one
// terminal packet. It is not restartable.
type Packetizer struct {
	// PadFinalBlock pads a short final block with SUB to BlockSize.
	PadFinalBlock bool

	src    io.Reader
	block  BlockNum
	blocks int
	done   bool
}

// NewPacketizer creates a Packetizer reading from src.
func NewPacketizer(src io.Reader) *Packetizer {
	return &Packetizer{src: src}
}

// Blocks returns the number of data packets produced so far.
func (p *Packetizer) Blocks() int {
	return p.blocks
}

// Done indicates the terminal packet has been produced.
func (p *Packetizer) Done() bool {
	return p.done
}

// Next produces the next packet. After the terminal packet it always
// returns io.EOF. A failure reading the source is returned as *SourceError
// and also ends the sequence.
func (p *Packetizer) Next() (*Packet, error) {
	if p.done {
		return nil, io.EOF
	}
	p.block = p.block.Next()

	buf := make([]byte, BlockSize)
	n, err := io.ReadFull(p.src, buf)
	switch err {
	case nil, io.ErrUnexpectedEOF:
	case io.EOF:
		p.done = true
		return NewTerminalPacket(), nil
	default:
		p.done = true
		return nil, &SourceError{Block: p.block, Err: err}
	}

	if n < BlockSize && p.PadFinalBlock {
		for i := n; i < BlockSize; i++ {
			buf[i] = SUB
		}
		n = BlockSize
	}
	p.blocks++
	return NewDataPacket(p.block, buf[:n]), nil
}
