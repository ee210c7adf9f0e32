// Package xmodem implements the sending side of the XMODEM file transfer
// protocol in its original checksum mode.
package xmodem

// XMODEM is a half-duplex, stop-and-wait protocol. The receiver initiates
// the session by sending NAK. The sender then transmits 128-byte blocks,
// each framed as
//
//	SOH | block | 255-block | payload | checksum
//
// and waits for ACK (next block) or NAK (retransmit) after every block.
// The end of the file is signalled by a single EOT, which is acknowledged
// like any other block.
//
// Block numbers are a single byte and wrap from 255 to 0, so a receiver
// only ever detects a duplicate block, never the absolute position.
