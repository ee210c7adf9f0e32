package xmodem

import (
	"errors"
	"fmt"
)

var (
	// ErrShortFrame indicates the frame ends before the checksum.
	ErrShortFrame = errors.New("short frame")
	// ErrFrameTooLong indicates extra bytes beyond a valid frame.
	ErrFrameTooLong = errors.New("frame too long")
	// ErrBadHeader indicates the frame doesn't start with SOH or EOT.
	ErrBadHeader = errors.New("bad frame header")
	// ErrBadComplement indicates the block number check field mismatches.
	ErrBadComplement = errors.New("block number complement mismatch")
	// ErrBadChecksum indicates the payload checksum mismatches.
	ErrBadChecksum = errors.New("checksum mismatch")

	// ErrHandshake indicates the receiver didn't start the transfer with NAK.
	ErrHandshake = errors.New("handshake failed")
	// ErrRetriesExhausted indicates a packet was not acknowledged after
	// all attempts.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// SourceError wraps a failure reading the file being sent.
type SourceError struct {
	Block BlockNum
	Err   error
}

// Error implements error.
func (e *SourceError) Error() string {
	return fmt.Sprintf("read block %d: %v", e.Block, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// LinkError wraps an I/O failure on the channel.
type LinkError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *LinkError) Unwrap() error {
	return e.Err
}
