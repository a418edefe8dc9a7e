// Package bitio reads and writes individual bits from/to a byte stream,
// with a configurable per-byte bit order. It exists because the Retrospect
// tape-stream format embeds bit-packed regions inside an otherwise
// byte-granular record stream.
package bitio

import (
	"errors"
)

// BitOrder controls which bit of a cached byte is consumed first.
type BitOrder int

const (
	// HighToLow extracts bits at positions 7,6,...,0 of each byte.
	HighToLow BitOrder = iota
	// LowToHigh extracts bits at positions 0,1,...,7 of each byte.
	LowToHigh
)

// Endian controls how ReadBitsAsInteger/WriteBitsFromInteger compose bits
// into an integer.
type Endian int

const (
	// LittleEndian treats the first bit read/written as the least
	// significant bit of the result.
	LittleEndian Endian = iota
	// BigEndian treats the first bit read/written as the most
	// significant bit of the result.
	BigEndian
)

var (
	// ErrInvalidState is returned when BitOrder is changed after the
	// first bit has been read or written.
	ErrInvalidState = errors.New("bitio: invalid state")
	// ErrInvalidArgument is returned when a bit count is out of range.
	ErrInvalidArgument = errors.New("bitio: invalid argument")
	// ErrEndOfStream is returned when a bit is requested past the end
	// of the underlying source.
	ErrEndOfStream = errors.New("bitio: end of stream")
)
