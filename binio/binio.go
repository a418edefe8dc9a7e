// Package binio provides typed, endian-aware reads and writes of fixed
// width integers, IEEE floats, .NET-style 128-bit decimals, fixed-point
// numerics, and length-/NUL-terminated strings, plus a small position
// jump stack for temporary seeks. It generalizes the field-by-field
// binary.Read idiom the teacher uses inode-by-inode (see inode.go's
// GetInodeRef) into a standalone cursored reader/writer.
package binio

import "errors"

// Endian selects the byte order used for multi-byte reads and writes.
type Endian int

const (
	Little Endian = iota
	Big
)

var (
	// ErrInvalidState is returned when PopPos is called with an empty
	// jump stack.
	ErrInvalidState = errors.New("binio: invalid state")
	// ErrEndOfStream is returned when a read runs past the end of the
	// underlying source.
	ErrEndOfStream = errors.New("binio: end of stream")
	// ErrInvalidData is returned for malformed field contents: a
	// NUL-terminated string with no terminator before end of stream,
	// or a fixed-size string longer than its slot on write.
	ErrInvalidData = errors.New("binio: invalid data")
)

func reverse(buf []byte) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
