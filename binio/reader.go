package binio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Reader reads typed fields from an io.ReaderAt at an explicit cursor
// position, the way Superblock.fs is read field-by-field in the teacher
// via binary.Read(r, sb.order, &field) but without requiring the source
// to implement io.Reader.
type Reader struct {
	r      io.ReaderAt
	pos    int64
	endian Endian
	stack  []int64
}

// NewReader wraps r, starting at offset 0.
func NewReader(r io.ReaderAt, endian Endian) *Reader {
	return &Reader{r: r, endian: endian}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int64 { return r.pos }

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(pos int64) { r.pos = pos }

// PushPos saves the current position on the jump stack and moves the
// cursor to newPos ("jump_temp").
func (r *Reader) PushPos(newPos int64) {
	r.stack = append(r.stack, r.pos)
	r.pos = newPos
}

// PopPos restores the most recently saved position ("jump_return"). It
// fails with ErrInvalidState if the stack is empty.
func (r *Reader) PopPos() error {
	if len(r.stack) == 0 {
		return ErrInvalidState
	}
	last := len(r.stack) - 1
	r.pos = r.stack[last]
	r.stack = r.stack[:last]
	return nil
}

func (r *Reader) readBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := r.r.ReadAt(buf, r.pos)
	r.pos += int64(read)
	if err != nil {
		if err == io.EOF {
			if read == n {
				// ReadAt may return (n, io.EOF) when the read lands
				// exactly at the end of the source.
				return buf, nil
			}
			return nil, ErrEndOfStream
		}
		return nil, err
	}
	return buf, nil
}

// order-agnostic fixed-width helpers: read into a scratch buffer, flip
// it in place for big-endian, then always decode as little-endian.
func (r *Reader) fixed(n int) ([]byte, error) {
	buf, err := r.readBytes(n)
	if err != nil {
		return nil, err
	}
	if r.endian == Big {
		reverse(buf)
	}
	return buf, nil
}

func (r *Reader) U8() (uint8, error) {
	buf, err := r.readBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

func (r *Reader) U16() (uint16, error) {
	buf, err := r.fixed(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) U32() (uint32, error) {
	buf, err := r.fixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) U64() (uint64, error) {
	buf, err := r.fixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// F16 reads an IEEE 754 binary16 half-float.
func (r *Reader) F16() (float32, error) {
	v, err := r.U16()
	if err != nil {
		return 0, err
	}
	return halfToFloat32(v), nil
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Decimal128 reads a 16-byte .NET-style System.Decimal value.
func (r *Reader) Decimal128() (Decimal128, error) {
	buf, err := r.readBytes(16)
	if err != nil {
		return Decimal128{}, err
	}
	if r.endian == Big {
		// .NET decimals are stored as four little-endian uint32 words
		// (lo, mid, hi, flags); reverse word-by-word, not the whole
		// buffer, to preserve that internal structure.
		for w := 0; w < 4; w++ {
			reverse(buf[w*4 : w*4+4])
		}
	}
	return decodeDecimal128(buf), nil
}

// FixedPointI32 reads a signed 32-bit integer and scales it by
// 2^-decimalBits.
func (r *Reader) FixedPointI32(decimalBits int) (float64, error) {
	v, err := r.I32()
	if err != nil {
		return 0, err
	}
	return float64(v) / float64(int64(1)<<uint(decimalBits)), nil
}

// FixedPointU32 reads an unsigned 32-bit integer and scales it by
// 2^-decimalBits.
func (r *Reader) FixedPointU32(decimalBits int) (float64, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return float64(v) / float64(int64(1)<<uint(decimalBits)), nil
}

// FixedPointI16 reads a signed 16-bit integer and scales it by
// 2^-decimalBits.
func (r *Reader) FixedPointI16(decimalBits int) (float64, error) {
	v, err := r.I16()
	if err != nil {
		return 0, err
	}
	return float64(v) / float64(int64(1)<<uint(decimalBits)), nil
}

// FixedPointU16 reads an unsigned 16-bit integer and scales it by
// 2^-decimalBits.
func (r *Reader) FixedPointU16(decimalBits int) (float64, error) {
	v, err := r.U16()
	if err != nil {
		return 0, err
	}
	return float64(v) / float64(int64(1)<<uint(decimalBits)), nil
}

// RawString reads n bytes and returns them unchanged as a string (no
// charset decoding — Retrospect text fields are Mac-Roman, decoded by
// callers that need it; the wire bytes themselves are charset-agnostic
// here).
func (r *Reader) RawString(n int) (string, error) {
	buf, err := r.readBytes(n)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// RawBytes reads n bytes verbatim.
func (r *Reader) RawBytes(n int) ([]byte, error) {
	return r.readBytes(n)
}

// NulString reads bytes up to and including a terminating NUL, and
// returns the bytes before it as a string. It fails with ErrInvalidData
// if end of stream is reached before a NUL is found.
func (r *Reader) NulString() (string, error) {
	var out []byte
	for {
		b, err := r.U8()
		if err != nil {
			if err == ErrEndOfStream {
				return "", ErrInvalidData
			}
			return "", err
		}
		if b == 0 {
			return string(out), nil
		}
		out = append(out, b)
	}
}

// FixedString reads exactly size bytes and returns the prefix up to the
// first occurrence of terminator, discarding the terminator itself and
// any trailing padding bytes. If terminator does not occur, the full
// size bytes are returned.
func (r *Reader) FixedString(size int, terminator byte) (string, error) {
	buf, err := r.readBytes(size)
	if err != nil {
		return "", err
	}
	if idx := bytes.IndexByte(buf, terminator); idx >= 0 {
		return string(buf[:idx]), nil
	}
	return string(buf), nil
}
