package binio

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer writes typed fields to an io.WriterAt at an explicit cursor
// position, mirroring Reader.
type Writer struct {
	w      io.WriterAt
	pos    int64
	endian Endian
	stack  []int64
}

// NewWriter wraps w, starting at offset 0.
func NewWriter(w io.WriterAt, endian Endian) *Writer {
	return &Writer{w: w, endian: endian}
}

func (w *Writer) Pos() int64 { return w.pos }

func (w *Writer) Seek(pos int64) { w.pos = pos }

func (w *Writer) PushPos(newPos int64) {
	w.stack = append(w.stack, w.pos)
	w.pos = newPos
}

func (w *Writer) PopPos() error {
	if len(w.stack) == 0 {
		return ErrInvalidState
	}
	last := len(w.stack) - 1
	w.pos = w.stack[last]
	w.stack = w.stack[:last]
	return nil
}

func (w *Writer) writeBytes(buf []byte) error {
	n, err := w.w.WriteAt(buf, w.pos)
	w.pos += int64(n)
	return err
}

func (w *Writer) fixed(buf []byte) error {
	if w.endian == Big {
		dup := append([]byte(nil), buf...)
		reverse(dup)
		return w.writeBytes(dup)
	}
	return w.writeBytes(buf)
}

func (w *Writer) U8(v uint8) error  { return w.writeBytes([]byte{v}) }
func (w *Writer) I8(v int8) error   { return w.U8(uint8(v)) }

func (w *Writer) U16(v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return w.fixed(buf)
}
func (w *Writer) I16(v int16) error { return w.U16(uint16(v)) }

func (w *Writer) U32(v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return w.fixed(buf)
}
func (w *Writer) I32(v int32) error { return w.U32(uint32(v)) }

func (w *Writer) U64(v uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return w.fixed(buf)
}
func (w *Writer) I64(v int64) error { return w.U64(uint64(v)) }

func (w *Writer) F32(v float32) error { return w.U32(math.Float32bits(v)) }
func (w *Writer) F64(v float64) error { return w.U64(math.Float64bits(v)) }

// RawString writes s verbatim with no padding or terminator.
func (w *Writer) RawString(s string) error {
	return w.writeBytes([]byte(s))
}

// NulString writes s followed by a single NUL terminator.
func (w *Writer) NulString(s string) error {
	if err := w.writeBytes([]byte(s)); err != nil {
		return err
	}
	return w.U8(0)
}

// FixedString writes s into exactly size bytes: s, then terminator, then
// zero padding. It fails with ErrInvalidData if s does not fit
// (len(s)+1 > size).
func (w *Writer) FixedString(s string, size int, terminator byte) error {
	if len(s)+1 > size {
		return ErrInvalidData
	}
	buf := make([]byte, size)
	copy(buf, s)
	buf[len(s)] = terminator
	return w.writeBytes(buf)
}
