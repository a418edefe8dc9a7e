package bitio_test

import (
	"bytes"
	"testing"

	"github.com/kneesnap/onstream-tape/bitio"
)

// seekBuf is a minimal io.WriteSeeker backed by an in-memory buffer,
// used the way mock_test.go's mockReader stands in for a real file.
type seekBuf struct {
	buf []byte
	pos int64
}

func (s *seekBuf) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	n := copy(s.buf[s.pos:end], p)
	s.pos = end
	return n, nil
}

func (s *seekBuf) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		s.pos = offset
	case 1:
		s.pos += offset
	case 2:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func bitsFromByte(b byte, order bitio.BitOrder) []uint8 {
	bits := make([]uint8, 8)
	for i := 0; i < 8; i++ {
		if order == bitio.HighToLow {
			bits[i] = (b >> (7 - i)) & 1
		} else {
			bits[i] = (b >> i) & 1
		}
	}
	return bits
}

func TestReaderHighToLow(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte{0xB4}), bitio.HighToLow)
	want := bitsFromByte(0xB4, bitio.HighToLow)
	for i, w := range want {
		got, err := r.ReadBit()
		if err != nil {
			t.Fatalf("bit %d: %s", i, err)
		}
		if got != w {
			t.Errorf("bit %d: got %d want %d", i, got, w)
		}
	}
	if _, err := r.ReadBit(); err != bitio.ErrEndOfStream {
		t.Errorf("expected ErrEndOfStream, got %v", err)
	}
}

func TestReaderBitsAsInteger(t *testing.T) {
	// 0xA5 = 1010_0101
	r := bitio.NewReader(bytes.NewReader([]byte{0xA5}), bitio.HighToLow)
	v, err := r.ReadBitsAsInteger(8, bitio.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xA5 {
		t.Errorf("got %#x want %#x", v, 0xA5)
	}
}

func TestReaderInvalidBitCount(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader(nil), bitio.HighToLow)
	if _, err := r.ReadBitsAsInteger(33, bitio.BigEndian); err != bitio.ErrInvalidArgument {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSetBitOrderAfterReadFails(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte{0xff}), bitio.HighToLow)
	if _, err := r.ReadBit(); err != nil {
		t.Fatal(err)
	}
	if err := r.SetBitOrder(bitio.LowToHigh); err != bitio.ErrInvalidState {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestSkipRestOfByte(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte{0xff, 0x00}), bitio.HighToLow)
	if _, err := r.ReadBit(); err != nil {
		t.Fatal(err)
	}
	if err := r.SkipRestOfByte(); err != nil {
		t.Fatal(err)
	}
	bit, err := r.ReadBit()
	if err != nil {
		t.Fatal(err)
	}
	if bit != 0 {
		t.Errorf("expected to have advanced to second byte, got bit=%d", bit)
	}
}

func TestHasMore(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte{0x01}), bitio.HighToLow)
	for i := 0; i < 8; i++ {
		ok, err := r.HasMore()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("expected more at bit %d", i)
		}
		if _, err := r.ReadBit(); err != nil {
			t.Fatal(err)
		}
	}
	ok, err := r.HasMore()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected no more bits")
	}
}

// TestRoundTrip exercises the writer's reserved-slot-patch behavior and
// confirms BitReader<->BitWriter agree for both bit orders, per the
// universal round-trip invariant.
func TestRoundTrip(t *testing.T) {
	for _, order := range []bitio.BitOrder{bitio.HighToLow, bitio.LowToHigh} {
		bits := make([]uint8, 0, 37)
		for i := 0; i < 37; i++ {
			bits = append(bits, uint8(i%2))
		}

		sb := &seekBuf{}
		w := bitio.NewWriter(sb, order)
		for _, b := range bits {
			if err := w.WriteBit(b); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := w.FinishCurrentByte(); err != nil {
			t.Fatal(err)
		}

		r := bitio.NewReader(bytes.NewReader(sb.buf), order)
		for i, want := range bits {
			got, err := r.ReadBit()
			if err != nil {
				t.Fatalf("order=%d bit %d: %s", order, i, err)
			}
			if got != want {
				t.Errorf("order=%d bit %d: got %d want %d", order, i, got, want)
			}
		}
	}
}

// TestWriterInterleavesWithByteWrites exercises the reserved-slot-patch
// rule: a byte-granular write that lands while a bit group is open must
// appear after the reserved slot, and the reserved slot must be patched
// in place once the bit group completes.
func TestWriterInterleavesWithByteWrites(t *testing.T) {
	sb := &seekBuf{}
	w := bitio.NewWriter(sb, bitio.HighToLow)

	if err := w.WriteBit(1); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBit(0); err != nil {
		t.Fatal(err)
	}
	// byte-granular producer writes directly to the same sink
	if _, err := sb.Write([]byte{0xCC}); err != nil {
		t.Fatal(err)
	}
	pad, err := w.FinishCurrentByte()
	if err != nil {
		t.Fatal(err)
	}
	if pad != 6 {
		t.Errorf("expected 6 padding bits, got %d", pad)
	}

	if len(sb.buf) != 2 {
		t.Fatalf("expected 2 bytes, got %d: %x", len(sb.buf), sb.buf)
	}
	if sb.buf[0] != 0b10000000 {
		t.Errorf("reserved slot not patched correctly: %08b", sb.buf[0])
	}
	if sb.buf[1] != 0xCC {
		t.Errorf("byte-granular write displaced: %08b", sb.buf[1])
	}
}
