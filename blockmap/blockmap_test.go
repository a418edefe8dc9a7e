package blockmap_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/kneesnap/onstream-tape/blockmap"
	"github.com/kneesnap/onstream-tape/cartridge"
)

func frame(physicalID uint32, fill byte, writeStop bool) []byte {
	buf := make([]byte, blockmap.FullSectionSize)
	for i := range buf[:blockmap.DataSectionSize] {
		buf[i] = fill
	}
	sig := uint32(0x44415441) // arbitrary non-write-stop signature
	if writeStop {
		sig = blockmap.WriteStopSignature
	}
	binary.BigEndian.PutUint32(buf[blockmap.DataSectionSize:], sig)
	binary.BigEndian.PutUint32(buf[blockmap.DataSectionSize+8:], physicalID)
	return buf
}

func TestAddFileKeepsEarliestDuplicate(t *testing.T) {
	m := blockmap.NewMap()
	first := frame(7, 0x11, false)
	dup := frame(7, 0x22, false)

	if err := m.AddFile(bytes.NewReader(first), 0); err != nil {
		t.Fatal(err)
	}
	if err := m.AddFile(bytes.NewReader(dup), blockmap.FullSectionSize); err != nil {
		t.Fatal(err)
	}

	b, ok := m.Get(7)
	if !ok {
		t.Fatal("expected block 7 present")
	}
	if b.Payload[0] != 0x11 {
		t.Fatalf("expected earliest payload 0x11 kept, got %#x", b.Payload[0])
	}
}

func TestWriteStopFlagged(t *testing.T) {
	m := blockmap.NewMap()
	if err := m.AddFile(bytes.NewReader(frame(1, 0xAA, true)), 0); err != nil {
		t.Fatal(err)
	}
	b, ok := m.Get(1)
	if !ok {
		t.Fatal("expected block present")
	}
	if !b.IsWriteStop() {
		t.Fatal("expected IsWriteStop true")
	}
}

func TestInterwovenStreamMissingBlockFill(t *testing.T) {
	m := blockmap.NewMap()
	p0, err := cartridge.FromLogical(cartridge.Adr30, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddFile(bytes.NewReader(frame(p0.ToPhysical(), 0x55, false)), 0); err != nil {
		t.Fatal(err)
	}

	s := blockmap.NewInterwovenStream(cartridge.Adr30, m)

	buf := make([]byte, blockmap.DataSectionSize*2)
	n, err := s.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("expected full read, got %d bytes", n)
	}
	for i := 0; i < blockmap.DataSectionSize; i++ {
		if buf[i] != 0x55 {
			t.Fatalf("logical block 0 byte %d: expected 0x55, got %#x", i, buf[i])
		}
	}
	for i := blockmap.DataSectionSize; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("missing logical block 1 byte %d: expected 0, got %#x", i, buf[i])
		}
	}

	missing, count := s.WasMissingDataSkipped(blockmap.DataSectionSize)
	if !missing || count != 1 {
		t.Fatalf("expected 1 missing block reported, got missing=%v count=%d", missing, count)
	}
}

func TestInterwovenStreamLen(t *testing.T) {
	m := blockmap.NewMap()
	s := blockmap.NewInterwovenStream(cartridge.Adr30, m)
	c := cartridge.Adr30.Constants()
	want := int64(c.LogicalBlockCount) * blockmap.DataSectionSize
	if s.Len() != want {
		t.Fatalf("Len() = %d, want %d", s.Len(), want)
	}
}
