package extract_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/kneesnap/onstream-tape/blockmap"
	"github.com/kneesnap/onstream-tape/cartridge"
	"github.com/kneesnap/onstream-tape/extract"
)

type memSink struct {
	entries map[string][]byte
	cur     string
	buf     bytes.Buffer
	closed  bool
}

func newMemSink() *memSink { return &memSink{entries: make(map[string][]byte)} }

func (s *memSink) CreateEntry(path string) error {
	s.cur = path
	s.buf.Reset()
	return nil
}
func (s *memSink) SetLastWriteTime(time.Time) error { return nil }
func (s *memSink) Write(p []byte) (int, error)      { return s.buf.Write(p) }
func (s *memSink) Close() error {
	s.entries[s.cur] = append([]byte(nil), s.buf.Bytes()...)
	return nil
}
func (s *memSink) CloseArchive() error {
	s.closed = true
	return nil
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func withHeader(magic string, body []byte) []byte {
	buf := make([]byte, 0, 8+len(body))
	buf = append(buf, []byte(magic)...)
	buf = append(buf, u32(uint32(8+len(body)))...)
	return append(buf, body...)
}

func directoryChunk(folderID, parentID uint32, name string) []byte {
	body := append(u32(folderID), u32(parentID)...)
	body = append(body, u32(0)...) // lastModified
	body = append(body, u32(0)...) // backupTime
	body = append(body, append([]byte(name), 0)...)
	return withHeader("FDIR", body)
}

func fileChunk(resourceID, folderID uint32, name string) []byte {
	body := append(u32(resourceID), u32(folderID)...)
	body = append(body, u32(0)...) // fileSize
	body = append(body, u32(0)...) // lastModified
	body = append(body, u32(0)...) // backupTime
	body = append(body, append([]byte(name), 0)...)
	return withHeader("FILE", body)
}

func buildChunkStream() []byte {
	var stream []byte
	stream = append(stream, directoryChunk(2, 1, "docs")...)
	stream = append(stream, fileChunk(100, 2, "a.txt")...)
	stream = append(stream, withHeader("FORK", append(u32(100), []byte("payload")...))...)
	stream = append(stream, withHeader("TAIL", u32(100))...)
	return stream
}

func frame(physicalID uint32, payload []byte) []byte {
	buf := make([]byte, blockmap.FullSectionSize)
	copy(buf, payload)
	binary.BigEndian.PutUint32(buf[blockmap.DataSectionSize:], 0x44415441)
	binary.BigEndian.PutUint32(buf[blockmap.DataSectionSize+8:], physicalID)
	return buf
}

func TestRunEndToEnd(t *testing.T) {
	chunks := buildChunkStream()
	if len(chunks) > blockmap.DataSectionSize {
		t.Fatalf("test chunk stream too large for a single logical block: %d bytes", len(chunks))
	}

	// Logical block 0 is the header area the driver always skips;
	// logical block 1 carries the whole chunk stream, zero-padded.
	var raw []byte
	for logical := uint32(0); logical < 2; logical++ {
		p, err := cartridge.FromLogical(cartridge.Adr30, logical)
		if err != nil {
			t.Fatal(err)
		}
		payload := make([]byte, blockmap.DataSectionSize)
		if logical == 1 {
			copy(payload, chunks)
		}
		raw = append(raw, frame(p.ToPhysical(), payload)...)
	}

	sink := newMemSink()
	report, err := extract.Run(context.Background(), []extract.DumpFile{{Name: "dump1", Reader: bytes.NewReader(raw)}}, cartridge.Adr30, sink, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesWritten != 1 {
		t.Fatalf("expected 1 file written, got %d", report.FilesWritten)
	}
	if !sink.closed {
		t.Fatal("expected sink.CloseArchive to have been called")
	}
	got, ok := sink.entries["docs/a.txt"]
	if !ok {
		t.Fatalf("expected docs/a.txt entry, got %v", sink.entries)
	}
	if string(got) != "payload" {
		t.Fatalf("got content %q", got)
	}
}
