package binio_test

import (
	"errors"
	"io"
	"testing"

	"github.com/kneesnap/onstream-tape/binio"
)

// mockReaderAt implements io.ReaderAt and can inject an error once the
// read offset reaches errAt, to simulate a dump file that goes bad
// partway through a capture.
type mockReaderAt struct {
	data   []byte
	errAt  int64
	errMsg error
}

func (m *mockReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if m.errMsg != nil && off >= m.errAt {
		return 0, m.errMsg
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestReaderSurfacesUnderlyingError(t *testing.T) {
	boom := errors.New("simulated read failure")
	r := binio.NewReader(&mockReaderAt{data: make([]byte, 16), errAt: 4, errMsg: boom}, binio.Big)

	if _, err := r.U32(); err != nil {
		t.Fatalf("first U32 should succeed, got %v", err)
	}
	if _, err := r.U32(); !errors.Is(err, boom) {
		t.Fatalf("expected underlying error to surface, got %v", err)
	}
}

func TestReaderEndOfStreamShortOfField(t *testing.T) {
	r := binio.NewReader(&mockReaderAt{data: []byte{1, 2, 3}}, binio.Little)
	if _, err := r.U32(); err != binio.ErrEndOfStream {
		t.Fatalf("expected ErrEndOfStream reading past a 3-byte source, got %v", err)
	}
}
