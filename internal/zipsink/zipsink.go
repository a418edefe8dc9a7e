// Package zipsink implements extract.ArchiveSink over archive/zip,
// registering klauspost/compress/flate as the deflate implementation for
// faster writes against the multi-gigabyte archives tape recovery tends
// to produce.
package zipsink

import (
	"archive/zip"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"
)

var registerOnce sync.Once

func registerFastFlate() {
	registerOnce.Do(func() {
		zip.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, flate.DefaultCompression)
		})
	})
}

// ErrNoEntry is returned by Write/SetLastWriteTime when called before
// CreateEntry.
var ErrNoEntry = errors.New("zipsink: no entry open")

// Sink wraps an archive/zip.Writer behind the CreateEntry/
// SetLastWriteTime/Write/Close/CloseArchive contract.
type Sink struct {
	zw *zip.Writer

	pending     *zip.FileHeader
	current     io.Writer
	currentName string
}

// New wraps w, an open output file or buffer, as a Sink. CloseArchive
// must eventually be called to flush the zip central directory.
func New(w io.Writer) *Sink {
	registerFastFlate()
	return &Sink{zw: zip.NewWriter(w)}
}

// CreateEntry begins a new archive entry at path. Any previously open
// entry is implicitly closed first.
func (s *Sink) CreateEntry(path string) error {
	if s.current != nil || s.pending != nil {
		if err := s.Close(); err != nil {
			return err
		}
	}
	s.pending = &zip.FileHeader{
		Name:     path,
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	s.currentName = path
	return nil
}

// SetLastWriteTime sets the modification time recorded for the entry
// currently open via CreateEntry. It must be called before the entry's
// first Write, since the zip format fixes an entry's header (including
// its timestamp) before any of its content.
func (s *Sink) SetLastWriteTime(t time.Time) error {
	if s.pending == nil && s.current == nil {
		return ErrNoEntry
	}
	if s.pending == nil {
		// Entry already materialized (Write already happened); the
		// format has no way to amend it after the fact.
		return nil
	}
	s.pending.Modified = t
	return nil
}

// Write appends to the currently open entry, materializing its header
// on first use.
func (s *Sink) Write(p []byte) (int, error) {
	if s.current == nil {
		if s.pending == nil {
			return 0, ErrNoEntry
		}
		w, err := s.zw.CreateHeader(s.pending)
		if err != nil {
			return 0, err
		}
		s.current = w
		s.pending = nil
	}
	return s.current.Write(p)
}

// Close finalizes the currently open entry. An entry that was opened via
// CreateEntry but never written to is still recorded, as a zero-length
// file (the directory-chunk case).
func (s *Sink) Close() error {
	if s.current == nil && s.pending == nil {
		return nil
	}
	if s.current == nil {
		// Never written: still create the (empty) header so the
		// directory entry is recorded.
		_, err := s.zw.CreateHeader(s.pending)
		s.pending = nil
		return err
	}
	s.current = nil
	s.currentName = ""
	return nil
}

// CloseArchive finalizes the zip central directory. Any entry still
// open is closed first.
func (s *Sink) CloseArchive() error {
	if err := s.Close(); err != nil {
		return err
	}
	return s.zw.Close()
}
