// Package auxstream adapts a single raw dump file into a view that hides
// the 512-byte aux trailer following every 32768-byte data section,
// presenting only the contiguous payload bytes.
package auxstream

import (
	"io"

	"github.com/kneesnap/onstream-tape/cartridge"
)

const (
	DataSectionSize = 32768
	AuxSectionSize  = 512
	FullSectionSize = DataSectionSize + AuxSectionSize
)

// AddAux translates a stripped-stream offset into the corresponding
// offset in the raw, aux-carrying file.
func AddAux(i int64) int64 {
	return (i/DataSectionSize)*FullSectionSize + i%DataSectionSize
}

// RemoveAux translates a raw-file offset into the corresponding
// stripped-stream offset, clamping any offset that falls inside an aux
// trailer to the start of the next data section.
func RemoveAux(i int64) int64 {
	m := i % FullSectionSize
	if m > DataSectionSize {
		m = DataSectionSize
	}
	return (i/FullSectionSize)*DataSectionSize + m
}

// Reader presents the aux-stripped view of an underlying raw
// io.ReadSeeker. Its own position is always expressed in stripped-stream
// coordinates.
type Reader struct {
	r      io.ReadSeeker
	rawLen int64
	pos    int64
}

// NewReader wraps r, determining its length by seeking to the end and
// back; r's position on return is unspecified beyond what subsequent
// Reader calls set it to.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, rawLen: end}, nil
}

// Len returns the stripped-stream length: one DataSectionSize per full
// raw frame, discarding any trailing partial frame.
func (s *Reader) Len() int64 {
	return (s.rawLen / FullSectionSize) * DataSectionSize
}

func (s *Reader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		target = s.Len() + offset
	default:
		return 0, cartridge.ErrInvalidArgument
	}
	if target < 0 {
		return 0, cartridge.ErrInvalidArgument
	}
	s.pos = target
	return s.pos, nil
}

// Read fills p with stripped-stream bytes, skipping over aux trailers in
// the underlying file transparently.
func (s *Reader) Read(p []byte) (int, error) {
	total := s.Len()
	if s.pos >= total {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && s.pos < total {
		rawPos := AddAux(s.pos)
		if _, err := s.r.Seek(rawPos, io.SeekStart); err != nil {
			return n, err
		}

		intra := int(s.pos % DataSectionSize)
		want := len(p) - n
		if remaining := DataSectionSize - intra; want > remaining {
			want = remaining
		}
		if left := total - s.pos; int64(want) > left {
			want = int(left)
		}

		read, err := io.ReadFull(s.r, p[n:n+want])
		n += read
		s.pos += int64(read)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
