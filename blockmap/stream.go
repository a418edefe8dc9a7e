package blockmap

import (
	"io"

	"github.com/kneesnap/onstream-tape/cartridge"
)

// InterwovenStream presents the logically-ordered payload bytes of a
// cartridge as a single seekable stream, resolving each logical block to
// its physical frame in m on demand. Missing frames and write-stop
// frames read back as zero-filled payload rather than failing the read,
// matching a tape recovery tool's expectation that data loss is the
// normal case, not an error condition.
type InterwovenStream struct {
	kind cartridge.Kind
	m    *Map
	pos  int64

	lastReadStart, lastReadEnd int64
	lastReadMissing            int
}

// NewInterwovenStream returns a stream over m's blocks in kind's logical
// order, positioned at offset 0.
func NewInterwovenStream(kind cartridge.Kind, m *Map) *InterwovenStream {
	return &InterwovenStream{kind: kind, m: m}
}

// Len returns the total stream length: one DataSectionSize payload per
// logical block on the cartridge, whether or not that block was captured.
func (s *InterwovenStream) Len() int64 {
	c := s.kind.Constants()
	return int64(c.LogicalBlockCount) * DataSectionSize
}

func (s *InterwovenStream) Seek(offset int64, whence int) (int64, error) {
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

// Read fills p starting at the stream's current position, crossing
// logical block boundaries transparently.
func (s *InterwovenStream) Read(p []byte) (int, error) {
	n, err := s.ReadAt(p, s.pos)
	s.pos += int64(n)
	return n, err
}

// ReadAt fills p from the logical stream starting at off, without
// disturbing the stream's Read/Seek cursor.
func (s *InterwovenStream) ReadAt(p []byte, off int64) (int, error) {
	total := s.Len()
	if off >= total {
		return 0, io.EOF
	}
	start := off
	missing := 0
	n := 0
	for n < len(p) && off < total {
		logical := uint32(off / DataSectionSize)
		intra := int(off % DataSectionSize)

		block, ok := s.blockFor(logical)
		chunk := len(p) - n
		if remaining := DataSectionSize - intra; chunk > remaining {
			chunk = remaining
		}
		if total-off < int64(chunk) {
			chunk = int(total - off)
		}

		if !ok {
			missing++
			for i := n; i < n+chunk; i++ {
				p[i] = 0
			}
		} else {
			copy(p[n:n+chunk], block.Payload[intra:intra+chunk])
		}

		n += chunk
		off += int64(chunk)
	}

	s.lastReadStart = start
	s.lastReadEnd = off
	s.lastReadMissing = missing

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *InterwovenStream) blockFor(logical uint32) (*TapeBlock, bool) {
	id, err := physicalIDFor(s.kind, logical)
	if err != nil {
		return nil, false
	}
	block, ok := s.m.Get(id)
	if !ok || block.IsWriteStop() {
		return nil, false
	}
	return block, true
}

// WasMissingDataSkipped reports whether the most recent Read or ReadAt
// call spanning startIndex substituted zero-filled data for at least one
// missing or write-stop block, and how many such blocks it substituted.
func (s *InterwovenStream) WasMissingDataSkipped(startIndex int64) (bool, int) {
	if startIndex < s.lastReadStart || startIndex >= s.lastReadEnd {
		return false, 0
	}
	return s.lastReadMissing > 0, s.lastReadMissing
}
