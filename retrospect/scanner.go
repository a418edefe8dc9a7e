package retrospect

import (
	"io"

	"github.com/kneesnap/onstream-tape/binio"
)

// Chunk magics: four ASCII bytes at the start of every chunk, followed
// immediately by a big-endian uint32 declaring the chunk's total length.
var (
	magicDirectory = [4]byte{'F', 'D', 'I', 'R'}
	magicFile      = [4]byte{'F', 'I', 'L', 'E'}
	magicFork      = [4]byte{'F', 'O', 'R', 'K'}
	magicContinue  = [4]byte{'C', 'O', 'N', 'T'}
	magicTail      = [4]byte{'T', 'A', 'I', 'L'}
	magicSnapshot  = [4]byte{'S', 'N', 'A', 'P'}
)

const headerSize = 8 // magic + length

func kindForMagic(m [4]byte) (Kind, bool) {
	switch m {
	case magicDirectory:
		return KindDirectory, true
	case magicFile:
		return KindFile, true
	case magicFork:
		return KindFork, true
	case magicContinue:
		return KindContinue, true
	case magicTail:
		return KindTail, true
	case magicSnapshot:
		return KindSnapshot, true
	default:
		return 0, false
	}
}

// Scanner walks a chunk stream, resynchronizing one byte at a time
// whenever the bytes at its current position do not form a recognized,
// internally-consistent chunk. Real tape damage routinely corrupts a
// handful of bytes mid-stream; a scanner that gave up at the first
// malformed chunk would lose everything after it instead of just that
// one record.
type Scanner struct {
	src  io.ReaderAt
	size int64
	pos  int64
}

// NewScanner wraps src, a stream of size bytes, positioned at offset 0.
func NewScanner(src io.ReaderAt, size int64) *Scanner {
	return &Scanner{src: src, size: size}
}

// Pos returns the scanner's current stream offset.
func (s *Scanner) Pos() int64 { return s.pos }

// Seek moves the scanner to an absolute stream offset, e.g. to skip a
// leading header region that never contains chunk data.
func (s *Scanner) Seek(pos int64) { s.pos = pos }

// Next returns the next chunk along with the stream offset it started
// at (which may be ahead of the offset Next was called at, if bytes in
// between had to be skipped to resynchronize). It returns io.EOF once
// the end of the stream is reached with no further chunk found.
func (s *Scanner) Next() (Chunk, int64, error) {
	for s.pos < s.size {
		start := s.pos
		c, err := s.tryParseAt(start)
		if err == nil {
			s.pos = start + int64(c.Length)
			return c, start, nil
		}
		s.pos++
	}
	return Chunk{}, 0, io.EOF
}

func (s *Scanner) tryParseAt(pos int64) (Chunk, error) {
	if pos+headerSize > s.size {
		return Chunk{}, ErrNoChunkHere
	}

	var magic [4]byte
	buf := magic[:]
	if _, err := s.src.ReadAt(buf, pos); err != nil {
		return Chunk{}, ErrNoChunkHere
	}
	kind, ok := kindForMagic(magic)
	if !ok {
		return Chunk{}, ErrNoChunkHere
	}

	br := binio.NewReader(s.src, binio.Big)
	br.Seek(pos + 4)
	length, err := br.U32()
	if err != nil {
		return Chunk{}, ErrNoChunkHere
	}
	if int64(length) < headerSize || pos+int64(length) > s.size {
		return Chunk{}, ErrNoChunkHere
	}

	body := int(length) - headerSize
	c, err := decodeBody(kind, br, body)
	if err != nil {
		return Chunk{}, ErrNoChunkHere
	}
	if br.Pos() > pos+int64(length) {
		// The decoded fields ran past the chunk's declared length.
		return Chunk{}, ErrNoChunkHere
	}
	c.Kind = kind
	c.Length = int(length)
	return c, nil
}

func decodeBody(kind Kind, br *binio.Reader, bodyLen int) (Chunk, error) {
	switch kind {
	case KindDirectory:
		return decodeDirectory(br)
	case KindFile:
		return decodeFile(br)
	case KindFork:
		return decodeFork(br, bodyLen)
	case KindContinue:
		return decodeContinue(br, bodyLen)
	case KindTail:
		return decodeTail(br)
	case KindSnapshot:
		return decodeSnapshot(br)
	default:
		return Chunk{}, ErrNoChunkHere
	}
}

func decodeDirectory(br *binio.Reader) (Chunk, error) {
	folderID, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	parentID, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	lastModified, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	backupTime, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	name, err := br.NulString()
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{
		FolderID:     folderID,
		ParentID:     parentID,
		LastModified: macTime(lastModified),
		BackupTime:   macTime(backupTime),
		Name:         name,
	}, nil
}

func decodeFile(br *binio.Reader) (Chunk, error) {
	resourceID, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	folderID, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	fileSize, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	lastModified, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	backupTime, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	name, err := br.NulString()
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{
		ResourceID:   resourceID,
		FolderID:     folderID,
		FileSize:     fileSize,
		LastModified: macTime(lastModified),
		BackupTime:   macTime(backupTime),
		Name:         name,
	}, nil
}

func decodeFork(br *binio.Reader, bodyLen int) (Chunk, error) {
	resourceID, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	if bodyLen < 4 {
		return Chunk{}, ErrNoChunkHere
	}
	data, err := br.RawBytes(bodyLen - 4)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{ResourceID: resourceID, Data: data}, nil
}

func decodeContinue(br *binio.Reader, bodyLen int) (Chunk, error) {
	data, err := br.RawBytes(bodyLen)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Data: data}, nil
}

func decodeTail(br *binio.Reader) (Chunk, error) {
	resourceID, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{ResourceID: resourceID}, nil
}

func decodeSnapshot(br *binio.Reader) (Chunk, error) {
	rememberID, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	fileSize, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	backupTime, err := br.U32()
	if err != nil {
		return Chunk{}, err
	}
	finderType, err := br.RawString(4)
	if err != nil {
		return Chunk{}, err
	}
	parentFolderName, err := br.NulString()
	if err != nil {
		return Chunk{}, err
	}
	folderName, err := br.NulString()
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{
		RememberID:       rememberID,
		FileSize:         fileSize,
		BackupTime:       macTime(backupTime),
		FinderType:       finderType,
		ParentFolderName: parentFolderName,
		Name:             folderName,
	}, nil
}
