// Package retrospect parses the Retrospect backup-format chunk stream
// recovered from a tape cartridge's logical byte stream, reassembling
// directories and files into an archive.
package retrospect

import "time"

// Kind identifies which of the Retrospect chunk types a Chunk value
// holds.
type Kind int

const (
	KindDirectory Kind = iota
	KindFile
	KindFork
	KindContinue
	KindTail
	KindSnapshot
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindFork:
		return "fork"
	case KindContinue:
		return "continue"
	case KindTail:
		return "tail"
	case KindSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// Chunk is one parsed record from the chunk stream. Only the fields
// relevant to its Kind are populated; the rest are left at zero value.
type Chunk struct {
	Kind Kind

	// Length is the chunk's total on-disk length, magic and length
	// field included, as declared by the chunk itself.
	Length int

	// Directory, File
	FolderID     uint32
	ParentID     uint32
	ResourceID   uint32
	Name         string
	FileSize     uint32
	LastModified time.Time
	BackupTime   time.Time

	// Fork, Continue
	Data []byte

	// Snapshot
	RememberID       uint32
	ParentFolderName string
	FinderType       string
}

// macEpoch is the Mac HFS epoch, 1904-01-01 00:00:00 UTC, the base for
// every timestamp field in the chunk stream.
var macEpoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

func macTime(seconds uint32) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	return macEpoch.Add(time.Duration(seconds) * time.Second)
}
