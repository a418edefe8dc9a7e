// Package blockmap assembles the tape-frame dump into a physical-id ->
// TapeBlock map and presents the logically-ordered byte stream over it.
//
// Grounded on the teacher's tableReader/inodeReader idiom (tablereader.go,
// inodereader.go): a small struct wrapping an io.ReaderAt, read once at
// construction, exposed read-only afterward.
package blockmap

import (
	"encoding/binary"
	"io"

	"github.com/kneesnap/onstream-tape/cartridge"
)

const (
	DataSectionSize    = 32768
	AuxSectionSize     = 512
	FullSectionSize    = DataSectionSize + AuxSectionSize
	WriteStopSignature = 0x57545354 // "WTST"
)

// TapeBlock is one captured tape frame.
type TapeBlock struct {
	PhysicalID   uint32
	Payload      [DataSectionSize]byte
	Aux          [AuxSectionSize]byte
	SourceOffset uint64
	Signature    uint32
}

// IsWriteStop reports whether this block was produced by a write-stop
// event; its payload MUST NOT be handed to the chunk parser.
func (b *TapeBlock) IsWriteStop() bool {
	return b.Signature == WriteStopSignature
}

// Map is a physical-id -> TapeBlock table, built once and read-only
// thereafter. It may be shared across multiple InterwovenStream readers.
type Map struct {
	blocks map[uint32]*TapeBlock
}

// NewMap returns an empty map, ready for AddFile calls.
func NewMap() *Map {
	return &Map{blocks: make(map[uint32]*TapeBlock)}
}

// Get returns the block for a physical id, if present.
func (m *Map) Get(physicalID uint32) (*TapeBlock, bool) {
	b, ok := m.blocks[physicalID]
	return b, ok
}

// Len returns the number of distinct physical blocks captured.
func (m *Map) Len() int { return len(m.blocks) }

// Each calls fn once per captured block, in unspecified order.
func (m *Map) Each(fn func(physicalID uint32, block *TapeBlock)) {
	for id, b := range m.blocks {
		fn(id, b)
	}
}

// AddFile reads r as a sequence of FullSectionSize frames and adds each
// to the map. sourceOffset is the byte offset of the start of r within
// its original dump file, used to populate TapeBlock.SourceOffset.
//
// Duplicate physical ids keep the first occurrence seen across all
// AddFile calls.
func (m *Map) AddFile(r io.Reader, sourceOffset uint64) error {
	buf := make([]byte, FullSectionSize)
	offset := sourceOffset
	for {
		n, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			// Trailing partial frame: not a full capture, ignore it.
			return nil
		}
		if err != nil {
			return err
		}
		if n != FullSectionSize {
			return nil
		}

		aux := buf[DataSectionSize:]
		signature := binary.BigEndian.Uint32(aux[0:4])
		physicalID := binary.BigEndian.Uint32(aux[8:12])

		if _, exists := m.blocks[physicalID]; !exists {
			block := &TapeBlock{
				PhysicalID:   physicalID,
				SourceOffset: offset,
				Signature:    signature,
			}
			copy(block.Payload[:], buf[:DataSectionSize])
			copy(block.Aux[:], aux)
			m.blocks[physicalID] = block
		}

		offset += FullSectionSize
	}
}

// physicalIDFor returns the packed physical id holding logical block k.
func physicalIDFor(kind cartridge.Kind, logical uint32) (uint32, error) {
	p, err := cartridge.FromLogical(kind, logical)
	if err != nil {
		return 0, err
	}
	return p.ToPhysical(), nil
}
