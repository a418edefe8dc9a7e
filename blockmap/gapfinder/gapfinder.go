// Package gapfinder walks a cartridge's physical traversal order looking
// for runs of frames missing from a blockmap.Map, the same information an
// operator needs to know which regions of a recovered tape are unusable.
package gapfinder

import (
	"sort"

	"github.com/kneesnap/onstream-tape/blockmap"
	"github.com/kneesnap/onstream-tape/cartridge"
)

// Gap is a contiguous run of physical frames with no corresponding block
// in the map, expressed as inclusive start/end positions.
type Gap struct {
	Start      cartridge.PhysicalPosition
	End        cartridge.PhysicalPosition
	BlockCount int
}

// Find walks the physical traversal order of kind, starting at the
// position of logical block 0 and advancing with
// TryIncreasePhysicalBlock(false), and reports every run of missing
// frames it passes, including a final open-ended gap if the tape ends
// mid-run. For Adr30 that start is the first physical frame, so every
// frame is checked; for Adr50 it lies just past the parking zone on
// track 0, and the track 0 frames before it are not checked. Gaps are returned sorted by (Start.X+End.X) then
// Start.Track, except a trailing gap that reaches the end of the tape,
// which is always appended last regardless of where the sort places it.
func Find(kind cartridge.Kind, m *blockmap.Map) ([]Gap, error) {
	c := kind.Constants()
	present := make([]bool, c.TrackCount*c.FramesPerTrack)

	m.Each(func(id uint32, _ *blockmap.TapeBlock) {
		p, err := cartridge.FromPhysical(kind, id)
		if err != nil {
			return
		}
		present[int(p.Track)*c.FramesPerTrack+int(p.X)] = true
	})

	p, err := cartridge.FromLogical(kind, 0)
	if err != nil {
		return nil, err
	}

	var gaps []Gap
	var current *Gap
	trailingOpen := false

	for {
		idx := int(p.Track)*c.FramesPerTrack + int(p.X)
		if present[idx] {
			if current != nil {
				gaps = append(gaps, *current)
				current = nil
			}
		} else {
			if current == nil {
				current = &Gap{Start: p.Clone(), BlockCount: 0}
			}
			current.BlockCount++
			current.End = p.Clone()
		}

		ok, err := p.TryIncreasePhysicalBlock(false)
		if err != nil {
			return nil, err
		}
		if !ok {
			if current != nil {
				gaps = append(gaps, *current)
				trailingOpen = true
			}
			break
		}
	}

	var trailing Gap
	if trailingOpen {
		trailing = gaps[len(gaps)-1]
		gaps = gaps[:len(gaps)-1]
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		si := int(gaps[i].Start.X) + int(gaps[i].End.X)
		sj := int(gaps[j].Start.X) + int(gaps[j].End.X)
		if si != sj {
			return si < sj
		}
		return gaps[i].Start.Track < gaps[j].Start.Track
	})

	if trailingOpen {
		gaps = append(gaps, trailing)
	}
	return gaps, nil
}
