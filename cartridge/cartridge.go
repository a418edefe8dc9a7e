// Package cartridge implements the OnStream ADR physical<->logical block
// coordinate system: the per-cartridge serpentine traversal rules and the
// packed 32-bit physical block identifier.
//
// Modeled on the teacher's Type (type.go) and SquashComp (comp.go) tagged
// variants: constants and behavior live on the Kind value itself rather
// than behind a shared base type, and an operation a Kind doesn't support
// returns ErrCartridgeUnsupported instead of panicking, the same way the
// teacher's inode type switches fall through to a default error branch.
package cartridge

import "errors"

// Kind identifies an OnStream cartridge family.
type Kind int

const (
	Adr30 Kind = iota
	Adr50
)

var (
	ErrInvalidArgument       = errors.New("cartridge: invalid argument")
	ErrCartridgeUnsupported  = errors.New("cartridge: operation unsupported for this cartridge kind")
	ErrInvalidData           = errors.New("cartridge: invalid data")
)

// Constants bundles the per-cartridge-kind geometry used throughout the
// traversal and mapping rules.
type Constants struct {
	TrackCount             int
	FramesPerTrack         int
	BlocksPerTrackSegment  int
	LogicalBlockCount      int
	HasParkingZone         bool

	// ADR50-only fields; zero for ADR30.
	ParkingZoneFrameCount int
	ParkingZoneStart      int
	ParkingZoneEnd        int
}

func adr30Constants() Constants {
	const trackCount = 24
	const framesPerTrack = 19239
	const blocksPerTrackSegment = 1500
	return Constants{
		TrackCount:            trackCount,
		FramesPerTrack:        framesPerTrack,
		BlocksPerTrackSegment: blocksPerTrackSegment,
		LogicalBlockCount:     trackCount * framesPerTrack,
		HasParkingZone:        false,
	}
}

func adr50Constants() Constants {
	const trackCount = 24
	const framesPerTrack = 31959
	const parkingZoneFrameCount = 99
	start := (framesPerTrack - parkingZoneFrameCount) / 2
	end := (framesPerTrack + parkingZoneFrameCount) / 2
	return Constants{
		TrackCount:            trackCount,
		FramesPerTrack:        framesPerTrack,
		BlocksPerTrackSegment: 1500,
		LogicalBlockCount:     trackCount * (framesPerTrack - parkingZoneFrameCount),
		HasParkingZone:        true,
		ParkingZoneFrameCount: parkingZoneFrameCount,
		ParkingZoneStart:      start,
		ParkingZoneEnd:        end,
	}
}

// Constants returns the geometry for k.
func (k Kind) Constants() Constants {
	switch k {
	case Adr30:
		return adr30Constants()
	case Adr50:
		return adr50Constants()
	default:
		return Constants{}
	}
}

// FastLaneTrack returns the track index of the fast lane. For ADR30 this
// is the one and only fast lane (the last track). For ADR50, callers must
// use Location-specific fast lane logic instead (BackHalf -> track 0,
// FrontHalf -> TrackCount-1); FastLaneTrack returns the ADR30-style
// single answer and is unsupported for Adr50.
func (k Kind) FastLaneTrack() (int, error) {
	c := k.Constants()
	switch k {
	case Adr30:
		return c.TrackCount - 1, nil
	default:
		return 0, ErrCartridgeUnsupported
	}
}

func (k Kind) String() string {
	switch k {
	case Adr30:
		return "ADR30"
	case Adr50:
		return "ADR50"
	default:
		return "unknown cartridge kind"
	}
}
