package cartridge

// fromLogicalADR30 maps a logical block to its physical (track, x).
//
// The tape is one long serpentine pass across all 24 tracks except the
// last, which is a dedicated fast lane read end-to-end in one sweep.
func fromLogicalADR30(c Constants, logical int) (track, x int, err error) {
	fastLaneStart := c.LogicalBlockCount - c.FramesPerTrack
	if logical >= fastLaneStart {
		return c.TrackCount - 1, (c.LogicalBlockCount - 1) - logical, nil
	}
	track, x, err = serpentineFromOffset(c.TrackCount, c.BlocksPerTrackSegment, fastLaneStart, logical)
	return track, x, err
}

func toLogicalADR30(c Constants, track, x int) (int, error) {
	if track == c.TrackCount-1 {
		return (c.LogicalBlockCount - 1) - x, nil
	}
	fastLaneStart := c.LogicalBlockCount - c.FramesPerTrack
	return serpentineToOffset(c.TrackCount, c.BlocksPerTrackSegment, fastLaneStart, track, x)
}

// arcserveAdvance implements the generic "go straight until end of
// track, then turn around" physical traversal shared by ADR30 and the
// ADR50 skip_parking_zone=false mode.
func arcserveAdvance(trackCount, framesPerTrack, track, x int) (newTrack, newX int, ok bool) {
	even := track%2 == 0
	switch {
	case even && x < framesPerTrack-1:
		return track, x + 1, true
	case even:
		return track + 1, x, true
	case !even && x > 0:
		return track, x - 1, true
	case track == trackCount-1:
		return track, x, false
	default:
		return track + 1, x, true
	}
}
