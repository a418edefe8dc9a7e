package cartridge

// serpentinePartitionLayout describes how a run of totalLen logical
// offsets is sliced into partitions of segmentSize = blocksPerTrackSegment
// * (trackCount-1), with the last partition possibly narrower than the
// rest (edgeBlocksPerTrack < blocksPerTrackSegment).
func serpentinePartitionLayout(trackCount, blocksPerTrackSegment, totalLen int) (segmentSize, maxPartition, edgeBlocksPerTrack int) {
	segmentSize = blocksPerTrackSegment * (trackCount - 1)
	maxPartition = totalLen / segmentSize
	rem := totalLen % segmentSize
	if rem == 0 {
		maxPartition--
		edgeBlocksPerTrack = blocksPerTrackSegment
	} else {
		edgeBlocksPerTrack = rem / (trackCount - 1)
	}
	return
}

func blocksPerTrackForPartition(partition, maxPartition, blocksPerTrackSegment, edgeBlocksPerTrack int) int {
	if partition == maxPartition {
		return edgeBlocksPerTrack
	}
	return blocksPerTrackSegment
}

// serpentineFromOffset maps an offset in [0, totalLen) to a (track,
// localOffset) pair, track in [0, trackCount-2], localOffset in
// [0, totalLen/(trackCount-1)-ish) -- specifically the cumulative
// per-track position used by both the ADR30 whole-tape mapping and the
// ADR50 half-tape mapping.
//
// Partitions alternate direction: even partitions visit local track 0
// through trackCount-2 in ascending order, odd partitions descending.
// Within a track, direction alternates with the track's own parity:
// even tracks run forward (localOffset increasing with the partition's
// local frame), odd tracks run backward.
func serpentineFromOffset(trackCount, blocksPerTrackSegment, totalLen, offset int) (track, localOffset int, err error) {
	if offset < 0 || offset >= totalLen {
		return 0, 0, ErrInvalidArgument
	}
	segmentSize, maxPartition, edgeBlocksPerTrack := serpentinePartitionLayout(trackCount, blocksPerTrackSegment, totalLen)

	partition := offset / segmentSize
	remainder := offset % segmentSize
	blocksPerTrack := blocksPerTrackForPartition(partition, maxPartition, blocksPerTrackSegment, edgeBlocksPerTrack)

	localTrackIndex := remainder / blocksPerTrack
	localFrame := remainder % blocksPerTrack

	if partition%2 == 0 {
		track = localTrackIndex
	} else {
		track = (trackCount - 2) - localTrackIndex
	}

	var within int
	if track%2 == 0 {
		within = localFrame
	} else {
		within = blocksPerTrack - localFrame - 1
	}
	localOffset = partition*blocksPerTrackSegment + within
	return track, localOffset, nil
}

// serpentineToOffset is the inverse of serpentineFromOffset.
func serpentineToOffset(trackCount, blocksPerTrackSegment, totalLen, track, localOffset int) (offset int, err error) {
	if track < 0 || track > trackCount-2 || localOffset < 0 {
		return 0, ErrInvalidData
	}
	segmentSize, maxPartition, edgeBlocksPerTrack := serpentinePartitionLayout(trackCount, blocksPerTrackSegment, totalLen)

	partition := localOffset / blocksPerTrackSegment
	within := localOffset % blocksPerTrackSegment
	blocksPerTrack := blocksPerTrackForPartition(partition, maxPartition, blocksPerTrackSegment, edgeBlocksPerTrack)
	if within >= blocksPerTrack {
		return 0, ErrInvalidData
	}

	var localFrame int
	if track%2 == 0 {
		localFrame = within
	} else {
		localFrame = blocksPerTrack - within - 1
	}

	var localTrackIndex int
	if partition%2 == 0 {
		localTrackIndex = track
	} else {
		localTrackIndex = (trackCount - 2) - track
	}
	if localTrackIndex < 0 || localTrackIndex >= trackCount-1 {
		return 0, ErrInvalidData
	}

	remainder := localTrackIndex*blocksPerTrack + localFrame
	offset = partition*segmentSize + remainder
	if offset < 0 || offset >= totalLen {
		return 0, ErrInvalidData
	}
	return offset, nil
}
