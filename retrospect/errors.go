package retrospect

import "errors"

var (
	// ErrNoChunkHere means the scanner's current position does not
	// begin a recognized chunk; the caller should resynchronize.
	ErrNoChunkHere = errors.New("retrospect: no recognized chunk at this position")
	// ErrSyncLost is logged (not returned) when a Continue chunk
	// arrives with no pending definition to append to.
	ErrSyncLost = errors.New("retrospect: continue chunk with no pending definition")
	// ErrUnknownResource is logged when a Fork or Tail chunk references
	// a resource id the assembler never saw a File/Snapshot chunk for.
	ErrUnknownResource = errors.New("retrospect: fork/tail references unknown resource id")
)
