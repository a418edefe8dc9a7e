package extract

import "errors"

// Package-specific error variables that can be used with errors.Is() for
// error handling.
var (
	// ErrInvalidArgument is returned for malformed caller input: an
	// empty dump list, a nil sink.
	ErrInvalidArgument = errors.New("extract: invalid argument")
)
