// Package logx is the module's shared diagnostic logger, matching the
// teacher's own "log.Printf with a package prefix" style rather than
// introducing a structured logging dependency the teacher never uses.
package logx

import "log"

const prefix = "onstream: "

// Printf logs a formatted diagnostic message.
func Printf(format string, args ...interface{}) {
	log.Printf(prefix+format, args...)
}

// Recovered logs a parse-recovery event: data the extraction driver
// chose to skip past rather than fail on (a sync-lost chunk, a missing
// tape block, a dangling unfinished buffer force-closed at end of
// stream). Kept as a distinct entry point from Printf so call sites read
// as "this is expected lossy-recovery chatter," not an unexpected error.
func Recovered(format string, args ...interface{}) {
	log.Printf(prefix+"recovered: "+format, args...)
}
