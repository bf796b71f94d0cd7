// Package engineerr holds the fatal error kinds shared across the loading
// and simulation pipeline (spec §7). Each kind is its own type so callers
// can use errors.As to recover structured fields instead of string
// matching, the way the teacher wraps cartridge/CPU errors with %w.
package engineerr

import "fmt"

// MalformedArchiveError reports a WAD that fails the header/directory sanity
// checks in Archive Reader. Fatal: the process reports it and exits 1.
type MalformedArchiveError struct {
	Path   string
	Reason string
}

func (e *MalformedArchiveError) Error() string {
	return fmt.Sprintf("malformed archive %q: %s", e.Path, e.Reason)
}

// LumpMissingError reports a required per-level lump absent from the
// directory. Fatal per-level: the orchestrator refuses to load and returns
// to the previous state.
type LumpMissingError struct {
	Level string
	Lump  string
}

func (e *LumpMissingError) Error() string {
	return fmt.Sprintf("level %q: missing lump %q", e.Level, e.Lump)
}

// InvalidRecordError reports a record referencing an out-of-range index,
// e.g. a linedef pointing at vertex 50000 in a 470-vertex level.
type InvalidRecordError struct {
	Kind  string // "vertex", "sidedef", "sector", "linedef", "seg", "subsector", "node"
	Index int
	Got   int
	Max   int
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid %s reference at record %d: got %d, max %d", e.Kind, e.Index, e.Got, e.Max)
}

// NoSpawnError reports a level with no player-1 start Thing.
type NoSpawnError struct {
	Level string
}

func (e *NoSpawnError) Error() string {
	return fmt.Sprintf("level %q: no player-1 start", e.Level)
}

// StateCycleOverflowError reports a mobj state chain that ran past the
// 1,000,000-cycle runaway guard in one tic. Non-fatal: the chain is
// aborted and the mobj transitioned to the null state.
type StateCycleOverflowError struct {
	ThinkerID int
}

func (e *StateCycleOverflowError) Error() string {
	return fmt.Sprintf("thinker %d: state cycle exceeded runaway guard", e.ThinkerID)
}
