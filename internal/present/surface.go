// Package present supplies the window/framebuffer surface spec.md leaves
// out of scope (§1): a contract the orchestrator's renderer output can be
// pushed through, plus one concrete adapter so cmd/doomgo runs end to end.
package present

import "doomgo/internal/netcmd"

// Surface is the out-of-scope presenter contract: push one RGB24 frame per
// tic, drain whatever input events the windowing toolkit collected since
// the last call.
type Surface interface {
	// Present blits frame (row-major RGB24, w*h*3 bytes, top-to-bottom) to
	// the screen.
	Present(frame []byte, w, h int) error

	// PollEvents drains queued key/window events accumulated since the
	// last call.
	PollEvents() []netcmd.RawEvent

	Close() error
}
