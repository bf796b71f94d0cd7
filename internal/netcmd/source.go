package netcmd

import "github.com/veandco/go-sdl2/sdl"

// Source polls a keyboard/gamepad snapshot once per tic and folds it into
// a Command, mirroring InputSystem's latch/read split: a continuously
// updated current-state buffer, sampled once per tic rather than read
// live mid-simulation.
type Source interface {
	// Sample reads the current input state and latches it into a Command
	// for the tic about to run.
	Sample() Command
}

// SDLSource reads SDL2's live keyboard state buffer on each Sample call.
// WASD/arrows drive forward/side/turn, matching the teacher's
// applyFyneKeyStates WASD-to-bitfield mapping generalized from discrete
// buttons to signed movement deltas; space/ctrl/e/F5 map to the button
// bitset.
type SDLSource struct {
	// Speed is the per-tic forward/side/turn magnitude applied when the
	// corresponding key is held, in the same units Command carries.
	Speed int8
}

// NewSDLSource returns a source with the classic engine's run-speed delta.
func NewSDLSource() *SDLSource {
	return &SDLSource{Speed: 50}
}

func (s *SDLSource) Sample() Command {
	keys := sdl.GetKeyboardState()
	held := func(code sdl.Scancode) bool { return keys[code] != 0 }

	var cmd Command
	if held(sdl.SCANCODE_W) || held(sdl.SCANCODE_UP) {
		cmd.Forward += s.Speed
	}
	if held(sdl.SCANCODE_S) || held(sdl.SCANCODE_DOWN) {
		cmd.Forward -= s.Speed
	}
	if held(sdl.SCANCODE_A) {
		cmd.Side -= s.Speed
	}
	if held(sdl.SCANCODE_D) {
		cmd.Side += s.Speed
	}
	if held(sdl.SCANCODE_LEFT) {
		cmd.Turn -= s.Speed
	}
	if held(sdl.SCANCODE_RIGHT) {
		cmd.Turn += s.Speed
	}
	if held(sdl.SCANCODE_SPACE) {
		cmd.Buttons |= ButtonAttack
	}
	if held(sdl.SCANCODE_E) {
		cmd.Buttons |= ButtonUse
	}
	if held(sdl.SCANCODE_LCTRL) {
		cmd.Buttons |= ButtonSpecial
	}
	if held(sdl.SCANCODE_F5) {
		cmd.Buttons |= ButtonSavegame
	}
	return cmd
}
