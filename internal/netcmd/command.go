// Package netcmd captures one player's per-tic input and hands it to the
// orchestrator as a Command, the Go-native stand-in for spec.md's "input
// source" component (deliberately out of scope, supplied here so
// cmd/doomgo runs end to end).
package netcmd

// Button bits match spec.md's Tic command bitset: attack, use, special
// (the original's "dog"/cheat harness slot), and savegame.
const (
	ButtonAttack uint8 = 1 << iota
	ButtonUse
	ButtonSpecial
	ButtonSavegame
)

// Command is one tic's worth of player input: signed forward/side/turn
// deltas plus a button bitset. One Command is consumed per tic per player,
// per spec.md §2's Tic command type.
type Command struct {
	Forward int8
	Side    int8
	Turn    int8
	Buttons uint8
}

// RawEvent is a presenter-agnostic input event a Surface implementation
// reports back to the caller between tics (key/button transitions, window
// close). It carries just enough for a Source to fold into the next
// Command; it is not itself a Command.
type RawEvent struct {
	Key     string
	Pressed bool
	Quit    bool
}
