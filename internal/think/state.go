package think

import "doomgo/internal/mapdata"

// ActionKind tags the per-state callback invoked once on every transition
// into that state. Using a tagged enum plus a dispatch table (rather than a
// function pointer stored on the state, as the original does) keeps states
// as const data with no vtable and no dynamic allocation, per spec.md
// Design Notes §9 — grounded on the teacher's opcode-dispatch idiom in
// internal/cpu/instructions.go (generalized from a `switch opcode` to a
// map lookup since the action set here is open to registration by game
// content rather than fixed hardware opcodes).
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionLook
	ActionChase
	ActionMissileExplode
	ActionPain
	ActionDie
	ActionRemove
)

// StateID indexes into a Registry's state table. StateNull is the sentinel
// that ends a mobj's think cycle and removes it from the thinker list.
type StateID int

const StateNull StateID = -1

// State is one entry of a mobj's state-machine data: how long it persists
// and which state follows it, plus the action fired on entry.
type State struct {
	Tics   int // -1 means infinite (never auto-advances)
	Next   StateID
	Action ActionKind
}

// actionTable dispatches an ActionKind to its handler. Populated once at
// package init; callers never branch on ActionKind directly.
var actionTable = map[ActionKind]func(*MapObject){
	ActionNone:            func(*MapObject) {},
	ActionLook:            actionLook,
	ActionChase:           actionChase,
	ActionMissileExplode:  actionMissileExplode,
	ActionPain:            actionPain,
	ActionDie:             actionDie,
	ActionRemove:          actionRemove,
}

func actionLook(m *MapObject) {
	// Monster AI is out of scope (spec.md §1 Non-goals); this is the
	// trigger sink the orchestrator's state cycling calls into.
}

func actionChase(m *MapObject) {}

func actionMissileExplode(m *MapObject) {
	m.Velocity = mapdata.Vec2{}
	m.VelZ = 0
	m.Flags &^= FlagMissile
}

func actionPain(m *MapObject) {}

func actionDie(m *MapObject) {
	m.Flags |= FlagCorpse
	m.Flags &^= FlagSolid | FlagShootable
}

func actionRemove(m *MapObject) {
	m.pendingRemoval = true
}

// dispatchAction invokes the handler registered for kind, a no-op if kind
// is unregistered.
func dispatchAction(kind ActionKind, m *MapObject) {
	if fn, ok := actionTable[kind]; ok {
		fn(m)
	}
}
