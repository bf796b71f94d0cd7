package think

import (
	"doomgo/internal/enginelog"
	"doomgo/internal/mapdata"
)

// Thinker is any tickable entity the Registry owns: map-objects today,
// with moving sectors and lights as future implementers of the same
// homogeneous list (spec.md §2, §4.8).
type Thinker interface {
	ThinkerID() ThinkerID
}

func (m *MapObject) ThinkerID() ThinkerID { return m.id }

// Mover performs the per-tic position update against the map, satisfied
// by collide.Resolver. Declared here (not imported from internal/collide)
// to keep the dependency direction collide → think one-way: the resolver
// only needs the think.MovingEntity surface it already implements against
// *MapObject, and the registry only needs to call it.
type Mover interface {
	Step(entity MovingEntity, level *mapdata.Level) error
}

// MovingEntity is the surface collide.Resolver moves, matched by
// *MapObject's method set in mobj.go.
type MovingEntity interface {
	Pos() mapdata.Vec2
	SetPos(mapdata.Vec2)
	ZPos() float64
	SetZPos(float64)
	Vel() mapdata.Vec2
	SetVel(mapdata.Vec2)
	VelZPos() float64
	SetVelZPos(float64)
	RadiusOf() float64
	IsMissile() bool
	IsSkullFly() bool
	IsNoClip() bool
	IsCorpse() bool
	IsPlayerControlled() bool
	SubsectorOf() int
	SetSubsectorOf(int)
	SetFloorCeil(floor, ceil float64)
	Floor() float64
	QueueSpecialLine(linedef int)
	DetonateMissile()
}

// maxStateCycles bounds the number of state transitions a single thinker
// may make within one tic, guarding against a malformed or cyclic state
// chain hanging the simulation (spec.md §7 StateCycleOverflow).
const maxStateCycles = 1000000

// Registry owns the thinker list, the state table mobjs cycle through,
// and deferred removal bookkeeping.
type Registry struct {
	states map[StateID]State

	order    []ThinkerID
	mobjs    map[ThinkerID]*MapObject
	nextID   ThinkerID
	toFree   []ThinkerID

	log *enginelog.Logger
}

// NewRegistry creates an empty registry bound to the given state table.
func NewRegistry(states map[StateID]State, log *enginelog.Logger) *Registry {
	return &Registry{
		states: states,
		mobjs:  make(map[ThinkerID]*MapObject),
		log:    log,
	}
}

// Spawn adds a new MapObject to the registry and returns its thinker ID.
func (r *Registry) Spawn(m *MapObject) ThinkerID {
	r.nextID++
	id := r.nextID
	m.id = id
	r.mobjs[id] = m
	r.order = append(r.order, id)
	return id
}

// Get returns the MapObject for id, or nil if it doesn't exist (already
// removed, or never spawned).
func (r *Registry) Get(id ThinkerID) *MapObject { return r.mobjs[id] }

// Len reports the number of live thinkers.
func (r *Registry) Len() int { return len(r.order) }

// All returns the live MapObjects in insertion order. Callers must not
// retain the slice across a Tick call.
func (r *Registry) All() []*MapObject {
	out := make([]*MapObject, 0, len(r.order))
	for _, id := range r.order {
		if m, ok := r.mobjs[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Tick advances every live thinker once: movement via mover.Step, then
// state-transition cycling, then queues thinkers whose state chain reached
// StateNull for removal. Removal itself is deferred to EndTic so a
// thinker's neighbors are never unlinked mid-iteration (spec.md Design
// Notes §9).
func (r *Registry) Tick(level *mapdata.Level, mover Mover, dt float64) error {
	for _, id := range r.order {
		m, ok := r.mobjs[id]
		if !ok {
			continue
		}

		if !m.Flags.Has(FlagNoClip) && mover != nil {
			if err := mover.Step(m, level); err != nil {
				return err
			}
		}

		if err := r.cycleState(m); err != nil {
			// A state-cycle overflow is non-fatal (spec.md §7): cycleState
			// has already logged it and transitioned m to StateNull, so the
			// removal check below picks it up. Only a genuinely unexpected
			// error kind should unwind the whole tic.
			if _, ok := err.(*StateCycleOverflow); !ok {
				return err
			}
		}

		if m.pendingRemoval || m.State == StateNull {
			r.toFree = append(r.toFree, id)
		}
	}
	return nil
}

// cycleState decrements the current state's tic countdown and advances
// through Next transitions, invoking each state's action once, bounded by
// maxStateCycles to catch a runaway state chain within a single tic.
func (r *Registry) cycleState(m *MapObject) error {
	if m.State == StateNull {
		return nil
	}

	cycles := 0
	for {
		st, ok := r.states[m.State]
		if !ok {
			// An unregistered state behaves like an infinite no-op state.
			return nil
		}

		if st.Tics < 0 {
			return nil // infinite-duration state, never auto-advances
		}
		if m.Tics > 0 {
			m.Tics--
			return nil
		}

		m.State = st.Next
		if m.State == StateNull {
			dispatchAction(ActionRemove, m)
			return nil
		}

		next := r.states[m.State]
		m.Tics = next.Tics
		dispatchAction(next.Action, m)

		cycles++
		if cycles >= maxStateCycles {
			if r.log != nil {
				r.log.Once(enginelog.ComponentThink, enginelog.LevelError, "state cycle overflow")
			}
			m.State = StateNull
			return &StateCycleOverflow{ThinkerID: int(m.id)}
		}
	}
}

// EndTic drains the deferred-removal set, unlinking each finished thinker
// in one operation.
func (r *Registry) EndTic() {
	if len(r.toFree) == 0 {
		return
	}
	free := make(map[ThinkerID]bool, len(r.toFree))
	for _, id := range r.toFree {
		free[id] = true
		delete(r.mobjs, id)
	}
	kept := r.order[:0]
	for _, id := range r.order {
		if !free[id] {
			kept = append(kept, id)
		}
	}
	r.order = kept
	r.toFree = nil
}

// StateCycleOverflow mirrors engineerr.StateCycleOverflowError without
// importing engineerr, so think stays a leaf package in the dependency
// graph. Tick treats it as non-fatal and never returns it to the caller.
type StateCycleOverflow struct {
	ThinkerID int
}

func (e *StateCycleOverflow) Error() string {
	return "thinker state cycle exceeded runaway guard"
}
