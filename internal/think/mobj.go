package think

import "doomgo/internal/mapdata"

// ThinkerID identifies a live thinker in a Registry.
type ThinkerID int

// Player is the minimal back-pointer surface a MapObject needs into the
// owning player; the full Player record (weapons/ammo/HUD state) lives in
// the orchestrator, out of scope here beyond the fields movement and
// rendering consult.
type Player struct {
	ViewHeight float64
	Forward, Side, Turn float64 // not set or read; the orchestrator applies each tic's command from its own Player.Cmd
}

// MapObject is a spawned entity: a monster, item, projectile, or the
// player's own body (spec.md §3).
type MapObject struct {
	id ThinkerID

	Position mapdata.Vec2
	Z        float64
	Angle    float64

	Velocity mapdata.Vec2
	VelZ     float64

	Radius, Height float64
	FloorZ, CeilZ  float64

	State StateID
	Tics  int
	Flags Flag

	Subsector int
	Target    ThinkerID
	HasTarget bool
	Player    *Player

	specialLines   []int
	pendingRemoval bool
}

// ID returns the thinker identity assigned when this object was spawned.
func (m *MapObject) ID() ThinkerID { return m.id }

// --- MovingEntity implementation (the surface collide.Resolver moves) ---

func (m *MapObject) Pos() mapdata.Vec2          { return m.Position }
func (m *MapObject) SetPos(p mapdata.Vec2)      { m.Position = p }
func (m *MapObject) ZPos() float64              { return m.Z }
func (m *MapObject) SetZPos(z float64)          { m.Z = z }
func (m *MapObject) Vel() mapdata.Vec2          { return m.Velocity }
func (m *MapObject) SetVel(v mapdata.Vec2)      { m.Velocity = v }
func (m *MapObject) VelZPos() float64           { return m.VelZ }
func (m *MapObject) SetVelZPos(v float64)       { m.VelZ = v }
func (m *MapObject) RadiusOf() float64          { return m.Radius }
func (m *MapObject) IsMissile() bool            { return m.Flags.Has(FlagMissile) }
func (m *MapObject) IsSkullFly() bool           { return m.Flags.Has(FlagSkullFly) }
func (m *MapObject) IsNoClip() bool             { return m.Flags.Has(FlagNoClip) }
func (m *MapObject) IsCorpse() bool             { return m.Flags.Has(FlagCorpse) }
func (m *MapObject) IsPlayerControlled() bool   { return m.Player != nil }
func (m *MapObject) SubsectorOf() int           { return m.Subsector }
func (m *MapObject) SetSubsectorOf(ss int)      { m.Subsector = ss }
func (m *MapObject) SetFloorCeil(floor, ceil float64) {
	m.FloorZ, m.CeilZ = floor, ceil
}
func (m *MapObject) Floor() float64 { return m.FloorZ }
func (m *MapObject) QueueSpecialLine(linedef int) {
	m.specialLines = append(m.specialLines, linedef)
}
func (m *MapObject) DetonateMissile() {
	m.State = StateNull
	dispatchAction(ActionMissileExplode, m)
}

// DrainSpecialLines returns and clears the special-line crossings queued
// this tic, for the orchestrator to dispatch cross_special_line once per
// line (spec.md §4.4 step 8).
func (m *MapObject) DrainSpecialLines() []int {
	lines := m.specialLines
	m.specialLines = nil
	return lines
}
