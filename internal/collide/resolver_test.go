package collide

import (
	"math"
	"testing"

	"doomgo/internal/mapdata"
)

// fakeEntity is a minimal think.MovingEntity for resolver tests, avoiding a
// dependency on internal/think's Registry machinery.
type fakeEntity struct {
	pos       mapdata.Vec2
	z         float64
	vel       mapdata.Vec2
	velZ      float64
	radius    float64
	missile   bool
	skullFly  bool
	noClip    bool
	corpse    bool
	player    bool
	subsector int
	floor     float64
	ceil      float64
	special   []int
	detonated bool
}

func (e *fakeEntity) Pos() mapdata.Vec2            { return e.pos }
func (e *fakeEntity) SetPos(p mapdata.Vec2)        { e.pos = p }
func (e *fakeEntity) ZPos() float64                { return e.z }
func (e *fakeEntity) SetZPos(z float64)            { e.z = z }
func (e *fakeEntity) Vel() mapdata.Vec2            { return e.vel }
func (e *fakeEntity) SetVel(v mapdata.Vec2)        { e.vel = v }
func (e *fakeEntity) VelZPos() float64             { return e.velZ }
func (e *fakeEntity) SetVelZPos(v float64)         { e.velZ = v }
func (e *fakeEntity) RadiusOf() float64            { return e.radius }
func (e *fakeEntity) IsMissile() bool              { return e.missile }
func (e *fakeEntity) IsSkullFly() bool             { return e.skullFly }
func (e *fakeEntity) IsNoClip() bool               { return e.noClip }
func (e *fakeEntity) IsCorpse() bool               { return e.corpse }
func (e *fakeEntity) IsPlayerControlled() bool     { return e.player }
func (e *fakeEntity) SubsectorOf() int             { return e.subsector }
func (e *fakeEntity) SetSubsectorOf(ss int)        { e.subsector = ss }
func (e *fakeEntity) Floor() float64               { return e.floor }
func (e *fakeEntity) SetFloorCeil(f, c float64)    { e.floor, e.ceil = f, c }
func (e *fakeEntity) QueueSpecialLine(linedef int) { e.special = append(e.special, linedef) }
func (e *fakeEntity) DetonateMissile()             { e.detonated = true; e.vel = mapdata.Vec2{} }

// squareRoomLevel builds a synthetic one-sector 200x200 room with a single
// solid south wall at y=0 the tests drive entities into, matching the
// shape of spec.md §8's "collision against a blocking wall" scenario.
func squareRoomLevel() *mapdata.Level {
	lvl := &mapdata.Level{
		Vertices: []mapdata.Vertex{
			{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 200}, {X: 0, Y: 200},
		},
		Sectors: []mapdata.Sector{
			{FloorHeight: 0, CeilHeight: 128},
		},
		SideDefs: []mapdata.SideDef{
			{Sector: 0}, {Sector: 0}, {Sector: 0}, {Sector: 0},
		},
		LineDefs: []mapdata.LineDef{
			{V1: 0, V2: 1, FrontSide: 0, BackSide: mapdata.NoSidedef, Flags: mapdata.LineBlocking},
			{V1: 1, V2: 2, FrontSide: 1, BackSide: mapdata.NoSidedef, Flags: mapdata.LineBlocking},
			{V1: 2, V2: 3, FrontSide: 2, BackSide: mapdata.NoSidedef, Flags: mapdata.LineBlocking},
			{V1: 3, V2: 0, FrontSide: 3, BackSide: mapdata.NoSidedef, Flags: mapdata.LineBlocking},
		},
		Segs: []mapdata.Seg{
			{V1: 0, V2: 1, Linedef: 0, Side: 0},
			{V1: 1, V2: 2, Linedef: 1, Side: 0},
			{V1: 2, V2: 3, Linedef: 2, Side: 0},
			{V1: 3, V2: 0, Linedef: 3, Side: 0},
		},
		SubSectors: []mapdata.SubSector{{FirstSeg: 0, SegCount: 4, Sector: 0}},
		RootNode:   0,
	}
	return lvl
}

func TestStepMovesFreelyInOpenSpace(t *testing.T) {
	lvl := squareRoomLevel()
	r := New(nil)
	e := &fakeEntity{pos: mapdata.Vec2{X: 100, Y: 100}, radius: 16, vel: mapdata.Vec2{X: 5, Y: 0}}

	if err := r.Step(e, lvl); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if e.pos.X <= 100 {
		t.Errorf("pos.X = %v, want > 100 after moving freely", e.pos.X)
	}
}

func TestStepBlocksAgainstOneSidedWall(t *testing.T) {
	lvl := squareRoomLevel()
	r := New(nil)
	// Drive straight south into the y=0 wall from just inside the radius.
	e := &fakeEntity{pos: mapdata.Vec2{X: 100, Y: 20}, radius: 16, vel: mapdata.Vec2{X: 0, Y: -30}}

	for i := 0; i < 5; i++ {
		if err := r.Step(e, lvl); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if e.pos.Y < 16-1e-6 {
		t.Errorf("entity penetrated the wall: pos.Y = %v, want >= radius (16)", e.pos.Y)
	}
}

func TestStepDetonatesMissileOnBlockingContact(t *testing.T) {
	lvl := squareRoomLevel()
	r := New(nil)
	e := &fakeEntity{pos: mapdata.Vec2{X: 100, Y: 20}, radius: 8, vel: mapdata.Vec2{X: 0, Y: -30}, missile: true}

	for i := 0; i < 5 && !e.detonated; i++ {
		if err := r.Step(e, lvl); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if !e.detonated {
		t.Fatal("expected missile to detonate against the blocking wall")
	}
	if e.vel != (mapdata.Vec2{}) {
		t.Errorf("velocity after detonation = %v, want zero", e.vel)
	}
}

// openArchwayLevel builds two sectors at the same floor/ceiling height
// joined by an open, unflagged two-sided linedef at y=100 — a gap a
// walking entity passes through freely, with neither LineBlocking nor
// BlockMonsters set and no unstep-able ledge.
func openArchwayLevel() *mapdata.Level {
	return &mapdata.Level{
		Vertices: []mapdata.Vertex{
			{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}, {X: 0, Y: 100},
			{X: 200, Y: 200}, {X: 0, Y: 200},
		},
		Sectors: []mapdata.Sector{
			{FloorHeight: 0, CeilHeight: 128},
			{FloorHeight: 0, CeilHeight: 128},
		},
		SideDefs: []mapdata.SideDef{
			{Sector: 0}, {Sector: 0}, {Sector: 0}, {Sector: 1},
		},
		LineDefs: []mapdata.LineDef{
			{V1: 0, V2: 1, FrontSide: 0, BackSide: mapdata.NoSidedef, Flags: mapdata.LineBlocking},
			{V1: 1, V2: 2, FrontSide: 1, BackSide: mapdata.NoSidedef, Flags: mapdata.LineBlocking},
			{V1: 3, V2: 0, FrontSide: 2, BackSide: mapdata.NoSidedef, Flags: mapdata.LineBlocking},
			// The open archway: two-sided, no blocking flags, zero step.
			{V1: 2, V2: 3, FrontSide: 3, BackSide: 0},
		},
		Segs: []mapdata.Seg{
			{V1: 0, V2: 1, Linedef: 0, Side: 0},
			{V1: 1, V2: 2, Linedef: 1, Side: 0},
			{V1: 3, V2: 0, Linedef: 2, Side: 0},
			{V1: 2, V2: 3, Linedef: 3, Side: 0},
		},
		SubSectors: []mapdata.SubSector{{FirstSeg: 0, SegCount: 4, Sector: 0}},
		RootNode:   0,
	}
}

func TestStepPassesFreelyThroughOpenArchway(t *testing.T) {
	lvl := openArchwayLevel()
	r := New(nil)
	e := &fakeEntity{pos: mapdata.Vec2{X: 100, Y: 80}, radius: 16, vel: mapdata.Vec2{X: 0, Y: 30}}

	if err := r.Step(e, lvl); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if e.pos.Y <= 80 {
		t.Errorf("pos.Y = %v, want > 80: a walking entity should pass through the open archway", e.pos.Y)
	}
}

func TestStepDetonatesMissileInOpenArchwayGap(t *testing.T) {
	lvl := openArchwayLevel()
	r := New(nil)
	// Same open, unflagged archway a walking entity passes through freely
	// (TestStepPassesFreelyThroughOpenArchway) must still detonate a
	// missile on contact, per spec.md §4.4 step 5's missile-always-blocks
	// rule.
	e := &fakeEntity{pos: mapdata.Vec2{X: 100, Y: 80}, radius: 16, vel: mapdata.Vec2{X: 0, Y: 30}, missile: true}

	for i := 0; i < 5 && !e.detonated; i++ {
		if err := r.Step(e, lvl); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if !e.detonated {
		t.Fatal("expected missile to detonate against the open archway's two-sided linedef")
	}
}

func TestFrictionDecaysGroundedVelocityAndSnapsToZero(t *testing.T) {
	lvl := squareRoomLevel()
	r := New(nil)
	e := &fakeEntity{pos: mapdata.Vec2{X: 100, Y: 100}, radius: 16, vel: mapdata.Vec2{X: 0.05, Y: 0}, floor: 0, z: 0}

	if err := r.Step(e, lvl); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if e.vel.X != 0 {
		t.Errorf("vel.X = %v, want 0 (below stopSpeed snaps to zero)", e.vel.X)
	}
}

func TestFrictionSkippedWhenAirborne(t *testing.T) {
	lvl := squareRoomLevel()
	r := New(nil)
	e := &fakeEntity{pos: mapdata.Vec2{X: 100, Y: 100}, radius: 16, vel: mapdata.Vec2{X: 5, Y: 0}, floor: 0, z: 40}

	if err := r.Step(e, lvl); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if math.Abs(e.vel.X-5) > 1e-9 {
		t.Errorf("vel.X = %v, want unchanged 5 while airborne", e.vel.X)
	}
}

func TestSpecialLineIsQueuedOnContact(t *testing.T) {
	lvl := squareRoomLevel()
	lvl.LineDefs[0].Type = 1 // door trigger
	r := New(nil)
	e := &fakeEntity{pos: mapdata.Vec2{X: 100, Y: 20}, radius: 16, vel: mapdata.Vec2{X: 0, Y: -30}}

	for i := 0; i < 5; i++ {
		r.Step(e, lvl)
	}

	if len(e.special) == 0 {
		t.Fatal("expected the south wall's special line to be queued on contact")
	}
}
