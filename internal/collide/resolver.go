// Package collide is the Movement & Collision Resolver: it steps a single
// moving entity against the map's segs one sub-step at a time, sliding
// along whatever it can't pass and recording the special lines it crosses
// for the orchestrator to dispatch (spec.md §4.4).
package collide

import (
	"math"

	"doomgo/internal/bsp"
	"doomgo/internal/enginelog"
	"doomgo/internal/mapdata"
	"doomgo/internal/think"
)

const (
	maxMove   = 30.0     // units/tic, pre-clamp ceiling
	friction  = 0.90625  // per-tic velocity decay when grounded
	stopSpeed = 0.0625   // velocity below this on both axes snaps to zero
	stepSize  = 24.0     // max floor step a walking entity can climb
)

// Resolver steps moving entities against a loaded level.
type Resolver struct {
	log *enginelog.Logger
}

// New creates a Resolver. log may be nil.
func New(log *enginelog.Logger) *Resolver {
	return &Resolver{log: log}
}

// controlBlock accumulates the floor/ceiling bounds a sub-step discovers
// while walking the contacted portals (spec.md §4.4 steps 2 and 5).
type controlBlock struct {
	minFloor   float64
	maxCeil    float64
	maxDropoff float64
}

// Step advances entity by one tic against level, per spec.md §4.4. It
// never fails: a blocked entity slides along the wall it hit, a blocked
// missile detonates, and a sub-step that would leave the map is refused.
func (r *Resolver) Step(entity think.MovingEntity, level *mapdata.Level) error {
	vel := entity.Vel()
	vel.X = clamp(vel.X, -maxMove, maxMove)
	vel.Y = clamp(vel.Y, -maxMove, maxMove)

	steps := 1
	for math.Abs(vel.X)/float64(steps) > maxMove/2 || math.Abs(vel.Y)/float64(steps) > maxMove/2 {
		steps *= 2
	}
	subVel := vscale(vel, 1/float64(steps))

	for i := 0; i < steps; i++ {
		r.subStep(entity, level, subVel)
	}

	r.applyFriction(entity)
	return nil
}

func (r *Resolver) subStep(entity think.MovingEntity, level *mapdata.Level, v mapdata.Vec2) {
	pos := entity.Pos()
	prospective := vadd(pos, v)

	ssIdx := bsp.PointInSubsector(level, prospective)
	if ssIdx < 0 || ssIdx >= len(level.SubSectors) {
		// Outside the map entirely; refuse the move.
		if r.log != nil {
			r.log.Once(enginelog.ComponentCollide, enginelog.LevelWarn, "sub-step resolved outside the map, move refused")
		}
		return
	}
	ss := level.SubSectors[ssIdx]
	sec := level.Sectors[ss.Sector]

	cb := controlBlock{minFloor: sec.FloorHeight, maxCeil: sec.CeilHeight, maxDropoff: sec.FloorHeight}

	if entity.IsNoClip() {
		entity.SetPos(prospective)
		entity.SetSubsectorOf(ssIdx)
		entity.SetFloorCeil(cb.minFloor, cb.maxCeil)
		return
	}

	contacts := r.gatherContacts(level, ss, pos, v, entity.RadiusOf(), entity.ZPos(), entity.IsPlayerControlled(), entity.IsMissile(), &cb)

	var blocking []contact
	for _, c := range contacts {
		if c.special {
			entity.QueueSpecialLine(c.linedef)
		}
		if c.blocking {
			blocking = append(blocking, c)
		}
	}

	if len(blocking) == 0 {
		entity.SetPos(prospective)
		entity.SetSubsectorOf(ssIdx)
		entity.SetFloorCeil(cb.minFloor, cb.maxCeil)
		return
	}

	if entity.IsMissile() {
		// TODO: a missile contacting a sky-flat back sector should pass
		// through without detonating instead of exploding against the sky.
		entity.SetVel(mapdata.Vec2{})
		entity.DetonateMissile()
		return
	}

	speed := vlen(v)
	slideTangent := mostObtuseTangent(blocking, v)
	newVel := vscale(slideTangent, speed)
	newPos := vadd(pos, newVel)
	for _, c := range blocking {
		newPos = vadd(newPos, vscale(c.normal, c.penetration))
	}

	entity.SetVel(newVel)
	entity.SetPos(newPos)
}

// gatherContacts tests the swept circle against every seg of ss, updating
// cb with the portal bounds of every two-sided, non-blocking seg crossed.
func (r *Resolver) gatherContacts(level *mapdata.Level, ss mapdata.SubSector, pos, v mapdata.Vec2, radius, z float64, isPlayer, isMissile bool, cb *controlBlock) []contact {
	var out []contact
	for i := ss.FirstSeg; i < ss.FirstSeg+ss.SegCount; i++ {
		seg := level.Segs[i]
		v1 := level.Vertices[seg.V1]
		v2 := level.Vertices[seg.V2]
		normal, tangent, pen, hit := sweepCircleVsSegment(pos, v, radius, mapdata.Vec2{X: v1.X, Y: v1.Y}, mapdata.Vec2{X: v2.X, Y: v2.Y})
		if !hit {
			continue
		}

		ld := level.LineDefs[seg.Linedef]
		c := contact{seg: i, linedef: seg.Linedef, penetration: pen, normal: normal, tangent: tangent, special: ld.Type != 0}

		oneSided := ld.BackSide == mapdata.NoSidedef
		if oneSided {
			c.blocking = true
			out = append(out, c)
			continue
		}

		front := level.Sectors[level.SideDefs[ld.FrontSide].Sector]
		back := level.Sectors[level.SideDefs[ld.BackSide].Sector]
		topZ := math.Min(front.CeilHeight, back.CeilHeight)
		bottomZ := math.Max(front.FloorHeight, back.FloorHeight)
		lowPoint := math.Min(front.FloorHeight, back.FloorHeight)

		cb.minFloor = math.Max(cb.minFloor, bottomZ)
		cb.maxCeil = math.Min(cb.maxCeil, topZ)
		cb.maxDropoff = math.Min(cb.maxDropoff, lowPoint)

		if ldBlocks(ld, isPlayer, isMissile, bottomZ, z) {
			c.blocking = true
		}
		out = append(out, c)
	}
	return out
}

// ldBlocks applies spec.md §4.4 step 5's classification for a two-sided
// linedef: a missile always blocks on contact, ahead of the explicit
// blocking flags, monster-only blocking, and the unstep-able ledge case.
func ldBlocks(ld mapdata.LineDef, isPlayer, isMissile bool, bottomZ, z float64) bool {
	if isMissile {
		return true
	}
	if ld.Flags.Has(mapdata.LineBlocking) {
		return true
	}
	if !isPlayer && ld.Flags.Has(mapdata.LineBlockMonsters) {
		return true
	}
	if bottomZ-z > stepSize {
		return true
	}
	return false
}

// mostObtuseTangent picks the tangent of the contact whose normal most
// directly opposes v (spec.md §4.4 step 6), signed to point along v.
func mostObtuseTangent(blocking []contact, v mapdata.Vec2) mapdata.Vec2 {
	vn := vnorm(v)
	best := blocking[0]
	bestDot := vdot(vn, best.normal)
	for _, c := range blocking[1:] {
		d := vdot(vn, c.normal)
		if d < bestDot {
			bestDot = d
			best = c
		}
	}
	tangent := best.tangent
	if vdot(tangent, v) < 0 {
		tangent = vscale(tangent, -1)
	}
	return vnorm(tangent)
}

// applyFriction decays velocity for grounded, non-missile, non-skull-fly
// entities, snapping to zero below stopSpeed (spec.md §4.4 friction).
func (r *Resolver) applyFriction(entity think.MovingEntity) {
	if entity.ZPos() > entity.Floor() {
		return
	}
	if entity.IsMissile() || entity.IsSkullFly() {
		return
	}

	v := entity.Vel()
	v.X *= friction
	v.Y *= friction
	if math.Abs(v.X) < stopSpeed && math.Abs(v.Y) < stopSpeed {
		v = mapdata.Vec2{}
	}
	entity.SetVel(v)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
