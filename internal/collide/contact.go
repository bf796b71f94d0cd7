package collide

import (
	"math"

	"doomgo/internal/mapdata"
)

// contact is one seg the swept circle touched during a sub-step.
type contact struct {
	seg        int // index into level.Segs
	linedef    int
	penetration float64
	normal     mapdata.Vec2 // unit, points away from the wall into free space
	tangent    mapdata.Vec2 // unit, perpendicular to normal
	blocking   bool
	special    bool // linedef.Type != 0
}

func vsub(a, b mapdata.Vec2) mapdata.Vec2 { return mapdata.Vec2{X: a.X - b.X, Y: a.Y - b.Y} }
func vadd(a, b mapdata.Vec2) mapdata.Vec2 { return mapdata.Vec2{X: a.X + b.X, Y: a.Y + b.Y} }
func vscale(a mapdata.Vec2, s float64) mapdata.Vec2 { return mapdata.Vec2{X: a.X * s, Y: a.Y * s} }
func vdot(a, b mapdata.Vec2) float64 { return a.X*b.X + a.Y*b.Y }
func vlen(a mapdata.Vec2) float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}
func vnorm(a mapdata.Vec2) mapdata.Vec2 {
	l := vlen(a)
	if l == 0 {
		return mapdata.Vec2{}
	}
	return vscale(a, 1/l)
}

// closestPointOnSegment returns the point on segment a-b nearest to p, and
// the parametric t in [0,1] it corresponds to.
func closestPointOnSegment(p, a, b mapdata.Vec2) (mapdata.Vec2, float64) {
	ab := vsub(b, a)
	lenSq := vdot(ab, ab)
	if lenSq == 0 {
		return a, 0
	}
	t := vdot(vsub(p, a), ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return vadd(a, vscale(ab, t)), t
}

// sweepCircleVsSegment tests a circle of radius r, centered at p and
// displaced by v, against segment a-b. It reports a contact at the
// prospective position (p+v): spec.md §4.4 step 4.
func sweepCircleVsSegment(p, v mapdata.Vec2, r float64, a, b mapdata.Vec2) (mapdata.Vec2, mapdata.Vec2, float64, bool) {
	prospective := vadd(p, v)
	closest, _ := closestPointOnSegment(prospective, a, b)
	diff := vsub(prospective, closest)
	dist := vlen(diff)
	if dist >= r {
		return mapdata.Vec2{}, mapdata.Vec2{}, 0, false
	}

	var normal mapdata.Vec2
	if dist > 1e-9 {
		normal = vscale(diff, 1/dist)
	} else {
		// Centered exactly on the segment: fall back to the segment's own
		// perpendicular, oriented toward the circle's prior position.
		ab := vsub(b, a)
		perp := mapdata.Vec2{X: -ab.Y, Y: ab.X}
		normal = vnorm(perp)
		if vdot(normal, vsub(p, closest)) < 0 {
			normal = vscale(normal, -1)
		}
	}

	penetration := r - dist
	return normal, mapdata.Vec2{X: -normal.Y, Y: normal.X}, penetration, true
}
