package render

import (
	"math"

	"doomgo/internal/mapdata"
)

// frustumHalfAngle is the renderer's horizontal half field of view: ±45°,
// per spec.md §4.5's "within ±π/4 of view direction".
const frustumHalfAngle = math.Pi / 4

// projectionPlane is the screen-space projection constant 160/tan(π/4),
// which collapses to exactly half the screen width since tan(π/4) == 1.
// The divisor is the literal 1.0, so the constant does not follow a change
// to frustumHalfAngle.
const projectionPlane = (ScreenWidth / 2) / 1.0

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func bearingTo(from, to mapdata.Vec2) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// angleToScreenColumn maps a viewer-relative bearing already shifted by
// +π/2 into [0, π] to an integer screen column, per spec.md §4.7 /
// gamelib/src/renderer/bsp.rs's angle_to_screen.
func angleToScreenColumn(shifted float64) int {
	p := projectionPlane
	var x float64
	if shifted > math.Pi/2 {
		x = p - math.Tan(shifted-math.Pi/2)*p
	} else {
		x = p + math.Tan(math.Pi/2-shifted)*p
	}
	return int(x)
}

// columnToAngle is angleToScreenColumn's inverse: the viewer-relative
// bearing (radians, range roughly [-π/4, π/4]) a given screen column's
// ray points along.
func columnToAngle(x int) float64 {
	colCenter := float64(x) + 0.5
	return math.Atan((projectionPlane - colCenter) / projectionPlane)
}

func vec(v mapdata.Vertex) mapdata.Vec2 { return mapdata.Vec2{X: v.X, Y: v.Y} }

func vsub(a, b mapdata.Vec2) mapdata.Vec2   { return mapdata.Vec2{X: a.X - b.X, Y: a.Y - b.Y} }
func vadd(a, b mapdata.Vec2) mapdata.Vec2   { return mapdata.Vec2{X: a.X + b.X, Y: a.Y + b.Y} }
func vscale(a mapdata.Vec2, s float64) mapdata.Vec2 { return mapdata.Vec2{X: a.X * s, Y: a.Y * s} }
func vdot(a, b mapdata.Vec2) float64        { return a.X*b.X + a.Y*b.Y }
func vlen(a mapdata.Vec2) float64           { return math.Sqrt(vdot(a, a)) }

// segFacesPoint reports whether p sits on the side of the directed
// segment v1->v2 that its sector interior occupies. Sector boundaries
// wind counter-clockwise in map space (Y up), so the interior lies to the
// left of each directed edge: a positive cross product.
func segFacesPoint(v1, v2, p mapdata.Vec2) bool {
	cross := (v2.X-v1.X)*(p.Y-v1.Y) - (v2.Y-v1.Y)*(p.X-v1.X)
	return cross >= 0
}

// rayLineIntersectT solves viewerPos + t*rayDir == v1 + s*(v2-v1) for the
// forward parameter t along the ray (rayDir must be a unit vector, so t is
// also the perspective-correct depth). Returns ok=false for a ray
// parallel to the segment or an intersection behind the viewer.
func rayLineIntersectT(viewerPos, rayDir, v1, v2 mapdata.Vec2) (float64, bool) {
	segDir := vsub(v2, v1)
	denom := rayDir.X*segDir.Y - rayDir.Y*segDir.X
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	diff := vsub(v1, viewerPos)
	t := (diff.X*segDir.Y - diff.Y*segDir.X) / denom
	if t < 1e-6 {
		return 0, false
	}
	return t, true
}

// distanceAlongSegment projects point onto the line through v1-v2 and
// returns the signed distance from v1, for wall texture U coordinates.
func distanceAlongSegment(point, v1, v2 mapdata.Vec2) float64 {
	segDir := vsub(v2, v1)
	length := vlen(segDir)
	if length == 0 {
		return 0
	}
	return vdot(vsub(point, v1), segDir) / length
}
