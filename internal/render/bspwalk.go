package render

import (
	"math"

	"doomgo/internal/bsp"
	"doomgo/internal/enginelog"
	"doomgo/internal/mapdata"
)

// DrawSeg is the wall rasterizer's per-column-span record, kept for the
// (out-of-scope, spec.md Non-goals) sprite-clipping pass; nothing in this
// renderer consumes it yet, but it's emitted per spec.md §4.7 step 7 so a
// sprite pass bolted on later has the scale data it needs.
type DrawSeg struct {
	Seg            int
	X1, X2         int
	Scale1, Scale2 float64
}

// Walker performs the BSP visibility walk: front-to-back node descent with
// frustum culling, seg-range clipping, and wall rasterization into a
// FrameBuffer, grounded on gamelib/src/renderer/bsp.rs's BspRenderer
// (add_line, render_bsp_node, draw_subsector).
type Walker struct {
	level    *mapdata.Level
	view     View
	clip     *ClipList
	fb       *FrameBuffer
	pal      *Palette
	textures map[string]*CompositeTexture
	log      *enginelog.Logger

	viewDir  mapdata.Vec2
	drawSegs []DrawSeg
}

// NewWalker prepares one frame's visibility walk over level from view.
// textures may be nil, in which case walls fall back to light-level
// shading instead of sampled texture pixels.
func NewWalker(level *mapdata.Level, view View, fb *FrameBuffer, pal *Palette, textures map[string]*CompositeTexture, log *enginelog.Logger) *Walker {
	return &Walker{
		level:    level,
		view:     view,
		clip:     NewClipList(),
		fb:       fb,
		pal:      pal,
		textures: textures,
		log:      log,
		viewDir:  mapdata.Vec2{X: math.Cos(view.Angle), Y: math.Sin(view.Angle)},
	}
}

// Walk renders the visible walls of level from view into fb, front to
// back, stopping early once the clip list has occluded every column.
func (w *Walker) Walk() {
	if len(w.level.Nodes) == 0 {
		if len(w.level.SubSectors) > 0 {
			w.drawSubsector(0)
		}
		return
	}
	w.visitNode(w.level.RootNode)
}

// DrawSegs returns this frame's emitted per-column wall spans.
func (w *Walker) DrawSegs() []DrawSeg { return w.drawSegs }

func (w *Walker) visitNode(nodeIdx int) {
	if w.clip.Done() {
		return
	}
	node := &w.level.Nodes[nodeIdx]
	near := int(bsp.SideOf(node, w.view.Pos))
	far := 1 - near

	w.descend(node, near)
	if w.clip.Done() {
		return
	}
	if !w.bboxInFrustum(node.BBox[far]) {
		return
	}
	w.descend(node, far)
}

func (w *Walker) descend(node *mapdata.Node, side int) {
	if node.ChildIsLeaf(side) {
		w.drawSubsector(node.ChildIndex(side))
		return
	}
	w.visitNode(node.ChildIndex(side))
}

// bboxInFrustum trivially rejects a child bbox that is either entirely
// behind the viewer or entirely outside the ±45° view frustum, per
// spec.md §4.5.
func (w *Walker) bboxInFrustum(box [4]float64) bool {
	top, bottom, left, right := box[0], box[1], box[2], box[3]
	if w.view.Pos.X >= left && w.view.Pos.X <= right && w.view.Pos.Y >= bottom && w.view.Pos.Y <= top {
		return true
	}

	corners := [4]mapdata.Vec2{
		{X: left, Y: top}, {X: right, Y: top},
		{X: left, Y: bottom}, {X: right, Y: bottom},
	}

	allBehind := true
	allNegSide := true
	allPosSide := true
	for _, c := range corners {
		rel := vsub(c, w.view.Pos)
		if vdot(rel, w.viewDir) > 0 {
			allBehind = false
		}
		bearing := normalizeAngle(bearingTo(w.view.Pos, c) - w.view.Angle)
		if bearing >= -frustumHalfAngle {
			allNegSide = false
		}
		if bearing <= frustumHalfAngle {
			allPosSide = false
		}
	}
	return !(allBehind || allNegSide || allPosSide)
}

func (w *Walker) drawSubsector(ssIdx int) {
	ss := &w.level.SubSectors[ssIdx]
	for i := 0; i < ss.SegCount; i++ {
		w.addLine(ss.FirstSeg + i)
	}
}

// addLine projects one seg onto the screen and, if any part of it survives
// the back-face and frustum tests, hands its visible column span to the
// seg-range clipper — ClipSolidSeg for one-sided lines and lines whose
// two-sided opening is fully closed, ClipPortalSeg for a genuine opening
// (spec.md §4.5/§4.6).
func (w *Walker) addLine(segIdx int) {
	seg := &w.level.Segs[segIdx]
	v1 := vec(w.level.Vertices[seg.V1])
	v2 := vec(w.level.Vertices[seg.V2])

	if !segFacesPoint(v1, v2, w.view.Pos) {
		return
	}

	b1 := normalizeAngle(bearingTo(w.view.Pos, v1) - w.view.Angle)
	b2 := normalizeAngle(bearingTo(w.view.Pos, v2) - w.view.Angle)

	// A front-facing seg walked v1->v2 sweeps left to right on screen in
	// decreasing bearing, so v1 is the left (larger-angle) edge.
	if b1 < b2 {
		b1, b2 = b2, b1
	}
	if b1 < -frustumHalfAngle || b2 > frustumHalfAngle {
		return
	}
	if b1 > frustumHalfAngle {
		b1 = frustumHalfAngle
	}
	if b2 < -frustumHalfAngle {
		b2 = -frustumHalfAngle
	}

	x1 := angleToScreenColumn(b1 + math.Pi/2)
	x2 := angleToScreenColumn(b2+math.Pi/2) - 1
	if x1 < 0 {
		x1 = 0
	}
	if x2 >= ScreenWidth {
		x2 = ScreenWidth - 1
	}
	if x1 > x2 {
		return
	}

	draw := func(dx1, dx2 int) { w.storeWallRange(dx1, dx2, segIdx) }

	ld := &w.level.LineDefs[seg.Linedef]
	if ld.BackSide == mapdata.NoSidedef {
		w.clip.ClipSolidSeg(x1, x2, draw)
		return
	}

	frontSide := w.level.SideDefs[ld.FrontSide]
	frontSector := &w.level.Sectors[frontSide.Sector]
	backSector := &w.level.Sectors[w.level.SideDefs[ld.BackSide].Sector]

	sameFloors := frontSector.FloorHeight == backSector.FloorHeight
	sameCeils := frontSector.CeilHeight == backSector.CeilHeight
	sameTex := frontSector.FloorTex == backSector.FloorTex && frontSector.CeilTex == backSector.CeilTex
	sameLight := frontSector.Light == backSector.Light
	if sameFloors && sameCeils && sameTex && sameLight && (frontSide.Middle == "" || frontSide.Middle == "-") {
		return // pure sight-line: nothing to draw or occlude
	}

	closed := backSector.CeilHeight <= frontSector.FloorHeight || backSector.FloorHeight >= frontSector.CeilHeight
	if closed {
		w.clip.ClipSolidSeg(x1, x2, draw)
	} else {
		w.clip.ClipPortalSeg(x1, x2, draw)
	}
}
