// Package bsp is the BSP Location Service: it descends the node tree from
// the root to resolve any 2-D point to its leaf subsector, and exposes the
// splitter side test the renderer's visibility walk reuses. It is pure and
// stateless over the loaded map (spec.md §4.3).
package bsp

import "doomgo/internal/mapdata"

// Side is which half-plane of a node's splitter a point falls in.
type Side int

const (
	Front Side = iota // right of the splitter
	Back              // left of the splitter
)

// SideOf evaluates the signed 2-D cross product of (p - splitter origin)
// with the splitter direction: non-negative ⇒ Front (right), negative ⇒
// Back (left).
func SideOf(n *mapdata.Node, p mapdata.Vec2) Side {
	dx := p.X - n.X
	dy := p.Y - n.Y
	cross := dx*n.DY - dy*n.DX
	if cross >= 0 {
		return Front
	}
	return Back
}

// PointInSubsector descends from the level's root node, picking the child
// indicated by SideOf at each internal node, until it reaches a leaf, and
// returns that leaf's subsector index. Depth is bounded by the tree's
// height; there is no backtracking.
func PointInSubsector(level *mapdata.Level, p mapdata.Vec2) int {
	if len(level.Nodes) == 0 {
		// A degenerate single-subsector level has no internal nodes.
		if len(level.SubSectors) > 0 {
			return 0
		}
		return -1
	}

	nodeIdx := level.RootNode
	for {
		node := &level.Nodes[nodeIdx]
		side := SideOf(node, p)
		childSlot := int(side)
		if node.ChildIsLeaf(childSlot) {
			return node.ChildIndex(childSlot)
		}
		nodeIdx = node.ChildIndex(childSlot)
	}
}
