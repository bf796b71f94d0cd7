package render

import "math"

// ScreenWidth is the renderer's fixed output width in columns (spec.md §2).
const ScreenWidth = 320

// ScreenHeight is the renderer's fixed output height in rows.
const ScreenHeight = 200

// ClipRange is one occluded span of screen columns, inclusive both ends.
type ClipRange struct {
	First, Last int
}

// ClipList is the seg-range clipper's solid-span bookkeeping (spec.md
// §4.6), grounded on the original renderer's solidsegs array in
// gamelib/src/renderer/bsp.rs (BspRenderer.clip_solid_seg /
// clip_portal_seg / crunch) — translated from a fixed-capacity array plus
// a new_end cursor into a plain growable slice, since Go slices already
// give that for free.
type ClipList struct {
	ranges []ClipRange
}

// NewClipList seeds the two sentinel spans: everything left of column 0
// and everything at or past ScreenWidth starts pre-occluded, so real
// solid segs only ever need to slot in between them.
func NewClipList() *ClipList {
	return &ClipList{ranges: []ClipRange{
		{First: math.MinInt32, Last: -1},
		{First: ScreenWidth, Last: math.MaxInt32},
	}}
}

// Done reports that the sentinels have merged into a single span, meaning
// every column is accounted for and no farther seg can be visible.
func (c *ClipList) Done() bool { return len(c.ranges) == 1 }

// ClipSolidSeg clips [first,last] against the occluded ranges, calling
// draw once per still-visible sub-span, and folds [first,last] into the
// occluded set (spec.md §4.6 steps 1-5).
func (c *ClipList) ClipSolidSeg(first, last int, draw func(x1, x2 int)) {
	start := 0
	for c.ranges[start].Last < first-1 {
		start++
	}

	if first < c.ranges[start].First {
		if last < c.ranges[start].First-1 {
			// The whole span sits in open space above start: insert a
			// fresh occluded range and draw all of it.
			draw(first, last)
			c.insert(start, ClipRange{First: first, Last: last})
			return
		}
		draw(first, c.ranges[start].First-1)
		c.ranges[start].First = first
	}

	if last <= c.ranges[start].Last {
		return
	}

	next := start
	for next+1 < len(c.ranges) && last >= c.ranges[next+1].First-1 {
		gapFirst := c.ranges[next].Last + 1
		gapLast := c.ranges[next+1].First - 1
		if gapFirst <= gapLast {
			draw(gapFirst, gapLast)
		}
		next++
		if last <= c.ranges[next].Last {
			c.ranges[start].Last = c.ranges[next].Last
			c.crunch(start, next)
			return
		}
	}

	draw(c.ranges[next].Last+1, last)
	c.ranges[start].Last = last
	c.crunch(start, next)
}

// ClipPortalSeg behaves like ClipSolidSeg's visibility test but never
// mutates the occluded set (spec.md §4.6): portals don't occlude, so
// farther walls peeking through an upper/lower course may still draw.
func (c *ClipList) ClipPortalSeg(first, last int, draw func(x1, x2 int)) {
	start := 0
	for c.ranges[start].Last < first-1 {
		start++
	}

	if first < c.ranges[start].First {
		if last < c.ranges[start].First-1 {
			draw(first, last)
			return
		}
		draw(first, c.ranges[start].First-1)
	}

	if last <= c.ranges[start].Last {
		return
	}

	next := start
	for next+1 < len(c.ranges) && last >= c.ranges[next+1].First-1 {
		gapFirst := c.ranges[next].Last + 1
		gapLast := c.ranges[next+1].First - 1
		if gapFirst <= gapLast {
			draw(gapFirst, gapLast)
		}
		next++
		if last <= c.ranges[next].Last {
			return
		}
	}

	draw(c.ranges[next].Last+1, last)
}

// insert slots r into the range list at position at, preserving order.
func (c *ClipList) insert(at int, r ClipRange) {
	c.ranges = append(c.ranges, ClipRange{})
	copy(c.ranges[at+1:], c.ranges[at:])
	c.ranges[at] = r
}

// crunch removes the now-redundant entries (start, next] once they've been
// absorbed into c.ranges[start] (spec.md §4.6 step 5).
func (c *ClipList) crunch(start, next int) {
	if next == start {
		return
	}
	c.ranges = append(c.ranges[:start+1], c.ranges[next+1:]...)
}
