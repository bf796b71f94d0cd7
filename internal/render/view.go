package render

import "doomgo/internal/mapdata"

// View is the camera pose the visibility walk projects the level from.
type View struct {
	Pos   mapdata.Vec2
	Z     float64
	Angle float64 // radians, 0 along +X
	Pitch float64 // screen-space vertical offset in pixels; positive looks up
}
