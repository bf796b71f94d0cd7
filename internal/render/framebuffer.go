package render

// FrameBuffer is the 320x200 output surface: one palette index per pixel,
// row-major, top-to-bottom (spec.md §4.7's "one byte per pixel").
type FrameBuffer struct {
	indices [ScreenWidth * ScreenHeight]uint8

	// ceilClip/floorClip are the per-column vertical occlusion arrays the
	// wall rasterizer maintains for the (out-of-scope) floor/ceiling and
	// sprite passes, per spec.md §4.7.
	ceilClip  [ScreenWidth]int
	floorClip [ScreenWidth]int
}

// NewFrameBuffer returns a buffer with every column's sky/floor clip reset
// to the full screen height, ready for one frame's wall pass.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Clear()
	return fb
}

// Clear resets pixel data to index 0 and the clip arrays to wide open.
func (fb *FrameBuffer) Clear() {
	for i := range fb.indices {
		fb.indices[i] = 0
	}
	for x := 0; x < ScreenWidth; x++ {
		fb.ceilClip[x] = -1
		fb.floorClip[x] = ScreenHeight
	}
}

// SetPixel writes a palette index at (x,y), a no-op out of bounds.
func (fb *FrameBuffer) SetPixel(x, y int, index uint8) {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return
	}
	fb.indices[y*ScreenWidth+x] = index
}

// Pixel reads the palette index at (x,y).
func (fb *FrameBuffer) Pixel(x, y int) uint8 {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return 0
	}
	return fb.indices[y*ScreenWidth+x]
}

// ToRGB24 maps every pixel through the given palette table, producing the
// row-major RGB24 buffer present.Surface.Present expects.
func (fb *FrameBuffer) ToRGB24(pal *Palette, table int) []byte {
	out := make([]byte, ScreenWidth*ScreenHeight*3)
	for i, idx := range fb.indices {
		c := pal.Color(table, idx)
		out[i*3] = c.R
		out[i*3+1] = c.G
		out[i*3+2] = c.B
	}
	return out
}
