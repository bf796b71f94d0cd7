package render

import "testing"

func TestFrameBufferClearResetsClipArrays(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetPixel(10, 10, 42)
	fb.ceilClip[5] = 50
	fb.floorClip[5] = 120

	fb.Clear()

	if fb.Pixel(10, 10) != 0 {
		t.Error("pixel not cleared")
	}
	if fb.ceilClip[5] != -1 {
		t.Errorf("ceilClip[5] = %d, want -1", fb.ceilClip[5])
	}
	if fb.floorClip[5] != ScreenHeight {
		t.Errorf("floorClip[5] = %d, want %d", fb.floorClip[5], ScreenHeight)
	}
}

func TestFrameBufferSetPixelOutOfBoundsIsNoop(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetPixel(-1, 0, 9)
	fb.SetPixel(0, -1, 9)
	fb.SetPixel(ScreenWidth, 0, 9)
	fb.SetPixel(0, ScreenHeight, 9)
	if fb.Pixel(-1, 0) != 0 {
		t.Error("Pixel out of bounds should read 0, not panic or alias")
	}
}

func TestFrameBufferToRGB24MapsThroughPalette(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetPixel(0, 0, 1)
	pal := LoadPlaypal(nil) // degraded grayscale ramp
	out := fb.ToRGB24(pal, 0)
	if len(out) != ScreenWidth*ScreenHeight*3 {
		t.Fatalf("len(out) = %d, want %d", len(out), ScreenWidth*ScreenHeight*3)
	}
	if out[0] != 1 || out[1] != 1 || out[2] != 1 {
		t.Errorf("pixel (0,0) RGB = %v, want gray(1)", out[:3])
	}
}
