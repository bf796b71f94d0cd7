package present

import (
	"fmt"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"

	"doomgo/internal/netcmd"
)

// SDLSurface is the one concrete Surface this repo ships: a Fyne window
// hosting a single canvas.Image, refreshed by writing the renderer's RGB24
// output straight into the image's pixel buffer each tic — the same
// direct-Pix-write blit the teacher's Fyne presenter uses instead of a
// per-pixel Set call, scaled here by nearest-neighbor replication rather
// than the teacher's filtered scale.
type SDLSurface struct {
	app    fyne.App
	window fyne.Window
	scale  int

	img         *image.RGBA
	canvasImage *canvas.Image

	eventMu sync.Mutex
	events  []netcmd.RawEvent
	closed  bool
}

// NewSDLSurface opens a window sized for a 320x200 frame scaled by scale.
func NewSDLSurface(scale int) (*SDLSurface, error) {
	if scale < 1 {
		scale = 1
	}
	fyneApp := app.NewWithID("com.doomgo.engine")
	window := fyneApp.NewWindow("doomgo")

	img := image.NewRGBA(image.Rect(0, 0, 320*scale, 200*scale))
	canvasImage := canvas.NewImageFromImage(img)
	canvasImage.FillMode = canvas.ImageFillOriginal

	s := &SDLSurface{
		app:         fyneApp,
		window:      window,
		scale:       scale,
		img:         img,
		canvasImage: canvasImage,
	}

	window.SetContent(canvasImage)
	window.Resize(fyne.NewSize(float32(320*scale), float32(200*scale)))
	window.SetFixedSize(true)
	window.SetCloseIntercept(func() {
		s.eventMu.Lock()
		s.events = append(s.events, netcmd.RawEvent{Quit: true})
		s.eventMu.Unlock()
		window.Close()
	})

	window.Canvas().SetOnTypedKey(func(k *fyne.KeyEvent) {
		s.pushKey(string(k.Name), true)
	})
	if dc, ok := window.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(k *fyne.KeyEvent) { s.pushKey(string(k.Name), true) })
		dc.SetOnKeyUp(func(k *fyne.KeyEvent) { s.pushKey(string(k.Name), false) })
	}

	window.Show()
	return s, nil
}

func (s *SDLSurface) pushKey(name string, pressed bool) {
	s.eventMu.Lock()
	s.events = append(s.events, netcmd.RawEvent{Key: name, Pressed: pressed})
	s.eventMu.Unlock()
}

// Present writes frame (row-major RGB24, w*h*3 bytes) into the window's
// image buffer, integer-scaled, and asks Fyne to repaint.
func (s *SDLSurface) Present(frame []byte, w, h int) error {
	if len(frame) != w*h*3 {
		return fmt.Errorf("present: frame size mismatch: expected %d, got %d", w*h*3, len(frame))
	}

	pix := s.img.Pix
	stride := s.img.Stride
	scale := s.scale
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 3
			r, g, b := frame[off], frame[off+1], frame[off+2]

			baseX := x * scale
			baseY := y * scale
			for sy := 0; sy < scale; sy++ {
				row := (baseY + sy) * stride
				for sx := 0; sx < scale; sx++ {
					o := row + (baseX+sx)*4
					pix[o+0] = r
					pix[o+1] = g
					pix[o+2] = b
					pix[o+3] = 0xFF
				}
			}
		}
	}

	canvas.Refresh(s.canvasImage)
	return nil
}

// PollEvents drains and returns every input/window event queued since the
// last call.
func (s *SDLSurface) PollEvents() []netcmd.RawEvent {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()
	out := s.events
	s.events = nil
	return out
}

func (s *SDLSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.window.Close()
	return nil
}
