package render

import (
	"doomgo/internal/enginelog"
	"doomgo/internal/mapdata"
	"doomgo/internal/wad"
)

// Renderer is the BSP Visibility Walk's entry point: it owns the decoded
// palette and wall textures for one archive and produces one 320x200
// framebuffer per call to RenderView, per spec.md §4.5-§4.7.
type Renderer struct {
	pal      *Palette
	textures map[string]*CompositeTexture
	log      *enginelog.Logger
}

// NewRenderer decodes PLAYPAL and the wall texture set from archive. A
// missing PLAYPAL degrades to grayscale (Palette.Degraded reports it)
// rather than failing outright, and a missing texture directory just
// leaves walls flat-shaded; neither aborts construction.
func NewRenderer(archive *wad.Archive, log *enginelog.Logger) *Renderer {
	playpal, err := archive.LumpNamed("PLAYPAL")
	if err != nil {
		playpal = nil
	}
	pal := LoadPlaypal(playpal)
	if pal.Degraded() && log != nil {
		log.Once(enginelog.ComponentRender, enginelog.LevelWarn, "PLAYPAL missing or truncated, degrading to grayscale")
	}

	return &Renderer{
		pal:      pal,
		textures: LoadTextures(archive),
		log:      log,
	}
}

// Palette exposes the decoded palette, e.g. for the presenter's border or
// HUD tinting.
func (r *Renderer) Palette() *Palette { return r.pal }

// RenderView walks level's BSP tree from view and returns one RGB24
// framebuffer, row-major, top-to-bottom.
func (r *Renderer) RenderView(level *mapdata.Level, view View) []byte {
	fb := NewFrameBuffer()
	w := NewWalker(level, view, fb, r.pal, r.textures, r.log)
	w.Walk()
	return fb.ToRGB24(r.pal, 0)
}
