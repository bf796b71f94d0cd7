package mapdata

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	"doomgo/internal/wad"
)

// wadBuilder assembles a tiny in-memory WAD for Map Database tests,
// independent of the wad package's own (unexported) test helpers.
type wadBuilder struct {
	order []string
	lumps map[string][]byte
}

func newWadBuilder() *wadBuilder {
	return &wadBuilder{lumps: make(map[string][]byte)}
}

func (b *wadBuilder) add(name string, data []byte) {
	b.order = append(b.order, name)
	b.lumps[name] = data
}

func (b *wadBuilder) bytes() []byte {
	const headerSize = 12
	const dirEntrySize = 16

	var body bytes.Buffer
	type placed struct {
		name   string
		offset uint32
		size   uint32
	}
	var placements []placed
	cursor := uint32(headerSize)
	for _, name := range b.order {
		data := b.lumps[name]
		body.Write(data)
		placements = append(placements, placed{name, cursor, uint32(len(data))})
		cursor += uint32(len(data))
	}

	dirOffset := cursor
	var dir bytes.Buffer
	for _, p := range placements {
		var rec [dirEntrySize]byte
		binary.LittleEndian.PutUint32(rec[0:4], p.offset)
		binary.LittleEndian.PutUint32(rec[4:8], p.size)
		copy(rec[8:8+8], []byte(p.name))
		dir.Write(rec[:])
	}

	var out bytes.Buffer
	out.WriteString("IWAD")
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(placements)))
	binary.LittleEndian.PutUint32(hdr[4:8], dirOffset)
	out.Write(hdr[:])
	out.Write(body.Bytes())
	out.Write(dir.Bytes())
	return out.Bytes()
}

func le16(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

func i16(v int16) []byte { return le16(uint16(v)) }

func name8(s string) []byte {
	buf := make([]byte, 8)
	copy(buf, s)
	return buf
}

// buildSquareRoom encodes a one-sector, four-linedef, one-subsector level
// shaped like a 64×64 square room, with a single player-1 start in the
// middle.
func buildSquareRoom(t *testing.T) *wad.Archive {
	t.Helper()
	b := newWadBuilder()
	b.add("E1M1", nil)

	// THINGS: one player-1 start at (32,32) facing east.
	var things bytes.Buffer
	things.Write(i16(32))
	things.Write(i16(32))
	things.Write(le16(0))
	things.Write(le16(1)) // type 1 = player 1 start
	things.Write(le16(0))
	b.add("THINGS", things.Bytes())

	// VERTEXES: square corners.
	verts := [][2]int16{{0, 0}, {64, 0}, {64, 64}, {0, 64}}
	var vBuf bytes.Buffer
	for _, v := range verts {
		vBuf.Write(i16(v[0]))
		vBuf.Write(i16(v[1]))
	}

	// SIDEDEFS: one sidedef per wall, all facing sector 0.
	var sBuf bytes.Buffer
	for i := 0; i < 4; i++ {
		sBuf.Write(i16(0))
		sBuf.Write(i16(0))
		sBuf.Write(name8("WALL"))
		sBuf.Write(name8("WALL"))
		sBuf.Write(name8("WALL"))
		sBuf.Write(le16(0))
	}

	// SECTORS: one sector, floor 0 ceil 72 light 160 (matches spec.md §8
	// scenario 1's E1M1 fingerprint values for sectors[0]).
	var secBuf bytes.Buffer
	secBuf.Write(i16(0))
	secBuf.Write(i16(72))
	secBuf.Write(name8("FLOOR"))
	secBuf.Write(name8("CEIL"))
	secBuf.Write(le16(160))
	secBuf.Write(le16(0))
	secBuf.Write(le16(0))

	// LINEDEFS: four one-sided walls, v(i) -> v(i+1 mod 4), sidedef i.
	var lBuf bytes.Buffer
	for i := 0; i < 4; i++ {
		v1 := uint16(i)
		v2 := uint16((i + 1) % 4)
		lBuf.Write(le16(v1))
		lBuf.Write(le16(v2))
		lBuf.Write(le16(uint16(LineBlocking)))
		lBuf.Write(le16(0))
		lBuf.Write(le16(0))
		lBuf.Write(le16(uint16(i)))
		lBuf.Write(le16(0xFFFF))
	}
	b.add("LINEDEFS", lBuf.Bytes())
	b.add("SIDEDEFS", sBuf.Bytes())
	b.add("VERTEXES", vBuf.Bytes())

	// SEGS: one seg per linedef, front side, angle 0.
	var segBuf bytes.Buffer
	for i := 0; i < 4; i++ {
		v1 := uint16(i)
		v2 := uint16((i + 1) % 4)
		segBuf.Write(le16(v1))
		segBuf.Write(le16(v2))
		segBuf.Write(i16(0))
		segBuf.Write(le16(uint16(i)))
		segBuf.Write(le16(0))
		segBuf.Write(i16(0))
	}
	b.add("SEGS", segBuf.Bytes())

	// SSECTORS: one subsector covering all four segs.
	var ssBuf bytes.Buffer
	ssBuf.Write(le16(4))
	ssBuf.Write(le16(0))
	b.add("SSECTORS", ssBuf.Bytes())

	b.add("NODES", nil)
	b.add("SECTORS", secBuf.Bytes())
	b.add("REJECT", nil)
	b.add("BLOCKMAP", nil)

	data := b.bytes()
	a, err := wad.OpenReader("square-room", data)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	return a
}

func TestLoadLevelBasicShape(t *testing.T) {
	a := buildSquareRoom(t)
	lvl, err := LoadLevel(a, "E1M1")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}

	if len(lvl.Vertices) != 4 {
		t.Errorf("len(Vertices) = %d, want 4", len(lvl.Vertices))
	}
	if len(lvl.LineDefs) != 4 {
		t.Errorf("len(LineDefs) = %d, want 4", len(lvl.LineDefs))
	}
	if got := lvl.Sectors[0].FloorHeight; got != 0 {
		t.Errorf("sectors[0].floor = %v, want 0", got)
	}
	if got := lvl.Sectors[0].CeilHeight; got != 72 {
		t.Errorf("sectors[0].ceil = %v, want 72", got)
	}
	if got := lvl.Sectors[0].Light; got != 160 {
		t.Errorf("sectors[0].light = %v, want 160", got)
	}
	if got := lvl.LineDefs[0].Flags; got != LineBlocking {
		t.Errorf("linedefs[0].flags = %v, want LineBlocking", got)
	}
	if len(lvl.Sectors[0].LineDefs) != 4 {
		t.Errorf("sector 0 back-links = %d, want 4", len(lvl.Sectors[0].LineDefs))
	}
	if lvl.MinX != 0 || lvl.MinY != 0 || lvl.MaxX != 64 || lvl.MaxY != 64 {
		t.Errorf("extents = (%v,%v)-(%v,%v), want (0,0)-(64,64)", lvl.MinX, lvl.MinY, lvl.MaxX, lvl.MaxY)
	}
}

func TestLoadLevelSubSectorSectorIsUniform(t *testing.T) {
	a := buildSquareRoom(t)
	lvl, err := LoadLevel(a, "E1M1")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	ss := lvl.SubSectors[0]
	for i := ss.FirstSeg; i < ss.FirstSeg+ss.SegCount; i++ {
		seg := lvl.Segs[i]
		ld := lvl.LineDefs[seg.Linedef]
		side := ld.FrontSide
		if seg.Side == 1 {
			side = ld.BackSide
		}
		got := lvl.SideDefs[side].Sector
		if got != ss.Sector {
			t.Errorf("seg %d sector = %d, want %d (uniform with subsector)", i, got, ss.Sector)
		}
	}
}

func TestLoadLevelSegEndpointsLieOnLinedef(t *testing.T) {
	a := buildSquareRoom(t)
	lvl, err := LoadLevel(a, "E1M1")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	const tol = 1e-3
	for i, seg := range lvl.Segs {
		ld := lvl.LineDefs[seg.Linedef]
		lv1, lv2 := lvl.Vertices[ld.V1], lvl.Vertices[ld.V2]
		sv1, sv2 := lvl.Vertices[seg.V1], lvl.Vertices[seg.V2]
		if !pointOnSegment(lv1, lv2, sv1, tol) || !pointOnSegment(lv1, lv2, sv2, tol) {
			t.Errorf("seg %d endpoints do not lie on its linedef", i)
		}
	}
}

func pointOnSegment(a, b, p Vertex, tol float64) bool {
	// Cross product of (b-a) and (p-a) must be ~0 for collinearity; since
	// this fixture's segs span full linedefs, containment is implied.
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	return cross > -tol*1000 && cross < tol*1000
}

func TestLoadLevelIdempotentReload(t *testing.T) {
	a := buildSquareRoom(t)
	l1, err := LoadLevel(a, "E1M1")
	if err != nil {
		t.Fatalf("LoadLevel #1: %v", err)
	}
	l2, err := LoadLevel(a, "E1M1")
	if err != nil {
		t.Fatalf("LoadLevel #2: %v", err)
	}
	if !reflect.DeepEqual(l1, l2) {
		t.Errorf("loading the same level twice produced different results")
	}
}

func TestLoadLevelMissingPlayerStartFails(t *testing.T) {
	b := newWadBuilder()
	b.add("E1M1", nil)
	b.add("THINGS", nil) // no player-1 start
	b.add("LINEDEFS", nil)
	b.add("SIDEDEFS", nil)

	var vBuf bytes.Buffer
	vBuf.Write(i16(0))
	vBuf.Write(i16(0))
	b.add("VERTEXES", vBuf.Bytes())

	b.add("SEGS", nil)
	b.add("SSECTORS", nil)
	b.add("NODES", nil)

	var secBuf bytes.Buffer
	secBuf.Write(i16(0))
	secBuf.Write(i16(64))
	secBuf.Write(name8("F"))
	secBuf.Write(name8("C"))
	secBuf.Write(le16(128))
	secBuf.Write(le16(0))
	secBuf.Write(le16(0))
	b.add("SECTORS", secBuf.Bytes())

	b.add("REJECT", nil)
	b.add("BLOCKMAP", nil)

	a, err := wad.OpenReader("no-spawn", b.bytes())
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if _, err := LoadLevel(a, "E1M1"); err == nil {
		t.Fatal("expected NoSpawnError for a level with no player-1 start")
	}
}
