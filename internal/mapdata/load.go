package mapdata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"doomgo/internal/engineerr"
	"doomgo/internal/wad"
)

const (
	sizeThing   = 10
	sizeVertex  = 4
	sizeSidedef = 30
	sizeLinedef = 14
	sizeSeg     = 12
	sizeSSector = 4
	sizeNode    = 28
	sizeSector  = 26

	sidedefNoBack = 0xFFFF
)

// levelLumps is the fixed order Map Database reads the ten lumps following
// the level marker, per spec.md §4.2.
var levelLumps = []string{
	"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS",
	"SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP",
}

// LoadLevel locates the level marker lump and reads the ten lumps that
// follow it in the archive's fixed layout, cross-linking vertices,
// sidedefs, sectors, linedefs, segs, subsectors, and nodes by index.
func LoadLevel(a *wad.Archive, key string) (*Level, error) {
	markerIdx, ok := a.Lump(key)
	if !ok {
		return nil, &engineerr.LumpMissingError{Level: key, Lump: key}
	}

	lumps := make(map[string][]byte, len(levelLumps))
	for i, name := range levelLumps {
		idx := markerIdx + 1 + i
		data, err := a.LumpAt(idx)
		if err != nil {
			return nil, &engineerr.LumpMissingError{Level: key, Lump: name}
		}
		lumps[name] = data
	}

	l := &Level{Name: key}

	if err := l.decodeVertices(lumps["VERTEXES"]); err != nil {
		return nil, err
	}
	if err := l.decodeSectors(lumps["SECTORS"]); err != nil {
		return nil, err
	}
	if err := l.decodeSidedefs(lumps["SIDEDEFS"]); err != nil {
		return nil, err
	}
	if err := l.decodeLinedefs(lumps["LINEDEFS"]); err != nil {
		return nil, err
	}
	if err := l.decodeSegs(lumps["SEGS"]); err != nil {
		return nil, err
	}
	if err := l.decodeSubSectors(lumps["SSECTORS"]); err != nil {
		return nil, err
	}
	if err := l.decodeNodes(lumps["NODES"]); err != nil {
		return nil, err
	}
	if err := l.decodeThings(lumps["THINGS"]); err != nil {
		return nil, err
	}

	blockmap, err := decodeBlockmap(lumps["BLOCKMAP"])
	if err != nil {
		return nil, err
	}
	l.Blockmap = blockmap
	l.Reject = decodeReject(lumps["REJECT"], len(l.Sectors))

	if len(l.Nodes) > 0 {
		l.RootNode = len(l.Nodes) - 1
	}

	if err := l.resolveSubSectorSectors(); err != nil {
		return nil, err
	}
	l.buildSectorLineDefBackLinks()
	l.computeExtents()

	if !l.hasPlayer1Start() {
		return nil, &engineerr.NoSpawnError{Level: key}
	}

	return l, nil
}

func bamToRadians(raw int16) float64 {
	return float64(uint16(raw)) / 65536.0 * 2 * math.Pi
}

func degreesToRadians(deg uint16) float64 {
	return float64(deg) * math.Pi / 180.0
}

func trimName(raw []byte) string {
	n := bytes.IndexByte(raw, 0)
	if n < 0 {
		n = len(raw)
	}
	return string(raw[:n])
}

func checkRecordLen(data []byte, recSize int, kind string) (int, error) {
	if len(data)%recSize != 0 {
		return 0, fmt.Errorf("mapdata: %s lump length %d is not a multiple of record size %d", kind, len(data), recSize)
	}
	return len(data) / recSize, nil
}

func (l *Level) decodeVertices(data []byte) error {
	n, err := checkRecordLen(data, sizeVertex, "VERTEXES")
	if err != nil {
		return err
	}
	l.Vertices = make([]Vertex, n)
	for i := 0; i < n; i++ {
		rec := data[i*sizeVertex:]
		x := int16(binary.LittleEndian.Uint16(rec[0:2]))
		y := int16(binary.LittleEndian.Uint16(rec[2:4]))
		l.Vertices[i] = Vertex{X: float64(x), Y: float64(y)}
	}
	return nil
}

func (l *Level) decodeSidedefs(data []byte) error {
	n, err := checkRecordLen(data, sizeSidedef, "SIDEDEFS")
	if err != nil {
		return err
	}
	l.SideDefs = make([]SideDef, n)
	for i := 0; i < n; i++ {
		rec := data[i*sizeSidedef:]
		xoff := int16(binary.LittleEndian.Uint16(rec[0:2]))
		yoff := int16(binary.LittleEndian.Uint16(rec[2:4]))
		upper := trimName(rec[4:12])
		lower := trimName(rec[12:20])
		middle := trimName(rec[20:28])
		sector := binary.LittleEndian.Uint16(rec[28:30])
		if int(sector) >= len(l.Sectors) {
			return &engineerr.InvalidRecordError{Kind: "sector", Index: i, Got: int(sector), Max: len(l.Sectors)}
		}
		l.SideDefs[i] = SideDef{
			XOffset: float64(xoff), YOffset: float64(yoff),
			Upper: upper, Lower: lower, Middle: middle,
			Sector: int(sector),
		}
	}
	return nil
}

func (l *Level) decodeSectors(data []byte) error {
	n, err := checkRecordLen(data, sizeSector, "SECTORS")
	if err != nil {
		return err
	}
	l.Sectors = make([]Sector, n)
	for i := 0; i < n; i++ {
		rec := data[i*sizeSector:]
		floor := int16(binary.LittleEndian.Uint16(rec[0:2]))
		ceil := int16(binary.LittleEndian.Uint16(rec[2:4]))
		floorTex := trimName(rec[4:12])
		ceilTex := trimName(rec[12:20])
		light := binary.LittleEndian.Uint16(rec[20:22])
		special := binary.LittleEndian.Uint16(rec[22:24])
		tag := binary.LittleEndian.Uint16(rec[24:26])
		l.Sectors[i] = Sector{
			FloorHeight: float64(floor), CeilHeight: float64(ceil),
			FloorTex: floorTex, CeilTex: ceilTex,
			Light: int(light), Special: special, Tag: tag,
		}
	}
	return nil
}

func (l *Level) decodeLinedefs(data []byte) error {
	n, err := checkRecordLen(data, sizeLinedef, "LINEDEFS")
	if err != nil {
		return err
	}
	l.LineDefs = make([]LineDef, n)
	for i := 0; i < n; i++ {
		rec := data[i*sizeLinedef:]
		v1 := binary.LittleEndian.Uint16(rec[0:2])
		v2 := binary.LittleEndian.Uint16(rec[2:4])
		flags := binary.LittleEndian.Uint16(rec[4:6])
		typ := binary.LittleEndian.Uint16(rec[6:8])
		tag := binary.LittleEndian.Uint16(rec[8:10])
		front := binary.LittleEndian.Uint16(rec[10:12])
		back := binary.LittleEndian.Uint16(rec[12:14])

		if int(v1) >= len(l.Vertices) {
			return &engineerr.InvalidRecordError{Kind: "vertex", Index: i, Got: int(v1), Max: len(l.Vertices)}
		}
		if int(v2) >= len(l.Vertices) {
			return &engineerr.InvalidRecordError{Kind: "vertex", Index: i, Got: int(v2), Max: len(l.Vertices)}
		}
		if int(front) >= len(l.SideDefs) {
			return &engineerr.InvalidRecordError{Kind: "sidedef", Index: i, Got: int(front), Max: len(l.SideDefs)}
		}
		backIdx := NoSidedef
		if back != sidedefNoBack {
			if int(back) >= len(l.SideDefs) {
				return &engineerr.InvalidRecordError{Kind: "sidedef", Index: i, Got: int(back), Max: len(l.SideDefs)}
			}
			backIdx = int(back)
		}

		l.LineDefs[i] = LineDef{
			V1: int(v1), V2: int(v2),
			Flags:     LineFlag(flags),
			Type:      typ,
			Tag:       tag,
			FrontSide: int(front),
			BackSide:  backIdx,
		}
	}
	return nil
}

func (l *Level) decodeSegs(data []byte) error {
	n, err := checkRecordLen(data, sizeSeg, "SEGS")
	if err != nil {
		return err
	}
	l.Segs = make([]Seg, n)
	for i := 0; i < n; i++ {
		rec := data[i*sizeSeg:]
		v1 := binary.LittleEndian.Uint16(rec[0:2])
		v2 := binary.LittleEndian.Uint16(rec[2:4])
		angle := int16(binary.LittleEndian.Uint16(rec[4:6]))
		linedef := binary.LittleEndian.Uint16(rec[6:8])
		side := binary.LittleEndian.Uint16(rec[8:10])
		offset := int16(binary.LittleEndian.Uint16(rec[10:12]))

		if int(v1) >= len(l.Vertices) {
			return &engineerr.InvalidRecordError{Kind: "vertex", Index: i, Got: int(v1), Max: len(l.Vertices)}
		}
		if int(v2) >= len(l.Vertices) {
			return &engineerr.InvalidRecordError{Kind: "vertex", Index: i, Got: int(v2), Max: len(l.Vertices)}
		}
		if int(linedef) >= len(l.LineDefs) {
			return &engineerr.InvalidRecordError{Kind: "linedef", Index: i, Got: int(linedef), Max: len(l.LineDefs)}
		}

		l.Segs[i] = Seg{
			V1: int(v1), V2: int(v2),
			Angle:   bamToRadians(angle),
			Linedef: int(linedef),
			Side:    side,
			Offset:  float64(offset),
		}
	}
	return nil
}

func (l *Level) decodeSubSectors(data []byte) error {
	n, err := checkRecordLen(data, sizeSSector, "SSECTORS")
	if err != nil {
		return err
	}
	l.SubSectors = make([]SubSector, n)
	for i := 0; i < n; i++ {
		rec := data[i*sizeSSector:]
		count := binary.LittleEndian.Uint16(rec[0:2])
		start := binary.LittleEndian.Uint16(rec[2:4])
		if int(start)+int(count) > len(l.Segs) {
			return &engineerr.InvalidRecordError{Kind: "seg", Index: i, Got: int(start) + int(count), Max: len(l.Segs)}
		}
		l.SubSectors[i] = SubSector{FirstSeg: int(start), SegCount: int(count), Sector: -1}
	}
	return nil
}

func (l *Level) decodeNodes(data []byte) error {
	n, err := checkRecordLen(data, sizeNode, "NODES")
	if err != nil {
		return err
	}
	l.Nodes = make([]Node, n)
	for i := 0; i < n; i++ {
		rec := data[i*sizeNode:]
		x := int16(binary.LittleEndian.Uint16(rec[0:2]))
		y := int16(binary.LittleEndian.Uint16(rec[2:4]))
		dx := int16(binary.LittleEndian.Uint16(rec[4:6]))
		dy := int16(binary.LittleEndian.Uint16(rec[6:8]))

		var bbox [2][4]float64
		off := 8
		for side := 0; side < 2; side++ {
			for k := 0; k < 4; k++ {
				v := int16(binary.LittleEndian.Uint16(rec[off : off+2]))
				bbox[side][k] = float64(v)
				off += 2
			}
		}
		child0 := binary.LittleEndian.Uint16(rec[off : off+2])
		child1 := binary.LittleEndian.Uint16(rec[off+2 : off+4])

		node := Node{
			X: float64(x), Y: float64(y),
			DX: float64(dx), DY: float64(dy),
			BBox:     bbox,
			Children: [2]uint16{child0, child1},
		}
		for side := 0; side < 2; side++ {
			if !node.ChildIsLeaf(side) && node.ChildIndex(side) >= n {
				return &engineerr.InvalidRecordError{Kind: "node", Index: i, Got: node.ChildIndex(side), Max: n}
			}
			if node.ChildIsLeaf(side) && node.ChildIndex(side) >= len(l.SubSectors) {
				return &engineerr.InvalidRecordError{Kind: "subsector", Index: i, Got: node.ChildIndex(side), Max: len(l.SubSectors)}
			}
		}
		l.Nodes[i] = node
	}
	return nil
}

func (l *Level) decodeThings(data []byte) error {
	n, err := checkRecordLen(data, sizeThing, "THINGS")
	if err != nil {
		return err
	}
	l.Things = make([]Thing, n)
	for i := 0; i < n; i++ {
		rec := data[i*sizeThing:]
		x := int16(binary.LittleEndian.Uint16(rec[0:2]))
		y := int16(binary.LittleEndian.Uint16(rec[2:4]))
		angle := binary.LittleEndian.Uint16(rec[4:6])
		typ := binary.LittleEndian.Uint16(rec[6:8])
		flags := binary.LittleEndian.Uint16(rec[8:10])
		l.Things[i] = Thing{
			X: float64(x), Y: float64(y),
			Angle: degreesToRadians(angle),
			Type:  typ, Flags: flags,
		}
	}
	return nil
}

// resolveSubSectorSectors derives each subsector's sector from the front
// sidedef of any contained seg (spec.md §3 invariant: identical for all
// segs in the subsector).
func (l *Level) resolveSubSectorSectors() error {
	for i := range l.SubSectors {
		ss := &l.SubSectors[i]
		if ss.SegCount == 0 {
			continue
		}
		seg := l.Segs[ss.FirstSeg]
		ld := l.LineDefs[seg.Linedef]
		sideIdx := ld.FrontSide
		if seg.Side == 1 {
			sideIdx = ld.BackSide
		}
		if sideIdx == NoSidedef {
			return fmt.Errorf("mapdata: subsector %d seg %d references a one-sided linedef from its back", i, ss.FirstSeg)
		}
		ss.Sector = l.SideDefs[sideIdx].Sector
	}
	return nil
}

func (l *Level) buildSectorLineDefBackLinks() {
	for i, ld := range l.LineDefs {
		front := l.SideDefs[ld.FrontSide].Sector
		l.Sectors[front].LineDefs = append(l.Sectors[front].LineDefs, i)
		if ld.BackSide != NoSidedef {
			back := l.SideDefs[ld.BackSide].Sector
			if back != front {
				l.Sectors[back].LineDefs = append(l.Sectors[back].LineDefs, i)
			}
		}
	}
}

func (l *Level) computeExtents() {
	if len(l.Vertices) == 0 {
		return
	}
	l.MinX, l.MinY = l.Vertices[0].X, l.Vertices[0].Y
	l.MaxX, l.MaxY = l.Vertices[0].X, l.Vertices[0].Y
	for _, v := range l.Vertices[1:] {
		if v.X < l.MinX {
			l.MinX = v.X
		}
		if v.X > l.MaxX {
			l.MaxX = v.X
		}
		if v.Y < l.MinY {
			l.MinY = v.Y
		}
		if v.Y > l.MaxY {
			l.MaxY = v.Y
		}
	}
}

func (l *Level) hasPlayer1Start() bool {
	for _, t := range l.Things {
		if t.Type == ThingPlayer1Start {
			return true
		}
	}
	return false
}
