package mapdata

import "encoding/binary"

// Blockmap is a uniform grid (128-map-unit cells) of linedef indices,
// decoded from the BLOCKMAP lump. spec.md's resolver works subsector-local
// and doesn't need it, but the lump is still part of the fixed load order
// (spec.md §4.2). LinesNear exposes it; no other package calls it.
type Blockmap struct {
	OriginX, OriginY float64
	Columns, Rows    int
	blockLines       [][]int // row-major, len == Columns*Rows
}

const blockSize = 128.0

// decodeBlockmap parses the header, offset table, and per-block linedef
// lists. Each block's list is a 0x0000-prefixed, 0xFFFF-terminated run of
// u16 linedef indices, per the standard BLOCKMAP layout.
func decodeBlockmap(data []byte) (*Blockmap, error) {
	if len(data) < 8 {
		return &Blockmap{Columns: 0, Rows: 0}, nil
	}
	originX := int16(binary.LittleEndian.Uint16(data[0:2]))
	originY := int16(binary.LittleEndian.Uint16(data[2:4]))
	cols := int(binary.LittleEndian.Uint16(data[4:6]))
	rows := int(binary.LittleEndian.Uint16(data[6:8]))

	bm := &Blockmap{
		OriginX: float64(originX), OriginY: float64(originY),
		Columns: cols, Rows: rows,
		blockLines: make([][]int, cols*rows),
	}

	numBlocks := cols * rows
	offsetTable := data[8:]
	for i := 0; i < numBlocks; i++ {
		pos := i * 2
		if pos+2 > len(offsetTable) {
			break
		}
		blockOffsetWords := binary.LittleEndian.Uint16(offsetTable[pos : pos+2])
		byteOffset := int(blockOffsetWords) * 2
		if byteOffset < 0 || byteOffset+2 > len(data) {
			continue
		}
		cursor := byteOffset
		var lines []int
		first := true
		for cursor+2 <= len(data) {
			v := binary.LittleEndian.Uint16(data[cursor : cursor+2])
			cursor += 2
			if v == 0xFFFF {
				break
			}
			if first && v == 0 {
				first = false
				continue
			}
			first = false
			lines = append(lines, int(v))
		}
		bm.blockLines[i] = lines
	}

	return bm, nil
}

// blockIndex maps a world point to its block row/col, or -1 if outside the
// grid.
func (b *Blockmap) blockIndex(p Vec2) int {
	if b.Columns == 0 || b.Rows == 0 {
		return -1
	}
	col := int((p.X - b.OriginX) / blockSize)
	row := int((p.Y - b.OriginY) / blockSize)
	if col < 0 || col >= b.Columns || row < 0 || row >= b.Rows {
		return -1
	}
	return row*b.Columns + col
}

// LinesNear returns the linedef indices in the block containing p, or nil
// if p falls outside the grid.
func (b *Blockmap) LinesNear(p Vec2) []int {
	idx := b.blockIndex(p)
	if idx < 0 {
		return nil
	}
	return b.blockLines[idx]
}
