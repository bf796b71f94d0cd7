// Package wad implements the Archive Reader: it opens a DOOM-format WAD,
// builds a directory of named lumps, and returns typed byte ranges on
// demand. Numeric reads are little-endian throughout (spec.md §6).
package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"doomgo/internal/engineerr"
)

const (
	headerSize    = 12
	dirEntrySize  = 16
	lumpNameBytes = 8
)

var magicIWAD = [4]byte{'I', 'W', 'A', 'D'}
var magicPWAD = [4]byte{'P', 'W', 'A', 'D'}

// Kind distinguishes the base game archive from a patch archive.
type Kind int

const (
	KindIWAD Kind = iota
	KindPWAD
)

// Edition identifies which DOOM release a loaded archive's level lumps
// belong to, sniffed by lump presence per spec.md §4.2.
type Edition int

const (
	EditionShareware Edition = iota
	EditionRegistered
	EditionRetail
	EditionCommercial
)

func (e Edition) String() string {
	switch e {
	case EditionShareware:
		return "shareware"
	case EditionRegistered:
		return "registered"
	case EditionRetail:
		return "retail"
	case EditionCommercial:
		return "commercial"
	default:
		return "unknown"
	}
}

type dirEntry struct {
	offset uint32
	size   uint32
	name   string
}

// Archive is an opened WAD: a directory of named lumps backed by a byte
// source. The source is read lazily per lump, not loaded wholesale.
type Archive struct {
	kind    Kind
	src     io.ReaderAt
	path    string
	entries []dirEntry
	index   map[string]int
	closer  io.Closer
}

// Open reads the WAD at path and validates its header and directory.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wad: open %s: %w", path, err)
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("wad: stat %s: %w", path, err)
	}
	a, err := openReader(path, f, size)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// OpenReader builds an Archive over an in-memory byte range, so tests can
// construct fixtures with bytes.NewReader instead of touching disk.
func OpenReader(name string, data []byte) (*Archive, error) {
	return openReader(name, bytes.NewReader(data), int64(len(data)))
}

func openReader(name string, src io.ReaderAt, size int64) (*Archive, error) {
	var hdr [headerSize]byte
	if _, err := src.ReadAt(hdr[:], 0); err != nil {
		return nil, &engineerr.MalformedArchiveError{Path: name, Reason: "truncated header"}
	}

	var kind Kind
	switch {
	case bytes.Equal(hdr[0:4], magicIWAD[:]):
		kind = KindIWAD
	case bytes.Equal(hdr[0:4], magicPWAD[:]):
		kind = KindPWAD
	default:
		return nil, &engineerr.MalformedArchiveError{Path: name, Reason: "bad magic"}
	}

	dirCount := binary.LittleEndian.Uint32(hdr[4:8])
	dirOffset := binary.LittleEndian.Uint32(hdr[8:12])

	dirBytes := int64(dirCount) * dirEntrySize
	if dirBytes < 0 || int64(dirOffset)+dirBytes > size {
		return nil, &engineerr.MalformedArchiveError{Path: name, Reason: "directory extent exceeds file"}
	}

	raw := make([]byte, dirBytes)
	if dirBytes > 0 {
		if _, err := src.ReadAt(raw, int64(dirOffset)); err != nil {
			return nil, &engineerr.MalformedArchiveError{Path: name, Reason: "truncated directory"}
		}
	}

	entries := make([]dirEntry, dirCount)
	index := make(map[string]int, dirCount)
	for i := uint32(0); i < dirCount; i++ {
		rec := raw[i*dirEntrySize : (i+1)*dirEntrySize]
		off := binary.LittleEndian.Uint32(rec[0:4])
		sz := binary.LittleEndian.Uint32(rec[4:8])
		nameRaw := rec[8 : 8+lumpNameBytes]
		nm := trimLumpName(nameRaw)

		if int64(off)+int64(sz) > size {
			return nil, &engineerr.MalformedArchiveError{
				Path:   name,
				Reason: fmt.Sprintf("lump %q extent exceeds file", nm),
			}
		}

		entries[i] = dirEntry{offset: off, size: sz, name: nm}
		index[nm] = int(i)
	}

	return &Archive{
		kind:    kind,
		src:     src,
		path:    name,
		entries: entries,
		index:   index,
	}, nil
}

func trimLumpName(raw []byte) string {
	n := bytes.IndexByte(raw, 0)
	if n < 0 {
		n = len(raw)
	}
	return strings.ToUpper(string(raw[:n]))
}

// Close releases the underlying file, if Open opened one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Lump returns the directory index of the named lump, case-sensitively
// matched against the trimmed, upper-cased on-disk name.
func (a *Archive) Lump(name string) (int, bool) {
	idx, ok := a.index[name]
	return idx, ok
}

// LumpAt reads the full byte range of the lump at the given directory
// index.
func (a *Archive) LumpAt(index int) ([]byte, error) {
	if index < 0 || index >= len(a.entries) {
		return nil, fmt.Errorf("wad: lump index %d out of range [0,%d)", index, len(a.entries))
	}
	e := a.entries[index]
	buf := make([]byte, e.size)
	if e.size > 0 {
		if _, err := a.src.ReadAt(buf, int64(e.offset)); err != nil {
			return nil, fmt.Errorf("wad: read lump %q: %w", e.name, err)
		}
	}
	return buf, nil
}

// LumpNamed is a Lump+LumpAt convenience used by the renderer's palette
// and texture loaders.
func (a *Archive) LumpNamed(name string) ([]byte, error) {
	idx, ok := a.Lump(name)
	if !ok {
		return nil, fmt.Errorf("wad: lump %q not found", name)
	}
	return a.LumpAt(idx)
}

// Kind reports whether this archive is the base game (IWAD) or a patch
// (PWAD).
func (a *Archive) Kind() Kind { return a.kind }

// Edition sniffs the DOOM release from lump presence, per spec.md §4.2:
// MAP01 present → commercial; else E4M1 → retail; else E3M1 → registered;
// else shareware.
func (a *Archive) Edition() Edition {
	if _, ok := a.Lump("MAP01"); ok {
		return EditionCommercial
	}
	if _, ok := a.Lump("E4M1"); ok {
		return EditionRetail
	}
	if _, ok := a.Lump("E3M1"); ok {
		return EditionRegistered
	}
	return EditionShareware
}

// LumpCount reports the number of directory entries, mostly useful in
// tests asserting on a fixture's shape.
func (a *Archive) LumpCount() int { return len(a.entries) }
