package mapdata

// RejectTable is the precomputed sector-pair visibility matrix from the
// REJECT lump: one bit per (sectorA, sectorB) pair, set when the two
// sectors cannot see each other. Not consulted by the renderer (the BSP
// walk does its own frustum culling, not PVS culling). CanSee exposes it;
// no other package calls it.
type RejectTable struct {
	bits       []byte
	numSectors int
}

// decodeReject builds a RejectTable from the raw lump bytes. A lump too
// short for numSectors² bits degrades to "every pair visible" rather than
// failing the load — REJECT is an optimization table, not load-bearing
// data (spec.md §7 lists it only implicitly; it is never named as a fatal
// lump).
func decodeReject(data []byte, numSectors int) *RejectTable {
	needed := (numSectors*numSectors + 7) / 8
	if len(data) < needed {
		return &RejectTable{numSectors: numSectors}
	}
	return &RejectTable{bits: data, numSectors: numSectors}
}

// CanSee reports whether sectorA and sectorB are mutually visible.
func (r *RejectTable) CanSee(sectorA, sectorB int) bool {
	if r.bits == nil {
		return true
	}
	if sectorA < 0 || sectorB < 0 || sectorA >= r.numSectors || sectorB >= r.numSectors {
		return true
	}
	bitIndex := sectorA*r.numSectors + sectorB
	byteIdx := bitIndex / 8
	bitOff := uint(bitIndex % 8)
	if byteIdx >= len(r.bits) {
		return true
	}
	return r.bits[byteIdx]&(1<<bitOff) == 0
}
