package state

// allocBase keeps the low address range unused so that allocated
// addresses are never confused with null or small constants.
const allocBase = 0x1000

// Alloc issues non-overlapping concrete base addresses by bumping a
// watermark. Sizes are rounded up to a multiple of 8 bytes, so any
// object of 64 bits or less fits inside one memory cell.
type Alloc struct {
	next uint64
}

func NewAlloc() *Alloc {
	return &Alloc{next: allocBase}
}

// Alloc reserves room for an object of the given bit width and returns
// its base address.
func (a *Alloc) Alloc(bits uint64) uint64 {
	base := a.next
	bytes := (bits + 7) / 8
	if bytes == 0 {
		bytes = 1
	}
	// round up to cell granularity
	bytes = (bytes + 7) / 8 * 8
	a.next += bytes
	return base
}

func (a *Alloc) Clone() *Alloc {
	return &Alloc{next: a.next}
}
