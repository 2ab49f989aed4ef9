package state

import (
	"github.com/pkg/errors"

	"github.com/zeta1999/haybale/internal/smt"
)

// CellBits is the width of one memory cell. Reads and writes must not
// cross a cell boundary; callers are responsible for honoring that.
const CellBits = 64

// AddrBits is the width of the address space.
const AddrBits = 64

// Memory is a byte-addressable symbolic store. Cells of CellBits bits
// live in a symbolic array keyed by cell index (address >> 3), so both
// addresses and contents may be fully symbolic. Sub-cell reads and
// writes extract or blend the addressed bytes with shifts and masks.
type Memory struct {
	cells smt.Array
}

func NewMemory() *Memory {
	return &Memory{
		cells: smt.NewArray("mem", AddrBits, CellBits),
	}
}

// cellIndex is addr >> 3; bitOffset is (addr & 7) * 8, the position of
// the addressed byte within its cell.
func split(addr *smt.BitVec) (cellIndex, bitOffset *smt.BitVec) {
	three := smt.NewBitVecVal(3, AddrBits)
	seven := smt.NewBitVecVal(7, AddrBits)
	cellIndex = addr.Shr(three)
	bitOffset = addr.And(seven).Shl(three)
	return cellIndex, bitOffset
}

// Read returns the bits-wide value stored at addr. The read must lie
// within a single cell.
func (m *Memory) Read(addr *smt.BitVec, bits uint32) (*smt.BitVec, error) {
	if bits == 0 || bits > CellBits {
		return nil, errors.Errorf("read of %d bits exceeds cell width %d", bits, CellBits)
	}
	cellIndex, bitOffset := split(addr)
	cell, err := m.cells.Get(cellIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "read cell")
	}
	return cell.Shr(bitOffset).Extract(0, bits-1), nil
}

// Write stores value at addr. The write must lie within a single cell.
func (m *Memory) Write(addr *smt.BitVec, value *smt.BitVec) error {
	bits := value.Size()
	if bits == 0 || bits > CellBits {
		return errors.Errorf("write of %d bits exceeds cell width %d", bits, CellBits)
	}
	cellIndex, bitOffset := split(addr)
	cell, err := m.cells.Get(cellIndex)
	if err != nil {
		return errors.Wrapf(err, "read cell before write")
	}

	// clear the addressed bits, then or the new value in
	mask := ^uint64(0) >> (64 - bits)
	maskTerm := smt.NewBitVecVal(mask, CellBits).Shl(bitOffset)
	widened := value.ZeroExtTo(CellBits).Shl(bitOffset)
	blended := cell.And(maskTerm.Not()).Or(widened)

	if err := m.cells.Set(cellIndex, blended); err != nil {
		return errors.Wrapf(err, "write cell")
	}
	return nil
}

func (m *Memory) Clone() *Memory {
	return &Memory{
		cells: m.cells.Clone(),
	}
}
