package smt

import (
	"fmt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	log "github.com/sirupsen/logrus"
)

const (
	BitVecType = "bitvec"
	BoolType   = "bool"
)

// BitVec is a fixed-width bitvector expression backed by a yices term.
// Terms are immutable; every operation builds a new BitVec.
type BitVec struct {
	name  string
	value yices2.TermT
}

// NewBitVec creates a fresh symbolic bitvector constant with the given name.
func NewBitVec(name string, size uint32) *BitVec {
	term := yices2.NewUninterpretedTerm(yices2.BvType(size))
	errcode := yices2.SetTermName(term, name)
	if errcode < 0 {
		log.Errorf("smt: set term name %q: %s", name, yices2.ErrorString())
	}
	return &BitVec{
		name:  name,
		value: term,
	}
}

// NewBitVecVal creates a concrete bitvector of the given width.
// For size 64 the full uint64 range is representable; narrower widths
// truncate to the low bits.
func NewBitVecVal(value uint64, size uint32) *BitVec {
	return &BitVec{
		value: yices2.BvconstInt64(size, int64(value)),
	}
}

// NewBitVecValInt64 creates a concrete bitvector from a signed value.
func NewBitVecValInt64(value int64, size uint32) *BitVec {
	return &BitVec{
		value: yices2.BvconstInt64(size, value),
	}
}

func NewBitVecFromTerm(value yices2.TermT) *BitVec {
	return &BitVec{
		value: value,
	}
}

func (bv *BitVec) GetRaw() yices2.TermT {
	return bv.value
}

func (bv *BitVec) GetName() string {
	return bv.name
}

func (bv *BitVec) Type() string {
	return BitVecType
}

func (bv *BitVec) Size() uint32 {
	return yices2.TermBitsize(bv.value)
}

func (bv *BitVec) IsSymbolic() bool {
	return yices2.TermConstructor(bv.value) != yices2.TrmCnstrBvConstant
}

func (bv *BitVec) Clone() *BitVec {
	return &BitVec{
		name:  bv.name,
		value: bv.value,
	}
}

func (bv *BitVec) String() string {
	return yices2.TermToString(bv.value, 200, 1, 0)
}

// Concat appends other as the low-order bits; the result width is the sum
// of both widths.
func (bv *BitVec) Concat(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvconcat2(bv.value, other.value),
	}
}

// Extract returns bits lo..hi inclusive, a bitvector of width hi-lo+1.
func (bv *BitVec) Extract(lo, hi uint32) *BitVec {
	if hi < lo || hi >= bv.Size() {
		panic(fmt.Sprintf("smt: extract [%d..%d] out of range for bv of size %d", lo, hi, bv.Size()))
	}
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvextract(bv.value, lo, hi),
	}
}

// ZeroExtTo widens the value to the given size with zero high-order bits.
// It is a no-op if the value already has that size.
func (bv *BitVec) ZeroExtTo(size uint32) *BitVec {
	oldSize := bv.Size()
	if oldSize >= size {
		return bv
	}
	zeros := NewBitVecVal(0, size-oldSize)
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvconcat2(zeros.value, bv.value),
	}
}

func (bv *BitVec) Not() *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvnot(bv.value),
	}
}

func (bv *BitVec) Add(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvadd(bv.value, other.value),
	}
}

func (bv *BitVec) Sub(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvsub(bv.value, other.value),
	}
}

func (bv *BitVec) Mul(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvmul(bv.value, other.value),
	}
}

func (bv *BitVec) And(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvand2(bv.value, other.value),
	}
}

func (bv *BitVec) Or(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvor2(bv.value, other.value),
	}
}

func (bv *BitVec) Xor(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvxor2(bv.value, other.value),
	}
}

func (bv *BitVec) Shl(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvshl(bv.value, other.value),
	}
}

// Shr is a logical (zero-filling) right shift.
func (bv *BitVec) Shr(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvlshr(bv.value, other.value),
	}
}

// AShr is an arithmetic (sign-filling) right shift.
func (bv *BitVec) AShr(other *BitVec) *BitVec {
	return &BitVec{
		name:  bv.name,
		value: yices2.Bvashr(bv.value, other.value),
	}
}

func (bv *BitVec) Eq(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.Eq(bv.value, other.value),
	}
}

func (bv *BitVec) Ne(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvneqAtom(bv.value, other.value),
	}
}

// Slt and friends are signed comparisons; the U-prefixed forms are unsigned.

func (bv *BitVec) Slt(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvsltAtom(bv.value, other.value),
	}
}

func (bv *BitVec) Sgt(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvsgtAtom(bv.value, other.value),
	}
}

func (bv *BitVec) Sle(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvsleAtom(bv.value, other.value),
	}
}

func (bv *BitVec) Sge(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvsgeAtom(bv.value, other.value),
	}
}

func (bv *BitVec) Ult(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvltAtom(bv.value, other.value),
	}
}

func (bv *BitVec) Ugt(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvgtAtom(bv.value, other.value),
	}
}

func (bv *BitVec) Ule(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvleAtom(bv.value, other.value),
	}
}

func (bv *BitVec) Uge(other *BitVec) Bool {
	return Bool{
		name:  bv.name,
		value: yices2.BvgeAtom(bv.value, other.value),
	}
}
