package ir

import "strconv"

// Type is a fixed-width integer type. The 1-bit type doubles as bool,
// as in LLVM's i1. The zero value is void (no result).
type Type struct {
	bits uint32
}

func IntType(bits uint32) Type {
	return Type{bits: bits}
}

func BoolType() Type {
	return Type{bits: 1}
}

// PointerType is the fixed-width address type; the address space is
// 64-bit regardless of pointee size.
func PointerType() Type {
	return Type{bits: 64}
}

func VoidType() Type {
	return Type{}
}

func (t Type) Bits() uint32 {
	return t.bits
}

func (t Type) IsBool() bool {
	return t.bits == 1
}

func (t Type) IsVoid() bool {
	return t.bits == 0
}

func (t Type) String() string {
	if t.IsVoid() {
		return "void"
	}
	return "i" + strconv.Itoa(int(t.bits))
}
