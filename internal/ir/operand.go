package ir

import (
	"fmt"
	"strconv"
)

type OperandKind int

const (
	// ConstantOperand is an integer or boolean literal.
	ConstantOperand OperandKind = iota
	// LocalOperand references a previously defined local value.
	LocalOperand
	// MetadataOperand carries debug metadata; it has no runtime value
	// and cannot be resolved to a symbolic expression.
	MetadataOperand
)

// Operand is one argument of an instruction.
type Operand struct {
	kind  OperandKind
	name  Name
	typ   Type
	value uint64
}

func NewConstOperand(value uint64, bits uint32) Operand {
	return Operand{
		kind:  ConstantOperand,
		typ:   IntType(bits),
		value: value,
	}
}

func NewLocalOperand(name Name, typ Type) Operand {
	return Operand{
		kind: LocalOperand,
		name: name,
		typ:  typ,
	}
}

func NewMetadataOperand() Operand {
	return Operand{kind: MetadataOperand}
}

func (o Operand) Kind() OperandKind {
	return o.kind
}

func (o Operand) Name() Name {
	return o.name
}

func (o Operand) Type() Type {
	return o.typ
}

func (o Operand) Value() uint64 {
	return o.value
}

func (o Operand) String() string {
	switch o.kind {
	case ConstantOperand:
		return fmt.Sprintf("%s %s", o.typ, strconv.FormatUint(o.value, 10))
	case LocalOperand:
		return fmt.Sprintf("%s %s", o.typ, o.name)
	case MetadataOperand:
		return "metadata"
	}
	return "unknown"
}
