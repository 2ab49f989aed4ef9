package smt

import (
	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	log "github.com/sirupsen/logrus"
)

// Bool is a boolean expression backed by a yices term. Bools are small
// value types and are passed by value.
type Bool struct {
	name  string
	value yices2.TermT
}

// NewBool creates a fresh symbolic boolean constant with the given name.
func NewBool(name string) Bool {
	term := yices2.NewUninterpretedTerm(yices2.BoolType())
	errcode := yices2.SetTermName(term, name)
	if errcode < 0 {
		log.Errorf("smt: set term name %q: %s", name, yices2.ErrorString())
	}
	return Bool{
		name:  name,
		value: term,
	}
}

// NewBoolVal creates the concrete boolean true or false.
func NewBoolVal(value bool) Bool {
	if value {
		return Bool{value: yices2.True()}
	}
	return Bool{value: yices2.False()}
}

func NewBoolFromTerm(term yices2.TermT) Bool {
	return Bool{value: term}
}

func (b Bool) GetRaw() yices2.TermT {
	return b.value
}

func (b Bool) GetName() string {
	return b.name
}

func (b Bool) Type() string {
	return BoolType
}

func (b Bool) IsSymbolic() bool {
	return yices2.TermConstructor(b.value) != yices2.TrmCnstrBoolConstant
}

func (b Bool) String() string {
	return yices2.TermToString(b.value, 200, 1, 0)
}

func (b Bool) Not() Bool {
	return Bool{
		name:  b.name,
		value: yices2.Not(b.value),
	}
}

func (b Bool) And(other Bool) Bool {
	return Bool{
		name:  b.name,
		value: yices2.And2(b.value, other.value),
	}
}

func (b Bool) Or(other Bool) Bool {
	return Bool{
		name:  b.name,
		value: yices2.Or2(b.value, other.value),
	}
}

// Eq is boolean equality (iff).
func (b Bool) Eq(other Bool) Bool {
	return Bool{
		name:  b.name,
		value: yices2.Eq(b.value, other.value),
	}
}

// Ite builds an if-then-else bitvector term selecting between two
// equally-sized branches.
func (b Bool) Ite(then, els *BitVec) *BitVec {
	return &BitVec{
		value: yices2.Ite(b.value, then.value, els.value),
	}
}
