package smt

import (
	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
)

// Array is a symbolic map from bitvector indices to bitvector values,
// implemented as a yices uninterpreted function that is rewritten by
// each update. Reads at symbolic indices stay symbolic.
type Array struct {
	name string
	dom  uint32
	rng  uint32
	term yices2.TermT
}

func NewArray(name string, dom, rng uint32) Array {
	t1 := yices2.BvType(dom)
	t2 := yices2.BvType(rng)
	fn := yices2.FunctionType1(t1, t2)
	term := yices2.NewUninterpretedTerm(fn)
	yices2.SetTermName(term, name)
	return Array{
		name: name,
		dom:  dom,
		rng:  rng,
		term: term,
	}
}

func (a *Array) GetDomain() uint32 {
	return a.dom
}

func (a *Array) GetRange() uint32 {
	return a.rng
}

func (a *Array) Get(index *BitVec) (*BitVec, error) {
	term := yices2.Application1(a.term, index.GetRaw())
	if term == yices2.NullTerm {
		return nil, errors.Errorf("smt: array get: %s", yices2.ErrorString())
	}
	return NewBitVecFromTerm(term), nil
}

func (a *Array) Set(index, value *BitVec) error {
	term := yices2.Update1(a.term, index.GetRaw(), value.GetRaw())
	if term == yices2.NullTerm {
		return errors.Errorf("smt: array set: %s", yices2.ErrorString())
	}
	a.term = term
	return nil
}

// Clone returns an independent view; updates to either copy do not
// affect the other since the backing terms are immutable.
func (a *Array) Clone() Array {
	return Array{
		name: a.name,
		dom:  a.dom,
		rng:  a.rng,
		term: a.term,
	}
}
