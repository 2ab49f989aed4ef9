package state

import (
	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"

	"github.com/zeta1999/haybale/internal/ir"
	"github.com/zeta1999/haybale/internal/smt"
)

// VarMap binds local-value names to their symbolic expressions.
// Bitvector and boolean bindings live in separate namespaces, matching
// the two expression kinds, and rebinding a name overwrites the old
// entry: single-assignment form guarantees a name is defined at most
// once per control path, so an overwrite only ever happens when a
// backtracked path re-enters the defining block.
//
// The maps are persistent, so cloning a VarMap shares structure with
// the original instead of copying every binding.
type VarMap struct {
	bvs   *immutable.SortedMap
	bools *immutable.SortedMap
}

func NewVarMap() *VarMap {
	return &VarMap{
		bvs:   immutable.NewSortedMap(&nameComparer{}),
		bools: immutable.NewSortedMap(&nameComparer{}),
	}
}

func (m *VarMap) AddBitVecVar(name ir.Name, bv *smt.BitVec) {
	m.bvs = m.bvs.Set(name, bv)
}

func (m *VarMap) AddBoolVar(name ir.Name, b smt.Bool) {
	m.bools = m.bools.Set(name, b)
}

func (m *VarMap) LookupBitVecVar(name ir.Name) (*smt.BitVec, error) {
	v, ok := m.bvs.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnboundVariable, "no bitvector bound for %s", name)
	}
	return v.(*smt.BitVec), nil
}

func (m *VarMap) LookupBoolVar(name ir.Name) (smt.Bool, error) {
	v, ok := m.bools.Get(name)
	if !ok {
		return smt.Bool{}, errors.Wrapf(ErrUnboundVariable, "no bool bound for %s", name)
	}
	return v.(smt.Bool), nil
}

func (m *VarMap) Size() int {
	return m.bvs.Len() + m.bools.Len()
}

func (m *VarMap) Clone() *VarMap {
	return &VarMap{
		bvs:   m.bvs,
		bools: m.bools,
	}
}

// nameComparer orders ir.Name keys: named values before numbered ones,
// then by string or number. Implements immutable.Comparer.
type nameComparer struct{}

func (c *nameComparer) Compare(a, b interface{}) int {
	x, y := a.(ir.Name), b.(ir.Name)
	if x.IsNamed() != y.IsNamed() {
		if x.IsNamed() {
			return -1
		}
		return 1
	}
	if x.IsNamed() {
		if x.Str() < y.Str() {
			return -1
		} else if x.Str() > y.Str() {
			return 1
		}
		return 0
	}
	if x.Num() < y.Num() {
		return -1
	} else if x.Num() > y.Num() {
		return 1
	}
	return 0
}
