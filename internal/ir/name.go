// Package ir models the slice of a single-assignment intermediate
// representation that symbolic execution consumes: named local values,
// fixed-width integer types, operands, instructions with results, basic
// blocks and functions. Parsing real IR into this model is out of scope.
package ir

import "strconv"

// Name identifies a local value, either by string (named values) or by
// number (anonymous values). Names are comparable and usable as map keys.
type Name struct {
	str   string
	num   int
	named bool
}

func NewName(s string) Name {
	return Name{str: s, named: true}
}

func NewNumberedName(n int) Name {
	return Name{num: n}
}

func (n Name) IsNamed() bool {
	return n.named
}

func (n Name) Str() string {
	return n.str
}

func (n Name) Num() int {
	return n.num
}

// Symbol is the canonical solver-visible symbol for this name. Named
// values map to their string; numbered values map to "%<n>". IR string
// identifiers never begin with '%', so the mapping is collision-free.
func (n Name) Symbol() string {
	if n.named {
		return n.str
	}
	return "%" + strconv.Itoa(n.num)
}

func (n Name) String() string {
	if n.named {
		return "%" + n.str
	}
	return "%" + strconv.Itoa(n.num)
}
