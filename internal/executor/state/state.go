package state

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/zeta1999/haybale/internal/ir"
	"github.com/zeta1999/haybale/internal/smt"
)

// State is all of the mutable state of one exploration path: local
// bindings, symbolic memory, the address allocator, the constraint
// store and the stack of backtracking points. One State per path; it
// must not be shared across concurrently explored paths (Clone one per
// worker instead).
//
// Invariant: the solver's open frame count always equals the number of
// backtracking points on the stack; every saved point pushes exactly
// one frame and every revert pops exactly one.
type State struct {
	vars            *VarMap
	mem             *Memory
	alloc           *Alloc
	solver          *smt.Solver
	backtrackPoints []*BacktrackPoint
}

// BacktrackPoint records one not-yet-explored alternative: where to
// resume interpreting and the branch constraint to assert if and when
// the point is resumed. The constraint is deliberately not asserted at
// creation time.
type BacktrackPoint struct {
	// function in which to resume execution
	fn *ir.Function
	// block to resume execution at
	nextBB ir.Name
	// block executed just prior to the backtracking point; needed by
	// IR constructs that read which predecessor they arrived from
	prevBB ir.Name
	// constraint to assert before restarting execution at nextBB
	constraint smt.Bool
}

func (bp *BacktrackPoint) String() string {
	return fmt.Sprintf("<BacktrackPoint to execute bb %s with constraint %s>", bp.nextBB, bp.constraint)
}

// New produces a state with empty bindings, empty memory, a fresh
// allocator, an empty constraint store and no backtracking points.
func New() *State {
	return &State{
		vars:   NewVarMap(),
		mem:    NewMemory(),
		alloc:  NewAlloc(),
		solver: smt.NewSolver(),
	}
}

// Assert adds cond as a permanent constraint in the innermost open frame.
func (s *State) Assert(cond smt.Bool) {
	s.solver.Assert(cond)
}

// Check reports whether the current constraints are satisfiable. The
// verdict is cached; the solver is only consulted if constraints have
// changed since the last Check.
func (s *State) Check() bool {
	return s.solver.Check()
}

// CheckWithExtraConstraints reports whether the current constraints
// plus conds are together satisfiable, without persisting conds.
func (s *State) CheckWithExtraConstraints(conds ...smt.Bool) bool {
	return s.solver.CheckWithExtraConstraints(conds...)
}

// GetASolutionForBitVec returns one concrete value for bv consistent
// with a model of the current constraints, or false if unsatisfiable.
func (s *State) GetASolutionForBitVec(bv *smt.BitVec) (uint64, bool) {
	return s.solver.GetSolutionForBitVec(bv)
}

// GetASolutionForBool returns one concrete value for b consistent with
// a model of the current constraints, or false if unsatisfiable.
func (s *State) GetASolutionForBool(b smt.Bool) (bool, bool) {
	return s.solver.GetSolutionForBool(b)
}

// GetASolutionForBitVecByName resolves name to its bound bitvector and
// returns one concrete value for it. Fails if the name is unbound.
func (s *State) GetASolutionForBitVecByName(name ir.Name) (uint64, bool, error) {
	bv, err := s.vars.LookupBitVecVar(name)
	if err != nil {
		return 0, false, err
	}
	v, ok := s.GetASolutionForBitVec(bv)
	return v, ok, nil
}

// GetASolutionForBoolByName resolves name to its bound bool and returns
// one concrete value for it. Fails if the name is unbound.
func (s *State) GetASolutionForBoolByName(name ir.Name) (bool, bool, error) {
	b, err := s.vars.LookupBoolVar(name)
	if err != nil {
		return false, false, err
	}
	v, ok := s.GetASolutionForBool(b)
	return v, ok, nil
}

// AddBitVecVar binds name to bv, overwriting any prior binding.
func (s *State) AddBitVecVar(name ir.Name, bv *smt.BitVec) {
	s.vars.AddBitVecVar(name, bv)
}

// AddBoolVar binds name to b, overwriting any prior binding.
func (s *State) AddBoolVar(name ir.Name, b smt.Bool) {
	s.vars.AddBoolVar(name, b)
}

// RecordBitVecResult records the result of instr to be val. A fresh
// constant named after the result, sized to the instruction's declared
// type, is asserted equal to val and bound as the result. Binding the
// named constant instead of val keeps per-instruction expressions small
// and gives every result a stable, solver-visible handle.
func (s *State) RecordBitVecResult(instr ir.HasResult, val *smt.BitVec) error {
	bits := instr.ResultType().Bits()
	if bits == 0 {
		return errors.Wrapf(ErrTypeMismatch, "instruction %s has no result type", instr.Result())
	}
	if val.Size() != bits {
		return errors.Wrapf(ErrTypeMismatch, "recording %d-bit value as %s of type %s",
			val.Size(), instr.Result(), instr.ResultType())
	}
	result := smt.NewBitVec(instr.Result().Symbol(), bits)
	s.Assert(result.Eq(val))
	s.vars.AddBitVecVar(instr.Result(), result)
	return nil
}

// RecordBoolResult records the boolean result of instr to be val. The
// instruction's declared type must be i1.
func (s *State) RecordBoolResult(instr ir.HasResult, val smt.Bool) error {
	if !instr.ResultType().IsBool() {
		return errors.Wrapf(ErrTypeMismatch, "recording bool as %s of type %s",
			instr.Result(), instr.ResultType())
	}
	result := smt.NewBool(instr.Result().Symbol())
	s.Assert(result.Eq(val))
	s.vars.AddBoolVar(instr.Result(), result)
	return nil
}

// OperandToBitVec resolves op, which must be an integer constant or a
// previously bound local value, to a bitvector expression.
func (s *State) OperandToBitVec(op ir.Operand) (*smt.BitVec, error) {
	switch op.Kind() {
	case ir.ConstantOperand:
		return smt.NewBitVecVal(op.Value(), op.Type().Bits()), nil
	case ir.LocalOperand:
		return s.vars.LookupBitVecVar(op.Name())
	default:
		return nil, errors.Wrapf(ErrUnsupportedOperand, "cannot convert %s to bitvector", op)
	}
}

// OperandToBool resolves op, which must be a 1-bit constant or a
// previously bound local value, to a boolean expression.
func (s *State) OperandToBool(op ir.Operand) (smt.Bool, error) {
	switch op.Kind() {
	case ir.ConstantOperand:
		if op.Type().Bits() != 1 {
			return smt.Bool{}, errors.Wrapf(ErrTypeMismatch, "constant %s is not i1", op)
		}
		return smt.NewBoolVal(op.Value() != 0), nil
	case ir.LocalOperand:
		return s.vars.LookupBoolVar(op.Name())
	default:
		return smt.Bool{}, errors.Wrapf(ErrUnsupportedOperand, "cannot convert %s to bool", op)
	}
}

// Read reads a bits-wide value from memory at addr. The caller must
// ensure the read does not cross cell boundaries (see Memory).
func (s *State) Read(addr *smt.BitVec, bits uint32) (*smt.BitVec, error) {
	return s.mem.Read(addr, bits)
}

// Write writes val into memory at addr. The caller must ensure the
// write does not cross cell boundaries (see Memory).
func (s *State) Write(addr *smt.BitVec, val *smt.BitVec) error {
	return s.mem.Write(addr, val)
}

// Allocate reserves bits bits of fresh memory and returns its concrete
// base address as a 64-bit bitvector.
func (s *State) Allocate(bits uint32) *smt.BitVec {
	raw := s.alloc.Alloc(uint64(bits))
	return smt.NewBitVecVal(raw, AddrBits)
}

// SaveBacktrackingPoint records the alternative of resuming at nextBB
// (arriving from prevBB) under constraint. A solver frame is pushed so
// that everything asserted from now on is discarded when the point is
// reverted to; constraint itself is only asserted on revert.
func (s *State) SaveBacktrackingPoint(fn *ir.Function, nextBB, prevBB ir.Name, constraint smt.Bool) {
	log.Debugf("saving a backtracking point, which would enter bb %s with constraint %s", nextBB, constraint)
	s.solver.Push()
	s.backtrackPoints = append(s.backtrackPoints, &BacktrackPoint{
		fn:         fn,
		nextBB:     nextBB,
		prevBB:     prevBB,
		constraint: constraint,
	})
}

// RevertToBacktrackingPoint pops the most recent backtracking point,
// discards every constraint asserted since it was saved, asserts its
// deferred constraint and returns where execution should continue: the
// function, the block to resume at, and the block executed before it.
// The last return is false when no points remain, which signals that
// path exploration is exhausted.
//
// Bindings are deliberately left untouched: under single-assignment
// form the resumed path never reads a value defined on the abandoned
// suffix, so rolling back the VarMap is unnecessary. That shortcut is
// unsound for IR with loop-carried redefinition, which is unsupported.
func (s *State) RevertToBacktrackingPoint() (*ir.Function, ir.Name, ir.Name, bool) {
	if len(s.backtrackPoints) == 0 {
		return nil, ir.Name{}, ir.Name{}, false
	}
	if s.solver.NumFrames() != len(s.backtrackPoints) {
		panic(fmt.Sprintf("state: %d backtracking points but %d solver frames",
			len(s.backtrackPoints), s.solver.NumFrames()))
	}
	bp := s.backtrackPoints[len(s.backtrackPoints)-1]
	s.backtrackPoints = s.backtrackPoints[:len(s.backtrackPoints)-1]
	log.Debugf("reverting to backtracking point %s", bp)
	s.solver.Pop(1)
	s.Assert(bp.constraint)
	return bp.fn, bp.nextBB, bp.prevBB, true
}

// BacktrackDepth reports how many backtracking points are outstanding.
func (s *State) BacktrackDepth() int {
	return len(s.backtrackPoints)
}

// SolverFrameDepth reports how many solver frames are open.
func (s *State) SolverFrameDepth() int {
	return s.solver.NumFrames()
}

// Clone produces an independent deep copy: bindings, memory, allocator,
// constraint store (replayed into a fresh solver context, frames and
// all) and the backtracking stack are copied together as one unit, so
// a parallel driver can hand each worker its own state.
func (s *State) Clone() *State {
	points := make([]*BacktrackPoint, len(s.backtrackPoints))
	copy(points, s.backtrackPoints)
	return &State{
		vars:            s.vars.Clone(),
		mem:             s.mem.Clone(),
		alloc:           s.alloc.Clone(),
		solver:          s.solver.Clone(),
		backtrackPoints: points,
	}
}
