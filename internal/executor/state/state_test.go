package state

import (
	"testing"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeta1999/haybale/internal/ir"
	"github.com/zeta1999/haybale/internal/smt"
)

func Test_LookupVarsViaOperand(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	var (
		val     = ir.NewName("val")
		boolval = ir.NewNumberedName(2)
		x       = smt.NewBitVec("x", 64)
		b       = smt.NewBool("bool")
	)
	s.AddBitVecVar(val, x)
	s.AddBoolVar(boolval, b)

	got, err := s.OperandToBitVec(ir.NewLocalOperand(val, ir.IntType(32)))
	assert.Nil(t, err)
	assert.Equal(t, x.GetRaw(), got.GetRaw())

	gotBool, err := s.OperandToBool(ir.NewLocalOperand(boolval, ir.BoolType()))
	assert.Nil(t, err)
	assert.Equal(t, b.GetRaw(), gotBool.GetRaw())
}

func Test_ConstOperandToBitVec(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	bv, err := s.OperandToBitVec(ir.NewConstOperand(3, 64))
	assert.Nil(t, err)

	val, ok := s.GetASolutionForBitVec(bv)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), val)
}

func Test_ConstOperandToBool(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	bvTrue, err := s.OperandToBool(ir.NewConstOperand(1, 1))
	assert.Nil(t, err)
	bvFalse, err := s.OperandToBool(ir.NewConstOperand(0, 1))
	assert.Nil(t, err)

	val, ok := s.GetASolutionForBool(bvTrue)
	assert.True(t, ok)
	assert.True(t, val)
	val, ok = s.GetASolutionForBool(bvFalse)
	assert.True(t, ok)
	assert.False(t, val)

	// asserting true keeps us sat, adding false makes us unsat
	s.Assert(bvTrue)
	assert.True(t, s.Check())
	s.Assert(bvFalse)
	assert.False(t, s.Check())
}

func Test_OperandErrors(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	// unbound local reference
	_, err := s.OperandToBitVec(ir.NewLocalOperand(ir.NewName("ghost"), ir.IntType(64)))
	assert.Equal(t, ErrUnboundVariable, errors.Cause(err))
	_, err = s.OperandToBool(ir.NewLocalOperand(ir.NewNumberedName(9), ir.BoolType()))
	assert.Equal(t, ErrUnboundVariable, errors.Cause(err))

	// metadata cannot be resolved
	_, err = s.OperandToBitVec(ir.NewMetadataOperand())
	assert.Equal(t, ErrUnsupportedOperand, errors.Cause(err))
	_, err = s.OperandToBool(ir.NewMetadataOperand())
	assert.Equal(t, ErrUnsupportedOperand, errors.Cause(err))

	// a bool constant must be exactly 1 bit wide
	_, err = s.OperandToBool(ir.NewConstOperand(1, 64))
	assert.Equal(t, ErrTypeMismatch, errors.Cause(err))
}

func Test_RecordBitVecResult(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	instr := &ir.BinOp{
		Op:   ir.Add,
		Dest: ir.NewNumberedName(1),
		Ty:   ir.IntType(64),
		X:    ir.NewConstOperand(3, 64),
		Y:    ir.NewConstOperand(4, 64),
	}
	x, err := s.OperandToBitVec(instr.X)
	require.Nil(t, err)
	y, err := s.OperandToBitVec(instr.Y)
	require.Nil(t, err)

	err = s.RecordBitVecResult(instr, x.Add(y))
	assert.Nil(t, err)

	// the result identity is bound to a named constant equal to the value
	bound, err := s.OperandToBitVec(ir.NewLocalOperand(instr.Dest, instr.Ty))
	assert.Nil(t, err)
	assert.True(t, bound.IsSymbolic())
	assert.Equal(t, "%1", bound.GetName())

	val, ok, err := s.GetASolutionForBitVecByName(instr.Dest)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), val)
}

func Test_RecordBitVecResultWidthMismatch(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	instr := &ir.BinOp{
		Op:   ir.Add,
		Dest: ir.NewName("r"),
		Ty:   ir.IntType(32),
	}
	err := s.RecordBitVecResult(instr, smt.NewBitVecVal(1, 64))
	assert.Equal(t, ErrTypeMismatch, errors.Cause(err))
}

func Test_RecordBoolResult(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	instr := &ir.ICmp{
		Dest: ir.NewName("cmp"),
		Pred: ir.PredSgt,
		X:    ir.NewConstOperand(5, 64),
		Y:    ir.NewConstOperand(3, 64),
	}
	err := s.RecordBoolResult(instr, smt.NewBitVecVal(5, 64).Sgt(smt.NewBitVecVal(3, 64)))
	assert.Nil(t, err)

	val, ok, err := s.GetASolutionForBoolByName(instr.Dest)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.True(t, val)
}

func Test_RecordBoolResultTypeMismatch(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	// a binop declared i64 cannot record a bool result
	instr := &ir.BinOp{
		Op:   ir.Add,
		Dest: ir.NewName("r"),
		Ty:   ir.IntType(64),
	}
	err := s.RecordBoolResult(instr, smt.NewBoolVal(true))
	assert.Equal(t, ErrTypeMismatch, errors.Cause(err))
}

func Test_SolutionByNameUnbound(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	_, _, err := s.GetASolutionForBitVecByName(ir.NewName("ghost"))
	assert.Equal(t, ErrUnboundVariable, errors.Cause(err))
	_, _, err = s.GetASolutionForBoolByName(ir.NewName("ghost"))
	assert.Equal(t, ErrUnboundVariable, errors.Cause(err))
}

func Test_CheckWithExtraConstraintsIsTransient(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	x := smt.NewBitVec("x", 64)
	s.Assert(x.Sgt(smt.NewBitVecValInt64(11, 64)))

	assert.False(t, s.CheckWithExtraConstraints(x.Slt(smt.NewBitVecValInt64(8, 64))))
	assert.True(t, s.Check())
}

func Test_AllocateReturnsPointerConstant(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	p1 := s.Allocate(64)
	p2 := s.Allocate(8)
	assert.Equal(t, uint32(AddrBits), p1.Size())
	assert.False(t, p1.IsSymbolic())

	a1, ok := s.GetASolutionForBitVec(p1)
	assert.True(t, ok)
	a2, ok := s.GetASolutionForBitVec(p2)
	assert.True(t, ok)
	assert.NotEqual(t, a1, a2)
}

func Test_AllocateWriteRead(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	addr := s.Allocate(64)
	assert.Nil(t, s.Write(addr, smt.NewBitVecVal(99, 64)))

	got, err := s.Read(addr, 64)
	assert.Nil(t, err)
	val, ok := s.GetASolutionForBitVec(got)
	assert.True(t, ok)
	assert.Equal(t, uint64(99), val)
}

func Test_Backtracking(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	// assert x > 11
	x := smt.NewBitVec("x", 64)
	s.Assert(x.Sgt(smt.NewBitVecValInt64(11, 64)))

	fn := &ir.Function{Name: "test_func"}
	bb1 := ir.NewName("bb1")
	bb2 := ir.NewName("bb2")

	// save a backtracking point with deferred constraint y > 5
	y := smt.NewBitVec("y", 64)
	s.SaveBacktrackingPoint(fn, bb2, bb1, y.Sgt(smt.NewBitVecValInt64(5, 64)))

	// y > 5 must not be asserted yet: y < 4 is still possible
	assert.True(t, s.CheckWithExtraConstraints(y.Slt(smt.NewBitVecValInt64(4, 64))))

	// assert x < 8 to make the path unsat
	s.Assert(x.Slt(smt.NewBitVecValInt64(8, 64)))
	assert.False(t, s.Check())

	// roll back; we must get the saved resume location
	gotFn, next, prev, ok := s.RevertToBacktrackingPoint()
	assert.True(t, ok)
	assert.Equal(t, fn, gotFn)
	assert.Equal(t, bb2, next)
	assert.Equal(t, bb1, prev)

	// x < 8 was discarded: sat again
	assert.True(t, s.Check())

	// the deferred constraint y > 5 is now in force
	yVal, ok := s.GetASolutionForBitVec(y)
	assert.True(t, ok)
	assert.Greater(t, int64(yVal), int64(5))

	// the permanent constraint x > 11 survived the revert
	xVal, ok := s.GetASolutionForBitVec(x)
	assert.True(t, ok)
	assert.Greater(t, int64(xVal), int64(11))

	// no backtracking points remain
	_, _, _, ok = s.RevertToBacktrackingPoint()
	assert.False(t, ok)
}

func Test_BindingsSurviveRevert(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	// a binding made before the fork point stays valid after revert
	before := ir.NewName("before")
	s.AddBitVecVar(before, smt.NewBitVec("before", 64))

	fn := &ir.Function{Name: "f"}
	s.SaveBacktrackingPoint(fn, ir.NewName("bb2"), ir.NewName("bb1"), smt.NewBoolVal(true))

	// a binding made on the abandoned suffix is not rolled back either;
	// single-assignment form means the resumed path never reads it
	after := ir.NewName("after")
	s.AddBitVecVar(after, smt.NewBitVec("after", 64))

	_, _, _, ok := s.RevertToBacktrackingPoint()
	assert.True(t, ok)

	_, err := s.OperandToBitVec(ir.NewLocalOperand(before, ir.IntType(64)))
	assert.Nil(t, err)
	_, err = s.OperandToBitVec(ir.NewLocalOperand(after, ir.IntType(64)))
	assert.Nil(t, err)
}

func Test_MarkerDepthMatchesSolverFrames(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()
	fn := &ir.Function{Name: "f"}
	bb := ir.NewName("bb")

	check := func() {
		assert.Equal(t, s.BacktrackDepth(), s.SolverFrameDepth())
	}

	check()
	s.SaveBacktrackingPoint(fn, bb, bb, smt.NewBoolVal(true))
	check()
	s.SaveBacktrackingPoint(fn, bb, bb, smt.NewBoolVal(true))
	check()
	s.SaveBacktrackingPoint(fn, bb, bb, smt.NewBoolVal(true))
	check()

	_, _, _, ok := s.RevertToBacktrackingPoint()
	assert.True(t, ok)
	check()

	s.SaveBacktrackingPoint(fn, bb, bb, smt.NewBoolVal(true))
	check()

	for i := 0; i < 3; i++ {
		_, _, _, ok = s.RevertToBacktrackingPoint()
		assert.True(t, ok)
		check()
	}
	_, _, _, ok = s.RevertToBacktrackingPoint()
	assert.False(t, ok)
	check()
}

func Test_StateClone(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	s := New()

	x := smt.NewBitVec("x", 64)
	name := ir.NewName("x")
	s.AddBitVecVar(name, x)
	s.Assert(x.Eq(smt.NewBitVecVal(5, 64)))

	fn := &ir.Function{Name: "f"}
	s.SaveBacktrackingPoint(fn, ir.NewName("bb2"), ir.NewName("bb1"), smt.NewBoolVal(true))

	clone := s.Clone()
	assert.Equal(t, s.BacktrackDepth(), clone.BacktrackDepth())
	assert.Equal(t, s.SolverFrameDepth(), clone.SolverFrameDepth())

	// diverging the original does not touch the clone
	s.Assert(x.Eq(smt.NewBitVecVal(6, 64)))
	assert.False(t, s.Check())
	assert.True(t, clone.Check())

	val, ok, err := clone.GetASolutionForBitVecByName(name)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), val)
}
