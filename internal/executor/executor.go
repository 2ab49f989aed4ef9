// Package executor drives the execution state through a function,
// depth-first: it interprets one block at a time, forks at conditional
// branches where both directions are feasible, and reverts to the most
// recent backtracking point whenever a path terminates, until no
// unexplored alternatives remain.
package executor

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/zeta1999/haybale/internal/executor/state"
	"github.com/zeta1999/haybale/internal/ir"
	"github.com/zeta1999/haybale/internal/smt"
)

// defaultMaxSteps bounds the number of executed blocks across all
// paths. The IR is expected to be loop-free; the budget turns an
// accidental cycle into an error instead of a hang.
const defaultMaxSteps = 10000

// Path is one feasible path through the function: the blocks it
// executed, one concrete argument per parameter consistent with the
// path's constraints, and the concrete return value if any.
type Path struct {
	Blocks []ir.Name
	Args   map[string]uint64
	Ret    *uint64
}

type Executor struct {
	maxSteps int
}

func New() *Executor {
	return &Executor{maxSteps: defaultMaxSteps}
}

// Execute symbolically executes fn with fully symbolic arguments and
// returns every feasible path.
func (e *Executor) Execute(fn *ir.Function) ([]*Path, error) {
	st := state.New()
	for _, p := range fn.Params {
		if p.Ty.IsBool() {
			st.AddBoolVar(p.Name, smt.NewBool(p.Name.Symbol()))
		} else {
			st.AddBitVecVar(p.Name, smt.NewBitVec(p.Name.Symbol(), p.Ty.Bits()))
		}
	}

	cur := fn.Entry()
	if cur == nil {
		return nil, errors.Errorf("function %s has no blocks", fn.Name)
	}

	var (
		paths []*Path
		prev  ir.Name
		trace []ir.Name

		// block traces of the not-yet-explored alternatives, parallel
		// to the state's backtracking stack
		traceStack [][]ir.Name

		steps int
	)

	for {
		steps++
		if steps > e.maxSteps {
			return nil, errors.Errorf("step budget exceeded after %d blocks; loops are unsupported", steps-1)
		}
		trace = append(trace, cur.Name)

		next, path, err := e.executeBlock(st, fn, cur, prev, trace, &traceStack)
		if err != nil {
			return nil, err
		}
		if path != nil {
			paths = append(paths, path)
		}
		if next != nil {
			prev = cur.Name
			cur = next
			continue
		}

		// path ended; resume the most recent alternative
		_, nextBB, prevBB, ok := st.RevertToBacktrackingPoint()
		if !ok {
			return paths, nil
		}
		trace = traceStack[len(traceStack)-1]
		traceStack = traceStack[:len(traceStack)-1]
		block, err := fn.Block(nextBB)
		if err != nil {
			return nil, err
		}
		prev = prevBB
		cur = block
	}
}

// executeBlock runs one basic block. It returns the next block to
// execute, or nil when the path ended here; path is non-nil when the
// block terminated a feasible path with ret.
func (e *Executor) executeBlock(st *state.State, fn *ir.Function, b *ir.BasicBlock, prev ir.Name,
	trace []ir.Name, traceStack *[][]ir.Name) (*ir.BasicBlock, *Path, error) {

	log.Debugf("executing bb %s (from %s) in %s", b.Name, prev, fn.Name)
	term := b.Terminator()
	if term == nil {
		return nil, nil, errors.Errorf("block %s is empty", b.Name)
	}
	for _, instr := range b.Instrs[:len(b.Instrs)-1] {
		if err := e.executeInstruction(st, instr); err != nil {
			return nil, nil, errors.Wrapf(err, "in %s", instr)
		}
	}

	switch t := term.(type) {
	case *ir.Br:
		block, err := fn.Block(t.Dest)
		if err != nil {
			return nil, nil, err
		}
		return block, nil, nil

	case *ir.CondBr:
		cond, err := st.OperandToBool(t.Cond)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "in %s", t)
		}
		trueSat := st.CheckWithExtraConstraints(cond)
		falseSat := st.CheckWithExtraConstraints(cond.Not())
		switch {
		case trueSat && falseSat:
			// explore the true direction now, keep the false one
			// for later
			saved := make([]ir.Name, len(trace))
			copy(saved, trace)
			*traceStack = append(*traceStack, saved)
			st.SaveBacktrackingPoint(fn, t.False, b.Name, cond.Not())
			st.Assert(cond)
			block, err := fn.Block(t.True)
			return block, nil, err
		case trueSat:
			st.Assert(cond)
			block, err := fn.Block(t.True)
			return block, nil, err
		case falseSat:
			st.Assert(cond.Not())
			block, err := fn.Block(t.False)
			return block, nil, err
		default:
			log.Debugf("both branch directions infeasible at %s", b.Name)
			return nil, nil, nil
		}

	case *ir.Ret:
		if !st.Check() {
			return nil, nil, nil
		}
		path, err := e.recordPath(st, fn, t, trace)
		return nil, path, err

	default:
		return nil, nil, errors.Errorf("unsupported terminator %s", term)
	}
}

func (e *Executor) executeInstruction(st *state.State, instr ir.Instruction) error {
	log.Debugf("executing %s", instr)
	switch i := instr.(type) {
	case *ir.BinOp:
		return e.executeBinOp(st, i)
	case *ir.ICmp:
		return e.executeICmp(st, i)
	case *ir.Alloca:
		return st.RecordBitVecResult(i, st.Allocate(i.Bits))
	case *ir.Load:
		addr, err := st.OperandToBitVec(i.Addr)
		if err != nil {
			return err
		}
		val, err := st.Read(addr, i.Ty.Bits())
		if err != nil {
			return err
		}
		return st.RecordBitVecResult(i, val)
	case *ir.Store:
		addr, err := st.OperandToBitVec(i.Addr)
		if err != nil {
			return err
		}
		val, err := st.OperandToBitVec(i.Value)
		if err != nil {
			return err
		}
		return st.Write(addr, val)
	default:
		return errors.Errorf("unsupported instruction %s", instr)
	}
}

func (e *Executor) executeBinOp(st *state.State, i *ir.BinOp) error {
	x, y, err := e.resolvePair(st, i.X, i.Y)
	if err != nil {
		return err
	}
	var result *smt.BitVec
	switch i.Op {
	case ir.Add:
		result = x.Add(y)
	case ir.Sub:
		result = x.Sub(y)
	case ir.Mul:
		result = x.Mul(y)
	case ir.And:
		result = x.And(y)
	case ir.Or:
		result = x.Or(y)
	case ir.Xor:
		result = x.Xor(y)
	case ir.Shl:
		result = x.Shl(y)
	case ir.LShr:
		result = x.Shr(y)
	case ir.AShr:
		result = x.AShr(y)
	default:
		return errors.Errorf("unsupported binop %s", i.Op)
	}
	return st.RecordBitVecResult(i, result)
}

func (e *Executor) executeICmp(st *state.State, i *ir.ICmp) error {
	x, y, err := e.resolvePair(st, i.X, i.Y)
	if err != nil {
		return err
	}
	var result smt.Bool
	switch i.Pred {
	case ir.PredEq:
		result = x.Eq(y)
	case ir.PredNe:
		result = x.Ne(y)
	case ir.PredSlt:
		result = x.Slt(y)
	case ir.PredSgt:
		result = x.Sgt(y)
	case ir.PredSle:
		result = x.Sle(y)
	case ir.PredSge:
		result = x.Sge(y)
	case ir.PredUlt:
		result = x.Ult(y)
	case ir.PredUgt:
		result = x.Ugt(y)
	case ir.PredUle:
		result = x.Ule(y)
	case ir.PredUge:
		result = x.Uge(y)
	default:
		return errors.Errorf("unsupported predicate %s", i.Pred)
	}
	return st.RecordBoolResult(i, result)
}

func (e *Executor) resolvePair(st *state.State, a, b ir.Operand) (*smt.BitVec, *smt.BitVec, error) {
	x, err := st.OperandToBitVec(a)
	if err != nil {
		return nil, nil, err
	}
	y, err := st.OperandToBitVec(b)
	if err != nil {
		return nil, nil, err
	}
	if x.Size() != y.Size() {
		return nil, nil, errors.Wrapf(state.ErrTypeMismatch, "operand widths %d and %d differ", x.Size(), y.Size())
	}
	return x, y, nil
}

// recordPath captures one concrete witness of the current path: an
// argument assignment and the return value under that assignment.
func (e *Executor) recordPath(st *state.State, fn *ir.Function, t *ir.Ret, trace []ir.Name) (*Path, error) {
	path := &Path{
		Blocks: make([]ir.Name, len(trace)),
		Args:   make(map[string]uint64, len(fn.Params)),
	}
	copy(path.Blocks, trace)

	for _, p := range fn.Params {
		if p.Ty.IsBool() {
			v, ok, err := st.GetASolutionForBoolByName(p.Name)
			if err != nil {
				return nil, err
			}
			if ok {
				var n uint64
				if v {
					n = 1
				}
				path.Args[p.Name.Symbol()] = n
			}
			continue
		}
		v, ok, err := st.GetASolutionForBitVecByName(p.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			path.Args[p.Name.Symbol()] = v
		}
	}

	if t.Value != nil {
		bv, err := st.OperandToBitVec(*t.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "in %s", t)
		}
		if v, ok := st.GetASolutionForBitVec(bv); ok {
			path.Ret = &v
		}
	}
	return path, nil
}
