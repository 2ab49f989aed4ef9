package smt

import (
	"strings"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	log "github.com/sirupsen/logrus"
)

// Solver is an incremental constraint store over one yices context.
// Constraints are grouped into frames: Push opens a frame, Pop discards
// every constraint asserted since the matching Push. Satisfiability is
// evaluated over the conjunction of all live frames.
//
// The last verdict is cached and reused until the formula changes, so
// repeated Check calls cost one solver invocation. Solver is not safe
// for concurrent use; parallel explorations need one Solver each.
type Solver struct {
	ctx yices2.ContextT

	// Mirror of every asserted constraint, grouped by frame. frames[0]
	// is the permanent base frame and is never popped. Kept so a solver
	// can be cloned into a fresh context and printed for diagnostics.
	frames [][]Bool

	cacheValid bool
	verdict    bool

	// Number of CheckContext calls made, observable by tests.
	checks int
}

func NewSolver() *Solver {
	s := &Solver{
		ctx:    yices2.ContextT{},
		frames: make([][]Bool, 1),
	}
	yices2.InitContext(yices2.ConfigT{}, &s.ctx)
	return s
}

// Close releases the underlying yices context.
func (s *Solver) Close() {
	yices2.CloseContext(&s.ctx)
}

// Assert adds cond to the innermost open frame.
func (s *Solver) Assert(cond Bool) {
	errcode := yices2.AssertFormula(s.ctx, cond.GetRaw())
	if errcode < 0 {
		log.Errorf("smt: assert formula: %s", yices2.ErrorString())
	}
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], cond)
	s.cacheValid = false
}

// Push opens a new frame; constraints asserted afterwards are discarded
// by the matching Pop.
func (s *Solver) Push() {
	errcode := yices2.Push(s.ctx)
	if errcode < 0 {
		log.Errorf("smt: push: %s", yices2.ErrorString())
	}
	s.frames = append(s.frames, nil)
	s.cacheValid = false
}

// Pop discards the n innermost frames. Popping more frames than were
// pushed is an invariant violation and panics.
func (s *Solver) Pop(n int) {
	if n > len(s.frames)-1 {
		panic("smt: pop exceeds open frame count")
	}
	for i := 0; i < n; i++ {
		errcode := yices2.Pop(s.ctx)
		if errcode < 0 {
			log.Errorf("smt: pop: %s", yices2.ErrorString())
		}
	}
	s.frames = s.frames[:len(s.frames)-n]
	s.cacheValid = false
}

// NumFrames reports how many frames are currently open (pushed and not
// yet popped); the permanent base frame is not counted.
func (s *Solver) NumFrames() int {
	return len(s.frames) - 1
}

// Check reports whether the current constraint conjunction is
// satisfiable. The verdict is cached until the next Assert, Push or Pop.
func (s *Solver) Check() bool {
	if s.cacheValid {
		return s.verdict
	}
	s.checks++
	status := yices2.CheckContext(s.ctx, yices2.ParamT{})
	if status == yices2.StatusError {
		log.Errorf("smt: check: %s", yices2.ErrorString())
	}
	s.verdict = status == yices2.StatusSat
	s.cacheValid = true
	return s.verdict
}

// CheckWithExtraConstraints reports whether the current constraints plus
// conds are together satisfiable, without persisting conds: they live in
// a temporary frame that is released on every exit path.
func (s *Solver) CheckWithExtraConstraints(conds ...Bool) bool {
	s.Push()
	defer s.Pop(1)
	for _, cond := range conds {
		s.Assert(cond)
	}
	return s.Check()
}

// Checks returns how many times the underlying solver has been invoked.
func (s *Solver) Checks() int {
	return s.checks
}

// GetSolutionForBitVec extracts one concrete value for bv consistent
// with a model of the current constraints. The second return is false
// if the constraints are unsatisfiable or the term cannot be evaluated.
// The permanent constraint set is left unchanged.
func (s *Solver) GetSolutionForBitVec(bv *BitVec) (uint64, bool) {
	model := s.model()
	if model == nil {
		return 0, false
	}
	size := bv.Size()
	bits := make([]int32, size)
	errcode := yices2.GetBvValue(*model, bv.GetRaw(), bits)
	if errcode != 0 {
		log.Errorf("smt: get bv value: %s", yices2.ErrorString())
		return 0, false
	}
	var result uint64
	for i := uint32(0); i < size && i < 64; i++ {
		if bits[i] != 0 {
			result |= 1 << i
		}
	}
	return result, true
}

// GetSolutionForBool extracts one concrete value for b consistent with a
// model of the current constraints; false second return means no model.
func (s *Solver) GetSolutionForBool(b Bool) (bool, bool) {
	model := s.model()
	if model == nil {
		return false, false
	}
	var val int32
	errcode := yices2.GetBoolValue(*model, b.GetRaw(), &val)
	if errcode != 0 {
		log.Errorf("smt: get bool value: %s", yices2.ErrorString())
		return false, false
	}
	return val != 0, true
}

func (s *Solver) model() *yices2.ModelT {
	if !s.Check() {
		return nil
	}
	model := yices2.GetModel(s.ctx, 1)
	if model == nil {
		log.Errorf("smt: get model: %s", yices2.ErrorString())
	}
	return model
}

// Clone replays every frame into a fresh context. Terms are global in
// yices, so the mirrored constraints can be re-asserted as-is.
func (s *Solver) Clone() *Solver {
	clone := NewSolver()
	for i, frame := range s.frames {
		if i > 0 {
			clone.Push()
		}
		for _, cond := range frame {
			clone.Assert(cond)
		}
	}
	return clone
}

// String renders the live constraints, one per line, innermost frame last.
func (s *Solver) String() string {
	var sb strings.Builder
	for _, frame := range s.frames {
		for _, cond := range frame {
			sb.WriteString(cond.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
