package state

import "github.com/pkg/errors"

// Errors surfaced by the execution state. All of them indicate a bug or
// unsupported construct upstream; the state never recovers locally.
// Call sites wrap these with context, so test with errors.Cause or
// errors.Is rather than equality on the returned value.
var (
	// ErrUnboundVariable: an operand or named lookup referenced a local
	// value with no current binding on this control path.
	ErrUnboundVariable = errors.New("unbound variable")

	// ErrTypeMismatch: a value was recorded or converted as the wrong
	// symbolic kind, or with the wrong bitvector width.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedOperand: an operand shape this core does not know
	// how to resolve (metadata, non-integer constants).
	ErrUnsupportedOperand = errors.New("unsupported operand")
)
