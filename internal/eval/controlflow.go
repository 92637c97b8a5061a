// Package eval is the tree-walking evaluator: it executes a preprocessed
// *ast.Block against a runtime.EvalCtx and produces either a normal
// value, a HTTP status/body pair (ReturnStatus at top level), or an
// *errors.EvalError.
package eval

import "github.com/phillarmonic/mockscript/internal/value"

// Kind enumerates how control left a statement or block.
type Kind int

const (
	// None means execution fell through normally; the caller should keep
	// going to the next statement.
	None Kind = iota
	Break
	Continue
	Return
	ReturnStatus
)

// ControlFlow is threaded back out of every block/statement evaluation.
// Value holds the return payload for Return; Status/Value both hold a
// payload for ReturnStatus (the top-level-only `return status, value;`
// form).
type ControlFlow struct {
	Kind   Kind
	Status value.Value
	Value  value.Value
}

var none = ControlFlow{Kind: None}
