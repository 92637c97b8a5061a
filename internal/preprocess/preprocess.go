// Package preprocess runs the static-analysis pipeline a parsed program
// passes through before it may be evaluated: dead-code elimination
// followed by the seven lint passes, with all lint errors accumulated and
// returned together rather than aborting on the first.
package preprocess

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/preprocess/deadcode"
	"github.com/phillarmonic/mockscript/internal/preprocess/lints"
)

// Run strips dead code from program in place and lints the result. A
// non-nil, non-empty *errors.LintErrorList is returned when any pass
// found a problem; program is still safe to discard in that case.
func Run(program *ast.Block) error {
	deadcode.Strip(program)
	if errs := lints.Run(program); len(errs) > 0 {
		return &errors.LintErrorList{Errors: errs}
	}
	return nil
}
