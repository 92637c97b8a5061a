package lsp_test

import (
	"testing"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/lsp"
	"github.com/phillarmonic/mockscript/internal/parser"
	"github.com/phillarmonic/mockscript/internal/preprocess"
)

func TestFromParseErrorConvertsPositionToZeroBased(t *testing.T) {
	d := lsp.FromParseError(&errors.ParseError{Message: "boom", Pos: ast.Position{Line: 3, Col: 5}})
	if d.Range.Start.Line != 2 || d.Range.Start.Character != 4 {
		t.Fatalf("expected 0-based (2,4), got (%d,%d)", d.Range.Start.Line, d.Range.Start.Character)
	}
	if d.Severity != lsp.SeverityError {
		t.Fatalf("expected SeverityError, got %v", d.Severity)
	}
	if d.Message != "boom" {
		t.Fatalf("expected message to pass through, got %q", d.Message)
	}
}

func TestFromLintErrorsConvertsEveryEntry(t *testing.T) {
	errs := []errors.LintError{
		errors.NewLintError(ast.Position{Line: 1, Col: 1}, "first"),
		errors.NewLintError(ast.Position{Line: 2, Col: 1}, "second"),
	}
	diags := lsp.FromLintErrors(errs)
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}
	if diags[0].Message != "first" || diags[1].Message != "second" {
		t.Fatalf("unexpected messages: %v", diags)
	}
}

func TestFromCompileErrorDispatchesOnParseError(t *testing.T) {
	_, err := parser.Parse("test.ms", `let x: num = ;`)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	diags := lsp.FromCompileError(err)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestFromCompileErrorDispatchesOnLintErrorList(t *testing.T) {
	program, err := parser.Parse("test.ms", `
		let x: num;
		return 200, x;
	`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	compileErr := preprocess.Run(program)
	if compileErr == nil {
		t.Fatal("expected a lint error")
	}
	diags := lsp.FromCompileError(compileErr)
	if len(diags) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func TestFromCompileErrorUnknownErrorShapeYieldsNil(t *testing.T) {
	diags := lsp.FromCompileError(errNotRecognized{})
	if diags != nil {
		t.Fatalf("expected nil, got %v", diags)
	}
}

type errNotRecognized struct{}

func (errNotRecognized) Error() string { return "not a compile error" }
