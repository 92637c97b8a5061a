// Package lsp converts mockscript's parse/lint errors into LSP-style
// diagnostics. It is a pure data transform — no language server
// transport, no JSON-RPC framing — left for an editor integration to
// wire up; out of scope for the mock server itself.
package lsp

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
)

// Severity mirrors the LSP DiagnosticSeverity enum's numeric values.
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

// Position is an LSP-style zero-based line/character position.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a zero-width LSP range anchored at a single point, since
// mockscript errors carry a single source position rather than a span.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is one LSP textDocument/publishDiagnostics entry.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Source   string   `json:"source"`
}

const sourceName = "mockscript"

func rangeAt(pos ast.Position) Range {
	// ast.Position is 1-based; LSP positions are 0-based.
	line := pos.Line - 1
	if line < 0 {
		line = 0
	}
	col := pos.Col - 1
	if col < 0 {
		col = 0
	}
	p := Position{Line: line, Character: col}
	return Range{Start: p, End: p}
}

// FromParseError converts a single fatal parse/lex error.
func FromParseError(e *errors.ParseError) Diagnostic {
	return Diagnostic{
		Range:    rangeAt(e.Pos),
		Severity: SeverityError,
		Message:  e.Message,
		Source:   sourceName,
	}
}

// FromLintErrors converts every accumulated lint diagnostic.
func FromLintErrors(errs []errors.LintError) []Diagnostic {
	out := make([]Diagnostic, len(errs))
	for i, e := range errs {
		out[i] = Diagnostic{
			Range:    rangeAt(e.Pos),
			Severity: SeverityError,
			Message:  e.Message,
			Source:   sourceName,
		}
	}
	return out
}

// FromCompileError inspects a compile-time error returned by
// parser.Parse or preprocess.Run and converts whatever diagnostics it
// carries, recognizing both error shapes this module ever returns.
func FromCompileError(err error) []Diagnostic {
	switch e := err.(type) {
	case *errors.ParseError:
		return []Diagnostic{FromParseError(e)}
	case *errors.LintErrorList:
		return FromLintErrors(e.Errors)
	default:
		return nil
	}
}
