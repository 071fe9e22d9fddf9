// Package diagnostics defines the fatal error taxonomy shared by the
// tokenizer, parser, and generator (spec.md §7): lexical, syntactic, and
// semantic errors. Every diagnostic carries the phase it was raised in, a
// stable error code, and the source line it refers to, following the
// diagnostic-code convention used throughout this project's reference
// corpus (funxy's internal/diagnostics package groups phase + code +
// template the same way).
package diagnostics

import (
	"fmt"

	"github.com/hydro-lang/hydroc/pkg/token"
	"github.com/pkg/errors"
)

// Phase identifies which compiler stage raised a Diagnostic.
type Phase string

const (
	PhaseLexer  Phase = "lexer"
	PhaseParser Phase = "parser"
	PhaseCodegen Phase = "codegen"
)

// Code is a stable identifier for a class of error, independent of the
// exact message text.
type Code string

const (
	// Lexical (spec.md §7.1)
	CodeUnrecognizedChar Code = "L001"

	// Syntactic (spec.md §7.2)
	CodeExpectedToken Code = "P001"

	// Semantic (spec.md §7.3)
	CodeUndeclaredIdentifier Code = "S001"
	CodeDuplicateBinding     Code = "S002"
)

// Diagnostic is a single fatal error. There is no recovery and no
// aggregation (spec.md §7): the first Diagnostic raised aborts compilation.
type Diagnostic struct {
	Phase Phase
	Code  Code
	Line  int
	msg   string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("[%s %s] line %d: %s", d.Phase, d.Code, d.Line, d.msg)
}

// Lexical reports an unrecognized character (spec.md §4.1 step 8, §7.1).
func Lexical(line int, ch byte) error {
	return &Diagnostic{
		Phase: PhaseLexer,
		Code:  CodeUnrecognizedChar,
		Line:  line,
		msg:   fmt.Sprintf("unrecognized character %q", ch),
	}
}

// Expected reports a missing required token (spec.md §4.2, §7.2). line is
// the line of the most recently consumed token, per the message format
// "Expected <name> on line <n>".
func Expected(what string, line int) error {
	return &Diagnostic{
		Phase: PhaseParser,
		Code:  CodeExpectedToken,
		Line:  line,
		msg:   fmt.Sprintf("expected %s on line %d", what, line),
	}
}

// Undeclared reports use (read or assign) of an identifier not currently in
// scope (spec.md §3.2 invariants, §7.3).
func Undeclared(ident token.Token) error {
	return &Diagnostic{
		Phase: PhaseCodegen,
		Code:  CodeUndeclaredIdentifier,
		Line:  ident.Line,
		msg:   fmt.Sprintf("identifier %q does not exist", ident.Lexeme),
	}
}

// Redeclared reports a Let that shadows an existing binding in a live
// enclosing scope (spec.md §3.2 invariants, §7.3).
func Redeclared(ident token.Token) error {
	return &Diagnostic{
		Phase: PhaseCodegen,
		Code:  CodeDuplicateBinding,
		Line:  ident.Line,
		msg:   fmt.Sprintf("identifier %q already declared", ident.Lexeme),
	}
}

// Wrap annotates err with additional context as it propagates out of a
// stage, without discarding an underlying *Diagnostic (so pkg/driver can
// still recover phase/code information with errors.As).
func Wrap(err error, context string) error {
	return errors.WithMessage(err, context)
}

// As reports whether err is, or wraps, a *Diagnostic, and returns it.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	ok := errors.As(err, &d)
	return d, ok
}
