// Package ast defines the tagged-variant abstract syntax tree described in
// spec.md §3.2. Every node family is a closed Go interface with an
// unexported marker method, following spec.md §9 "tagged variants over
// inheritance" and the teacher's own Node/Expression/Statement split
// (pkg/ast in the reference smog compiler). All links between nodes are by
// pointer; nodes are allocated from a pkg/arena.Arena and never copied.
package ast

import "github.com/hydro-lang/hydroc/pkg/token"

// Node is implemented by every AST node.
type Node interface {
	node()
}

// Term is the leaf level of an expression: an integer literal, an
// identifier reference, or a parenthesized sub-expression.
type Term interface {
	Node
	Expr
	term()
}

// IntegerLiteral is a Term holding an integer literal's token.
type IntegerLiteral struct {
	Token token.Token
}

func (*IntegerLiteral) node() {}
func (*IntegerLiteral) expr() {}
func (*IntegerLiteral) term() {}

// Identifier is a Term referencing a previously bound variable.
type Identifier struct {
	Token token.Token
}

func (*Identifier) node() {}
func (*Identifier) expr() {}
func (*Identifier) term() {}

// Parenthesized is a Term wrapping a nested expression: "(" Expr ")".
type Parenthesized struct {
	Inner Expr
}

func (*Parenthesized) node() {}
func (*Parenthesized) expr() {}
func (*Parenthesized) term() {}

// BinOp identifies which of the four binary operators a BinaryExpr applies.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
)

// BinaryExpr is lhs OP rhs, built left-associatively by the parser's
// precedence climbing (spec.md §4.2).
type BinaryExpr struct {
	Op  BinOp
	Lhs Expr
	Rhs Expr
}

func (*BinaryExpr) node() {}
func (*BinaryExpr) expr() {}

// Expr is the top of an expression: a Term or a BinaryExpr.
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by every statement variant.
type Stmt interface {
	Node
	stmt()
}

// Return is "return" "(" Expr ")" ";". Its value becomes the process exit
// status (spec.md §4.3).
type Return struct {
	Value Expr
}

func (*Return) node() {}
func (*Return) stmt() {}

// Let introduces a new binding: "let" IDENT "=" Expr ";". The identifier
// must not already be bound in any live enclosing scope (spec.md §3.2).
type Let struct {
	Ident token.Token
	Value Expr
}

func (*Let) node() {}
func (*Let) stmt() {}

// Assign overwrites an existing binding: IDENT "=" Expr ";". The identifier
// must already be in scope (spec.md §3.2).
type Assign struct {
	Ident token.Token
	Value Expr
}

func (*Assign) node() {}
func (*Assign) stmt() {}

// Scope is a lexical block: "{" Stmt* "}". Nested scopes may be arbitrarily
// deep (spec.md §4.2).
type Scope struct {
	Stmts []Stmt
}

func (*Scope) node() {}
func (*Scope) stmt() {}

// If is "if" "(" Expr ")" Scope IfPred?.
type If struct {
	Cond Expr
	Then *Scope
	Pred IfPred // nil if absent
}

func (*If) node() {}
func (*If) stmt() {}

// IfPred is the chain of elif/else branches following an If's then-scope.
// An Elif may carry another IfPred; an Else is always terminal (spec.md §3.2).
type IfPred interface {
	Node
	ifPred()
}

// Elif is "elif" "(" Expr ")" Scope IfPred?.
type Elif struct {
	Cond Expr
	Then *Scope
	Pred IfPred // nil if absent
}

func (*Elif) node()   {}
func (*Elif) ifPred() {}

// Else is "else" Scope, always the terminal branch of an IfPred chain.
type Else struct {
	Body *Scope
}

func (*Else) node()   {}
func (*Else) ifPred() {}

// Program is the ordered top-level list of statements the parser produces
// and the generator consumes.
type Program struct {
	Stmts []Stmt
}

func (*Program) node() {}
