// Package ast defines the single shared tree used for both surface syntax
// and the type-annotated core the elaborator produces (§3.2): expressions,
// declarations and types are all built from the same node algebra, so a
// "type" is simply an Expr used in a type position.
//
// Dispatch on node kind is always a Go type switch over the concrete
// structs below, never a boolean predicate method: is_*-style tags are an
// artefact of languages without sum types and have no place in this tree.
package ast

import "github.com/ambulancja/falopa/internal/token"

// Expr is any node of the shared tree: constants, variables, applications,
// lambdas, fresh-bindings, lets, foralls and metavariables.
type Expr interface {
	Position() token.Position
	exprNode()
}

// Decl is a top-level or "where"-clause declaration.
type Decl interface {
	Position() token.Position
	declNode()
}

type pos struct{ P token.Position }

func (p pos) Position() token.Position { return p.P }

// IntegerConstant is a literal integer, typed Int (§4.2.4).
type IntegerConstant struct {
	pos
	Value int64
}

func (*IntegerConstant) exprNode() {}

// Wildcard ("_") never binds; it is only ever valid in pattern position.
type Wildcard struct {
	pos
}

func (*Wildcard) exprNode() {}

// Variable references a name: a lambda/fresh-bound variable, a let-bound
// name, a data constructor, or a primitive.
type Variable struct {
	pos
	Name string
}

func (*Variable) exprNode() {}

// Application is `fun arg`, left-associative juxtaposition once desugared
// from mixfix notation.
type Application struct {
	pos
	Fun Expr
	Arg Expr
}

func (*Application) exprNode() {}

// Lambda is introduced only by desugaring (§4.2.3); the surface grammar has
// no lambda syntax of its own.
type Lambda struct {
	pos
	Var  string
	Body Expr
}

func (*Lambda) exprNode() {}

// Fresh introduces a logic (metavariable-backed) binding: `fresh v . body`.
type Fresh struct {
	pos
	Var  string
	Body Expr
}

func (*Fresh) exprNode() {}

// Let binds a group of mutually-recursive declarations around Body.
type Let struct {
	pos
	Declarations []Decl
	Body         Expr
}

func (*Let) exprNode() {}

// Forall is the type-level-only universal quantifier introduced by
// let-generalisation (§4.2.2 step 4) and eliminated on instantiation
// (§4.2.4).
type Forall struct {
	pos
	Var  string
	Body Expr
}

func (*Forall) exprNode() {}

// Metavar is a type-level unification variable with a mutable indirection
// slot, forming a union-find forest exactly like the kind- and value-level
// metavariables (§3.7). Because the type checker never backtracks, this
// variant exposes Instantiate but no Uninstantiate.
type Metavar struct {
	pos
	Prefix      string
	Index       int
	indirection Expr
}

func (*Metavar) exprNode() {}

var nextMetavarIndex int

func FreshMetavar(prefix string, at token.Position) *Metavar {
	nextMetavarIndex++
	return &Metavar{pos: pos{at}, Prefix: prefix, Index: nextMetavarIndex}
}

// Representative follows e's indirection chain (if e is a *Metavar) to its
// current value, compressing the path as it goes (§8 property 14). Any
// other Expr is its own representative.
func Representative(e Expr) Expr {
	m, ok := e.(*Metavar)
	if !ok || m.indirection == nil {
		return e
	}
	m.indirection = Representative(m.indirection)
	return m.indirection
}

// Instantiate binds an unsolved metavariable to value. Panics if m is
// already instantiated: that would indicate a checker bug, not a language
// error.
func (m *Metavar) Instantiate(value Expr) {
	if m.indirection != nil {
		panic("ast: metavar already instantiated")
	}
	m.indirection = value
}

func (m *Metavar) IsInstantiated() bool {
	return m.indirection != nil
}

// Declarations.

// DataDeclaration declares an algebraic data type: LHS is a type
// application head plus type-variable parameters (e.g. `List a`),
// Constructors are its constructor signatures.
type DataDeclaration struct {
	pos
	LHS          Expr
	Constructors []*TypeDeclaration
}

func (*DataDeclaration) declNode() {}

// TypeDeclaration ascribes a type to a name: either a constructor
// signature inside a DataDeclaration, or a top-level/where-clause
// `name : Type`.
type TypeDeclaration struct {
	pos
	Name string
	Type Expr
}

func (*TypeDeclaration) declNode() {}

// Definition is one equation `lhs = rhs [where ...]`; LHS's head is the
// defined name and its arguments are patterns.
type Definition struct {
	pos
	LHS   Expr
	RHS   Expr
	Where []Decl
}

func (*Definition) declNode() {}

// Program is the parsed (or, after type checking, elaborated) top-level
// unit: data declarations plus a single outer Let whose body is
// Variable("main") before elaboration, or the checked main expression
// after (§4.1, §6).
type Program struct {
	DataDeclarations []*DataDeclaration
	Body             Expr
}
