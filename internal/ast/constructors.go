package ast

import "github.com/ambulancja/falopa/internal/token"

// Exported constructors for the leaf node kinds. Struct literals from
// outside this package can't set the unexported pos field directly, so the
// parser, elaborator and evaluator build nodes through these instead.

func NewIntegerConstant(at token.Position, value int64) *IntegerConstant {
	return &IntegerConstant{pos: pos{at}, Value: value}
}

func NewWildcard(at token.Position) *Wildcard {
	return &Wildcard{pos: pos{at}}
}

func NewVariable(at token.Position, name string) *Variable {
	return &Variable{pos: pos{at}, Name: name}
}

func NewLambda(at token.Position, v string, body Expr) *Lambda {
	return &Lambda{pos: pos{at}, Var: v, Body: body}
}

func NewFresh(at token.Position, v string, body Expr) *Fresh {
	return &Fresh{pos: pos{at}, Var: v, Body: body}
}

func NewLet(at token.Position, decls []Decl, body Expr) *Let {
	return &Let{pos: pos{at}, Declarations: decls, Body: body}
}

func NewForall(at token.Position, v string, body Expr) *Forall {
	return &Forall{pos: pos{at}, Var: v, Body: body}
}

func NewDataDeclaration(at token.Position, lhs Expr, ctors []*TypeDeclaration) *DataDeclaration {
	return &DataDeclaration{pos: pos{at}, LHS: lhs, Constructors: ctors}
}

func NewTypeDeclaration(at token.Position, name string, typ Expr) *TypeDeclaration {
	return &TypeDeclaration{pos: pos{at}, Name: name, Type: typ}
}

func NewDefinition(at token.Position, lhs, rhs Expr, where []Decl) *Definition {
	return &Definition{pos: pos{at}, LHS: lhs, RHS: rhs, Where: where}
}

func NewProgram(dataDecls []*DataDeclaration, body Expr) *Program {
	return &Program{DataDeclarations: dataDecls, Body: body}
}
