package ast

import (
	"github.com/ambulancja/falopa/internal/config"
	"github.com/ambulancja/falopa/internal/token"
)

// IsArrowType reports whether e has the shape `(_→_ a) b` (§3.2).
func IsArrowType(e Expr) bool {
	app, ok := e.(*Application)
	if !ok {
		return false
	}
	inner, ok := app.Fun.(*Application)
	if !ok {
		return false
	}
	v, ok := inner.Fun.(*Variable)
	return ok && v.Name == config.OpArrow
}

// ApplicationHead returns the leftmost function in a chain of
// applications; ApplicationArgs returns its arguments left to right. The
// two compose to reconstruct e (§3.2).
func ApplicationHead(e Expr) Expr {
	for {
		app, ok := e.(*Application)
		if !ok {
			return e
		}
		e = app.Fun
	}
}

func ApplicationArgs(e Expr) []Expr {
	var args []Expr
	for {
		app, ok := e.(*Application)
		if !ok {
			break
		}
		args = append([]Expr{app.Arg}, args...)
		e = app.Fun
	}
	return args
}

// Apply reconstructs head applied to args, left to right.
func Apply(at token.Position, head Expr, args ...Expr) Expr {
	result := head
	for _, arg := range args {
		result = &Application{pos: pos{at}, Fun: result, Arg: arg}
	}
	return result
}

// FunctionType builds `domain → codomain`.
func FunctionType(at token.Position, domain, codomain Expr) Expr {
	arrow := &Variable{pos: pos{at}, Name: config.OpArrow}
	return Apply(at, arrow, domain, codomain)
}

// FunctionTypeMany builds the right-folded arrow type
// params[0] → params[1] → ... → result.
func FunctionTypeMany(at token.Position, params []Expr, result Expr) Expr {
	t := result
	for i := len(params) - 1; i >= 0; i-- {
		t = FunctionType(at, params[i], t)
	}
	return t
}

// LambdaMany curries a sequence of parameter names around body.
func LambdaMany(at token.Position, vars []string, body Expr) Expr {
	e := body
	for i := len(vars) - 1; i >= 0; i-- {
		e = &Lambda{pos: pos{at}, Var: vars[i], Body: e}
	}
	return e
}

// ForallMany closes body over vars, innermost-last (order does not affect
// meaning, only display).
func ForallMany(at token.Position, vars []string, body Expr) Expr {
	e := body
	for _, v := range vars {
		e = &Forall{pos: pos{at}, Var: v, Body: e}
	}
	return e
}

// FreshMany wraps body in nested Fresh bindings, one per variable in vars.
func FreshMany(at token.Position, vars []string, body Expr) Expr {
	e := body
	for _, v := range vars {
		e = &Fresh{pos: pos{at}, Var: v, Body: e}
	}
	return e
}

// Sequence builds `a >> b`.
func Sequence(at token.Position, a, b Expr) Expr {
	return Apply(at, &Variable{pos: pos{at}, Name: config.OpSequence}, a, b)
}

// SequenceMany1 chains goals (each a0 >> a1 >> ... >> last) and finally
// sequences the chain with last, mirroring the desugaring in §4.2.3: if
// goals is empty, last is returned unchanged.
func SequenceMany1(at token.Position, goals []Expr, last Expr) Expr {
	if len(goals) == 0 {
		return last
	}
	e := goals[len(goals)-1]
	for i := len(goals) - 2; i >= 0; i-- {
		e = Sequence(at, goals[i], e)
	}
	return Sequence(at, e, last)
}

// Alternative builds `a <> b`.
func Alternative(at token.Position, a, b Expr) Expr {
	return Apply(at, &Variable{pos: pos{at}, Name: config.OpAlternative}, a, b)
}

// AlternativeMany right-folds a non-empty list of alternatives with `<>`.
// Exactly one alternative is returned unwrapped.
func AlternativeMany(at token.Position, alts []Expr) Expr {
	if len(alts) == 0 {
		panic("ast: AlternativeMany requires at least one alternative")
	}
	e := alts[len(alts)-1]
	for i := len(alts) - 2; i >= 0; i-- {
		e = Alternative(at, alts[i], e)
	}
	return e
}

// Unify builds the goal expression `a == b`.
func Unify(at token.Position, a, b Expr) Expr {
	return Apply(at, &Variable{pos: pos{at}, Name: config.OpUnify}, a, b)
}

// FreeVariables collects the free ordinary (non-type) variables of e,
// stopping at Lambda/Fresh/Let binders. A Metavar contributes nothing and a
// Forall is treated as a binder of its variable; type-level free variables
// are computed separately by the type checker's freeTypeVariables.
func FreeVariables(e Expr) map[string]bool {
	out := map[string]bool{}
	freeVariables(e, out)
	return out
}

func freeVariables(e Expr, out map[string]bool) {
	switch n := e.(type) {
	case *IntegerConstant, *Wildcard, *Metavar:
		// no free variables
	case *Variable:
		out[n.Name] = true
	case *Application:
		freeVariables(n.Fun, out)
		freeVariables(n.Arg, out)
	case *Lambda:
		inner := map[string]bool{}
		freeVariables(n.Body, inner)
		delete(inner, n.Var)
		mergeInto(out, inner)
	case *Fresh:
		inner := map[string]bool{}
		freeVariables(n.Body, inner)
		delete(inner, n.Var)
		mergeInto(out, inner)
	case *Let:
		bound := map[string]bool{}
		for _, d := range n.Declarations {
			if def, ok := d.(*Definition); ok {
				if head, ok := def.LHS.(*Variable); ok {
					bound[head.Name] = true
				}
			}
		}
		inner := map[string]bool{}
		freeVariables(n.Body, inner)
		for _, d := range n.Declarations {
			if def, ok := d.(*Definition); ok {
				freeVariables(def.RHS, inner)
			}
		}
		for name := range bound {
			delete(inner, name)
		}
		mergeInto(out, inner)
	case *Forall:
		inner := map[string]bool{}
		freeVariables(n.Body, inner)
		delete(inner, n.Var)
		mergeInto(out, inner)
	}
}

// FreeVariablesList is FreeVariables applied across a list of patterns,
// used while collecting an equation's implicitly-fresh pattern variables
// (§4.2.3).
func FreeVariablesList(exprs []Expr) map[string]bool {
	out := map[string]bool{}
	for _, e := range exprs {
		mergeInto(out, FreeVariables(e))
	}
	return out
}

func mergeInto(dst, src map[string]bool) {
	for k := range src {
		dst[k] = true
	}
}
