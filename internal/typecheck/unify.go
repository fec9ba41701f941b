package typecheck

import (
	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/diagnostics"
)

// unifyTypes destructively unifies two type expressions, instantiating
// ast.Metavar cells as it goes. Type checking never backtracks: on failure
// no attempt is made to undo partial instantiation from this call, since
// aborting the stage makes that unnecessary (§3.7).
func unifyTypes(t1, t2 ast.Expr) error {
	t1 = ast.Representative(t1)
	t2 = ast.Representative(t2)

	if m1, ok := t1.(*ast.Metavar); ok {
		if m2, ok := t2.(*ast.Metavar); ok && m1 == m2 {
			return nil
		}
		if occursInType(m1, t2) {
			return diagnostics.Fail(diagnostics.TypeChecker, "occurs-check", t1.Position(), nil)
		}
		m1.Instantiate(t2)
		return nil
	}
	if _, ok := t2.(*ast.Metavar); ok {
		return unifyTypes(t2, t1)
	}

	switch n1 := t1.(type) {
	case *ast.Variable:
		if n2, ok := t2.(*ast.Variable); ok && n1.Name == n2.Name {
			return nil
		}
	case *ast.Application:
		if n2, ok := t2.(*ast.Application); ok {
			if err := unifyTypes(n1.Fun, n2.Fun); err != nil {
				return err
			}
			return unifyTypes(n1.Arg, n2.Arg)
		}
	}
	return diagnostics.Fail(diagnostics.TypeChecker, "types-do-not-unify", t1.Position(),
		diagnostics.D("left", ast.Show(t1), "right", ast.Show(t2)))
}

func occursInType(m *ast.Metavar, e ast.Expr) bool {
	e = ast.Representative(e)
	switch n := e.(type) {
	case *ast.Metavar:
		return n == m
	case *ast.Application:
		return occursInType(m, n.Fun) || occursInType(m, n.Arg)
	case *ast.Forall:
		return occursInType(m, n.Body)
	default:
		return false
	}
}

// substituteTypeVar replaces free occurrences of the named type variable
// with replacement, building a new tree rather than mutating e (§3.7). It
// stops at a Forall that rebinds the same name.
func substituteTypeVar(e ast.Expr, name string, replacement ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Variable:
		if n.Name == name {
			return replacement
		}
		return n
	case *ast.Application:
		return ast.Apply(n.Position(), substituteTypeVar(n.Fun, name, replacement), substituteTypeVar(n.Arg, name, replacement))
	case *ast.Forall:
		if n.Var == name {
			return n
		}
		return ast.NewForall(n.Position(), n.Var, substituteTypeVar(n.Body, name, replacement))
	default:
		return n
	}
}

// substituteMetavar replaces every free occurrence of target (identified by
// pointer, after representative resolution) with replacement.
func substituteMetavar(e ast.Expr, target *ast.Metavar, replacement ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Application:
		return ast.Apply(n.Position(), substituteMetavar(n.Fun, target, replacement), substituteMetavar(n.Arg, target, replacement))
	case *ast.Forall:
		return ast.NewForall(n.Position(), n.Var, substituteMetavar(n.Body, target, replacement))
	case *ast.Metavar:
		rep := ast.Representative(n)
		if m2, ok := rep.(*ast.Metavar); ok {
			if m2 == target {
				return replacement
			}
			return m2
		}
		return substituteMetavar(rep, target, replacement)
	default:
		return n
	}
}

// instantiateForall eliminates one layer of Forall by substituting its bound
// variable with replacement (a fresh metavar when instantiating for use, a
// fresh named variable when alpha-renaming a user-written type for
// reconciliation; §4.2.2 step 5, §4.2.4).
func instantiateForall(f *ast.Forall, replacement ast.Expr) ast.Expr {
	return substituteTypeVar(f.Body, f.Var, replacement)
}

// freeTypeVariables collects the named (non-metavariable) free type
// variables of a type expression, stopping at Forall binders.
func freeTypeVariables(e ast.Expr, out map[string]bool) {
	switch n := e.(type) {
	case *ast.Variable:
		out[n.Name] = true
	case *ast.Application:
		freeTypeVariables(n.Fun, out)
		freeTypeVariables(n.Arg, out)
	case *ast.Forall:
		inner := map[string]bool{}
		freeTypeVariables(n.Body, inner)
		delete(inner, n.Var)
		for k := range inner {
			out[k] = true
		}
	}
}

// collectFreeMetavars collects the uninstantiated metavariables reachable
// from a type expression, following representatives (§4.2.2 step 4).
func collectFreeMetavars(e ast.Expr, out map[*ast.Metavar]bool) {
	switch n := e.(type) {
	case *ast.Application:
		collectFreeMetavars(n.Fun, out)
		collectFreeMetavars(n.Arg, out)
	case *ast.Forall:
		collectFreeMetavars(n.Body, out)
	case *ast.Metavar:
		rep := ast.Representative(n)
		if m2, ok := rep.(*ast.Metavar); ok {
			out[m2] = true
		} else {
			collectFreeMetavars(rep, out)
		}
	}
}
