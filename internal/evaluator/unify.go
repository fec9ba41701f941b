package evaluator

import (
	"fmt"

	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/token"
	"github.com/ambulancja/falopa/internal/value"
)

// goal is one pending equation in the unification worklist of §4.3.4.
type goal struct {
	l, r value.Value
}

// unifyGoals succeeds once per consistent way of resolving every goal in
// order, yielding Unit for each; an empty worklist is vacuously satisfied.
func (ev *Evaluator) unifyGoals(goals []goal, sink Sink) (bool, error) {
	if len(goals) == 0 {
		return sink(value.Unit())
	}
	g := goals[0]
	return ev.unifyOne(g.l, g.r, goals[1:], sink)
}

// unifyOne resolves a single goal (l, r), pushing any subgoals it produces
// onto rest before continuing (§4.3.4 steps 1-7). A structural mismatch is
// not an error: it simply yields no solutions (step 7).
func (ev *Evaluator) unifyOne(l, r value.Value, rest []goal, sink Sink) (bool, error) {
	if !value.Decided(l) {
		return ev.evalValue(l, func(forced value.Value) (bool, error) {
			return ev.unifyOne(forced, r, rest, sink)
		})
	}
	if !value.Decided(r) {
		return ev.evalValue(r, func(forced value.Value) (bool, error) {
			return ev.unifyOne(l, forced, rest, sink)
		})
	}

	if _, lflex := l.(*value.FlexStructure); !lflex {
		if _, rflex := r.(*value.FlexStructure); rflex {
			return ev.unifyOne(r, l, rest, sink)
		}
	}

	if li, ok := l.(*value.IntegerConstant); ok {
		if ri, ok := r.(*value.IntegerConstant); ok && ri.Value == li.Value {
			return ev.unifyGoals(rest, sink)
		}
		return true, nil
	}

	if lr, ok := l.(*value.RigidStructure); ok {
		if rr, ok := r.(*value.RigidStructure); ok && rr.Constructor == lr.Constructor && len(rr.Args) == len(lr.Args) {
			newGoals := make([]goal, 0, len(lr.Args)+len(rest))
			for i := range lr.Args {
				newGoals = append(newGoals, goal{lr.Args[i], rr.Args[i]})
			}
			return ev.unifyGoals(append(newGoals, rest...), sink)
		}
		return true, nil
	}

	if lf, ok := l.(*value.FlexStructure); ok {
		if len(lf.Args) == 0 {
			return ev.unifyFlexEmpty(lf.Symbol, r, rest, sink)
		}
		return ev.unifyFlexHigherOrder(lf, r, rest, sink)
	}

	return true, nil
}

// unifyFlexEmpty instantiates an unapplied flex variable directly to r,
// reversing the binding on backtracking (§4.3.4 step 4; the occurs check
// is intentionally omitted, a documented limitation of §9).
func (ev *Evaluator) unifyFlexEmpty(s *value.Metavar, r value.Value, rest []goal, sink Sink) (bool, error) {
	s.Instantiate(r)
	cont, err := ev.unifyGoals(rest, sink)
	s.Uninstantiate()
	return cont, err
}

// unifyFlexHigherOrder handles `FlexStructure(s, xs) == r` when xs is
// non-empty (§4.3.4 step 5): s is instantiated to a closure
//
//	λ p1..pn . (unify(p1,x1) >> ... >> unify(pn,xn) >> r) <> (F p1 .. pn)
//
// where the recursive alternative F is simply s itself, viewed through a
// fresh FlexStructure wrapper: by the time anything applies F, s is
// already instantiated to this very closure, so the self-reference
// resolves through the representative chain rather than through a second
// metavariable.
func (ev *Evaluator) unifyFlexHigherOrder(lf *value.FlexStructure, r value.Value, rest []goal, sink Sink) (bool, error) {
	s := lf.Symbol
	xs := lf.Args
	n := len(xs)

	env := value.NewEnvironment()
	var zero token.Position
	params := make([]string, n)
	paramVars := make([]ast.Expr, n)
	goals := make([]ast.Expr, n)
	for i := 0; i < n; i++ {
		params[i] = fmt.Sprintf("p%d", i+1)
		argName := fmt.Sprintf("x%d", i+1)
		env.Define(argName, xs[i])
		paramVars[i] = ast.NewVariable(zero, params[i])
		goals[i] = ast.Unify(zero, ast.NewVariable(zero, params[i]), ast.NewVariable(zero, argName))
	}
	env.Define("r", r)
	env.Define("F", &value.FlexStructure{Symbol: s})

	matchBranch := ast.SequenceMany1(zero, goals, ast.NewVariable(zero, "r"))
	retryBranch := ast.Apply(zero, ast.NewVariable(zero, "F"), paramVars...)
	lambdaExpr := ast.LambdaMany(zero, params, ast.Alternative(zero, matchBranch, retryBranch))

	closureVal, err := ev.evalOnce(lambdaExpr, env)
	if err != nil {
		return false, err
	}

	s.Instantiate(closureVal)
	cont, err := ev.unifyGoals(rest, sink)
	s.Uninstantiate()
	return cont, err
}
