package evaluator

import (
	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/diagnostics"
	"github.com/ambulancja/falopa/internal/token"
	"github.com/ambulancja/falopa/internal/value"
)

// strongEvalExpression weak-evaluates e and then strong-evaluates each
// resulting value (§4.3.5).
func (ev *Evaluator) strongEvalExpression(e ast.Expr, env *value.Environment, sink Sink) (bool, error) {
	return ev.evalExpression(e, env, func(v value.Value) (bool, error) {
		return ev.strongEvalValue(v, sink)
	})
}

// strongEvalValue recursively strong-evaluates argument lists of
// rigid/flex/primitive values until every component is strongly decided.
// Closures and integers are terminal; metavariables that lose decidedness
// mid-traversal (because evaluating a sibling argument instantiated them)
// are re-forced rather than presented half-evaluated.
func (ev *Evaluator) strongEvalValue(v value.Value, sink Sink) (bool, error) {
	switch n := v.(type) {
	case *value.Thunk:
		return ev.strongEvalExpression(n.Expr, n.Env, sink)
	case *value.IntegerConstant, *value.Closure:
		return sink(v)
	case *value.Primitive:
		return ev.strongEvalValues(n.Args, func(vargs []value.Value) (bool, error) {
			return sink(&value.Primitive{Name: n.Name, Args: vargs})
		})
	case *value.RigidStructure:
		return ev.strongEvalValues(n.Args, func(vargs []value.Value) (bool, error) {
			return sink(&value.RigidStructure{Constructor: n.Constructor, Args: vargs})
		})
	case *value.FlexStructure:
		return ev.strongEvalValues(n.Args, func(vargs []value.Value) (bool, error) {
			if !n.Symbol.IsInstantiated() {
				return sink(&value.FlexStructure{Symbol: n.Symbol, Args: vargs})
			}
			return ev.strongEvalApplyMany(n.Symbol, vargs, sink)
		})
	default:
		return false, diagnostics.Fail(diagnostics.Evaluator, "strong-evaluation-not-implemented", token.Position{}, nil)
	}
}

func (ev *Evaluator) strongEvalApplyMany(s *value.Metavar, vargs []value.Value, sink Sink) (bool, error) {
	return ev.applyMany(value.Representative(s), vargs, func(v value.Value) (bool, error) {
		return ev.strongEvalValue(v, sink)
	})
}

// strongEvalValues strong-evaluates every element of values, re-checking
// decidedness on the combined result since forcing a later element can
// instantiate a metavariable an earlier, already-yielded element depends
// on (mirrors the reference evaluator's own re-check, §4.3.5).
func (ev *Evaluator) strongEvalValues(values []value.Value, sink func([]value.Value) (bool, error)) (bool, error) {
	if len(values) == 0 {
		return sink(nil)
	}
	return ev.strongEvalValue(values[0], func(v0 value.Value) (bool, error) {
		return ev.strongEvalValues(values[1:], func(vs []value.Value) (bool, error) {
			result := append([]value.Value{v0}, vs...)
			if allStronglyDecided(result) {
				return sink(result)
			}
			return ev.strongEvalValues(result, sink)
		})
	})
}

func allStronglyDecided(values []value.Value) bool {
	for _, v := range values {
		if !value.StronglyDecided(v) {
			return false
		}
	}
	return true
}
